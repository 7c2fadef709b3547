package auth

import (
	"errors"

	"github.com/procureflow/backend/internal/models"
	"github.com/procureflow/backend/internal/repository"
	"go.uber.org/zap"
)

// ErrBadCredentials means the username is unknown or the password is wrong.
// Both cases return the same error so login attempts cannot probe usernames.
var ErrBadCredentials = errors.New("invalid username or password")

// Service authenticates users and issues tokens.
type Service struct {
	users  *repository.UserRepository
	issuer *TokenIssuer
	logger *zap.Logger
}

// NewService creates the auth service.
func NewService(users *repository.UserRepository, issuer *TokenIssuer, logger *zap.Logger) *Service {
	return &Service{
		users:  users,
		issuer: issuer,
		logger: logger,
	}
}

// Login verifies the credentials and returns a signed token plus the user.
func (s *Service) Login(username, password string) (string, *models.User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !CheckPassword(user.PasswordHash, password) {
		s.logger.Warn("Login failed", zap.String("username", username))
		return "", nil, ErrBadCredentials
	}

	token, err := s.issuer.Issue(user.Username, user.Role, user.Department)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("User logged in", zap.String("username", username), zap.String("role", user.Role))
	return token, user, nil
}
