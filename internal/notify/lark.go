package notify

import (
	"context"
	"encoding/json"
	"time"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// Config holds Lark push configuration.
type Config struct {
	AppID         string
	AppSecret     string
	ReceiveIDType string // usually "email" or "user_id"
}

// LarkNotifier mirrors feed messages to Lark IM. It satisfies the workflow
// engines' Notifier interface; failures are logged, never propagated, since
// the feed row is already committed.
type LarkNotifier struct {
	client        *lark.Client
	receiveIDType string
	logger        *zap.Logger
}

// NewLarkNotifier creates a Lark push notifier.
func NewLarkNotifier(cfg Config, logger *zap.Logger) *LarkNotifier {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)

	return &LarkNotifier{
		client:        client,
		receiveIDType: cfg.ReceiveIDType,
		logger:        logger,
	}
}

// Notify sends the message to the user as a Lark text message.
func (n *LarkNotifier) Notify(userID, message string) {
	content, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		n.logger.Error("Failed to encode Lark message", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(n.receiveIDType).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(userID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.client.Im.Message.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to push Lark message",
			zap.String("receive_id", userID), zap.Error(err))
		return
	}
	if !resp.Success() {
		n.logger.Error("Lark API returned failure",
			zap.String("receive_id", userID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return
	}

	n.logger.Debug("Lark message pushed", zap.String("receive_id", userID))
}
