package workflow

// Notifier pushes a copy of a feed message to an external channel. The feed
// row itself is written inside the decision transaction; the push happens
// after commit and is best-effort.
type Notifier interface {
	Notify(userID, message string)
}
