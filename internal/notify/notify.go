package notify

import "go.uber.org/zap"

// Notifier pushes a message to an employee's bound chat. Delivery is best
// effort; lifecycle transitions never fail because a notification did.
type Notifier interface {
	Send(chatID int64, text string) error
}

// LogNotifier records outgoing notifications instead of delivering them. It
// is the default when no chat transport is attached.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Send(chatID int64, text string) error {
	if n.Log != nil {
		n.Log.Info("notify", zap.Int64("chat_id", chatID), zap.String("text", text))
	}
	return nil
}

// Func adapts a plain function to the Notifier interface.
type Func func(chatID int64, text string) error

func (f Func) Send(chatID int64, text string) error { return f(chatID, text) }
