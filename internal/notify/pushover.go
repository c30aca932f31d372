package notify

import (
	"fmt"

	"github.com/gregdel/pushover"
	"go.uber.org/zap"
)

// Notifier delivers short out-of-band messages (new leads, unanswerable
// questions) to the site owner.
type Notifier interface {
	Push(text string) error
}

type PushoverNotifier struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
}

func NewPushoverNotifier(token, userKey string) *PushoverNotifier {
	return &PushoverNotifier{
		app:       pushover.New(token),
		recipient: pushover.NewRecipient(userKey),
	}
}

func (n *PushoverNotifier) Push(text string) error {
	_, err := n.app.SendMessage(pushover.NewMessage(text), n.recipient)
	if err != nil {
		return fmt.Errorf("pushover send failed: %w", err)
	}
	return nil
}

// NopNotifier logs instead of delivering, for running without Pushover
// credentials.
type NopNotifier struct {
	Logger *zap.Logger
}

func (n *NopNotifier) Push(text string) error {
	if n.Logger != nil {
		n.Logger.Info("notification (not delivered)", zap.String("text", text))
	}
	return nil
}
