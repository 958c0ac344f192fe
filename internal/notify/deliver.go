package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Deliverer hands a fired notification to the user.
type Deliverer interface {
	Name() string
	// Authorize returns nil when the channel may deliver notifications.
	Authorize(ctx context.Context) error
	Deliver(ctx context.Context, n Notification) error
}

// Console logs notifications instead of sending them.
type Console struct {
	Log zerolog.Logger
}

func (c Console) Name() string { return "console" }

func (c Console) Authorize(context.Context) error { return nil }

func (c Console) Deliver(_ context.Context, n Notification) error {
	c.Log.Info().
		Str("notification_id", n.ID).
		Uint("reminder_id", n.ReminderID).
		Str("title", n.Title).
		Str("body", n.Body).
		Msg("reminder")
	return nil
}

// Sender is the messaging surface of the twilio client.
type Sender interface {
	Configured() bool
	SendSMS(to, body string) error
	SendWhatsAppMessage(to, body string) error
}

// Twilio delivers notifications as SMS or WhatsApp messages.
type Twilio struct {
	Sender   Sender
	To       string
	WhatsApp bool
}

func (t Twilio) Name() string {
	if t.WhatsApp {
		return "whatsapp"
	}
	return "sms"
}

func (t Twilio) Authorize(context.Context) error {
	if t.Sender == nil || !t.Sender.Configured() {
		return errors.New("twilio credentials are not configured")
	}
	if t.To == "" {
		return errors.New("no recipient configured")
	}
	return nil
}

func (t Twilio) Deliver(_ context.Context, n Notification) error {
	body := FormatMessage(n)
	if t.WhatsApp {
		return t.Sender.SendWhatsAppMessage(t.To, body)
	}
	return t.Sender.SendSMS(t.To, body)
}

// FormatMessage renders the text sent for a notification.
func FormatMessage(n Notification) string {
	msg := n.Title
	if n.Body != "" {
		msg += "\n" + n.Body
	}
	if n.ReminderID != 0 {
		msg += fmt.Sprintf("\nReply \"done %d\" or \"snooze %d 1h\".", n.ReminderID, n.ReminderID)
	}
	return msg
}
