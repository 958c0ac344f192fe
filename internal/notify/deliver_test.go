package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	configured bool
	sms        []string
	whatsapp   []string
}

func (f *fakeSender) Configured() bool { return f.configured }

func (f *fakeSender) SendSMS(to, body string) error {
	f.sms = append(f.sms, to+"|"+body)
	return nil
}

func (f *fakeSender) SendWhatsAppMessage(to, body string) error {
	f.whatsapp = append(f.whatsapp, to+"|"+body)
	return nil
}

func TestTwilioAuthorize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	assert.Error(t, Twilio{}.Authorize(ctx))
	assert.Error(t, Twilio{Sender: &fakeSender{}, To: "+1555"}.Authorize(ctx))
	assert.Error(t, Twilio{Sender: &fakeSender{configured: true}}.Authorize(ctx))
	assert.NoError(t, Twilio{Sender: &fakeSender{configured: true}, To: "+1555"}.Authorize(ctx))
}

func TestTwilioDeliverChoosesChannel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	n := Notification{ReminderID: 4, Title: "Call Maya", Body: "Ask about the trip"}

	sender := &fakeSender{configured: true}
	require.NoError(t, Twilio{Sender: sender, To: "+1555"}.Deliver(ctx, n))
	require.NoError(t, Twilio{Sender: sender, To: "+1555", WhatsApp: true}.Deliver(ctx, n))

	require.Len(t, sender.sms, 1)
	require.Len(t, sender.whatsapp, 1)
	assert.Contains(t, sender.sms[0], "Call Maya\nAsk about the trip")
	assert.Contains(t, sender.whatsapp[0], `done 4`)
}

func TestFormatMessageWithoutReminder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Stretch", FormatMessage(Notification{Title: "Stretch"}))
}
