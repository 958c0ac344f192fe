package twilio

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Client wraps the Twilio messaging calls used for reminder delivery.
type Client struct {
	client *twilio.RestClient
	from   string
	log    zerolog.Logger
}

// New creates a Twilio client bound to the configured sender number.
// Without credentials the client is returned unconfigured.
func New(accountSID, authToken, from string, log zerolog.Logger) *Client {
	c := &Client{from: strings.TrimSpace(from), log: log}
	if accountSID != "" && authToken != "" {
		c.client = twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken})
	}
	return c
}

// Configured reports whether credentials and a sender are present.
func (c *Client) Configured() bool {
	return c != nil && c.client != nil && c.from != ""
}

// SendWhatsAppMessage sends a WhatsApp message.
func (c *Client) SendWhatsAppMessage(to, body string) error {
	return c.send(normalizeWhatsAppAddress(c.from), normalizeWhatsAppAddress(to), body)
}

// SendSMS sends a plain text message.
func (c *Client) SendSMS(to, body string) error {
	return c.send(normalizePhoneNumber(c.from), normalizePhoneNumber(to), body)
}

func (c *Client) send(sender, recipient, body string) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("twilio client not initialised")
	}
	if sender == "" {
		return fmt.Errorf("twilio sender number is not configured")
	}
	if recipient == "" {
		return fmt.Errorf("recipient number missing or invalid")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(sender)
	params.SetBody(body)

	resp, err := c.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send message error: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	c.log.Debug().Str("to", recipient).Str("sid", sid).Msg("twilio: message sent")
	return nil
}

// StripWhatsAppPrefix returns the bare number of a "whatsapp:" address.
func StripWhatsAppPrefix(from string) string {
	return strings.TrimPrefix(strings.TrimSpace(from), "whatsapp:")
}

func normalizeWhatsAppAddress(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "whatsapp:") {
		return trimmed
	}
	return "whatsapp:" + normalizePhoneNumber(trimmed)
}

func normalizePhoneNumber(number string) string {
	trimmed := StripWhatsAppPrefix(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "+") {
		return trimmed
	}
	return "+" + trimmed
}
