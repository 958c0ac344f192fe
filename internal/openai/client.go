package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Client wraps the OpenAI SDK. Without an API key every helper falls back to
// deterministic text.
type Client struct {
	client *openai.Client
	model  openai.ChatModel
}

// ErrClientNotInitialised is returned when attempting to call the API without a configured client.
var ErrClientNotInitialised = errors.New("openai client not initialised")

// New returns a client; an empty apiKey yields a fallback-only client.
func New(apiKey string) *Client {
	if apiKey == "" {
		return &Client{}
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client: &client,
		model:  openai.ChatModelGPT4oMini,
	}
}

// Enabled reports whether API calls will be made.
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// ReminderContext is what the model sees when writing a reminder nudge.
type ReminderContext struct {
	ProfileName string
	Title       string
	Description string
	Likes       []string
}

// ComposeReminder writes the body of a reminder notification.
func (c *Client) ComposeReminder(ctx context.Context, rc ReminderContext) (string, error) {
	if strings.TrimSpace(rc.Title) == "" {
		return "", fmt.Errorf("reminder title cannot be empty")
	}
	if !c.Enabled() {
		return fallbackReminder(rc), nil
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Reminder: %s.", rc.Title)
	if rc.ProfileName != "" {
		fmt.Fprintf(&prompt, " It is about %s.", rc.ProfileName)
	}
	if rc.Description != "" {
		fmt.Fprintf(&prompt, " Details: %s.", rc.Description)
	}
	if len(rc.Likes) > 0 {
		fmt.Fprintf(&prompt, " They like: %s.", strings.Join(rc.Likes, ", "))
	}

	return c.complete(ctx,
		"You write one short, friendly sentence nudging the user to follow up with someone they care about.",
		prompt.String(), 0.5, 60, 15*time.Second)
}

// SummarizeNotes condenses free-text profile notes into one sentence.
func (c *Client) SummarizeNotes(ctx context.Context, notes string) (string, error) {
	if strings.TrimSpace(notes) == "" {
		return "", fmt.Errorf("content cannot be empty")
	}
	if !c.Enabled() {
		return truncate(notes, 80), nil
	}
	return c.complete(ctx,
		"You summarise personal notes about a friend in one short sentence.",
		fmt.Sprintf("Summarise the following notes in one sentence: %s", notes), 0.3, 60, 15*time.Second)
}

func (c *Client) complete(ctx context.Context, system, user string, temperature float64, maxTokens int64, timeout time.Duration) (string, error) {
	if !c.Enabled() {
		return "", ErrClientNotInitialised
	}

	req := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(system),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(user),
					},
				},
			},
		},
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion received")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func fallbackReminder(rc ReminderContext) string {
	var sb strings.Builder
	sb.WriteString(rc.Title)
	if rc.ProfileName != "" {
		sb.WriteString(" (")
		sb.WriteString(rc.ProfileName)
		sb.WriteString(")")
	}
	if rc.Description != "" {
		sb.WriteString(": ")
		sb.WriteString(truncate(rc.Description, 80))
	}
	return sb.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
