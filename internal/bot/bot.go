package bot

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pathakanu/myCircle/internal/notify"
	"github.com/pathakanu/myCircle/internal/reminders"
	"github.com/pathakanu/myCircle/internal/store"
	"github.com/pathakanu/myCircle/internal/twilio"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Bot answers text replies to reminder notifications.
type Bot struct {
	store     *store.Store
	reminders *reminders.Service
	owner     string
	loc       *time.Location
	state     *conversationStore
	log       zerolog.Logger
}

// New creates a Bot. Only messages from owner are accepted; an empty owner
// accepts every sender.
func New(st *store.Store, svc *reminders.Service, owner string, loc *time.Location, log zerolog.Logger) *Bot {
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		store:     st,
		reminders: svc,
		owner:     twilio.StripWhatsAppPrefix(owner),
		loc:       loc,
		state:     newConversationStore(),
		log:       log,
	}
}

// Handler returns the HTTP handler for incoming Twilio messages.
func (b *Bot) Handler() http.HandlerFunc {
	return b.handleIncomingMessage
}

// handleIncomingMessage processes Twilio webhook POST requests.
func (b *Bot) handleIncomingMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		b.log.Warn().Err(err).Msg("webhook: parse error")
		b.writeTwilioResponse(w, "Sorry, I couldn't understand that request.")
		return
	}

	from := twilio.StripWhatsAppPrefix(r.FormValue("From"))
	body := strings.TrimSpace(r.FormValue("Body"))
	if from == "" || body == "" {
		b.writeTwilioResponse(w, "I need a message to work with. Please try again.")
		return
	}
	if b.owner != "" && from != b.owner {
		b.log.Warn().Str("from", from).Msg("webhook: message from unknown sender")
		b.writeTwilioResponse(w, "Sorry, I don't recognise this number.")
		return
	}

	b.writeTwilioResponse(w, b.reply(r, from, body))
}

func (b *Bot) reply(r *http.Request, from, body string) string {
	ctx := r.Context()

	// a bare duration answers an earlier "snooze <n>"
	if id, ok := b.state.PopPendingSnooze(from); ok {
		if d, err := parseSnoozeDuration(body); err == nil {
			return b.snooze(r, id, d)
		}
	}

	cmd := parseCommand(body)
	switch cmd.kind {
	case commandList:
		return b.listReminders(r)
	case commandDone:
		if err := b.reminders.Complete(ctx, cmd.id); err != nil {
			return b.failure("complete", cmd.id, err)
		}
		return fmt.Sprintf("Nice! Reminder %d marked as done.", cmd.id)
	case commandSnooze:
		if cmd.duration == 0 {
			b.state.SetPendingSnooze(from, cmd.id)
			return fmt.Sprintf("How long should I snooze reminder %d? Try 30m, 2h or 1d.", cmd.id)
		}
		return b.snooze(r, cmd.id, cmd.duration)
	default:
		return helpResponse()
	}
}

func (b *Bot) snooze(r *http.Request, id uint, d time.Duration) string {
	rem, err := b.reminders.SnoozeFor(r.Context(), id, d)
	if err != nil {
		return b.failure("snooze", id, err)
	}
	return fmt.Sprintf("Snoozed %q until %s.", rem.Title, rem.RemindAt.In(b.loc).Format("Mon Jan 2 15:04"))
}

// listReminders returns a human-readable list of upcoming reminders.
func (b *Bot) listReminders(r *http.Request) string {
	pending, err := b.store.PendingReminders(r.Context())
	if err != nil {
		b.log.Error().Err(err).Msg("webhook: list reminders")
		return "Hmm, I couldn't load your reminders. Please try again later."
	}
	if len(pending) == 0 {
		return "You have no upcoming reminders."
	}

	var sb strings.Builder
	sb.WriteString("Here are your reminders:\n")
	for _, rem := range pending {
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n", rem.ID, rem.Title, rem.RemindAt.In(b.loc).Format("Jan 02 15:04")))
	}
	return sb.String()
}

func (b *Bot) failure(op string, id uint, err error) string {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Sprintf("I couldn't find reminder %d.", id)
	case errors.Is(err, reminders.ErrCompleted):
		return fmt.Sprintf("Reminder %d is already done.", id)
	case errors.Is(err, notify.ErrPermissionDenied):
		return "Notifications are not set up, so I can't reschedule that."
	}
	b.log.Error().Err(err).Str("op", op).Uint("reminder_id", id).Msg("webhook: reminder update failed")
	return "Something went wrong. Please try again."
}

func (b *Bot) writeTwilioResponse(w http.ResponseWriter, message string) {
	twiml := struct {
		XMLName xml.Name `xml:"Response"`
		Message string   `xml:"Message"`
	}{
		Message: message,
	}

	w.Header().Set("Content-Type", "application/xml")
	if err := xml.NewEncoder(w).Encode(twiml); err != nil {
		b.log.Error().Err(err).Msg("twilio response encode")
	}
}

func helpResponse() string {
	return "You can reply with:\n- \"list\" to see upcoming reminders\n- \"done 3\" to complete reminder 3\n- \"snooze 3 2h\" to push it back (m, h or d)"
}

type commandKind int

const (
	commandHelp commandKind = iota
	commandList
	commandDone
	commandSnooze
)

type command struct {
	kind     commandKind
	id       uint
	duration time.Duration
}

var (
	doneRegex   = regexp.MustCompile(`(?i)^(?:done|complete|completed)\s+#?(\d+)$`)
	snoozeRegex = regexp.MustCompile(`(?i)^snooze\s+#?(\d+)(?:\s+(?:for\s+)?(\S+))?$`)
)

func parseCommand(body string) command {
	text := strings.Join(strings.Fields(body), " ")
	lower := strings.ToLower(text)

	if lower == "list" || strings.Contains(lower, "list reminders") || strings.Contains(lower, "show reminders") {
		return command{kind: commandList}
	}
	if m := doneRegex.FindStringSubmatch(text); m != nil {
		if id, ok := parseID(m[1]); ok {
			return command{kind: commandDone, id: id}
		}
	}
	if m := snoozeRegex.FindStringSubmatch(text); m != nil {
		id, ok := parseID(m[1])
		if !ok {
			return command{kind: commandHelp}
		}
		cmd := command{kind: commandSnooze, id: id}
		if m[2] != "" {
			d, err := parseSnoozeDuration(m[2])
			if err != nil {
				return command{kind: commandHelp}
			}
			cmd.duration = d
		}
		return cmd
	}
	return command{kind: commandHelp}
}

func parseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// parseSnoozeDuration accepts Go durations plus a "d" suffix for days.
func parseSnoozeDuration(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "tomorrow" {
		return 24 * time.Hour, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

type conversationStore struct {
	mu    sync.Mutex
	state map[string]uint
}

func newConversationStore() *conversationStore {
	return &conversationStore{
		state: make(map[string]uint),
	}
}

func (c *conversationStore) SetPendingSnooze(sender string, reminderID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state[sender] = reminderID
}

func (c *conversationStore) PopPendingSnooze(sender string) (uint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.state[sender]
	if ok {
		delete(c.state, sender)
	}
	return id, ok
}
