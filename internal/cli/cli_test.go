package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pathakanu/myCircle/internal/bot"
	"github.com/pathakanu/myCircle/internal/config"
	"github.com/pathakanu/myCircle/internal/notify"
	"github.com/pathakanu/myCircle/internal/reminders"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "circle.db"))
	t.Setenv("ALLOW_MEMORY_FALLBACK", "false")
	t.Setenv("LOCAL_TIMEZONE", "UTC")
	t.Setenv("NOTIFY_CHANNEL", "console")
	t.Setenv("NOTIFY_MIN_LEAD", "5s")
	t.Setenv("REMOTE_MODE", "none")
	t.Setenv("SESSION_USER_ID", "")
	t.Setenv("SESSION_TOKEN", "")
	t.Setenv("OPENAI_API_KEY", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "args=%v", args)
	return out
}

func TestProfileScreens(t *testing.T) {
	setTestEnv(t)

	out := mustRun(t, "profile", "create", "--name", "Maya Chen", "--relationship", "Friend",
		"--tags", "close:#f00, gym", "--likes", "chai, hiking", "--social", "instagram:@maya", "--notes", "Moved to Lisbon")
	assert.Contains(t, out, "Saved profile #1 (Maya Chen)")
	mustRun(t, "profile", "create", "--name", "ali", "--relationship", "coworker")

	out = mustRun(t, "profile", "list")
	assert.Regexp(t, `(?s)ali.*Maya Chen`, out, "names sort case-insensitively")

	out = mustRun(t, "profile", "list", "--relationship", "friend")
	assert.Contains(t, out, "Maya Chen")
	assert.NotContains(t, out, "ali")

	out = mustRun(t, "profile", "list", "-q", "gym")
	assert.Contains(t, out, "Maya Chen")

	mustRun(t, "profile", "edit", "1", "--job", "Architect", "--kids", "Leo")
	out = mustRun(t, "profile", "show", "1")
	assert.Contains(t, out, "#1 Maya Chen")
	assert.Contains(t, out, "Architect")
	assert.Contains(t, out, "close (#f00), gym")
	assert.Contains(t, out, "chai, hiking")
	assert.Contains(t, out, "Leo")
	assert.Contains(t, out, "instagram: @maya")

	out = mustRun(t, "profile", "delete", "1")
	assert.Contains(t, out, "Deleted profile #1")

	_, err := run(t, "profile", "show", "1")
	require.Error(t, err)
	assert.Equal(t, "Not found.", AlertText(err))
}

func TestProfileValidation(t *testing.T) {
	setTestEnv(t)

	_, err := run(t, "profile", "create", "--relationship", "friend")
	require.Error(t, err)
	assert.Equal(t, "name is required", AlertText(err))

	_, err = run(t, "profile", "create", "--name", "X", "--relationship", "nemesis")
	require.Error(t, err)
	assert.Contains(t, AlertText(err), "relationship must be")

	_, err = run(t, "profile", "show", "abc")
	require.Error(t, err)
	assert.Contains(t, AlertText(err), "not a valid id")
}

func TestReminderScreens(t *testing.T) {
	setTestEnv(t)

	mustRun(t, "profile", "create", "--name", "Maya")
	out := mustRun(t, "reminder", "add", "-p", "1", "-t", "Call Maya", "--in", "2h")
	assert.Contains(t, out, "Reminder #1 set for")

	out = mustRun(t, "reminder", "list")
	assert.Contains(t, out, "Call Maya")
	assert.Contains(t, out, "pending")

	out = mustRun(t, "reminder", "snooze", "1", "--for", "3h")
	assert.Contains(t, out, "Reminder #1 snoozed until")

	mustRun(t, "reminder", "complete", "1")
	out = mustRun(t, "reminder", "list")
	assert.Contains(t, out, "No reminders.")
	out = mustRun(t, "reminder", "list", "--all")
	assert.Contains(t, out, "done")

	_, err := run(t, "reminder", "snooze", "1")
	require.ErrorIs(t, err, reminders.ErrCompleted)

	mustRun(t, "reminder", "delete", "1")
	out = mustRun(t, "reminder", "list", "--all")
	assert.Contains(t, out, "No reminders.")
}

func TestReminderRejectsPastTime(t *testing.T) {
	setTestEnv(t)

	_, err := run(t, "reminder", "add", "-t", "too late", "--at", "2001-01-01 09:00")
	require.ErrorIs(t, err, notify.ErrInPast)
	assert.Contains(t, AlertText(err), "already passed")

	out := mustRun(t, "reminder", "list", "--all")
	assert.Contains(t, out, "No reminders.")

	_, err = run(t, "reminder", "add", "-t", "when?")
	require.Error(t, err)
	assert.Contains(t, AlertText(err), "--at or --in")
}

func TestInteractionAndEventScreens(t *testing.T) {
	setTestEnv(t)

	mustRun(t, "profile", "create", "--name", "Lena")
	mustRun(t, "interaction", "add", "-p", "1", "-k", "call", "-n", "Talked about the move", "--at", "2026-01-10 18:00")
	mustRun(t, "event", "add", "-p", "1", "-t", "Moved to Berlin", "--date", "2026-02-01")

	out := mustRun(t, "interaction", "list", "-p", "1")
	assert.Contains(t, out, "2026-01-10 18:00")
	assert.Contains(t, out, "Talked about the move")

	out = mustRun(t, "event", "list", "-p", "1")
	assert.Contains(t, out, "2026-02-01  Moved to Berlin")

	_, err := run(t, "interaction", "add", "-p", "1", "-k", "telepathy")
	require.Error(t, err)
	assert.Contains(t, AlertText(err), "kind must be")

	_, err = run(t, "event", "add", "-p", "9", "-t", "Ghost")
	require.Error(t, err)
	assert.Equal(t, "Not found.", AlertText(err))
}

func TestFeedbackScreens(t *testing.T) {
	setTestEnv(t)

	out := mustRun(t, "feedback", "send", "-m", "Dark mode please", "-c", "idea")
	assert.Contains(t, out, "Feedback #1 received")

	out = mustRun(t, "feedback", "list", "-s", "new")
	assert.Contains(t, out, "[new] Dark mode please (idea)")

	mustRun(t, "feedback", "status", "1", "resolved")
	out = mustRun(t, "feedback", "list", "-s", "new")
	assert.Contains(t, out, "No feedback.")

	_, err := run(t, "feedback", "status", "1", "maybe")
	require.Error(t, err)
	assert.Contains(t, AlertText(err), "status must be")
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	setTestEnv(t)
	cfg, err := config.Load()
	require.NoError(t, err)
	a, err := newApp(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestDaemonNotificationEndpoints(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	r, err := a.reminders.Create(ctx, reminders.Input{Title: "Call Maya", At: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	_, err = a.reminders.Create(ctx, reminders.Input{Title: "Gym", At: time.Now().Add(2 * time.Hour)})
	require.NoError(t, err)

	srv := httptest.NewServer(newRouter(a, bot.New(a.store, a.reminders, "", time.UTC, zerolog.Nop())))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "granted", health["permission"])

	out := mustRun(t, "notifications", "list", "--daemon-url", srv.URL)
	assert.Regexp(t, `(?s)Call Maya.*Gym`, out)

	out = mustRun(t, "notifications", "cancel", r.NotificationID, "--daemon-url", srv.URL)
	assert.Contains(t, out, "Cancelled notification")
	assert.False(t, a.scheduler.Pending(r.NotificationID))

	_, err = run(t, "notifications", "cancel", r.NotificationID, "--daemon-url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, AlertText(err), "No scheduled notification")

	out = mustRun(t, "notifications", "cancel-all", "--daemon-url", srv.URL)
	assert.Contains(t, out, "Cancelled 1 notifications")
	assert.Empty(t, a.scheduler.List())
}

func TestNotificationsWithoutDaemon(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := run(t, "notifications", "list", "--daemon-url", srv.URL)
	require.Error(t, err)
	assert.Equal(t, GenericAlert, AlertText(err))
}

func TestExecuteExplainsCommandLineMistakes(t *testing.T) {
	setTestEnv(t)

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"profile", "show"}, "accepts 1 arg(s), received 0"},
		{[]string{"reminder", "list", "--bogus"}, "unknown flag: --bogus"},
		{[]string{"reminder", "add", "-t", "x", "--at", "10:00", "--in", "1h"}, "[at in]"},
		{[]string{"frobnicate"}, `unknown command "frobnicate"`},
		{[]string{"profile", "show", "99"}, "Not found."},
	}
	for _, tc := range cases {
		var out, errOut bytes.Buffer
		code := Execute(context.Background(), tc.args, &out, &errOut)
		assert.Equal(t, 1, code, "args=%v", tc.args)
		assert.Contains(t, errOut.String(), tc.want, "args=%v", tc.args)
		assert.NotContains(t, errOut.String(), GenericAlert, "args=%v", tc.args)
	}
}

func TestExecuteExplainsConfigMistakes(t *testing.T) {
	setTestEnv(t)
	t.Setenv("REMOTE_MODE", "carrier-pigeon")

	var out, errOut bytes.Buffer
	code := Execute(context.Background(), []string{"profile", "list"}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), `unsupported REMOTE_MODE "carrier-pigeon"`)
}

func TestAlertTextIsGenericForUnknownErrors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, GenericAlert, AlertText(errors.New("disk I/O error")))
	assert.Equal(t, "bad", AlertText(inputErrorf("bad")))
}

func TestParseWhen(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	got, err := parseWhen("2026-05-02 09:30", time.UTC, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC), got)

	got, err = parseWhen("17:45", time.UTC, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC), got)

	_, err = parseWhen("next tuesday", time.UTC, now)
	require.Error(t, err)
}

func TestParseTagsAndSocial(t *testing.T) {
	t.Parallel()

	tags := parseTags("close:#f00, , gym")
	require.Len(t, tags, 2)
	assert.Equal(t, "close", tags[0].Name)
	assert.Equal(t, "#f00", tags[0].Color)
	assert.Equal(t, "gym", tags[1].Name)

	social := parseSocial("instagram:@maya, twitter:@m")
	require.Len(t, social, 2)
	assert.Equal(t, "twitter", social[1].Platform)
	assert.Equal(t, "@m", social[1].Handle)
}
