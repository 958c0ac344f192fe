package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pathakanu/myCircle/internal/database"
	"github.com/pathakanu/myCircle/internal/model"
	"github.com/pathakanu/myCircle/internal/notify"
	"github.com/pathakanu/myCircle/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type deniedDeliverer struct{ notify.Console }

func (deniedDeliverer) Authorize(context.Context) error { return errors.New("denied") }

func newTestService(t *testing.T, d notify.Deliverer) (*Service, *store.Store, *notify.Scheduler) {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", name, time.Now().UnixNano())
	db, err := database.Open(dsn, zerolog.Nop())
	require.NoError(t, err)

	st := store.New(db)
	if d == nil {
		d = notify.Console{Log: zerolog.Nop()}
	}
	sched := notify.New(d, notify.WithClock(func() time.Time { return now }))
	svc := New(st, sched, nil, zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc, st, sched
}

func TestCreateSchedulesAndStoresHandle(t *testing.T) {
	t.Parallel()
	svc, st, sched := newTestService(t, nil)
	ctx := context.Background()

	pid, err := st.SaveProfile(ctx, &model.Profile{Name: "Maya", Likes: model.StringList{"chai"}})
	require.NoError(t, err)

	r, err := svc.Create(ctx, Input{ProfileID: &pid, Title: " Call Maya ", At: now.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "Call Maya", r.Title)
	assert.NotEmpty(t, r.NotificationID)
	assert.True(t, sched.Pending(r.NotificationID))

	list := sched.List()
	require.Len(t, list, 1)
	assert.Equal(t, r.ID, list[0].ReminderID)
	assert.Equal(t, "Call Maya (Maya)", list[0].Body)

	stored, err := st.GetReminder(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.NotificationID, stored.NotificationID)
	assert.True(t, stored.RemindAt.Equal(now.Add(time.Hour)))
}

func TestCreatePadsNearTime(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t, nil)

	r, err := svc.Create(context.Background(), Input{Title: "now-ish", At: now.Add(time.Second)})
	require.NoError(t, err)
	assert.True(t, r.RemindAt.Equal(now.Add(notify.DefaultMinLead)), "remind_at=%s", r.RemindAt)
}

func TestCreateRejectsPastAndStoresNothing(t *testing.T) {
	t.Parallel()
	svc, st, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Title: "too late", At: now.Add(-time.Minute)})
	require.ErrorIs(t, err, notify.ErrInPast)

	all, err := st.ListReminders(ctx, store.ReminderFilter{IncludeCompleted: true})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateWithoutPermissionRollsBack(t *testing.T) {
	t.Parallel()
	svc, st, _ := newTestService(t, deniedDeliverer{})
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Title: "call", At: now.Add(time.Hour)})
	require.ErrorIs(t, err, notify.ErrPermissionDenied)

	all, _ := st.ListReminders(ctx, store.ReminderFilter{IncludeCompleted: true})
	assert.Empty(t, all)
}

func TestCreateValidatesInput(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Title: "  ", At: now.Add(time.Hour)})
	require.ErrorIs(t, err, ErrEmptyTitle)

	missing := uint(77)
	_, err = svc.Create(ctx, Input{ProfileID: &missing, Title: "call", At: now.Add(time.Hour)})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSnoozeReschedules(t *testing.T) {
	t.Parallel()
	svc, st, sched := newTestService(t, nil)
	ctx := context.Background()

	r, err := svc.Create(ctx, Input{Title: "call", At: now.Add(time.Hour)})
	require.NoError(t, err)
	old := r.NotificationID

	snoozed, err := svc.SnoozeFor(ctx, r.ID, 3*time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, old, snoozed.NotificationID)
	assert.False(t, sched.Pending(old))
	assert.True(t, sched.Pending(snoozed.NotificationID))

	stored, _ := st.GetReminder(ctx, r.ID)
	assert.True(t, stored.RemindAt.Equal(now.Add(3*time.Hour)))
	assert.Equal(t, snoozed.NotificationID, stored.NotificationID)

	_, err = svc.Snooze(ctx, r.ID, now.Add(-time.Hour))
	require.ErrorIs(t, err, notify.ErrInPast)
	assert.True(t, sched.Pending(snoozed.NotificationID), "failed snooze must keep the live notification")
}

func TestCompleteCancelsNotification(t *testing.T) {
	t.Parallel()
	svc, st, sched := newTestService(t, nil)
	ctx := context.Background()

	r, err := svc.Create(ctx, Input{Title: "call", At: now.Add(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, svc.Complete(ctx, r.ID))
	assert.Empty(t, sched.List())

	stored, _ := st.GetReminder(ctx, r.ID)
	assert.True(t, stored.Completed)

	_, err = svc.SnoozeFor(ctx, r.ID, time.Hour)
	require.ErrorIs(t, err, ErrCompleted)
}

func TestDeleteCancelsNotification(t *testing.T) {
	t.Parallel()
	svc, st, sched := newTestService(t, nil)
	ctx := context.Background()

	r, err := svc.Create(ctx, Input{Title: "call", At: now.Add(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, r.ID))
	assert.Empty(t, sched.List())
	_, err = st.GetReminder(ctx, r.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteProfileCancelsItsNotifications(t *testing.T) {
	t.Parallel()
	svc, st, sched := newTestService(t, nil)
	ctx := context.Background()

	pid, _ := st.SaveProfile(ctx, &model.Profile{Name: "Lena"})
	_, err := svc.Create(ctx, Input{ProfileID: &pid, Title: "lunch", At: now.Add(time.Hour)})
	require.NoError(t, err)
	other, err := svc.Create(ctx, Input{Title: "gym", At: now.Add(time.Hour)})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProfile(ctx, pid))

	list := sched.List()
	require.Len(t, list, 1)
	assert.Equal(t, other.NotificationID, list[0].ID)
}

func TestReconcileSchedulesMissingNotifications(t *testing.T) {
	t.Parallel()
	svc, st, sched := newTestService(t, nil)
	ctx := context.Background()

	// written by another process: stored but not scheduled here
	future, _ := st.SaveReminder(ctx, &model.Reminder{Title: "future", RemindAt: now.Add(time.Hour), NotificationID: "stale"})
	missed, _ := st.SaveReminder(ctx, &model.Reminder{Title: "missed", RemindAt: now.Add(-time.Hour), NotificationID: "stale-2"})
	_, _ = st.SaveReminder(ctx, &model.Reminder{Title: "delivered", RemindAt: now.Add(-time.Hour)})
	_, _ = st.SaveReminder(ctx, &model.Reminder{Title: "done", RemindAt: now.Add(time.Hour), Completed: true, NotificationID: "stale-3"})

	n, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list := sched.List()
	require.Len(t, list, 2)
	assert.Equal(t, missed, list[0].ReminderID)
	assert.Equal(t, now.Add(notify.DefaultMinLead), list[0].FireAt, "missed reminders go out right away")
	assert.Equal(t, future, list[1].ReminderID)

	stored, _ := st.GetReminder(ctx, future)
	assert.Equal(t, list[1].ID, stored.NotificationID)

	n, err = svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "already scheduled reminders are left alone")
}

type failingNotifier struct {
	*notify.Scheduler
	failFor uint
}

func (f failingNotifier) Schedule(ctx context.Context, req notify.Request) (notify.Notification, error) {
	if req.ReminderID == f.failFor {
		return notify.Notification{}, errors.New("scheduler unavailable")
	}
	return f.Scheduler.Schedule(ctx, req)
}

func TestReconcileContinuesPastFailures(t *testing.T) {
	t.Parallel()
	svc, st, sched := newTestService(t, nil)
	ctx := context.Background()

	first, _ := st.SaveReminder(ctx, &model.Reminder{Title: "a", RemindAt: now.Add(time.Hour), NotificationID: "x"})
	second, _ := st.SaveReminder(ctx, &model.Reminder{Title: "b", RemindAt: now.Add(2 * time.Hour), NotificationID: "y"})
	third, _ := st.SaveReminder(ctx, &model.Reminder{Title: "c", RemindAt: now.Add(3 * time.Hour), NotificationID: "z"})
	svc.notifier = failingNotifier{Scheduler: sched, failFor: first}

	n, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list := sched.List()
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ReminderID)
	assert.Equal(t, third, list[1].ReminderID)
}

func TestCancelNotificationStaysCancelled(t *testing.T) {
	t.Parallel()
	svc, st, sched := newTestService(t, nil)
	ctx := context.Background()

	r, err := svc.Create(ctx, Input{Title: "call", At: now.Add(time.Hour)})
	require.NoError(t, err)
	other, err := svc.Create(ctx, Input{Title: "gym", At: now.Add(2 * time.Hour)})
	require.NoError(t, err)

	require.NoError(t, svc.CancelNotification(ctx, r.NotificationID))
	require.ErrorIs(t, svc.CancelNotification(ctx, r.NotificationID), notify.ErrNotFound)

	stored, _ := st.GetReminder(ctx, r.ID)
	assert.Empty(t, stored.NotificationID)

	n, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, sched.Pending(other.NotificationID))

	cancelled, err := svc.CancelAllNotifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)
	assert.Empty(t, sched.List())
}
