// Package reminders keeps stored reminders and scheduled notifications in step.
package reminders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pathakanu/myCircle/internal/model"
	"github.com/pathakanu/myCircle/internal/notify"
	"github.com/pathakanu/myCircle/internal/openai"
	"github.com/pathakanu/myCircle/internal/store"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// catchUpDelay is how soon after now a missed reminder goes out.
const catchUpDelay = time.Second

var (
	// ErrEmptyTitle is returned when a reminder has no title.
	ErrEmptyTitle = errors.New("reminder title is required")
	// ErrCompleted is returned when snoozing a completed reminder.
	ErrCompleted = errors.New("reminder is already completed")
)

// Notifier is the scheduling surface used by the service.
type Notifier interface {
	FireTime(at time.Time) (time.Time, error)
	Schedule(ctx context.Context, req notify.Request) (notify.Notification, error)
	Cancel(id string) error
	Pending(id string) bool
	List() []notify.Notification
}

// Service creates, snoozes, completes and deletes reminders.
type Service struct {
	store    *store.Store
	notifier Notifier
	writer   *openai.Client
	now      func() time.Time
	log      zerolog.Logger
}

// New creates a Service. writer may be nil.
func New(st *store.Store, n Notifier, writer *openai.Client, log zerolog.Logger) *Service {
	if writer == nil {
		writer = openai.New("")
	}
	return &Service{
		store:    st,
		notifier: n,
		writer:   writer,
		now:      time.Now,
		log:      log,
	}
}

// NewScheduled creates a Service together with the scheduler it drives. The
// scheduler drops notifications whose reminder was completed, deleted or
// rescheduled elsewhere, and clears the handle of delivered ones.
func NewScheduled(st *store.Store, d notify.Deliverer, writer *openai.Client, log zerolog.Logger, opts ...notify.Option) (*Service, *notify.Scheduler) {
	s := New(st, nil, writer, log)
	opts = append(opts, notify.WithDeliveryCheck(s.ShouldDeliver), notify.WithFiredHook(s.MarkFired))
	sched := notify.New(d, opts...)
	s.notifier = sched
	return s, sched
}

// Input holds the fields of a new reminder.
type Input struct {
	ProfileID   *uint
	Title       string
	Description string
	At          time.Time
}

// Create stores a reminder and schedules its notification. Nothing is stored
// when the time is rejected.
func (s *Service) Create(ctx context.Context, in Input) (*model.Reminder, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	fireAt, err := s.notifier.FireTime(in.At)
	if err != nil {
		return nil, err
	}

	var profile *model.Profile
	if in.ProfileID != nil {
		if profile, err = s.store.GetProfile(ctx, *in.ProfileID); err != nil {
			return nil, err
		}
	}

	r := &model.Reminder{
		ProfileID:   in.ProfileID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		RemindAt:    fireAt,
	}
	if _, err := s.store.SaveReminder(ctx, r); err != nil {
		return nil, err
	}

	n, err := s.schedule(ctx, r, profile)
	if err != nil {
		if derr := s.store.DeleteReminder(ctx, r.ID); derr != nil {
			s.log.Error().Err(derr).Uint("reminder_id", r.ID).Msg("reminders: rollback failed")
		}
		return nil, err
	}

	r.RemindAt = n.FireAt
	r.NotificationID = n.ID
	if _, err := s.store.SaveReminder(ctx, r); err != nil {
		_ = s.notifier.Cancel(n.ID)
		return nil, err
	}
	return r, nil
}

// Snooze moves a reminder to until and reschedules its notification.
func (s *Service) Snooze(ctx context.Context, id uint, until time.Time) (*model.Reminder, error) {
	r, err := s.store.GetReminder(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Completed {
		return nil, ErrCompleted
	}

	r.RemindAt = until
	profile := s.profileOf(ctx, r)
	n, err := s.schedule(ctx, r, profile)
	if err != nil {
		return nil, err
	}
	s.cancel(r.NotificationID)

	if err := s.store.SnoozeReminder(ctx, id, n.FireAt, n.ID); err != nil {
		_ = s.notifier.Cancel(n.ID)
		return nil, err
	}
	r.RemindAt = n.FireAt
	r.NotificationID = n.ID
	return r, nil
}

// SnoozeFor snoozes a reminder by d from now.
func (s *Service) SnoozeFor(ctx context.Context, id uint, d time.Duration) (*model.Reminder, error) {
	return s.Snooze(ctx, id, s.now().Add(d))
}

// Complete marks a reminder done and cancels its notification.
func (s *Service) Complete(ctx context.Context, id uint) error {
	r, err := s.store.GetReminder(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.CompleteReminder(ctx, id, s.now()); err != nil {
		return err
	}
	s.cancel(r.NotificationID)
	return nil
}

// Delete removes a reminder and cancels its notification.
func (s *Service) Delete(ctx context.Context, id uint) error {
	r, err := s.store.GetReminder(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteReminder(ctx, id); err != nil {
		return err
	}
	s.cancel(r.NotificationID)
	return nil
}

// DeleteProfile removes a profile with its dependent records and cancels the
// notifications of its reminders.
func (s *Service) DeleteProfile(ctx context.Context, profileID uint) error {
	owned, err := s.store.ListReminders(ctx, store.ReminderFilter{ProfileID: &profileID, IncludeCompleted: true})
	if err != nil {
		return err
	}
	if err := s.store.DeleteProfile(ctx, profileID); err != nil {
		return err
	}
	for _, r := range owned {
		s.cancel(r.NotificationID)
	}
	return nil
}

// Reconcile brings this process's scheduler in line with the stored
// reminders, which other processes may have changed. Notifications whose
// reminder is gone, completed or now carries another handle are cancelled.
// Every pending reminder whose handle is not live here is scheduled again;
// one that is already due goes out after the minimum lead. Reminders with an
// empty handle were delivered or cancelled and are skipped. Failures are
// logged per reminder. It returns how many were scheduled.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	for _, n := range s.notifier.List() {
		if n.ReminderID != 0 && !s.ShouldDeliver(ctx, n) {
			s.cancel(n.ID)
		}
	}

	pending, err := s.store.PendingReminders(ctx)
	if err != nil {
		return 0, err
	}

	scheduled := 0
	for i := range pending {
		r := &pending[i]
		if r.NotificationID == "" || s.notifier.Pending(r.NotificationID) {
			continue
		}

		n, err := s.scheduleAt(ctx, r, s.profileOf(ctx, r), true)
		if err != nil {
			s.log.Error().Err(err).Uint("reminder_id", r.ID).Msg("reminders: reconcile schedule")
			continue
		}
		if err := s.store.SetReminderNotification(ctx, r.ID, n.ID); err != nil {
			_ = s.notifier.Cancel(n.ID)
			s.log.Error().Err(err).Uint("reminder_id", r.ID).Msg("reminders: reconcile store handle")
			continue
		}
		scheduled++
	}
	if scheduled > 0 {
		s.log.Info().Int("count", scheduled).Msg("reminders: scheduled pending reminders")
	}
	return scheduled, nil
}

// ShouldDeliver reports whether n is still the live notification of its
// reminder. It is false once the reminder was deleted, completed or given a
// new handle, possibly by another process.
func (s *Service) ShouldDeliver(ctx context.Context, n notify.Notification) bool {
	if n.ReminderID == 0 {
		return true
	}
	r, err := s.store.GetReminder(ctx, n.ReminderID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false
	case err != nil:
		s.log.Warn().Err(err).Uint("reminder_id", n.ReminderID).Msg("reminders: delivery check, sending anyway")
		return true
	}
	return !r.Completed && r.NotificationID == n.ID
}

// MarkFired clears the handle of a delivered notification's reminder so no
// process delivers it again.
func (s *Service) MarkFired(n notify.Notification) {
	if n.ReminderID == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.ClearReminderNotification(ctx, n.ReminderID, n.ID); err != nil {
		s.log.Error().Err(err).Uint("reminder_id", n.ReminderID).Msg("reminders: mark fired")
	}
}

// CancelNotification cancels a scheduled notification and clears the handle
// on its reminder, so Reconcile does not bring it back.
func (s *Service) CancelNotification(ctx context.Context, id string) error {
	var reminderID uint
	found := false
	for _, n := range s.notifier.List() {
		if n.ID == id {
			reminderID, found = n.ReminderID, true
			break
		}
	}
	if !found {
		return notify.ErrNotFound
	}
	if err := s.notifier.Cancel(id); err != nil {
		return err
	}
	if reminderID == 0 {
		return nil
	}
	if err := s.store.SetReminderNotification(ctx, reminderID, ""); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// CancelAllNotifications cancels every scheduled notification and returns how
// many were cancelled.
func (s *Service) CancelAllNotifications(ctx context.Context) (int, error) {
	cancelled := 0
	for _, n := range s.notifier.List() {
		err := s.CancelNotification(ctx, n.ID)
		switch {
		case errors.Is(err, notify.ErrNotFound):
			// fired in the meantime
		case err != nil:
			return cancelled, err
		default:
			cancelled++
		}
	}
	return cancelled, nil
}

func (s *Service) schedule(ctx context.Context, r *model.Reminder, profile *model.Profile) (notify.Notification, error) {
	return s.scheduleAt(ctx, r, profile, false)
}

// scheduleAt schedules r at its RemindAt. With catchUp, a time closer than
// catchUpDelay, or already past, is moved to now + catchUpDelay.
func (s *Service) scheduleAt(ctx context.Context, r *model.Reminder, profile *model.Profile, catchUp bool) (notify.Notification, error) {
	rc := openai.ReminderContext{Title: r.Title, Description: r.Description}
	if profile != nil {
		rc.ProfileName = profile.Name
		rc.Likes = profile.Likes
	}

	body, err := s.writer.ComposeReminder(ctx, rc)
	if err != nil {
		s.log.Warn().Err(err).Uint("reminder_id", r.ID).Msg("reminders: compose message")
		body = r.Description
	}

	at := r.RemindAt
	if due := s.now().Add(catchUpDelay); catchUp && at.Before(due) {
		at = due
	}
	return s.notifier.Schedule(ctx, notify.Request{
		ReminderID: r.ID,
		Title:      r.Title,
		Body:       body,
		At:         at,
	})
}

func (s *Service) profileOf(ctx context.Context, r *model.Reminder) *model.Profile {
	if r.ProfileID == nil {
		return nil
	}
	p, err := s.store.GetProfile(ctx, *r.ProfileID)
	if err != nil {
		s.log.Debug().Err(err).Uint("profile_id", *r.ProfileID).Msg("reminders: profile lookup")
		return nil
	}
	return p
}

func (s *Service) cancel(notificationID string) {
	if notificationID == "" {
		return
	}
	if err := s.notifier.Cancel(notificationID); err != nil && !errors.Is(err, notify.ErrNotFound) {
		s.log.Warn().Err(err).Str("notification_id", notificationID).Msg("reminders: cancel notification")
	}
}
