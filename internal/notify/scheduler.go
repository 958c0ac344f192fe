// Package notify schedules one-shot reminder notifications.
package notify

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultMinLead is the minimum distance between now and a fire time.
const DefaultMinLead = 5 * time.Second

var (
	// ErrPermissionDenied is returned when the delivery channel refused permission.
	ErrPermissionDenied = errors.New("notification permission not granted")
	// ErrInPast is returned when the requested time is before now.
	ErrInPast = errors.New("notification time is in the past")
	// ErrNotFound is returned when cancelling an unknown notification.
	ErrNotFound = errors.New("notification not found")
)

// Permission is the state of the delivery permission.
type Permission int

const (
	PermissionUndetermined Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "undetermined"
	}
}

// Request describes a notification to schedule.
type Request struct {
	ReminderID uint
	Title      string
	Body       string
	At         time.Time
}

// Notification is a scheduled notification.
type Notification struct {
	ID         string
	ReminderID uint
	Title      string
	Body       string
	FireAt     time.Time
}

type entry struct {
	n      Notification
	cronID cron.EntryID
}

// Scheduler keeps pending notifications on a cron loop and hands them to a
// Deliverer when they fire.
type Scheduler struct {
	cron      *cron.Cron
	deliverer Deliverer
	minLead   time.Duration
	now       func() time.Time
	log       zerolog.Logger
	check     func(context.Context, Notification) bool
	onFire    func(Notification)

	mu         sync.Mutex
	permission Permission
	pending    map[string]entry
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithMinLead sets the minimum lead time.
func WithMinLead(d time.Duration) Option {
	return func(s *Scheduler) { s.minLead = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLocation sets the timezone of periodic jobs.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.cron = cron.New(cron.WithLocation(loc))
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// WithDeliveryCheck registers fn to run just before delivery. A notification
// is dropped when fn returns false.
func WithDeliveryCheck(fn func(ctx context.Context, n Notification) bool) Option {
	return func(s *Scheduler) { s.check = fn }
}

// WithFiredHook registers fn to run after each delivery attempt.
func WithFiredHook(fn func(Notification)) Option {
	return func(s *Scheduler) { s.onFire = fn }
}

// New creates a Scheduler delivering through d.
func New(d Deliverer, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:      cron.New(),
		deliverer: d,
		minLead:   DefaultMinLead,
		now:       time.Now,
		log:       zerolog.Nop(),
		pending:   make(map[string]entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs the scheduler loop in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler loop and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Every registers a periodic job using a cron spec such as "@every 1m".
func (s *Scheduler) Every(spec string, fn func()) error {
	_, err := s.cron.AddFunc(spec, fn)
	return err
}

// RequestPermission asks the deliverer for permission and caches the answer.
func (s *Scheduler) RequestPermission(ctx context.Context) Permission {
	err := s.deliverer.Authorize(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Warn().Err(err).Str("channel", s.deliverer.Name()).Msg("notify: permission denied")
		s.permission = PermissionDenied
	} else {
		s.permission = PermissionGranted
	}
	return s.permission
}

// PermissionStatus returns the cached permission without asking.
func (s *Scheduler) PermissionStatus() Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission
}

// FireTime validates at and applies the minimum lead time.
func (s *Scheduler) FireTime(at time.Time) (time.Time, error) {
	now := s.now()
	if at.Before(now) {
		return time.Time{}, ErrInPast
	}
	if at.Sub(now) < s.minLead {
		return now.Add(s.minLead), nil
	}
	return at, nil
}

// Schedule registers a one-shot notification.
func (s *Scheduler) Schedule(ctx context.Context, req Request) (Notification, error) {
	if s.PermissionStatus() == PermissionUndetermined {
		s.RequestPermission(ctx)
	}
	if s.PermissionStatus() != PermissionGranted {
		return Notification{}, ErrPermissionDenied
	}

	fireAt, err := s.FireTime(req.At)
	if err != nil {
		return Notification{}, err
	}

	n := Notification{
		ID:         uuid.NewString(),
		ReminderID: req.ReminderID,
		Title:      req.Title,
		Body:       req.Body,
		FireAt:     fireAt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.cron.Schedule(&oneShot{at: fireAt}, cron.FuncJob(func() { s.fire(n.ID) }))
	s.pending[n.ID] = entry{n: n, cronID: id}

	s.log.Debug().Str("notification_id", n.ID).Uint("reminder_id", n.ReminderID).Time("fire_at", fireAt).Msg("notify: scheduled")
	return n, nil
}

// Cancel removes a pending notification.
func (s *Scheduler) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.pending[id]
	if !ok {
		return ErrNotFound
	}
	s.cron.Remove(e.cronID)
	delete(s.pending, id)
	return nil
}

// CancelAll removes every pending notification.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.pending)
	for id, e := range s.pending {
		s.cron.Remove(e.cronID)
		delete(s.pending, id)
	}
	return n
}

// List returns pending notifications ordered by fire time.
func (s *Scheduler) List() []Notification {
	s.mu.Lock()
	out := make([]Notification, 0, len(s.pending))
	for _, e := range s.pending {
		out = append(out, e.n)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out
}

// Pending reports whether a notification is still scheduled.
func (s *Scheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[id]
	return ok
}

// fire delivers a due notification. It stays listed as pending until the
// delivery attempt and the fired hook are done.
func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	e, ok := s.pending[id]
	if ok {
		s.cron.Remove(e.cronID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	defer func() {
		s.mu.Lock()
		if cur, live := s.pending[id]; live && cur.cronID == e.cronID {
			delete(s.pending, id)
		}
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if s.check != nil && !s.check(ctx, e.n) {
		s.log.Debug().Str("notification_id", id).Uint("reminder_id", e.n.ReminderID).Msg("notify: dropped stale notification")
		return
	}
	if err := s.deliverer.Deliver(ctx, e.n); err != nil {
		s.log.Error().Err(err).Str("notification_id", id).Msg("notify: delivery failed")
	}
	if s.onFire != nil {
		s.onFire(e.n)
	}
}

// oneShot fires once at a fixed time. Next is only called from the cron loop.
type oneShot struct {
	at    time.Time
	spent bool
}

func (o *oneShot) Next(t time.Time) time.Time {
	if t.Before(o.at) {
		o.spent = true
		return o.at
	}
	if o.spent {
		return time.Time{}
	}
	// already due when the loop first looked at it
	o.spent = true
	return t
}
