// Package store is the data-access layer over the embedded database.
//
// Storage errors are returned as gorm reports them, so callers can match
// gorm.ErrRecordNotFound directly. Profile and feedback writes are mirrored to
// the remote backend in the background when a session is present; mirror
// failures are logged and never reach the caller.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/pathakanu/myCircle/internal/remote"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Store wraps the database connection and the optional remote mirror.
type Store struct {
	db            *gorm.DB
	mirror        remote.Mirror
	session       remote.Session
	mirrorTimeout time.Duration
	log           zerolog.Logger
	inflight      sync.WaitGroup
}

// Option configures a Store.
type Option func(*Store)

// WithMirror enables remote mirroring for the given session.
func WithMirror(m remote.Mirror, session remote.Session) Option {
	return func(s *Store) {
		if m != nil {
			s.mirror = m
		}
		s.session = session
	}
}

// WithMirrorTimeout bounds each background mirror call.
func WithMirrorTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.mirrorTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a Store over an opened, migrated database.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:            db,
		mirror:        remote.Nop{},
		mirrorTimeout: 10 * time.Second,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Flush waits for background mirror calls to finish.
func (s *Store) Flush() {
	s.inflight.Wait()
}

// Close flushes pending mirror calls and closes the database.
func (s *Store) Close() error {
	s.Flush()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) mirrorAsync(op string, fn func(ctx context.Context, m remote.Mirror, session remote.Session) error) {
	if !s.session.Valid() {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.mirrorTimeout)
		defer cancel()
		if err := fn(ctx, s.mirror, s.session); err != nil {
			s.log.Warn().Err(err).Str("op", op).Msg("remote sync failed")
		}
	}()
}
