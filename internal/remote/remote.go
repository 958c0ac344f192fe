// Package remote mirrors local writes to a remote backend for signed-in users.
package remote

import (
	"context"
	"strings"

	"github.com/pathakanu/myCircle/internal/model"
)

// Session identifies the signed-in remote user.
type Session struct {
	UserID string
	Token  string
}

// Valid reports whether a user is signed in.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.UserID) != ""
}

// Mirror copies profile and feedback writes to a remote backend.
type Mirror interface {
	PushProfile(ctx context.Context, s Session, p model.Profile) error
	DeleteProfile(ctx context.Context, s Session, profileID uint) error
	PushFeedback(ctx context.Context, s Session, f model.Feedback) error
}

// Nop discards every write.
type Nop struct{}

func (Nop) PushProfile(context.Context, Session, model.Profile) error   { return nil }
func (Nop) DeleteProfile(context.Context, Session, uint) error          { return nil }
func (Nop) PushFeedback(context.Context, Session, model.Feedback) error { return nil }
