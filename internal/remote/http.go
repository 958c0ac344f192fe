package remote

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pathakanu/myCircle/internal/model"
)

// HTTPMirror writes to a REST backend.
type HTTPMirror struct {
	client *resty.Client
}

// NewHTTP creates a mirror against baseURL.
func NewHTTP(baseURL string, timeout time.Duration) *HTTPMirror {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &HTTPMirror{client: c}
}

// PushProfile upserts the profile under the session user.
func (m *HTTPMirror) PushProfile(ctx context.Context, s Session, p model.Profile) error {
	resp, err := m.request(ctx, s).
		SetPathParam("id", strconv.FormatUint(uint64(p.ID), 10)).
		SetBody(p).
		Put("/profiles/{id}")
	return check(resp, err, "push profile")
}

// DeleteProfile removes the remote copy of a profile.
func (m *HTTPMirror) DeleteProfile(ctx context.Context, s Session, profileID uint) error {
	resp, err := m.request(ctx, s).
		SetPathParam("id", strconv.FormatUint(uint64(profileID), 10)).
		Delete("/profiles/{id}")
	return check(resp, err, "delete profile")
}

// PushFeedback stores a feedback entry.
func (m *HTTPMirror) PushFeedback(ctx context.Context, s Session, f model.Feedback) error {
	resp, err := m.request(ctx, s).
		SetBody(f).
		Post("/feedback")
	return check(resp, err, "push feedback")
}

func (m *HTTPMirror) request(ctx context.Context, s Session) *resty.Request {
	r := m.client.R().
		SetContext(ctx).
		SetHeader("X-User-ID", s.UserID)
	if s.Token != "" {
		r.SetAuthToken(s.Token)
	}
	return r
}

func check(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("remote %s: %w", op, err)
	}
	if resp.IsError() {
		return fmt.Errorf("remote %s: status %d: %s", op, resp.StatusCode(), resp.String())
	}
	return nil
}
