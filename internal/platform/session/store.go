package session

import (
	"context"
	"fmt"
	"time"
)

// DefaultIdleTimeout is how long a session may go without activity.
const DefaultIdleTimeout = 15 * time.Minute

// State of a session as seen by the client.
type State string

const (
	StateAnonymous     State = "ANONYMOUS"
	StateAuthenticated State = "AUTHENTICATED"
)

// Store is the session of one user, identified by id, in a Repository.
// Every read goes to the repository so concurrent writers are always seen.
type Store struct {
	repo    Repository
	id      string
	timeout time.Duration
	now     func() time.Time
}

type StoreOption func(*Store)

// WithIdleTimeout overrides DefaultIdleTimeout.
func WithIdleTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(repo Repository, id string, opts ...StoreOption) *Store {
	s := &Store{
		repo:    repo,
		id:      id,
		timeout: DefaultIdleTimeout,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) ID() string { return s.id }

// IdleTimeout returns the configured idle threshold.
func (s *Store) IdleTimeout() time.Duration { return s.timeout }

// Load returns the stored bundle, or nil when there is none or it is
// unreadable.
func (s *Store) Load(ctx context.Context) (*Bundle, error) {
	return s.repo.Load(ctx, s.id)
}

// Save replaces the bundle (no merge) and records activity, so a freshly
// signed-in session is never born expired.
func (s *Store) Save(ctx context.Context, b *Bundle) error {
	if b == nil || b.Token == "" {
		return ErrNoToken
	}
	if b.IssuedAt.IsZero() {
		b.IssuedAt = s.now()
	}
	if err := s.repo.Save(ctx, s.id, b); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return s.Touch(ctx)
}

// Clear removes the bundle and the activity timestamp.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx, s.id); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Touch records user activity now.
func (s *Store) Touch(ctx context.Context) error {
	if err := s.repo.Touch(ctx, s.id, s.now()); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// IsExpired is true when no activity was ever recorded or the last one is
// older than the idle timeout.
func (s *Store) IsExpired(ctx context.Context) (bool, error) {
	last, ok, err := s.repo.LastActivity(ctx, s.id)
	if err != nil {
		return false, fmt.Errorf("read activity: %w", err)
	}
	if !ok {
		return true, nil
	}
	return s.now().Sub(last) > s.timeout, nil
}

// Token returns the current bearer token, or "" when signed out. It is
// read from the repository on every call.
func (s *Store) Token(ctx context.Context) (string, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	if b == nil {
		return "", nil
	}
	return b.Token, nil
}

// State reports whether a bundle is present.
func (s *Store) State(ctx context.Context) (State, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return StateAnonymous, err
	}
	if b == nil {
		return StateAnonymous, nil
	}
	return StateAuthenticated, nil
}

// Require returns the bundle or ErrNoSession.
func (s *Store) Require(ctx context.Context) (*Bundle, error) {
	b, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrNoSession
	}
	return b, nil
}

// Authenticated reports whether a bundle is present.
func (s *Store) Authenticated(ctx context.Context) (bool, error) {
	st, err := s.State(ctx)
	return st == StateAuthenticated, err
}
