package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCheckInterval is how often the monitor looks for idle sessions.
const DefaultCheckInterval = 30 * time.Second

// Activity kinds that count as user interaction.
const (
	ActivityPointer = "mousemove"
	ActivityKey     = "keydown"
	ActivityClick   = "click"
	ActivityRequest = "request"
)

// ValidActivity reports whether kind is a recognized interaction.
func ValidActivity(kind string) bool {
	switch kind {
	case ActivityPointer, ActivityKey, ActivityClick, ActivityRequest:
		return true
	}
	return false
}

// ExpireFunc is called after an idle session has been cleared.
type ExpireFunc func(ctx context.Context, id string)

// Monitor periodically clears sessions that have been idle longer than the
// idle timeout.
type Monitor struct {
	repo     Repository
	logger   zerolog.Logger
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	onExpire ExpireFunc
}

type MonitorOption func(*Monitor)

func WithCheckInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

func WithMonitorIdleTimeout(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.timeout = d
		}
	}
}

func WithMonitorClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) { m.now = now }
}

// OnExpire registers the callback run for each expired session.
func OnExpire(fn ExpireFunc) MonitorOption {
	return func(m *Monitor) { m.onExpire = fn }
}

func NewMonitor(repo Repository, logger zerolog.Logger, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		repo:     repo,
		logger:   logger,
		interval: DefaultCheckInterval,
		timeout:  DefaultIdleTimeout,
		now:      time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Monitor) store(id string) *Store {
	return NewStore(m.repo, id, WithIdleTimeout(m.timeout), WithClock(m.now))
}

// Activity records an interaction for id. Signed-out sessions have no idle
// timer, so it returns ErrNoSession for them.
func (m *Monitor) Activity(ctx context.Context, id string) error {
	st := m.store(id)
	ok, err := st.Authenticated(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSession
	}
	return st.Touch(ctx)
}

// Check clears every expired session once and returns their ids. A failure
// on one session is logged and does not stop the others.
func (m *Monitor) Check(ctx context.Context) ([]string, error) {
	ids, err := m.repo.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var expired []string
	for _, id := range ids {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		st := m.store(id)
		isExpired, err := st.IsExpired(ctx)
		if err != nil {
			m.logger.Warn().Err(err).Str("session_id", id).Msg("session expiry check failed")
			continue
		}
		if !isExpired {
			continue
		}
		if err := st.Clear(ctx); err != nil {
			m.logger.Error().Err(err).Str("session_id", id).Msg("failed to clear expired session")
			continue
		}
		m.logger.Info().Str("session_id", id).Dur("idle_timeout", m.timeout).Msg("session expired")
		expired = append(expired, id)
		if m.onExpire != nil {
			m.onExpire(ctx, id)
		}
	}
	return expired, nil
}

// Run checks on every tick until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info().
		Dur("interval", m.interval).
		Dur("idle_timeout", m.timeout).
		Msg("session monitor started")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("session monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := m.Check(ctx); err != nil && ctx.Err() == nil {
				m.logger.Error().Err(err).Msg("session monitor check failed")
			}
		}
	}
}
