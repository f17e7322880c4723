package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(repo Repository, clock *fakeClock) *Store {
	return NewStore(repo, "sess-1", WithClock(clock.Now))
}

func TestStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	s := newTestStore(NewMemoryRepository(), clock)

	if err := s.Save(ctx, &Bundle{Token: "tok-1", Role: clinicmodels.RoleAdmin}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	b, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if b == nil || b.Token != "tok-1" || b.Role != clinicmodels.RoleAdmin {
		t.Fatalf("unexpected bundle: %+v", b)
	}
	if !b.IssuedAt.Equal(clock.t) {
		t.Errorf("expected IssuedAt to be stamped, got %v", b.IssuedAt)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	b, _ = s.Load(ctx)
	if b != nil {
		t.Errorf("expected no bundle after clear, got %+v", b)
	}
	expired, _ := s.IsExpired(ctx)
	if !expired {
		t.Error("expected cleared session to have no activity")
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(NewMemoryRepository(), &fakeClock{t: time.Now()})

	s.Save(ctx, &Bundle{Token: "old", Role: clinicmodels.RoleDoctor, DoctorID: 5})
	s.Save(ctx, &Bundle{Token: "new", Role: clinicmodels.RoleCustomer})

	b, _ := s.Load(ctx)
	if b.Token != "new" || b.DoctorID != 0 {
		t.Errorf("expected full replace, got %+v", b)
	}
}

func TestStore_SaveRejectsEmptyToken(t *testing.T) {
	s := newTestStore(NewMemoryRepository(), &fakeClock{t: time.Now()})
	if err := s.Save(context.Background(), &Bundle{}); !errors.Is(err, ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}
}

func TestStore_IsExpired(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	repo := NewMemoryRepository()
	s := newTestStore(repo, clock)

	expired, err := s.IsExpired(ctx)
	if err != nil {
		t.Fatalf("IsExpired() error: %v", err)
	}
	if !expired {
		t.Error("expected expired when no activity was ever recorded")
	}

	s.Save(ctx, &Bundle{Token: "t", Role: clinicmodels.RoleAdmin})
	if expired, _ := s.IsExpired(ctx); expired {
		t.Error("fresh login must not be expired")
	}

	clock.Advance(15 * time.Minute)
	if expired, _ := s.IsExpired(ctx); expired {
		t.Error("exactly at the threshold is not yet expired")
	}

	clock.Advance(time.Minute)
	if expired, _ := s.IsExpired(ctx); !expired {
		t.Error("expected expired after 16 idle minutes")
	}

	s.Touch(ctx)
	if expired, _ := s.IsExpired(ctx); expired {
		t.Error("touch should reset the idle timer")
	}
}

func TestStore_CustomIdleTimeout(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	s := NewStore(NewMemoryRepository(), "s", WithClock(clock.Now), WithIdleTimeout(time.Minute))
	s.Touch(ctx)
	clock.Advance(61 * time.Second)
	if expired, _ := s.IsExpired(ctx); !expired {
		t.Error("expected expiry after custom timeout")
	}
	if s.IdleTimeout() != time.Minute {
		t.Errorf("expected 1m idle timeout, got %v", s.IdleTimeout())
	}
}

func TestStore_MalformedBundleReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	repo.putRaw("sess-1", []byte(`{"token": broken`))
	s := newTestStore(repo, &fakeClock{t: time.Now()})

	b, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("expected no error for malformed bundle, got %v", err)
	}
	if b != nil {
		t.Errorf("expected nil bundle, got %+v", b)
	}
	tok, _ := s.Token(ctx)
	if tok != "" {
		t.Errorf("expected no token, got %q", tok)
	}
	state, _ := s.State(ctx)
	if state != StateAnonymous {
		t.Errorf("expected ANONYMOUS, got %s", state)
	}
}

func TestStore_TokenReadAtCallTime(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	s := newTestStore(repo, &fakeClock{t: time.Now()})
	other := NewStore(repo, "sess-1")

	s.Save(ctx, &Bundle{Token: "first", Role: clinicmodels.RoleAdmin})
	other.Save(ctx, &Bundle{Token: "second", Role: clinicmodels.RoleAdmin})

	tok, _ := s.Token(ctx)
	if tok != "second" {
		t.Errorf("expected token written by another writer, got %q", tok)
	}

	other.Clear(ctx)
	tok, _ = s.Token(ctx)
	if tok != "" {
		t.Errorf("expected empty token after external clear, got %q", tok)
	}
}

func TestStore_Require(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(NewMemoryRepository(), &fakeClock{t: time.Now()})
	if _, err := s.Require(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
	s.Save(ctx, &Bundle{Token: "t", Role: clinicmodels.RoleDoctor})
	state, _ := s.State(ctx)
	if state != StateAuthenticated {
		t.Errorf("expected AUTHENTICATED, got %s", state)
	}
}
