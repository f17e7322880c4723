// Package auth binds each browser to a session bundle through a signed
// cookie and guards gateway routes by the bundle's role.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/myhealth/myhealth/internal/platform/session"
)

type contextKey string

const (
	StoreKey  contextKey = "session_store"
	BundleKey contextKey = "session_bundle"
)

const (
	DefaultCookieName = "myhealth_session"
	sessionIDValue    = "sid"
)

// NewCookieStore returns the gorilla cookie store that signs the session-id
// cookie. The cookie carries only the id; the bundle stays server-side.
func NewCookieStore(secret []byte, secure bool) *sessions.CookieStore {
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return cs
}

type SessionConfig struct {
	Repo        session.Repository
	Cookies     sessions.Store
	CookieName  string
	IdleTimeout time.Duration
	// CheckTokenExpiry also ends sessions whose JWT exp has passed.
	CheckTokenExpiry bool
	// OnExpire is called when a request finds its session expired.
	OnExpire session.ExpireFunc
	Logger   zerolog.Logger
	Now      func() time.Time
}

// Session resolves the caller's session id from the cookie (issuing one on
// first visit), ends the session if it has gone idle, records activity,
// and puts the Store and Bundle on the request context.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = session.DefaultIdleTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			id, err := cookieSessionID(c, cfg)
			if err != nil {
				return err
			}

			store := session.NewStore(cfg.Repo, id,
				session.WithIdleTimeout(cfg.IdleTimeout),
				session.WithClock(cfg.Now))
			ctx := WithStore(req.Context(), store)

			b, err := store.Load(ctx)
			if err != nil {
				cfg.Logger.Error().Err(err).Str("session_id", id).Msg("failed to load session")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session store unavailable")
			}

			if b != nil {
				reason, err := expiryReason(ctx, store, b, cfg)
				if err != nil {
					cfg.Logger.Error().Err(err).Str("session_id", id).Msg("failed to read session activity")
					return echo.NewHTTPError(http.StatusServiceUnavailable, "session store unavailable")
				}

				switch {
				case reason != "":
					if err := store.Clear(ctx); err != nil {
						cfg.Logger.Error().Err(err).Str("session_id", id).Msg("failed to clear expired session")
					}
					cfg.Logger.Info().Str("session_id", id).Str("reason", reason).Msg("session expired")
					if cfg.OnExpire != nil {
						cfg.OnExpire(ctx, id)
					}
					b = nil
					c.Set("session_expired", true)
				case !IsPassive(c):
					if err := store.Touch(ctx); err != nil {
						cfg.Logger.Warn().Err(err).Str("session_id", id).Msg("failed to record activity")
					}
				}
			}

			c.Set("session_id", id)
			c.SetRequest(req.WithContext(WithBundle(ctx, b)))
			return next(c)
		}
	}
}

func cookieSessionID(c echo.Context, cfg SessionConfig) (string, error) {
	// A cookie with a bad signature yields a fresh session and an error;
	// the fresh session is what we want.
	sess, _ := cfg.Cookies.Get(c.Request(), cfg.CookieName)
	if sess == nil {
		sess = sessions.NewSession(cfg.Cookies, cfg.CookieName)
	}

	if id, ok := sess.Values[sessionIDValue].(string); ok && session.ValidID(id) {
		return id, nil
	}

	id := uuid.NewString()
	sess.Values[sessionIDValue] = id
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return "", fmt.Errorf("save session cookie: %w", err)
	}
	return id, nil
}

func expiryReason(ctx context.Context, store *session.Store, b *session.Bundle, cfg SessionConfig) (string, error) {
	idle, err := store.IsExpired(ctx)
	if err != nil {
		return "", err
	}
	if idle {
		return "idle", nil
	}
	if cfg.CheckTokenExpiry && b.TokenExpired(cfg.Now()) {
		return "token", nil
	}
	return "", nil
}

func WithStore(ctx context.Context, s *session.Store) context.Context {
	return context.WithValue(ctx, StoreKey, s)
}

func StoreFromContext(ctx context.Context) *session.Store {
	s, _ := ctx.Value(StoreKey).(*session.Store)
	return s
}

func WithBundle(ctx context.Context, b *session.Bundle) context.Context {
	return context.WithValue(ctx, BundleKey, b)
}

// BundleFromContext returns the bundle loaded for this request, or nil.
func BundleFromContext(ctx context.Context) *session.Bundle {
	b, _ := ctx.Value(BundleKey).(*session.Bundle)
	return b
}

// ContextTokens is an apiclient.TokenSource for a client shared by all
// requests: the token is read from the session carried by ctx at call time.
type ContextTokens struct{}

func (ContextTokens) Token(ctx context.Context) (string, error) {
	s := StoreFromContext(ctx)
	if s == nil {
		return "", nil
	}
	return s.Token(ctx)
}
