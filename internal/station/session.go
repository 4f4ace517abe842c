// Package station manages the authenticated connection to a Download
// Station instance: capability negotiation, the session token, and the
// task list cache. The session token and the cache are owned here
// exclusively; other packages receive task snapshots and results, never
// shared mutable state.
package station

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/synoprune/synoprune/internal/retry"
	"github.com/synoprune/synoprune/internal/synology"
)

// ErrNotAuthenticated indicates an operation that needs a session was
// called before Authenticate.
var ErrNotAuthenticated = errors.New("not authenticated")

// Default protocol versions used when capability discovery does not
// report the family.
const (
	defaultAuthVersion = "7"
	defaultTaskVersion = "1"
)

// Credentials are the account and password passed through to the
// remote login call.
type Credentials struct {
	Account  string
	Password string
}

// Session owns capability discovery, login/logout, and the session
// token. Concurrent Authenticate calls collapse into one in-flight
// login whose result every caller receives; the in-flight marker
// clears when the attempt settles, so a later call starts fresh.
type Session struct {
	api   *synology.Client
	creds Credentials
	retry retry.Config
	log   zerolog.Logger

	group singleflight.Group

	mu   sync.Mutex
	caps synology.Capabilities
	sid  string
}

// NewSession returns an unauthenticated session manager.
func NewSession(api *synology.Client, creds Credentials, retryCfg retry.Config, log zerolog.Logger) *Session {
	return &Session{
		api:   api,
		creds: creds,
		retry: retryCfg,
		log:   log.With().Str("component", "session").Logger(),
	}
}

// Initialize fetches API capabilities once. Safe to call repeatedly;
// only the first call hits the remote.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	done := s.caps != nil
	s.mu.Unlock()
	if done {
		return nil
	}

	_, err, _ := s.group.Do("initialize", func() (interface{}, error) {
		s.mu.Lock()
		cached := s.caps
		s.mu.Unlock()
		if cached != nil {
			return nil, nil
		}

		caps, err := s.api.QueryCapabilities(ctx)
		if err != nil {
			return nil, fmt.Errorf("API capability discovery failed: %w", err)
		}

		s.mu.Lock()
		s.caps = caps
		s.mu.Unlock()
		s.log.Debug().Int("families", len(caps)).Msg("API capabilities discovered")
		return nil, nil
	})
	return err
}

// Authenticate logs in and stores the session token, initializing
// capabilities first when needed. Login goes through the backoff
// retrier with a predicate that refuses to retry credential failures.
// Concurrent callers share one in-flight login.
func (s *Session) Authenticate(ctx context.Context) (string, error) {
	sid, err, _ := s.group.Do("login", func() (interface{}, error) {
		if err := s.Initialize(ctx); err != nil {
			return "", err
		}

		var sid string
		err := retry.Do(ctx, "login", s.retry, loginRetryable, func() error {
			var err error
			sid, err = s.api.Login(ctx, s.authVersion(), s.creds.Account, s.creds.Password)
			return err
		}, &s.log)
		if err != nil {
			var apiErr *synology.APIError
			if errors.As(err, &apiErr) {
				return "", fmt.Errorf("%w: invalid credentials or server error (code %d)", synology.ErrAuthFailed, apiErr.Code)
			}
			return "", err
		}

		s.mu.Lock()
		s.sid = sid
		s.mu.Unlock()
		s.log.Debug().Str("account", s.creds.Account).Msg("authenticated")
		return sid, nil
	})
	if err != nil {
		return "", err
	}
	return sid.(string), nil
}

// Disconnect logs out best-effort and clears the session token. No-op
// when not authenticated.
func (s *Session) Disconnect(ctx context.Context) {
	s.mu.Lock()
	sid := s.sid
	s.sid = ""
	s.mu.Unlock()

	if sid == "" {
		return
	}

	if err := s.api.Logout(ctx, s.authVersion(), sid); err != nil {
		s.log.Warn().Err(err).Msg("logout failed")
		return
	}
	s.log.Debug().Msg("disconnected")
}

// SID returns the active session token, or "" when not authenticated.
func (s *Session) SID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sid
}

func (s *Session) authVersion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caps.MaxVersion(synology.APIAuth, defaultAuthVersion)
}

// TaskVersion returns the negotiated task API version.
func (s *Session) TaskVersion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caps.MaxVersion(synology.APITask, defaultTaskVersion)
}

// loginRetryable retries transient network failures but never
// credential or session rejections.
func loginRetryable(err error) bool {
	if synology.IsAuthError(err) {
		return false
	}
	return retry.IsTransient(err)
}
