package station

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/synoprune/synoprune/internal/retry"
	"github.com/synoprune/synoprune/internal/synology"
)

func TestAuthenticate(t *testing.T) {
	f := newFakeStation(t)
	s := newTestSession(f, retry.Config{})

	sid, err := s.Authenticate(context.Background())
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if sid != "sid-test" {
		t.Errorf("sid = %q, want sid-test", sid)
	}
	if s.SID() != "sid-test" {
		t.Errorf("SID() = %q, want sid-test", s.SID())
	}
	if f.calls(&f.queryCalls) != 1 {
		t.Errorf("capability queries = %d, want 1", f.calls(&f.queryCalls))
	}
}

func TestAuthenticateSingleFlight(t *testing.T) {
	f := newFakeStation(t)
	f.loginGate = make(chan struct{})
	s := newTestSession(f, retry.Config{})

	const callers = 8
	sids := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sids[i], errs[i] = s.Authenticate(context.Background())
		}(i)
	}

	// Give every caller time to join the in-flight login, then let it
	// settle.
	time.Sleep(100 * time.Millisecond)
	close(f.loginGate)
	wg.Wait()

	if got := f.calls(&f.loginCalls); got != 1 {
		t.Fatalf("login requests = %d, want 1", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if sids[i] != "sid-test" {
			t.Errorf("caller %d sid = %q, want sid-test", i, sids[i])
		}
	}
}

func TestAuthenticateFreshAttemptAfterSettle(t *testing.T) {
	f := newFakeStation(t)
	s := newTestSession(f, retry.Config{})

	if _, err := s.Authenticate(context.Background()); err != nil {
		t.Fatalf("first Authenticate() error = %v", err)
	}
	if _, err := s.Authenticate(context.Background()); err != nil {
		t.Fatalf("second Authenticate() error = %v", err)
	}
	if got := f.calls(&f.loginCalls); got != 2 {
		t.Errorf("login requests = %d, want 2 (marker cleared after settle)", got)
	}
}

func TestAuthenticateCredentialFailureNotRetried(t *testing.T) {
	f := newFakeStation(t)
	f.loginCode = 400
	s := newTestSession(f, retry.Config{Attempts: 4, BaseDelay: time.Millisecond})

	_, err := s.Authenticate(context.Background())
	if !errors.Is(err, synology.ErrAuthFailed) {
		t.Fatalf("error = %v, want ErrAuthFailed", err)
	}
	if got := f.calls(&f.loginCalls); got != 1 {
		t.Errorf("login requests = %d, want 1 (credential failures are not transient)", got)
	}
}

func TestInitializeIdempotent(t *testing.T) {
	f := newFakeStation(t)
	s := newTestSession(f, retry.Config{})

	for i := 0; i < 3; i++ {
		if err := s.Initialize(context.Background()); err != nil {
			t.Fatalf("Initialize() error = %v", err)
		}
	}
	if got := f.calls(&f.queryCalls); got != 1 {
		t.Errorf("capability queries = %d, want 1", got)
	}
	if got := s.TaskVersion(); got != "1" {
		t.Errorf("TaskVersion() = %q, want 1", got)
	}
}

func TestDisconnect(t *testing.T) {
	f := newFakeStation(t)
	s := newTestSession(f, retry.Config{})

	if _, err := s.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	s.Disconnect(context.Background())
	if s.SID() != "" {
		t.Errorf("SID() = %q after disconnect, want empty", s.SID())
	}
	if got := f.calls(&f.logoutCalls); got != 1 {
		t.Fatalf("logout requests = %d, want 1", got)
	}
	f.mu.Lock()
	logoutSID := f.lastLogoutSID
	f.mu.Unlock()
	if logoutSID != "sid-test" {
		t.Errorf("logout _sid = %q, want sid-test", logoutSID)
	}

	// Second disconnect is a no-op.
	s.Disconnect(context.Background())
	if got := f.calls(&f.logoutCalls); got != 1 {
		t.Errorf("logout requests after second disconnect = %d, want 1", got)
	}
}
