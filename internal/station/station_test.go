package station

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/synoprune/synoprune/internal/retry"
	"github.com/synoprune/synoprune/internal/synology"
)

// fakeStation is an httptest-backed Download Station with call
// counters and optional gates to hold requests open.
type fakeStation struct {
	t   *testing.T
	srv *httptest.Server

	mu          sync.Mutex
	queryCalls  int
	loginCalls  int
	logoutCalls int
	listCalls   int
	deleteCalls int

	loginGate chan struct{} // when set, login blocks until closed
	listGate  chan struct{} // when set, list blocks until closed

	loginCode     int // non-zero makes login fail with this code
	sid           string
	lastLogoutSID string
	tasks         []synology.Task
	deleteResults []synology.DeleteResult
}

func newFakeStation(t *testing.T) *fakeStation {
	f := &fakeStation{t: t, sid: "sid-test"}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeStation) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch q.Get("api") + "/" + q.Get("method") {
	case synology.APIInfo + "/query":
		f.count(&f.queryCalls)
		f.ok(w, map[string]any{
			synology.APIAuth: map[string]any{"minVersion": 1, "maxVersion": 7, "path": "auth.cgi"},
			synology.APITask: map[string]any{"minVersion": 1, "maxVersion": 1, "path": "DownloadStation/task.cgi"},
		})

	case synology.APIAuth + "/login":
		f.count(&f.loginCalls)
		if f.loginGate != nil {
			<-f.loginGate
		}
		if f.loginCode != 0 {
			f.fail(w, f.loginCode)
			return
		}
		f.ok(w, map[string]string{"sid": f.sid})

	case synology.APIAuth + "/logout":
		f.count(&f.logoutCalls)
		f.mu.Lock()
		f.lastLogoutSID = q.Get("_sid")
		f.mu.Unlock()
		f.ok(w, nil)

	case synology.APITask + "/list":
		f.count(&f.listCalls)
		if f.listGate != nil {
			<-f.listGate
		}
		f.mu.Lock()
		tasks := f.tasks
		f.mu.Unlock()
		f.ok(w, map[string]any{"tasks": tasks})

	case synology.APITask + "/delete":
		f.count(&f.deleteCalls)
		f.ok(w, f.deleteResults)

	default:
		f.t.Errorf("unexpected API call: %s", r.URL.RawQuery)
	}
}

func (f *fakeStation) count(n *int) {
	f.mu.Lock()
	*n++
	f.mu.Unlock()
}

func (f *fakeStation) calls(n *int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *n
}

func (f *fakeStation) ok(w http.ResponseWriter, data any) {
	resp := map[string]any{"success": true}
	if data != nil {
		resp["data"] = data
	}
	json.NewEncoder(w).Encode(resp)
}

func (f *fakeStation) fail(w http.ResponseWriter, code int) {
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   map[string]int{"code": code},
	})
}

func (f *fakeStation) setTasks(tasks []synology.Task) {
	f.mu.Lock()
	f.tasks = tasks
	f.mu.Unlock()
}

func newTestSession(f *fakeStation, retryCfg retry.Config) *Session {
	api := synology.New(f.srv.URL, 0)
	return NewSession(api, Credentials{Account: "user", Password: "pass"}, retryCfg, zerolog.Nop())
}

func newTestRepository(f *fakeStation, s *Session) *Repository {
	api := synology.New(f.srv.URL, 0)
	return NewRepository(api, s, retry.Config{}, zerolog.Nop())
}
