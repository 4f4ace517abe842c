package station

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/synoprune/synoprune/internal/purge"
	"github.com/synoprune/synoprune/internal/retry"
	"github.com/synoprune/synoprune/internal/synology"
)

// Repository fetches and caches the current task list. The cache is
// replaced wholesale on every successful fetch and never accumulates
// entries across fetches. Concurrent Tasks calls collapse into one
// remote fetch; all callers see the same list and cache state.
type Repository struct {
	api     *synology.Client
	session *Session
	retry   retry.Config
	log     zerolog.Logger

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]synology.Task
}

// NewRepository returns an empty task repository bound to session.
func NewRepository(api *synology.Client, session *Session, retryCfg retry.Config, log zerolog.Logger) *Repository {
	return &Repository{
		api:     api,
		session: session,
		retry:   retryCfg,
		log:     log.With().Str("component", "tasks").Logger(),
	}
}

// Tasks fetches the current task list, requiring an active session.
// The id cache is replaced atomically with the fresh set.
func (r *Repository) Tasks(ctx context.Context) ([]synology.Task, error) {
	tasks, err, _ := r.group.Do("list", func() (interface{}, error) {
		sid := r.session.SID()
		if sid == "" {
			return nil, ErrNotAuthenticated
		}

		var tasks []synology.Task
		err := retry.Do(ctx, "list tasks", r.retry, nil, func() error {
			var err error
			tasks, err = r.api.ListTasks(ctx, r.session.TaskVersion(), sid)
			return err
		}, &r.log)
		if err != nil {
			return nil, err
		}

		fresh := make(map[string]synology.Task, len(tasks))
		for _, t := range tasks {
			fresh[t.ID] = t
		}
		r.mu.Lock()
		r.cache = fresh
		r.mu.Unlock()

		r.log.Debug().Int("count", len(tasks)).Msg("task list fetched")
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	return tasks.([]synology.Task), nil
}

// TasksSorted returns a fresh fetch in purge order: ascending uploaded
// bytes, ties broken by ascending completion time.
func (r *Repository) TasksSorted(ctx context.Context) ([]synology.Task, error) {
	tasks, err := r.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	return purge.Sort(tasks), nil
}

// Cached looks up a task from the most recent successful fetch.
func (r *Repository) Cached(id string) (synology.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.cache[id]
	return t, ok
}

// DeleteTasks removes the given task ids remotely, through the backoff
// retrier, on the session's active token.
func (r *Repository) DeleteTasks(ctx context.Context, ids []string, forceComplete bool) ([]synology.DeleteResult, error) {
	sid := r.session.SID()
	if sid == "" {
		return nil, ErrNotAuthenticated
	}

	var results []synology.DeleteResult
	err := retry.Do(ctx, "delete tasks", r.retry, nil, func() error {
		var err error
		results, err = r.api.DeleteTasks(ctx, r.session.TaskVersion(), sid, ids, forceComplete)
		return err
	}, &r.log)
	if err != nil {
		return nil, err
	}
	return results, nil
}
