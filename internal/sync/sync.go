package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/riptano/argus/internal/jira"
	"github.com/riptano/argus/internal/store"
)

// DefaultTimeout bounds one remote fetch. Every sync call is retryable on
// timeout.
const DefaultTimeout = 2 * time.Minute

// Result reports one completed sync.
type Result struct {
	Connection  string
	Project     string
	UpdatedKeys []string
	RemovedKeys []string
	Duration    time.Duration
}

// Target names one (connection, project) pair to sync.
type Target struct {
	Connection string
	Project    string

	// BaseQuery optionally narrows the incremental fetch; issues dropping
	// out of its scope are marked stale rather than deleted.
	BaseQuery string
}

// Recorder persists sync run history. Implemented by the history package;
// nil disables recording.
type Recorder interface {
	Record(result *Result, syncErr error) error
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	Timeout time.Duration
	History Recorder
	Logger  *slog.Logger
}

// Manager orchestrates incremental refresh of the issue cache. Syncs on the
// same (connection, project) pair are serialized; syncs on distinct pairs
// may run in parallel, with each merge isolated inside the store's own
// write transaction.
type Manager struct {
	store   store.IssueStore
	clients map[string]jira.RemoteClient
	timeout time.Duration
	history Recorder
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager builds a Manager over the given store and per-connection
// clients.
func NewManager(st store.IssueStore, clients map[string]jira.RemoteClient, opts ManagerOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Manager{
		store:   st,
		clients: clients,
		timeout: timeout,
		history: opts.History,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// projectLock returns the mutex serializing syncs for one pair.
func (m *Manager) projectLock(connection, project string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := connection + "/" + project
	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	return lock
}

// Sync refreshes one project's cache from its remote connection. A remote
// failure leaves the last-synced timestamp untouched and returns a
// *SyncError; the caller may retry the whole call. A concurrent Sync on the
// same pair waits for the in-flight one to finish.
func (m *Manager) Sync(ctx context.Context, target Target) (*Result, error) {
	client, ok := m.clients[target.Connection]
	if !ok {
		return nil, &SyncError{
			Connection: target.Connection,
			Project:    target.Project,
			Err:        fmt.Errorf("no client configured for connection"),
		}
	}

	lock := m.projectLock(target.Connection, target.Project)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()

	result, err := m.syncLocked(ctx, client, target)

	if m.history != nil {
		res := result
		if res == nil {
			res = &Result{Connection: target.Connection, Project: target.Project, Duration: time.Since(started)}
		}
		if recErr := m.history.Record(res, err); recErr != nil {
			m.logger.Warn("failed to record sync history",
				slog.String("connection", target.Connection),
				slog.String("project", target.Project),
				slog.String("error", recErr.Error()),
			)
		}
	}

	return result, err
}

func (m *Manager) syncLocked(ctx context.Context, client jira.RemoteClient, target Target) (*Result, error) {
	started := time.Now()

	since, err := m.store.LastSynced(target.Connection, target.Project)
	if err != nil {
		return nil, &SyncError{Connection: target.Connection, Project: target.Project, Err: err}
	}

	m.logger.Debug("starting sync",
		slog.String("connection", target.Connection),
		slog.String("project", target.Project),
		slog.Time("since", since),
	)

	// the new cutoff is taken before the fetch so nothing updated during
	// the query window is missed next time; overlap is absorbed by the
	// last-write-wins merge
	cutoff := started

	fetchCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	diff, err := client.FetchUpdatedSince(fetchCtx, target.Project, since, target.BaseQuery)
	if err != nil {
		// last-synced stays put: no partial progress is recorded
		return nil, &SyncError{Connection: target.Connection, Project: target.Project, Err: err}
	}

	merge, err := m.store.MergeDiff(target.Connection, target.Project, diff.Updated, diff.Removed, cutoff)
	if err != nil {
		return nil, &SyncError{Connection: target.Connection, Project: target.Project, Err: err}
	}

	result := &Result{
		Connection:  target.Connection,
		Project:     target.Project,
		UpdatedKeys: merge.UpdatedKeys,
		RemovedKeys: merge.RemovedKeys,
		Duration:    time.Since(started),
	}

	m.logger.Info("sync complete",
		slog.String("connection", target.Connection),
		slog.String("project", target.Project),
		slog.Int("updated", len(result.UpdatedKeys)),
		slog.Int("removed", len(result.RemovedKeys)),
		slog.Duration("took", result.Duration),
	)

	return result, nil
}

// SyncAll refreshes every target, parallelizing across distinct connections
// while keeping each connection's targets sequential. It returns every
// result that succeeded plus the first error per failed connection; one
// connection failing does not stop the others.
func (m *Manager) SyncAll(ctx context.Context, targets []Target) ([]*Result, []error) {
	byConnection := make(map[string][]Target)
	var order []string
	for _, t := range targets {
		if _, seen := byConnection[t.Connection]; !seen {
			order = append(order, t.Connection)
		}
		byConnection[t.Connection] = append(byConnection[t.Connection], t)
	}

	var (
		resMu   sync.Mutex
		results []*Result
		errs    []error
	)

	g, gctx := errgroup.WithContext(ctx)

	for _, connection := range order {
		conTargets := byConnection[connection]
		g.Go(func() error {
			for _, target := range conTargets {
				result, err := m.Sync(gctx, target)
				resMu.Lock()
				if err != nil {
					errs = append(errs, err)
					resMu.Unlock()
					// remaining targets on this connection would
					// hit the same broken remote
					return nil
				}
				results = append(results, result)
				resMu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()

	return results, errs
}
