package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/riptano/argus/internal/filter"
	"github.com/riptano/argus/internal/jira"
	"github.com/riptano/argus/internal/model"
	"github.com/riptano/argus/internal/store"
)

// View is a saved, reusable filter bound to one or more connections. It is
// backed either by a predicate evaluated over the local cache or by a raw
// query delegated to the remote tracker, never both.
type View struct {
	Name string

	// Connections lists bound connection names in declaration order. A
	// view with zero connections is invalid.
	Connections []string

	// Predicate filters cached issues locally. Nil when Query is set.
	Predicate filter.Predicate

	// Query is a raw tracker query that bypasses the cache and the
	// predicate entirely. Empty when Predicate is set.
	Query string

	// Columns to display, in order.
	Columns []Column

	// SortKey orders the result set; empty sorts by issue key.
	SortKey string
}

// Validate checks the structural invariants of the definition.
func (v *View) Validate() error {
	what := fmt.Sprintf("view %q", v.Name)
	if len(v.Connections) == 0 {
		return &model.ConfigError{What: what, Err: errors.New("no connections bound")}
	}
	if v.Predicate != nil && v.Query != "" {
		return &model.ConfigError{What: what, Err: errors.New("both predicate and query set")}
	}
	if v.Predicate == nil && v.Query == "" {
		return &model.ConfigError{What: what, Err: errors.New("neither predicate nor query set")}
	}
	return nil
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	Logger *slog.Logger
}

// Resolver evaluates views and dashboards. It holds the explicit
// dependencies resolution needs: the issue cache, the configured
// connections, and a remote client per connection for query-backed views.
type Resolver struct {
	store       store.IssueStore
	connections map[string]*model.Connection
	clients     map[string]jira.RemoteClient
	views       map[string]*View
	logger      *slog.Logger
}

// NewResolver builds a Resolver. The views map indexes every known view by
// name for dashboard resolution; it may be nil when only plain views are
// resolved.
func NewResolver(st store.IssueStore, connections map[string]*model.Connection,
	clients map[string]jira.RemoteClient, views map[string]*View, opts ResolverOptions) *Resolver {

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		store:       st,
		connections: connections,
		clients:     clients,
		views:       views,
		logger:      logger,
	}
}

// Resolve produces the view's ordered result set. Results are recomputed on
// every call; the only caching is the issue store's own. Failures name the
// view and connection they came from.
func (r *Resolver) Resolve(ctx context.Context, v *View) ([]model.Issue, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	var merged []model.Issue

	// connection declaration order drives merge order; the sort below
	// dominates the final ordering
	for _, name := range v.Connections {
		conn, ok := r.connections[name]
		if !ok {
			return nil, &model.ConfigError{
				What: fmt.Sprintf("view %q", v.Name),
				Err:  fmt.Errorf("connection %q is not configured", name),
			}
		}

		var (
			issues []model.Issue
			err    error
		)
		if v.Query != "" {
			issues, err = r.resolveRemote(ctx, conn, v.Query)
		} else {
			issues, err = r.resolveCached(conn, v.Predicate)
		}
		if err != nil {
			return nil, fmt.Errorf("view %q, connection %q: %w", v.Name, name, err)
		}

		merged = append(merged, issues...)
	}

	sortIssues(merged, v.SortKey)
	return merged, nil
}

func (r *Resolver) resolveRemote(ctx context.Context, conn *model.Connection, query string) ([]model.Issue, error) {
	client, ok := r.clients[conn.Name]
	if !ok {
		return nil, fmt.Errorf("no client available")
	}
	return client.FetchByQuery(ctx, query)
}

func (r *Resolver) resolveCached(conn *model.Connection, pred filter.Predicate) ([]model.Issue, error) {
	projects, err := r.store.Projects(conn.Name)
	if err != nil {
		return nil, err
	}

	var matched []model.Issue
	for _, project := range projects {
		issues, err := r.store.Issues(conn.Name, project)
		if err != nil {
			return nil, err
		}
		for i := range issues {
			if pred.Evaluate(&issues[i]) {
				matched = append(matched, issues[i])
			}
		}
	}
	return matched, nil
}

// sortIssues stable-sorts by the given field, ties broken by issue key
// ascending so the ordering is deterministic across connections.
func sortIssues(issues []model.Issue, sortKey string) {
	sort.SliceStable(issues, func(a, b int) bool {
		if c := model.CompareField(&issues[a], &issues[b], sortKey); c != 0 {
			return c < 0
		}
		return issues[a].Key < issues[b].Key
	})
}
