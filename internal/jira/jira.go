package jira

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira/v2/cloud"

	"github.com/riptano/argus/internal/model"
)

// jqlTimeLayout is the timestamp format JQL accepts in updated > "..."
// clauses. Minute granularity: a sync may re-fetch issues touched in the
// same minute as the cutoff, which the merge absorbs.
const jqlTimeLayout = "2006/01/02 15:04"

const searchPageSize = 100

// ClientOptions configures Jira client creation.
type ClientOptions struct {
	Logger *slog.Logger
}

// Client is the go-jira backed RemoteClient for one connection.
type Client struct {
	conn   *model.Connection
	api    *jira.Client
	logger *slog.Logger
}

// NewClient builds an authenticated client for the connection. The token is
// supplied by the credential store, never read from the connection itself.
func NewClient(conn *model.Connection, token string, opts ClientOptions) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if conn.BaseURL == "" {
		return nil, fmt.Errorf("connection %s: base URL is required", conn.Name)
	}
	if conn.Email == "" {
		return nil, fmt.Errorf("connection %s: email is required", conn.Name)
	}
	if token == "" {
		return nil, fmt.Errorf("connection %s: API token is required", conn.Name)
	}

	logger.Debug("creating Jira client",
		slog.String("connection", conn.Name),
		slog.String("url", conn.BaseURL),
		slog.String("email", conn.Email),
	)

	tp := jira.BasicAuthTransport{
		Username: conn.Email,
		APIToken: token,
	}

	api, err := jira.NewClient(conn.BaseURL, tp.Client())
	if err != nil {
		return nil, fmt.Errorf("failed to create Jira client: %w", err)
	}

	return &Client{conn: conn, api: api, logger: logger}, nil
}

// Validate makes a cheap authenticated call to prove the connection works.
func (c *Client) Validate(ctx context.Context) error {
	_, resp, err := c.api.User.GetCurrentUser(ctx)
	if err != nil {
		return c.classify("validate connection", "user", resp, err)
	}
	return nil
}

func (c *Client) FetchUpdatedSince(ctx context.Context, project string, since time.Time, baseQuery string) (*Diff, error) {
	jql := fmt.Sprintf("project = %s", project)
	if baseQuery != "" {
		jql += fmt.Sprintf(" AND (%s)", baseQuery)
	}
	if !since.IsZero() {
		jql += fmt.Sprintf(" AND updated > %q", since.Format(jqlTimeLayout))
	}

	updated, err := c.search(ctx, jql)
	if err != nil {
		return nil, err
	}

	diff := &Diff{Updated: updated}

	// anything touched since the cutoff that no longer matches the base
	// query has dropped out of scope; report the keys so the cache can
	// mark them stale instead of silently keeping them fresh
	if baseQuery != "" && !since.IsZero() {
		dropped := fmt.Sprintf("project = %s AND NOT (%s) AND updated > %q",
			project, baseQuery, since.Format(jqlTimeLayout))
		outOfScope, err := c.search(ctx, dropped)
		if err != nil {
			return nil, err
		}
		for i := range outOfScope {
			diff.Removed = append(diff.Removed, outOfScope[i].Key)
		}
	}

	return diff, nil
}

func (c *Client) FetchByQuery(ctx context.Context, query string) ([]model.Issue, error) {
	return c.search(ctx, query)
}

// search pages through the full result set for a JQL query.
func (c *Client) search(ctx context.Context, jql string) ([]model.Issue, error) {
	c.logger.Debug("querying Jira",
		slog.String("connection", c.conn.Name),
		slog.String("jql", jql),
	)

	var results []model.Issue
	startAt := 0

	for {
		opts := &jira.SearchOptions{
			StartAt:    startAt,
			MaxResults: searchPageSize,
		}

		issues, resp, err := c.api.Issue.Search(ctx, jql, opts)
		if err != nil {
			return nil, c.classify("search issues", "query results", resp, err)
		}

		for i := range issues {
			results = append(results, c.convert(&issues[i]))
		}

		startAt += len(issues)
		if startAt >= resp.Total || len(issues) == 0 {
			break
		}
	}

	c.logger.Debug("received issues",
		slog.String("connection", c.conn.Name),
		slog.Int("count", len(results)),
	)

	return results, nil
}

// convert flattens a remote issue into the local field map, translating
// custom field IDs back to their configured readable names.
func (c *Client) convert(issue *jira.Issue) model.Issue {
	fields := make(map[string]string)

	var updated time.Time
	if issue.Fields != nil {
		updated = time.Time(issue.Fields.Updated).UTC()
		if issue.Fields.Summary != "" {
			fields["summary"] = issue.Fields.Summary
		}
		if issue.Fields.Description != "" {
			fields["description"] = issue.Fields.Description
		}
		if issue.Fields.Status != nil {
			fields["status"] = issue.Fields.Status.Name
		}
		if issue.Fields.Priority != nil {
			fields["priority"] = issue.Fields.Priority.Name
		}
		if issue.Fields.Resolution != nil {
			fields["resolution"] = issue.Fields.Resolution.Name
		}
		if issue.Fields.Assignee != nil {
			fields["assignee"] = issue.Fields.Assignee.DisplayName
		}
		if issue.Fields.Reporter != nil {
			fields["reporter"] = issue.Fields.Reporter.DisplayName
		}
		if issue.Fields.Type.Name != "" {
			fields["issuetype"] = issue.Fields.Type.Name
		}
		if len(issue.Fields.Labels) > 0 {
			fields["labels"] = strings.Join(issue.Fields.Labels, ",")
		}
		if len(issue.Fields.FixVersions) > 0 {
			versions := make([]string, 0, len(issue.Fields.FixVersions))
			for _, v := range issue.Fields.FixVersions {
				if v != nil {
					versions = append(versions, v.Name)
				}
			}
			fields["fixVersions"] = strings.Join(versions, ",")
		}
		if len(issue.Fields.Components) > 0 {
			components := make([]string, 0, len(issue.Fields.Components))
			for _, comp := range issue.Fields.Components {
				if comp != nil {
					components = append(components, comp.Name)
				}
			}
			fields["components"] = strings.Join(components, ",")
		}
		if !time.Time(issue.Fields.Created).IsZero() {
			fields["created"] = time.Time(issue.Fields.Created).UTC().Format(time.RFC3339)
		}
		if !time.Time(issue.Fields.Updated).IsZero() {
			fields["updated"] = time.Time(issue.Fields.Updated).UTC().Format(time.RFC3339)
		}

		for id, raw := range issue.Fields.Unknowns {
			if !strings.HasPrefix(id, "customfield_") {
				continue
			}
			name := c.conn.ReadableField(id)
			if name == id {
				// not in the connection's field map, skip
				continue
			}
			if v := stringifyCustomField(raw); v != "" {
				fields[name] = v
			}
		}
	}

	project := issue.Key
	if idx := strings.IndexByte(issue.Key, '-'); idx > 0 {
		project = issue.Key[:idx]
	}

	return model.Issue{
		Key:        issue.Key,
		Project:    project,
		Connection: c.conn.Name,
		Updated:    updated,
		Fields:     fields,
	}
}

// stringifyCustomField renders the handful of shapes Jira uses for custom
// field values: plain strings, numbers, option objects and user objects.
func stringifyCustomField(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	case map[string]any:
		for _, key := range []string{"value", "name", "displayName"} {
			if s, ok := v[key].(string); ok {
				return s
			}
		}
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := stringifyCustomField(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	}
	return ""
}

func (c *Client) classify(operation, what string, resp *jira.Response, err error) error {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Connection: c.conn.Name, StatusCode: resp.StatusCode, Err: err}
		case http.StatusNotFound:
			return &NotFoundError{Connection: c.conn.Name, What: what, Err: err}
		}
	}
	return &NetworkError{Connection: c.conn.Name, Operation: operation, Err: err}
}
