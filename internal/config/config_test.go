package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riptano/argus/internal/filter"
	"github.com/riptano/argus/internal/model"
)

func writeConfigDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const validConnections = `[primary]
url = https://primary.example.com
email = dev@example.com
projects = CASSANDRA, DSP
custom_fields = severity
severity = customfield_10012

[secondary]
url = https://secondary.example.com/
email = dev@example.com
projects = OSS
`

func TestLoadConnections(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"connections.cfg": validConnections,
	})

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"primary", "secondary"}, cfg.ConnectionNames)

	primary := cfg.Connections["primary"]
	require.Equal(t, "https://primary.example.com/", primary.BaseURL)
	require.Equal(t, []string{"CASSANDRA", "DSP"}, primary.Projects)
	require.Equal(t, "customfield_10012", primary.FieldMap["severity"])

	// trailing slash on the url is normalized, not doubled
	require.Equal(t, "https://secondary.example.com/", cfg.Connections["secondary"].BaseURL)
}

func TestLoadConnectionErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing url", "[bad]\nemail = dev@example.com\n"},
		{"missing email", "[bad]\nurl = https://x.example.com\n"},
		{"unmapped custom field", "[bad]\nurl = https://x.example.com\nemail = d@e.com\ncustom_fields = severity\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeConfigDir(t, map[string]string{"connections.cfg": tc.content})
			_, err := Load(dir)
			var cfgErr *model.ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestLoadViews(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"connections.cfg": validConnections,
		"views.cfg": `[open-bugs]
connections = primary, secondary
filter = {"and": [{"field": "issuetype", "op": "equals", "value": "Bug"}, {"not": {"field": "status", "op": "equals", "value": "Closed"}}]}
columns = key:key:12, summary::50, priority
sort_key = priority

[raw-jql]
connections = primary
query = assignee = currentUser() ORDER BY updated DESC
`,
	})

	cfg, err := Load(dir)
	require.NoError(t, err)

	v := cfg.Views["open-bugs"]
	require.NotNil(t, v.Predicate)
	require.Empty(t, v.Query)
	require.Equal(t, "priority", v.SortKey)
	require.Len(t, v.Columns, 3)
	require.Equal(t, "key", v.Columns[0].Field)
	require.Equal(t, 12, v.Columns[0].Width)
	require.Equal(t, "summary", v.Columns[1].Field)
	require.Equal(t, 50, v.Columns[1].Width)
	require.Equal(t, 0, v.Columns[2].Width)

	bug := model.Issue{Key: "DSP-1", Fields: map[string]string{"issuetype": "Bug", "status": "Open"}}
	require.True(t, v.Predicate.Evaluate(&bug))

	raw := cfg.Views["raw-jql"]
	require.Nil(t, raw.Predicate)
	require.Contains(t, raw.Query, "currentUser()")
}

func TestLoadViewErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no connections", "[v]\nfilter = {\"field\": \"status\", \"op\": \"equals\", \"value\": \"Open\"}\n"},
		{"unknown connection", "[v]\nconnections = nope\nquery = status = Open\n"},
		{"both filter and query", "[v]\nconnections = primary\nquery = status = Open\nfilter = {\"field\": \"status\", \"op\": \"equals\", \"value\": \"Open\"}\n"},
		{"neither filter nor query", "[v]\nconnections = primary\n"},
		{"bad column width", "[v]\nconnections = primary\nquery = status = Open\ncolumns = key:key:wide\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeConfigDir(t, map[string]string{
				"connections.cfg": validConnections,
				"views.cfg":       tc.content,
			})
			_, err := Load(dir)
			var cfgErr *model.ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestLoadViewBadFilterJSON(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"connections.cfg": validConnections,
		"views.cfg":       "[v]\nconnections = primary\nfilter = {\"field\": \"status\", \"op\": \"frobnicate\", \"value\": \"x\"}\n",
	})
	_, err := Load(dir)
	var filterErr *filter.Error
	require.ErrorAs(t, err, &filterErr)
}

func TestLoadDashboards(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"connections.cfg": validConnections,
		"views.cfg": `[a]
connections = primary
query = status = Open

[b]
connections = secondary
query = status = Open
`,
		"dashboards.cfg": "[main]\nviews = a, b\n",
	})

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, cfg.Dashboards["main"].Views)
}

func TestLoadDashboardErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"single view", "[d]\nviews = a\n"},
		{"unknown view", "[d]\nviews = a, missing\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeConfigDir(t, map[string]string{
				"connections.cfg": validConnections,
				"views.cfg":       "[a]\nconnections = primary\nquery = status = Open\n",
				"dashboards.cfg":  tc.content,
			})
			_, err := Load(dir)
			var cfgErr *model.ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestLoadTeams(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"connections.cfg": validConnections,
		"teams.cfg": `[platform]
members = Jane Doe, Sam Smith
Jane Doe = primary:jdoe, secondary:jane.doe
Sam Smith = primary:ssmith
`,
	})

	cfg, err := Load(dir)
	require.NoError(t, err)

	team := cfg.Teams["platform"]
	require.Len(t, team.Members, 2)
	require.Equal(t, "jdoe", team.Members[0].Usernames["primary"])
	require.Equal(t, "jane.doe", team.Members[0].Usernames["secondary"])
	require.Equal(t, "ssmith", team.Members[1].Usernames["primary"])
}

func TestLoadTeamErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"member without mapping", "[t]\nmembers = Jane Doe\n"},
		{"bad mapping format", "[t]\nmembers = Jane Doe\nJane Doe = jdoe\n"},
		{"unknown connection", "[t]\nmembers = Jane Doe\nJane Doe = nope:jdoe\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeConfigDir(t, map[string]string{
				"connections.cfg": validConnections,
				"teams.cfg":       tc.content,
			})
			_, err := Load(dir)
			var cfgErr *model.ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestLoadMissingFiles(t *testing.T) {
	// a directory with no config files at all is a valid empty setup
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, cfg.Connections)
	require.Empty(t, cfg.Views)
}

func TestPaths(t *testing.T) {
	cfg := &Config{Dir: "/tmp/argus"}
	require.Equal(t, filepath.Join("/tmp/argus", "issues.bolt"), cfg.CachePath())
	require.Equal(t, filepath.Join("/tmp/argus", "history.db"), cfg.HistoryPath())
	require.Equal(t, filepath.Join("/tmp/argus", "credentials.dat"), cfg.CredentialsPath())
	require.NotEmpty(t, DefaultDir())
}

func TestLoadBadINI(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"connections.cfg": "[unterminated\nurl = x\n",
	})
	_, err := Load(dir)
	require.Error(t, err)
	var cfgErr *model.ConfigError
	require.True(t, errors.As(err, &cfgErr))
}
