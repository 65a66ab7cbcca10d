package jira

import (
	"testing"
	"time"

	jiracloud "github.com/andygrunwald/go-jira/v2/cloud"
	"github.com/stretchr/testify/require"

	"github.com/riptano/argus/internal/model"
)

func TestConvertFlattensFields(t *testing.T) {
	conn := &model.Connection{Name: "primary", BaseURL: "https://example.atlassian.net/"}
	c := &Client{conn: conn}

	updated := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)

	issue := jiracloud.Issue{
		Key: "PROJ-42",
		Fields: &jiracloud.IssueFields{
			Summary:  "Sync drops stale issues",
			Status:   &jiracloud.Status{Name: "In Progress"},
			Priority: &jiracloud.Priority{Name: "High"},
			Assignee: &jiracloud.User{DisplayName: "jdoe"},
			Type:     jiracloud.IssueType{Name: "Bug"},
			Labels:   []string{"cache", "sync"},
			Updated:  jiracloud.Time(updated),
		},
	}

	got := c.convert(&issue)

	require.Equal(t, "PROJ-42", got.Key)
	require.Equal(t, "PROJ", got.Project)
	require.Equal(t, "primary", got.Connection)
	require.Equal(t, updated, got.Updated)
	require.Equal(t, "Sync drops stale issues", got.Fields["summary"])
	require.Equal(t, "In Progress", got.Fields["status"])
	require.Equal(t, "High", got.Fields["priority"])
	require.Equal(t, "jdoe", got.Fields["assignee"])
	require.Equal(t, "Bug", got.Fields["issuetype"])
	require.Equal(t, "cache,sync", got.Fields["labels"])

	// absent optional fields stay absent rather than empty
	_, hasResolution := got.Fields["resolution"]
	require.False(t, hasResolution)
}

func TestConvertNilFields(t *testing.T) {
	conn := &model.Connection{Name: "primary", BaseURL: "https://example.atlassian.net/"}
	c := &Client{conn: conn}

	got := c.convert(&jiracloud.Issue{Key: "PROJ-7"})

	require.Equal(t, "PROJ-7", got.Key)
	require.Equal(t, "PROJ", got.Project)
	require.True(t, got.Updated.IsZero())
	require.Empty(t, got.Fields)
}

func TestStringifyCustomField(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want string
	}{
		{name: "plain string", raw: "jane", want: "jane"},
		{name: "number", raw: float64(5), want: "5"},
		{name: "option object", raw: map[string]any{"value": "Approved"}, want: "Approved"},
		{name: "user object", raw: map[string]any{"displayName": "Jane Doe"}, want: "Jane Doe"},
		{name: "array of options", raw: []any{map[string]any{"value": "a"}, map[string]any{"value": "b"}}, want: "a,b"},
		{name: "unsupported shape", raw: true, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, stringifyCustomField(tt.raw))
		})
	}
}
