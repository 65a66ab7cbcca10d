package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldAccessors(t *testing.T) {
	issue := Issue{
		Key:    "PROJ-1",
		Fields: map[string]string{"status": "Open", "assignee": ""},
	}

	v, ok := issue.Field("status")
	require.True(t, ok)
	require.Equal(t, "Open", v)

	_, ok = issue.Field("resolution")
	require.False(t, ok)

	// FieldOrEmpty folds absent and empty together for display code
	require.Equal(t, "Open", issue.FieldOrEmpty("status"))
	require.Equal(t, "", issue.FieldOrEmpty("assignee"))
	require.Equal(t, "", issue.FieldOrEmpty("resolution"))

	// nil field map never panics
	empty := Issue{Key: "PROJ-2"}
	require.Equal(t, "", empty.FieldOrEmpty("status"))
}

func TestMatchesAll(t *testing.T) {
	issue := Issue{
		Key:    "PROJ-3",
		Fields: map[string]string{"summary": "Cache invalidation timeout", "assignee": "jdoe"},
	}

	tests := []struct {
		name  string
		finds []string
		want  bool
	}{
		{name: "empty slice matches", finds: nil, want: true},
		{name: "single match", finds: []string{"cache"}, want: true},
		{name: "all must match", finds: []string{"cache", "timeout"}, want: true},
		{name: "one miss fails", finds: []string{"cache", "deadlock"}, want: false},
		{name: "key matches too", finds: []string{"proj-3"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, issue.MatchesAll(tt.finds))
		})
	}
}
