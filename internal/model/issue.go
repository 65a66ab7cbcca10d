package model

import (
	"sort"
	"strings"
	"time"
)

// Issue is a single cached work item from a remote tracker. Fields holds the
// flattened field name -> value data after custom-field translation, so the
// rest of the codebase never sees raw customfield_NNN identifiers.
//
// Issues are replaced whole on sync; nothing mutates an Issue field-by-field.
type Issue struct {
	// Key is the globally unique issue key, e.g. "PROJ-123".
	Key string `json:"key"`

	// Project is the key namespace this issue belongs to, e.g. "PROJ".
	Project string `json:"project"`

	// Connection is the name of the tracker connection that owns the issue.
	Connection string `json:"connection"`

	// Updated is the remote-side last-modified timestamp. Merge conflicts
	// between cached and incoming copies are resolved by this value.
	Updated time.Time `json:"updated"`

	// Stale marks an issue the remote stopped reporting. Stale issues are
	// retained in the cache rather than deleted so that a narrower
	// incremental query never silently loses data.
	Stale bool `json:"stale,omitempty"`

	Fields map[string]string `json:"fields"`
}

// Field returns the named field's value. The boolean is false when the issue
// has no such field; callers treat that as a non-match, never an error.
func (i *Issue) Field(name string) (string, bool) {
	v, ok := i.Fields[name]
	return v, ok
}

// FieldOrEmpty returns the named field's value, or "" when the issue has no
// such field. For display code, where absent and empty render the same.
func (i *Issue) FieldOrEmpty(name string) string {
	return i.Fields[name]
}

// Matches reports whether the substring occurs in the issue key or any field
// value. Matching is case-insensitive.
func (i *Issue) Matches(find string) bool {
	find = strings.ToLower(find)
	if strings.Contains(strings.ToLower(i.Key), find) {
		return true
	}
	for _, v := range i.Fields {
		if strings.Contains(strings.ToLower(v), find) {
			return true
		}
	}
	return false
}

// MatchesAll reports whether the issue matches every one of the given
// substrings. An empty slice matches.
func (i *Issue) MatchesAll(finds []string) bool {
	for _, f := range finds {
		if !i.Matches(f) {
			return false
		}
	}
	return true
}

// FieldNames returns the issue's field names sorted ascending.
func (i *Issue) FieldNames() []string {
	names := make([]string, 0, len(i.Fields))
	for k := range i.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// priorityRank orders the well-known priority values highest-first so that a
// priority sort is severity order rather than lexical order.
var priorityRank = map[string]int{
	"blocker":  0,
	"critical": 1,
	"urgent":   1,
	"highest":  1,
	"high":     2,
	"major":    2,
	"medium":   3,
	"normal":   3,
	"minor":    4,
	"low":      4,
	"lowest":   5,
	"trivial":  5,
}

// CompareField compares two issues on the named field for sorting. The
// "priority" field uses severity ranking; "key" compares issue keys; every
// other field compares lexically. Missing values sort last.
func CompareField(a, b *Issue, field string) int {
	if field == "" || field == "key" {
		return strings.Compare(a.Key, b.Key)
	}

	av, aok := a.Field(field)
	bv, bok := b.Field(field)
	if !aok || !bok {
		if aok {
			return -1
		}
		if bok {
			return 1
		}
		return 0
	}

	if field == "priority" {
		ar, arok := priorityRank[strings.ToLower(av)]
		br, brok := priorityRank[strings.ToLower(bv)]
		if arok && brok {
			if ar != br {
				return ar - br
			}
			return 0
		}
	}

	return strings.Compare(av, bv)
}
