// Package team builds cross-connection filters from team definitions, so
// one view can answer "everything assigned to this person (or this team)
// across every tracker" even when the person's username differs per
// instance.
package team

import (
	"errors"
	"fmt"
	"sort"

	"github.com/riptano/argus/internal/filter"
	"github.com/riptano/argus/internal/model"
	"github.com/riptano/argus/internal/view"
)

// MemberPredicate matches issues assigned to the member under any of their
// per-connection usernames.
func MemberPredicate(m *model.TeamMember) filter.Predicate {
	usernames := usernameSet(m.Usernames)
	return filter.InSet("assignee", usernames...)
}

// Predicate matches issues assigned to anyone on the team, on any
// connection the members have accounts for.
func Predicate(t *model.Team) filter.Predicate {
	var all []string
	seen := make(map[string]bool)
	for _, m := range t.Members {
		for _, u := range usernameSet(m.Usernames) {
			if !seen[u] {
				seen[u] = true
				all = append(all, u)
			}
		}
	}
	return filter.InSet("assignee", all...)
}

// MemberView builds an ad-hoc view over the member's work across the given
// connections.
func MemberView(m *model.TeamMember, connections []string) (*view.View, error) {
	if len(connections) == 0 {
		return nil, &model.ConfigError{
			What: fmt.Sprintf("member %q", m.Name),
			Err:  errors.New("no connections to search"),
		}
	}
	return &view.View{
		Name:        "member:" + m.Name,
		Connections: connections,
		Predicate:   MemberPredicate(m),
		SortKey:     "updated",
	}, nil
}

// TeamView builds an ad-hoc view over the whole team's work.
func TeamView(t *model.Team, connections []string) (*view.View, error) {
	if len(connections) == 0 {
		return nil, &model.ConfigError{
			What: fmt.Sprintf("team %q", t.Name),
			Err:  errors.New("no connections to search"),
		}
	}
	return &view.View{
		Name:        "team:" + t.Name,
		Connections: connections,
		Predicate:   Predicate(t),
		SortKey:     "assignee",
	}, nil
}

func usernameSet(byConnection map[string]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, u := range byConnection {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	sort.Strings(out)
	return out
}
