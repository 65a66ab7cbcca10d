package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/riptano/argus/internal/model"
)

// Dashboard is an ordered sequence of view references merged into one
// listing.
type Dashboard struct {
	Name  string
	Views []string // view names in declaration order
}

// Validate checks the structural invariants of the definition.
func (d *Dashboard) Validate() error {
	if len(d.Views) < 2 {
		return &model.ConfigError{
			What: fmt.Sprintf("dashboard %q", d.Name),
			Err:  errors.New("needs at least two views"),
		}
	}
	return nil
}

// Entry is one dashboard row: an issue attributed to the view that matched
// it.
type Entry struct {
	View  string
	Issue model.Issue
}

// ResolveDashboard resolves every referenced view in declaration order and
// concatenates the results, de-duplicated by issue key: an issue matched by
// several views appears once, attributed to the first view that matched it.
//
// A failing view degrades rather than aborts: its contribution is skipped
// and its error, naming the view, is returned alongside the entries from
// the views that worked.
func (r *Resolver) ResolveDashboard(ctx context.Context, d *Dashboard) ([]Entry, []error) {
	if err := d.Validate(); err != nil {
		return nil, []error{err}
	}

	var (
		entries []Entry
		errs    []error
	)
	seen := make(map[string]bool)

	for _, name := range d.Views {
		v, ok := r.views[name]
		if !ok {
			errs = append(errs, &model.ConfigError{
				What: fmt.Sprintf("dashboard %q", d.Name),
				Err:  fmt.Errorf("view %q is not configured", name),
			})
			continue
		}

		issues, err := r.Resolve(ctx, v)
		if err != nil {
			errs = append(errs, fmt.Errorf("dashboard %q: %w", d.Name, err))
			continue
		}

		for _, issue := range issues {
			if seen[issue.Key] {
				continue
			}
			seen[issue.Key] = true
			entries = append(entries, Entry{View: name, Issue: issue})
		}
	}

	return entries, errs
}
