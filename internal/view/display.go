package view

import (
	"fmt"
	"strings"

	"github.com/riptano/argus/internal/model"
)

// Column describes one displayed field.
type Column struct {
	// Field is the issue field name the column shows; "key" shows the
	// issue key.
	Field string

	// Title is the header text; defaults to Field when empty.
	Title string

	// Width truncates values for tabular output; 0 means unbounded.
	Width int
}

func (c Column) title() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Field
}

// DefaultColumns is the column set used when a view doesn't configure its
// own.
func DefaultColumns() []Column {
	return []Column{
		{Field: "key", Title: "key", Width: 12},
		{Field: "assignee", Width: 12},
		{Field: "summary", Width: 50},
		{Field: "issuetype", Title: "type", Width: 8},
		{Field: "priority", Title: "prio", Width: 8},
		{Field: "resolution", Width: 12},
		{Field: "status", Width: 12},
		{Field: "updated", Width: 20},
	}
}

// DisplayFilter narrows and re-sorts an already-resolved result set for
// interactive refinement. It is pure: it works on the slice it is given and
// never touches the issue store or the network.
type DisplayFilter struct {
	Columns []Column

	refinements []string
	sortKey     string
}

// NewDisplayFilter builds a DisplayFilter over the given columns, falling
// back to DefaultColumns.
func NewDisplayFilter(columns []Column) *DisplayFilter {
	if len(columns) == 0 {
		columns = DefaultColumns()
	}
	return &DisplayFilter{Columns: columns}
}

// Refine adds a substring refinement; only issues matching every active
// refinement pass Apply.
func (d *DisplayFilter) Refine(substring string) {
	if substring != "" {
		d.refinements = append(d.refinements, substring)
	}
}

// ClearRefinements drops all active refinements.
func (d *DisplayFilter) ClearRefinements() {
	d.refinements = nil
}

// SortBy re-sorts Apply output by the given field.
func (d *DisplayFilter) SortBy(field string) {
	d.sortKey = field
}

// Apply returns a new slice holding the issues that pass every active
// refinement, re-sorted when a sort key is set. The input is not modified.
func (d *DisplayFilter) Apply(issues []model.Issue) []model.Issue {
	out := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.MatchesAll(d.refinements) {
			out = append(out, issue)
		}
	}
	if d.sortKey != "" {
		sortIssues(out, d.sortKey)
	}
	return out
}

// Project returns the issue's values for the configured columns, truncated
// to each column's width.
func (d *DisplayFilter) Project(issue *model.Issue) []string {
	values := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		var v string
		if col.Field == "key" {
			v = issue.Key
		} else {
			v, _ = issue.Field(col.Field)
		}
		if col.Width > 0 && len(v) > col.Width {
			v = v[:col.Width]
		}
		values[i] = v
	}
	return values
}

// Header returns the column titles, padded like Project output.
func (d *DisplayFilter) Header() []string {
	titles := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		t := col.title()
		if col.Width > 0 && len(t) > col.Width {
			t = t[:col.Width]
		}
		titles[i] = t
	}
	return titles
}

// RenderTable renders issues as an aligned text table for plain terminal
// output.
func (d *DisplayFilter) RenderTable(issues []model.Issue) string {
	widths := make([]int, len(d.Columns))
	for i, col := range d.Columns {
		widths[i] = len(col.title())
		if col.Width > 0 && col.Width > widths[i] {
			widths[i] = col.Width
		}
	}

	var b strings.Builder
	writeRow := func(values []string) {
		for i, v := range values {
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[i], v)
		}
		b.WriteString("\n")
	}

	writeRow(d.Header())
	for i := range issues {
		writeRow(d.Project(&issues[i]))
	}
	return b.String()
}
