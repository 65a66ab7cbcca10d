package filter

import (
	"testing"

	"github.com/riptano/argus/internal/model"
)

func testIssue() *model.Issue {
	return &model.Issue{
		Key:        "PROJ-123",
		Project:    "PROJ",
		Connection: "primary",
		Fields: map[string]string{
			"status":   "Open",
			"assignee": "jdoe",
			"priority": "High",
			"summary":  "Cache invalidation breaks on restart",
			"labels":   "cache,startup",
		},
	}
}

func TestLeafEvaluate(t *testing.T) {
	issue := testIssue()

	tests := []struct {
		name string
		leaf *Leaf
		want bool
	}{
		{
			name: "equals match",
			leaf: Equals("status", "Open"),
			want: true,
		},
		{
			name: "equals mismatch",
			leaf: Equals("status", "Closed"),
			want: false,
		},
		{
			name: "equals is case sensitive",
			leaf: Equals("status", "open"),
			want: false,
		},
		{
			name: "not-equals match",
			leaf: &Leaf{Field: "status", Op: OpNotEquals, Value: "Closed"},
			want: true,
		},
		{
			name: "not-equals mismatch",
			leaf: &Leaf{Field: "status", Op: OpNotEquals, Value: "Open"},
			want: false,
		},
		{
			name: "contains is case insensitive",
			leaf: Contains("summary", "CACHE"),
			want: true,
		},
		{
			name: "contains no match",
			leaf: Contains("summary", "jenkins"),
			want: false,
		},
		{
			name: "in-set match",
			leaf: InSet("assignee", "alice", "jdoe"),
			want: true,
		},
		{
			name: "in-set no match",
			leaf: InSet("assignee", "alice", "bob"),
			want: false,
		},
		{
			name: "empty in-set never matches",
			leaf: InSet("assignee"),
			want: false,
		},
		{
			name: "missing field equals",
			leaf: Equals("reviewer", "jdoe"),
			want: false,
		},
		{
			name: "missing field not-equals is still false",
			leaf: &Leaf{Field: "reviewer", Op: OpNotEquals, Value: "jdoe"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.leaf.Evaluate(issue); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompositeEvaluate(t *testing.T) {
	issue := testIssue()

	tests := []struct {
		name string
		pred Predicate
		want bool
	}{
		{
			name: "empty and is vacuously true",
			pred: AllOf(),
			want: true,
		},
		{
			name: "empty or is false",
			pred: AnyOf(),
			want: false,
		},
		{
			name: "and all match",
			pred: AllOf(Equals("status", "Open"), Equals("assignee", "jdoe")),
			want: true,
		},
		{
			name: "and one fails",
			pred: AllOf(Equals("status", "Open"), Equals("assignee", "alice")),
			want: false,
		},
		{
			name: "or one matches",
			pred: AnyOf(Equals("status", "Closed"), Equals("assignee", "jdoe")),
			want: true,
		},
		{
			name: "or none match",
			pred: AnyOf(Equals("status", "Closed"), Equals("assignee", "alice")),
			want: false,
		},
		{
			name: "not inverts",
			pred: &Not{Child: Equals("status", "Closed")},
			want: true,
		},
		{
			name: "nested include minus exclude",
			pred: AllOf(
				AnyOf(Equals("priority", "High"), Equals("priority", "Urgent")),
				&Not{Child: Contains("labels", "wontfix")},
			),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred.Evaluate(issue); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateNeverMutates(t *testing.T) {
	issue := testIssue()
	before := len(issue.Fields)

	pred := AllOf(Equals("status", "Open"), &Not{Child: Equals("missing", "x")})
	_ = pred.Evaluate(issue)

	if len(issue.Fields) != before {
		t.Fatalf("evaluation mutated issue fields: %d -> %d", before, len(issue.Fields))
	}
}
