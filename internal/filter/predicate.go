package filter

import (
	"fmt"
	"strings"

	"github.com/riptano/argus/internal/model"
)

// Op is a leaf comparison operator.
type Op string

const (
	OpEquals    Op = "equals"
	OpNotEquals Op = "not-equals"
	OpContains  Op = "contains"
	OpInSet     Op = "in-set"
)

// ParseOp converts a string to an Op, rejecting unknown operators.
func ParseOp(s string) (Op, error) {
	switch Op(s) {
	case OpEquals, OpNotEquals, OpContains, OpInSet:
		return Op(s), nil
	}
	return "", &Error{Reason: fmt.Sprintf("unknown operator %q", s)}
}

// Predicate is one node of a filter tree evaluated against a single issue.
// Evaluation is pure and total: a missing field is a non-match, never an
// error.
type Predicate interface {
	// Evaluate reports whether the issue matches.
	Evaluate(issue *model.Issue) bool

	// String renders a readable form for logs and error messages.
	String() string
}

// Leaf tests one field against a value (or value set for in-set).
type Leaf struct {
	Field  string
	Op     Op
	Value  string
	Values []string // in-set only
}

func (l *Leaf) Evaluate(issue *model.Issue) bool {
	v, ok := issue.Field(l.Field)
	if !ok {
		// not-equals on a missing field is still a non-match: we can't
		// assert anything about a field the issue doesn't carry.
		return false
	}

	switch l.Op {
	case OpEquals:
		return v == l.Value
	case OpNotEquals:
		return v != l.Value
	case OpContains:
		return strings.Contains(strings.ToLower(v), strings.ToLower(l.Value))
	case OpInSet:
		for _, candidate := range l.Values {
			if v == candidate {
				return true
			}
		}
		return false
	}
	return false
}

func (l *Leaf) String() string {
	if l.Op == OpInSet {
		return fmt.Sprintf("%s %s (%s)", l.Field, l.Op, strings.Join(l.Values, ", "))
	}
	return fmt.Sprintf("%s %s %q", l.Field, l.Op, l.Value)
}

// And matches when every child matches. An empty And is vacuously true.
type And struct {
	Children []Predicate
}

func (a *And) Evaluate(issue *model.Issue) bool {
	for _, c := range a.Children {
		if !c.Evaluate(issue) {
			return false
		}
	}
	return true
}

func (a *And) String() string { return composite("AND", a.Children) }

// Or matches when at least one child matches. An empty Or is false.
type Or struct {
	Children []Predicate
}

func (o *Or) Evaluate(issue *model.Issue) bool {
	for _, c := range o.Children {
		if c.Evaluate(issue) {
			return true
		}
	}
	return false
}

func (o *Or) String() string { return composite("OR", o.Children) }

// Not inverts its child.
type Not struct {
	Child Predicate
}

func (n *Not) Evaluate(issue *model.Issue) bool {
	return !n.Child.Evaluate(issue)
}

func (n *Not) String() string { return "NOT(" + n.Child.String() + ")" }

func composite(kind string, children []Predicate) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
	}
	return kind + "(" + strings.Join(parts, "; ") + ")"
}

// Equals builds an equality leaf.
func Equals(field, value string) *Leaf {
	return &Leaf{Field: field, Op: OpEquals, Value: value}
}

// Contains builds a case-insensitive substring leaf.
func Contains(field, value string) *Leaf {
	return &Leaf{Field: field, Op: OpContains, Value: value}
}

// InSet builds a set-membership leaf.
func InSet(field string, values ...string) *Leaf {
	return &Leaf{Field: field, Op: OpInSet, Values: values}
}

// AllOf combines predicates with AND.
func AllOf(children ...Predicate) *And { return &And{Children: children} }

// AnyOf combines predicates with OR.
func AnyOf(children ...Predicate) *Or { return &Or{Children: children} }
