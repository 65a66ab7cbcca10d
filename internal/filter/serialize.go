package filter

import (
	"encoding/json"
	"fmt"
)

// The on-disk form is one tagged JSON object per node, which keeps saved
// filters human-editable:
//
//	{"and": [
//	  {"field": "status", "op": "equals", "value": "Open"},
//	  {"not": {"field": "assignee", "op": "in-set", "values": ["bob", "eve"]}}
//	]}
//
// Round-tripping preserves evaluation semantics exactly, including the empty
// and/or composites (vacuous truth and falsity).

// node is the decode shape. Absent keys stay nil, so an explicit empty
// composite ({"and": []}) is distinguishable from a leaf.
type node struct {
	And []json.RawMessage `json:"and"`
	Or  []json.RawMessage `json:"or"`
	Not json.RawMessage   `json:"not"`

	Field  string   `json:"field"`
	Op     string   `json:"op"`
	Value  string   `json:"value"`
	Values []string `json:"values"`
}

// Marshal renders a predicate tree as its JSON configuration form.
func Marshal(p Predicate) ([]byte, error) {
	v, err := toValue(p)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}

// Unmarshal parses the JSON configuration form back into a predicate tree.
// A malformed document returns a *Error; it never yields a partial tree.
func Unmarshal(data []byte) (Predicate, error) {
	var n node
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, &Error{Reason: "invalid predicate document", Err: err}
	}
	return fromNode(&n)
}

func toValue(p Predicate) (any, error) {
	switch t := p.(type) {
	case *Leaf:
		if t.Field == "" {
			return nil, &Error{Reason: "leaf predicate has empty field"}
		}
		m := map[string]any{"field": t.Field, "op": string(t.Op)}
		if t.Op == OpInSet {
			values := t.Values
			if values == nil {
				values = []string{}
			}
			m["values"] = values
		} else {
			m["value"] = t.Value
		}
		return m, nil
	case *And:
		children, err := toValues(t.Children)
		if err != nil {
			return nil, err
		}
		return map[string]any{"and": children}, nil
	case *Or:
		children, err := toValues(t.Children)
		if err != nil {
			return nil, err
		}
		return map[string]any{"or": children}, nil
	case *Not:
		child, err := toValue(t.Child)
		if err != nil {
			return nil, err
		}
		return map[string]any{"not": child}, nil
	}
	return nil, &Error{Reason: fmt.Sprintf("unknown predicate type %T", p)}
}

func toValues(children []Predicate) ([]any, error) {
	out := make([]any, 0, len(children))
	for _, c := range children {
		v, err := toValue(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func fromNode(n *node) (Predicate, error) {
	kinds := 0
	if n.And != nil {
		kinds++
	}
	if n.Or != nil {
		kinds++
	}
	if n.Not != nil {
		kinds++
	}
	if n.Field != "" {
		kinds++
	}
	if kinds != 1 {
		return nil, &Error{Reason: "predicate node must be exactly one of and/or/not/field"}
	}

	switch {
	case n.And != nil:
		children, err := fromChildren(n.And)
		if err != nil {
			return nil, err
		}
		return &And{Children: children}, nil
	case n.Or != nil:
		children, err := fromChildren(n.Or)
		if err != nil {
			return nil, err
		}
		return &Or{Children: children}, nil
	case n.Not != nil:
		var child node
		if err := json.Unmarshal(n.Not, &child); err != nil {
			return nil, &Error{Reason: "invalid not child", Err: err}
		}
		p, err := fromNode(&child)
		if err != nil {
			return nil, err
		}
		return &Not{Child: p}, nil
	default:
		op, err := ParseOp(n.Op)
		if err != nil {
			return nil, err
		}
		if op == OpInSet && n.Value != "" {
			return nil, &Error{Reason: fmt.Sprintf("field %s: in-set takes values, not value", n.Field)}
		}
		if op != OpInSet && len(n.Values) > 0 {
			return nil, &Error{Reason: fmt.Sprintf("field %s: %s takes value, not values", n.Field, op)}
		}
		return &Leaf{Field: n.Field, Op: op, Value: n.Value, Values: n.Values}, nil
	}
}

func fromChildren(raws []json.RawMessage) ([]Predicate, error) {
	out := make([]Predicate, 0, len(raws))
	for _, raw := range raws {
		var child node
		if err := json.Unmarshal(raw, &child); err != nil {
			return nil, &Error{Reason: "invalid composite child", Err: err}
		}
		p, err := fromNode(&child)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
