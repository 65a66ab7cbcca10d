package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/riptano/argus/internal/model"
)

func TestMarshalRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		pred Predicate
	}{
		{name: "leaf equals", pred: Equals("status", "Open")},
		{name: "leaf in-set", pred: InSet("assignee", "alice", "bob")},
		{name: "empty and", pred: AllOf()},
		{name: "empty or", pred: AnyOf()},
		{name: "not", pred: &Not{Child: Equals("resolution", "Fixed")}},
		{
			name: "nested",
			pred: AllOf(
				AnyOf(Equals("priority", "High"), InSet("labels", "urgent", "blocker")),
				&Not{Child: Contains("summary", "flaky")},
			),
		},
	}

	issue := testIssue()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.pred)
			require.NoError(t, err)

			parsed, err := Unmarshal(data)
			require.NoError(t, err)

			require.Equal(t, tt.pred.Evaluate(issue), parsed.Evaluate(issue),
				"round-tripped predicate disagrees on evaluation")

			// a second round trip must serialize to the same document
			data2, err := Marshal(parsed)
			require.NoError(t, err)
			require.JSONEq(t, string(data), string(data2))
		})
	}
}

func TestUnmarshalRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "status = Open"},
		{name: "empty object", data: "{}"},
		{name: "mixed node kinds", data: `{"and": [], "field": "status", "op": "equals"}`},
		{name: "unknown operator", data: `{"field": "status", "op": "regex", "value": "x"}`},
		{name: "in-set with scalar value", data: `{"field": "status", "op": "in-set", "value": "Open"}`},
		{name: "equals with values list", data: `{"field": "status", "op": "equals", "values": ["Open"]}`},
		{name: "bad composite child", data: `{"or": [{"field": "status", "op": "bogus", "value": "x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			require.Error(t, err)

			var ferr *Error
			require.ErrorAs(t, err, &ferr)
		})
	}
}

func TestMarshalRejectsEmptyLeafField(t *testing.T) {
	// an empty field would serialize to a document Unmarshal rejects, so
	// Marshal refuses it up front instead of producing an unparseable file
	var ferr *Error

	_, err := Marshal(Equals("", "x"))
	require.ErrorAs(t, err, &ferr)

	_, err = Marshal(AllOf(Equals("status", "Open"), &Not{Child: InSet("")}))
	require.ErrorAs(t, err, &ferr)
}

var fieldNames = []string{"status", "assignee", "priority", "labels", "summary", "reviewer"}

var fieldValues = []string{"Open", "Closed", "High", "Low", "jdoe", "alice", "cache", ""}

// predicateGen draws an arbitrary predicate tree, depth-bounded so shrinking
// stays fast.
func predicateGen(depth int) *rapid.Generator[Predicate] {
	leaf := rapid.Custom(func(t *rapid.T) Predicate {
		field := rapid.SampledFrom(fieldNames).Draw(t, "field")
		op := rapid.SampledFrom([]Op{OpEquals, OpNotEquals, OpContains, OpInSet}).Draw(t, "op")
		if op == OpInSet {
			values := rapid.SliceOfN(rapid.SampledFrom(fieldValues), 0, 3).Draw(t, "values")
			return &Leaf{Field: field, Op: op, Values: values}
		}
		value := rapid.SampledFrom(fieldValues).Draw(t, "value")
		return &Leaf{Field: field, Op: op, Value: value}
	})
	if depth <= 0 {
		return leaf
	}

	child := predicateGen(depth - 1)
	composite := rapid.Custom(func(t *rapid.T) Predicate {
		switch rapid.IntRange(0, 2).Draw(t, "kind") {
		case 0:
			return &And{Children: rapid.SliceOfN(child, 0, 3).Draw(t, "and")}
		case 1:
			return &Or{Children: rapid.SliceOfN(child, 0, 3).Draw(t, "or")}
		default:
			return &Not{Child: child.Draw(t, "not")}
		}
	})
	return rapid.OneOf(leaf, composite)
}

func issueGen() *rapid.Generator[*model.Issue] {
	return rapid.Custom(func(t *rapid.T) *model.Issue {
		fields := make(map[string]string)
		for _, name := range fieldNames {
			if rapid.Bool().Draw(t, "has_"+name) {
				fields[name] = rapid.SampledFrom(fieldValues).Draw(t, "val_"+name)
			}
		}
		return &model.Issue{
			Key:        "PROJ-1",
			Project:    "PROJ",
			Connection: "primary",
			Fields:     fields,
		}
	})
}

// Property from the contract: for all trees P and issues I,
// evaluate(deserialize(serialize(P)), I) == evaluate(P, I).
func TestRoundTripEvaluationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pred := predicateGen(3).Draw(t, "pred")
		issue := issueGen().Draw(t, "issue")

		data, err := Marshal(pred)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		parsed, err := Unmarshal(data)
		if err != nil {
			t.Fatalf("Unmarshal: %v\ndocument: %s", err, data)
		}

		if pred.Evaluate(issue) != parsed.Evaluate(issue) {
			t.Fatalf("evaluation mismatch after round trip\noriginal: %s\nparsed: %s\ndocument: %s",
				pred, parsed, data)
		}
	})
}
