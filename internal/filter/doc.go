// Package filter implements the composable boolean predicates that views
// evaluate against cached issues.
//
// A predicate is a tree of [Leaf] field tests combined with [And], [Or] and
// [Not]. Evaluation is pure and total: an issue missing the tested field is
// simply a non-match. The empty [And] is true and the empty [Or] is false,
// so composing zero filters behaves predictably.
//
// Trees serialize losslessly to a tagged JSON form via [Marshal] and
// [Unmarshal]; the persisted document is what view configuration files
// reference.
package filter
