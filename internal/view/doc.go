// Package view turns the issue cache into ordered, presentable result
// sets.
//
// A [View] is a saved filter (predicate over the cache, or a raw remote
// query) bound to one or more connections. A [Dashboard] concatenates
// several views into one de-duplicated listing. [DisplayFilter] refines
// already-resolved results for interactive use without ever touching the
// store.
//
// [Resolver] carries the explicit dependencies resolution needs; there is
// no package-level state.
package view
