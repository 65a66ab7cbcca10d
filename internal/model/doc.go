// Package model defines the data structures shared across Argus.
//
// The central type is [Issue], a flattened field name -> value snapshot of a
// remote tracker work item. Issues are owned by exactly one project's cache
// and replaced whole on sync; no code mutates an issue piecemeal.
//
// [Connection] describes a configured tracker endpoint, including its
// custom-field translation table, and [Team] / [TeamMember] map logical
// people to per-connection usernames for cross-tracker filtering.
package model
