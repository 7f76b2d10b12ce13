// Package database exposes the rstindex public API: the catalog, document,
// element and lint collections behind typed operations.
//
// A Database owns one collection store and is the single source of truth
// for what the server currently knows about a workspace. Writers hand it
// whole units of work (a full catalog refresh, a full re-index of one
// document) and it converts them into remove/insert cycles that keep the
// collection invariants without ever validating them after the fact:
//
//   - at most one configuration document row
//   - at most one source document row per URI
//   - catalog names unique within their variant
//
// Callers that bypass these update paths and write to the store directly
// can violate the invariants; that is a contract, not a runtime check.
//
// Read paths either fetch by key (Role, Directive, Document,
// ConfigurationDocument, returning ErrNotFound when absent) or run a composed
// filter (Roles, Directives, Documents, QueryElements). Single-name
// catalog lookups sit behind a small LRU cache that is purged on every
// refresh, because hover and completion hit them constantly.
//
// The Database expects exactly one active caller at a time; hosts
// serialize access (see internal/mcp for one way to do that).
package database
