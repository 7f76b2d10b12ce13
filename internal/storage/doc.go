// Package storage provides the SQLite-backed collection store underneath the
// rstindex database.
//
// A Store holds any number of named collections. Each collection is an
// unordered bag of schema-less records (see types.Record) with an implicit
// identity assigned at insertion; the identity is never exposed to callers.
// Records are addressed purely by content, through predicate functions:
//
//	recs, err := store.Search(ctx, "elements", func(r types.Record) bool {
//	    return r["uri"] == uri
//	})
//
// Every operation is a whole-collection scan. The workloads this store
// serves (one language-server workspace) stay small enough that index
// acceleration buys nothing, and scanning keeps the record shape completely
// free.
//
// # Backing medium
//
// Records live in a single SQLite table as JSON bodies; the driver is
// selected at build time (see build_cgo.go and build_purego.go). Open
// selects between a file-backed database and an in-memory one:
//
//	st, err := storage.Open("workspace.db", storage.Options{})
//	st, err := storage.Open("", storage.Options{InMemory: true})
//
// Mutations are durable before the call returns. With Options.BufferWrites
// the store instead accumulates writes in one open transaction and persists
// them only on Flush or Close. Callers opting in must guarantee Close runs
// (defer it), because unflushed writes are lost on abnormal termination.
//
// # Filters
//
// filter.go builds composite predicates from per-field constraints. A
// constraint is equality (Is), set membership (AnyOf), or absent (the Match
// zero value); Compose ANDs the present ones and returns nil when none are,
// so callers fall back to All rather than matching nothing.
//
// # Concurrency
//
// A Store expects one active writer and no external concurrent callers;
// hosts serialize access themselves. This mirrors the single-process
// language-server deployment the store is built for.
package storage
