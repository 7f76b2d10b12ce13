package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/rstindex/internal/storage"
	"github.com/dshills/rstindex/pkg/types"
)

// The four collections every database carries.
const (
	CollectionClasses   = "classes"   // extension-point catalog entries
	CollectionDocuments = "documents" // per-document metadata
	CollectionElements  = "elements"  // syntactic elements per document
	CollectionLinting   = "linting"   // diagnostics per document
)

// catalogCacheSize bounds the per-variant lookup caches. Workspaces rarely
// register more than a few hundred extension points.
const catalogCacheSize = 512

// Config selects the backing store for a Database.
type Config struct {
	// Path of the database file. Ignored with InMemory.
	Path string
	// InMemory keeps all data in process memory (ephemeral).
	InMemory bool
	// BufferWrites defers persistence until Flush or Close. Pair with a
	// deferred Close: unflushed writes are lost on abnormal termination.
	BufferWrites bool
}

// Database stores language-server data for one workspace.
type Database struct {
	store *storage.Store

	roleCache      *lru.Cache[string, types.Record]
	directiveCache *lru.Cache[string, types.Record]
}

// New opens a database per cfg, creating the backing store as needed.
func New(cfg Config) (*Database, error) {
	store, err := storage.Open(cfg.Path, storage.Options{
		InMemory:     cfg.InMemory,
		BufferWrites: cfg.BufferWrites,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	roleCache, err := lru.New[string, types.Record](catalogCacheSize)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	directiveCache, err := lru.New[string, types.Record](catalogCacheSize)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Database{
		store:          store,
		roleCache:      roleCache,
		directiveCache: directiveCache,
	}, nil
}

// Close flushes buffered writes and releases the backing store.
func (d *Database) Close() error {
	return d.store.Close()
}

// Flush persists buffered writes without closing.
func (d *Database) Flush() error {
	return d.store.Flush()
}

// Path returns the backing file path, or "" for in-memory databases.
func (d *Database) Path() string {
	return d.store.Path()
}

// currentTime is the single clock for write stamps: UTC, ISO-8601 text.
// Caller-supplied timestamps are never accepted.
func currentTime() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func variantIs(field, value string) storage.Predicate {
	return storage.Compose([]storage.Cond{{Field: field, Match: storage.Is(value)}})
}

// Catalog operations

// RefreshCatalog replaces the entire role set and the entire directive set
// with the supplied mappings. Entries are inserted in name order so repeated
// refreshes of the same catalog produce the same scan order.
func (d *Database) RefreshCatalog(ctx context.Context, roles map[string]types.RoleSpec, directives map[string]types.DirectiveSpec) error {
	if err := d.store.Remove(ctx, CollectionClasses, variantIs(types.FieldElement, types.ElementRole)); err != nil {
		return err
	}
	roleRecs := make([]types.Record, 0, len(roles))
	for _, name := range sortedKeys(roles) {
		roleRecs = append(roleRecs, types.RoleRecord(name, roles[name]))
	}
	if err := d.store.InsertMany(ctx, CollectionClasses, roleRecs); err != nil {
		return err
	}

	if err := d.store.Remove(ctx, CollectionClasses, variantIs(types.FieldElement, types.ElementDirective)); err != nil {
		return err
	}
	directiveRecs := make([]types.Record, 0, len(directives))
	for _, name := range sortedKeys(directives) {
		directiveRecs = append(directiveRecs, types.DirectiveRecord(name, directives[name]))
	}
	if err := d.store.InsertMany(ctx, CollectionClasses, directiveRecs); err != nil {
		return err
	}

	d.roleCache.Purge()
	d.directiveCache.Purge()
	return nil
}

// Role returns the catalog entry for a single role, or storage.ErrNotFound.
func (d *Database) Role(ctx context.Context, name string) (types.Record, error) {
	return d.catalogEntry(ctx, d.roleCache, types.ElementRole, name)
}

// Directive returns the catalog entry for a single directive, or
// storage.ErrNotFound.
func (d *Database) Directive(ctx context.Context, name string) (types.Record, error) {
	return d.catalogEntry(ctx, d.directiveCache, types.ElementDirective, name)
}

func (d *Database) catalogEntry(ctx context.Context, cache *lru.Cache[string, types.Record], variant, name string) (types.Record, error) {
	if rec, ok := cache.Get(name); ok {
		return rec.Clone(), nil
	}
	rec, err := d.store.Get(ctx, CollectionClasses, storage.Compose([]storage.Cond{
		{Field: types.FieldElement, Match: storage.Is(variant)},
		{Field: types.FieldName, Match: storage.Is(name)},
	}))
	if err != nil {
		return nil, err
	}
	cache.Add(name, rec.Clone())
	return rec, nil
}

// Roles returns catalog entries for the named roles. A nil names slice
// returns every role; an empty non-nil slice returns none.
func (d *Database) Roles(ctx context.Context, names []string) ([]types.Record, error) {
	return d.catalogEntries(ctx, types.ElementRole, names)
}

// Directives returns catalog entries for the named directives, with the
// same optional-list semantics as Roles.
func (d *Database) Directives(ctx context.Context, names []string) ([]types.Record, error) {
	return d.catalogEntries(ctx, types.ElementDirective, names)
}

func (d *Database) catalogEntries(ctx context.Context, variant string, names []string) ([]types.Record, error) {
	conds := []storage.Cond{{Field: types.FieldElement, Match: storage.Is(variant)}}
	if names != nil {
		conds = append(conds, storage.Cond{Field: types.FieldName, Match: storage.AnyOfStrings(names)})
	}
	return d.store.Search(ctx, CollectionClasses, storage.Compose(conds))
}

// Configuration document

// SetConfigurationDocument records which configuration file governs the
// workspace and refreshes the extension-point catalog it yields. An empty
// uri clears the configuration document; at most one exists at any time.
func (d *Database) SetConfigurationDocument(ctx context.Context, uri string, roles map[string]types.RoleSpec, directives map[string]types.DirectiveSpec) error {
	if err := d.store.Remove(ctx, CollectionDocuments, variantIs(types.FieldDType, types.DTypeConfiguration)); err != nil {
		return err
	}
	if uri != "" {
		err := d.store.Insert(ctx, CollectionDocuments, types.Record{
			types.FieldDType:    types.DTypeConfiguration,
			types.FieldURI:      uri,
			types.FieldModified: currentTime(),
		})
		if err != nil {
			return err
		}
	}
	return d.RefreshCatalog(ctx, roles, directives)
}

// ConfigurationDocument returns the configuration record, or
// storage.ErrNotFound when no configuration file is set.
func (d *Database) ConfigurationDocument(ctx context.Context) (types.Record, error) {
	return d.store.Get(ctx, CollectionDocuments, variantIs(types.FieldDType, types.DTypeConfiguration))
}

// Source documents

// UpdateDocument records a full re-index of one source document: its parse
// extents, its elements, and its diagnostics. Element and lint rows for the
// URI are replaced wholesale; there is no partial update.
func (d *Database) UpdateDocument(ctx context.Context, uri string, endline, endchar int, elements, lints []types.Record) error {
	err := d.store.Upsert(ctx, CollectionDocuments, types.Record{
		types.FieldDType:    types.DTypeSource,
		types.FieldURI:      uri,
		types.FieldModified: currentTime(),
		types.FieldEndLine:  endline,
		types.FieldEndChar:  endchar,
	}, storage.Compose([]storage.Cond{
		{Field: types.FieldDType, Match: storage.Is(types.DTypeSource)},
		{Field: types.FieldURI, Match: storage.Is(uri)},
	}))
	if err != nil {
		return err
	}
	if err := d.replaceForURI(ctx, CollectionElements, uri, elements); err != nil {
		return err
	}
	return d.replaceForURI(ctx, CollectionLinting, uri, lints)
}

// replaceForURI swaps every record for a URI with the supplied ones, each
// stamped with the URI. A record carrying its own uri field keeps it.
func (d *Database) replaceForURI(ctx context.Context, collection, uri string, recs []types.Record) error {
	err := d.store.Remove(ctx, collection, storage.Compose([]storage.Cond{
		{Field: types.FieldURI, Match: storage.Is(uri)},
	}))
	if err != nil {
		return err
	}
	stamped := make([]types.Record, 0, len(recs))
	for _, rec := range recs {
		out := types.Record{types.FieldURI: uri}
		for k, v := range rec {
			out[k] = v
		}
		stamped = append(stamped, out)
	}
	return d.store.InsertMany(ctx, collection, stamped)
}

// Document returns the source document record for a URI, or
// storage.ErrNotFound.
func (d *Database) Document(ctx context.Context, uri string) (types.Record, error) {
	return d.store.Get(ctx, CollectionDocuments, storage.Compose([]storage.Cond{
		{Field: types.FieldDType, Match: storage.Is(types.DTypeSource)},
		{Field: types.FieldURI, Match: storage.Is(uri)},
	}))
}

// Documents returns source document records for the given URIs. A nil uris
// slice returns every source document; an empty non-nil slice returns none.
func (d *Database) Documents(ctx context.Context, uris []string) ([]types.Record, error) {
	conds := []storage.Cond{{Field: types.FieldDType, Match: storage.Is(types.DTypeSource)}}
	if uris != nil {
		conds = append(conds, storage.Cond{Field: types.FieldURI, Match: storage.AnyOfStrings(uris)})
	}
	return d.store.Search(ctx, CollectionDocuments, storage.Compose(conds))
}

// QueryLint returns every diagnostic recorded for a URI.
func (d *Database) QueryLint(ctx context.Context, uri string) ([]types.Record, error) {
	return d.store.Search(ctx, CollectionLinting, storage.Compose([]storage.Cond{
		{Field: types.FieldURI, Match: storage.Is(uri)},
	}))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
