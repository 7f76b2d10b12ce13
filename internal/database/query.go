package database

import (
	"context"

	"github.com/dshills/rstindex/internal/storage"
	"github.com/dshills/rstindex/pkg/types"
)

// ElementQuery is a set of independently optional constraints over the
// elements collection. The zero value of every field means "no constraint";
// a query with nothing set returns every element row. Use storage.Is for
// equality and storage.AnyOf for set membership.
type ElementQuery struct {
	// Name constrains the element category ("element" field).
	Name storage.Match
	// Type constrains the element type ("type" field).
	Type        storage.Match
	URI         storage.Match
	Line        storage.Match
	SectionUUID storage.Match
	UUID        storage.Match

	// Extra constrains arbitrary caller-supplied fields by name.
	Extra map[string]storage.Match
}

func (q ElementQuery) conds() []storage.Cond {
	conds := []storage.Cond{
		{Field: types.FieldURI, Match: q.URI},
		{Field: types.FieldType, Match: q.Type},
		{Field: types.FieldElement, Match: q.Name},
		{Field: types.FieldLine, Match: q.Line},
		{Field: types.FieldSectionUUID, Match: q.SectionUUID},
		{Field: types.FieldUUID, Match: q.UUID},
	}
	for _, field := range sortedKeys(q.Extra) {
		conds = append(conds, storage.Cond{Field: field, Match: q.Extra[field]})
	}
	return conds
}

// QueryElements returns the element records matching every set constraint,
// in insertion order. With no constraints set it returns all element rows.
func (d *Database) QueryElements(ctx context.Context, q ElementQuery) ([]types.Record, error) {
	return d.store.Search(ctx, CollectionElements, storage.Compose(q.conds()))
}
