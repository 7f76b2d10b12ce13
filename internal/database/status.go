package database

import (
	"context"
	"errors"

	"github.com/dshills/rstindex/internal/storage"
)

// Status summarizes what the database currently holds.
type Status struct {
	Path             string
	BufferedWrites   bool
	HasConfiguration bool
	Roles            int
	Directives       int
	Documents        int
	Elements         int
	Lints            int
}

// Status reports collection statistics for the workspace.
func (d *Database) Status(ctx context.Context) (*Status, error) {
	status := &Status{
		Path:           d.store.Path(),
		BufferedWrites: d.store.Buffered(),
	}

	_, err := d.ConfigurationDocument(ctx)
	switch {
	case err == nil:
		status.HasConfiguration = true
	case errors.Is(err, storage.ErrNotFound):
		// No configuration document set.
	default:
		return nil, err
	}

	roles, err := d.Roles(ctx, nil)
	if err != nil {
		return nil, err
	}
	status.Roles = len(roles)

	directives, err := d.Directives(ctx, nil)
	if err != nil {
		return nil, err
	}
	status.Directives = len(directives)

	docs, err := d.Documents(ctx, nil)
	if err != nil {
		return nil, err
	}
	status.Documents = len(docs)

	status.Elements, err = d.store.Count(ctx, CollectionElements)
	if err != nil {
		return nil, err
	}
	status.Lints, err = d.store.Count(ctx, CollectionLinting)
	if err != nil {
		return nil, err
	}

	return status, nil
}
