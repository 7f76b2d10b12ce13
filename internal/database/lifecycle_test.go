package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dshills/rstindex/internal/storage"
	"github.com/dshills/rstindex/pkg/types"
)

// WorkspaceLifecycleSuite drives a database through the sequence a language
// server performs: configuration load, initial indexing, re-indexing after
// edits, and configuration changes.
type WorkspaceLifecycleSuite struct {
	suite.Suite
	db  *Database
	ctx context.Context
}

func TestWorkspaceLifecycleSuite(t *testing.T) {
	suite.Run(t, new(WorkspaceLifecycleSuite))
}

func (s *WorkspaceLifecycleSuite) SetupTest() {
	db, err := New(Config{Path: filepath.Join(s.T().TempDir(), "workspace.db")})
	s.Require().NoError(err)
	s.db = db
	s.ctx = context.Background()
}

func (s *WorkspaceLifecycleSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *WorkspaceLifecycleSuite) TestFullWorkspaceCycle() {
	// Configuration load registers the extension points.
	err := s.db.SetConfigurationDocument(s.ctx, "file:///conf.py",
		testRoles("math", "ref"), testDirectives("image", "note"))
	s.Require().NoError(err)

	// Initial index of two documents.
	err = s.db.UpdateDocument(s.ctx, "file:///index.rst", 40, 0,
		[]types.Record{
			element("file:///index.rst", "directive", "image", 5),
			element("file:///index.rst", "role", "math", 11),
		},
		[]types.Record{{"line": 11, "description": "Inline math text is empty."}})
	s.Require().NoError(err)

	err = s.db.UpdateDocument(s.ctx, "file:///api.rst", 12, 4, []types.Record{
		element("file:///api.rst", "role", "ref", 2),
	}, nil)
	s.Require().NoError(err)

	docs, err := s.db.Documents(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(docs, 2)

	// An edit re-indexes one document; the other is untouched.
	err = s.db.UpdateDocument(s.ctx, "file:///index.rst", 41, 0, []types.Record{
		element("file:///index.rst", "directive", "note", 20),
	}, nil)
	s.Require().NoError(err)

	elems, err := s.db.QueryElements(s.ctx, ElementQuery{URI: storage.Is("file:///index.rst")})
	s.Require().NoError(err)
	s.Require().Len(elems, 1)
	s.Equal("note", elems[0][types.FieldType])

	lints, err := s.db.QueryLint(s.ctx, "file:///index.rst")
	s.Require().NoError(err)
	s.Empty(lints, "re-indexing clears stale diagnostics")

	other, err := s.db.QueryElements(s.ctx, ElementQuery{URI: storage.Is("file:///api.rst")})
	s.Require().NoError(err)
	s.Len(other, 1)

	// A configuration change swaps the catalog wholesale.
	err = s.db.SetConfigurationDocument(s.ctx, "file:///conf.py",
		testRoles("download"), testDirectives("image"))
	s.Require().NoError(err)

	roles, err := s.db.Roles(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(roles, 1)
	s.Equal("download", roles[0][types.FieldName])

	status, err := s.db.Status(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, status.Documents)
	s.Equal(2, status.Elements)
	s.Equal(0, status.Lints)
}

func (s *WorkspaceLifecycleSuite) TestReopenPersists() {
	path := s.db.Path()

	err := s.db.UpdateDocument(s.ctx, "file:///index.rst", 3, 0, []types.Record{
		element("file:///index.rst", "role", "math", 1),
	}, nil)
	s.Require().NoError(err)
	s.Require().NoError(s.db.Close())

	reopened, err := New(Config{Path: path})
	s.Require().NoError(err)
	s.db = reopened // TearDownTest closes it

	elems, err := reopened.QueryElements(s.ctx, ElementQuery{})
	s.Require().NoError(err)
	s.Len(elems, 1)
}
