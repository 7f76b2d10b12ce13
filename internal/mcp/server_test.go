package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/rstindex/internal/database"
	"github.com/dshills/rstindex/pkg/types"
)

type fakeRole struct{ doc, module string }

func (r fakeRole) Documentation() string { return r.doc }
func (r fakeRole) Module() string        { return r.module }

func setupTestServer(t *testing.T) *Server {
	s, err := NewServer(database.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.db.Close() })
	return s
}

func seedWorkspace(t *testing.T, s *Server) {
	ctx := context.Background()
	roles := map[string]types.RoleSpec{
		"math": fakeRole{doc: "Inline math.", module: "docutils.parsers.rst.roles"},
		"ref":  fakeRole{doc: "Cross reference.", module: "sphinx.roles"},
	}
	require.NoError(t, s.db.SetConfigurationDocument(ctx, "file:///conf.py", roles, nil))
	require.NoError(t, s.db.UpdateDocument(ctx, "file:///index.rst", 30, 0,
		[]types.Record{
			{types.FieldElement: "role", types.FieldType: "math", types.FieldLine: 4},
			{types.FieldElement: "directive", types.FieldType: "image", types.FieldLine: 9},
		},
		[]types.Record{
			{"line": 12, "description": "Title underline too short."},
		}))
}

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultPayload(t *testing.T, res *mcp.CallToolResult) map[string]interface{} {
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "tool results should be text content")

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func TestNewServer(t *testing.T) {
	s := setupTestServer(t)
	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.db)
}

func TestQueryRolesTool(t *testing.T) {
	s := setupTestServer(t)
	seedWorkspace(t, s)
	ctx := context.Background()

	res, err := s.handleQueryRoles(ctx, toolRequest("query_roles", nil))
	require.NoError(t, err)
	payload := resultPayload(t, res)
	assert.Equal(t, float64(2), payload["count"])

	res, err = s.handleQueryRoles(ctx, toolRequest("query_roles", map[string]interface{}{
		"names": []interface{}{"math"},
	}))
	require.NoError(t, err)
	payload = resultPayload(t, res)
	assert.Equal(t, float64(1), payload["count"])
	results := payload["results"].([]interface{})
	rec := results[0].(map[string]interface{})
	assert.Equal(t, "math", rec["name"])
	assert.Equal(t, "Inline math.", rec["description"])
}

func TestQueryRolesTool_BadNames(t *testing.T) {
	s := setupTestServer(t)

	_, err := s.handleQueryRoles(context.Background(), toolRequest("query_roles", map[string]interface{}{
		"names": "math",
	}))
	require.Error(t, err)
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestQueryDocumentsTool(t *testing.T) {
	s := setupTestServer(t)
	seedWorkspace(t, s)

	res, err := s.handleQueryDocuments(context.Background(), toolRequest("query_documents", nil))
	require.NoError(t, err)
	payload := resultPayload(t, res)
	assert.Equal(t, float64(1), payload["count"])

	results := payload["results"].([]interface{})
	rec := results[0].(map[string]interface{})
	assert.Equal(t, "file:///index.rst", rec["uri"])
	assert.Equal(t, "rst", rec["dtype"])
}

func TestQueryElementsTool(t *testing.T) {
	s := setupTestServer(t)
	seedWorkspace(t, s)
	ctx := context.Background()

	// No constraints returns everything.
	res, err := s.handleQueryElements(ctx, toolRequest("query_elements", nil))
	require.NoError(t, err)
	assert.Equal(t, float64(2), resultPayload(t, res)["count"])

	// Equality on a single field.
	res, err = s.handleQueryElements(ctx, toolRequest("query_elements", map[string]interface{}{
		"etype": "math",
	}))
	require.NoError(t, err)
	assert.Equal(t, float64(1), resultPayload(t, res)["count"])

	// Membership, including a line number arriving as JSON float.
	res, err = s.handleQueryElements(ctx, toolRequest("query_elements", map[string]interface{}{
		"lineno": []interface{}{float64(4), float64(5)},
	}))
	require.NoError(t, err)
	assert.Equal(t, float64(1), resultPayload(t, res)["count"])

	// Empty membership set matches nothing.
	res, err = s.handleQueryElements(ctx, toolRequest("query_elements", map[string]interface{}{
		"uri": []interface{}{},
	}))
	require.NoError(t, err)
	assert.Equal(t, float64(0), resultPayload(t, res)["count"])
}

func TestQueryLintTool(t *testing.T) {
	s := setupTestServer(t)
	seedWorkspace(t, s)
	ctx := context.Background()

	res, err := s.handleQueryLint(ctx, toolRequest("query_lint", map[string]interface{}{
		"uri": "file:///index.rst",
	}))
	require.NoError(t, err)
	payload := resultPayload(t, res)
	assert.Equal(t, float64(1), payload["count"])

	_, err = s.handleQueryLint(ctx, toolRequest("query_lint", map[string]interface{}{}))
	require.Error(t, err)
}

func TestGetStatusTool(t *testing.T) {
	s := setupTestServer(t)
	seedWorkspace(t, s)

	res, err := s.handleGetStatus(context.Background(), toolRequest("get_status", nil))
	require.NoError(t, err)
	payload := resultPayload(t, res)

	assert.Equal(t, true, payload["has_configuration"])
	stats := payload["statistics"].(map[string]interface{})
	assert.Equal(t, float64(2), stats["roles"])
	assert.Equal(t, float64(1), stats["documents"])
	assert.Equal(t, float64(2), stats["elements"])
	assert.Equal(t, float64(1), stats["lints"])
}
