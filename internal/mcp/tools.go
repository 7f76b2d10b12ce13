package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/rstindex/internal/database"
	"github.com/dshills/rstindex/internal/storage"
	"github.com/dshills/rstindex/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
)

// handleQueryRoles handles the query_roles tool invocation
func (s *Server) handleQueryRoles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	names, err := getStringList(args, "names")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	recs, qerr := s.db.Roles(ctx, names)
	s.mu.Unlock()
	if qerr != nil {
		return nil, newMCPError(ErrorCodeInternalError, "role query failed", map[string]interface{}{
			"error": qerr.Error(),
		})
	}

	return recordsResult(recs), nil
}

// handleQueryDirectives handles the query_directives tool invocation
func (s *Server) handleQueryDirectives(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	names, err := getStringList(args, "names")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	recs, qerr := s.db.Directives(ctx, names)
	s.mu.Unlock()
	if qerr != nil {
		return nil, newMCPError(ErrorCodeInternalError, "directive query failed", map[string]interface{}{
			"error": qerr.Error(),
		})
	}

	return recordsResult(recs), nil
}

// handleQueryDocuments handles the query_documents tool invocation
func (s *Server) handleQueryDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	uris, err := getStringList(args, "uris")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	recs, qerr := s.db.Documents(ctx, uris)
	s.mu.Unlock()
	if qerr != nil {
		return nil, newMCPError(ErrorCodeInternalError, "document query failed", map[string]interface{}{
			"error": qerr.Error(),
		})
	}

	return recordsResult(recs), nil
}

// handleQueryElements handles the query_elements tool invocation
func (s *Server) handleQueryElements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	query := database.ElementQuery{
		Name:        toMatch(args, "name"),
		Type:        toMatch(args, "etype"),
		URI:         toMatch(args, "uri"),
		Line:        toMatch(args, "lineno"),
		SectionUUID: toMatch(args, "section_uuid"),
		UUID:        toMatch(args, "uuid"),
	}
	if where, ok := args["where"].(map[string]interface{}); ok {
		query.Extra = make(map[string]storage.Match, len(where))
		for field := range where {
			query.Extra[field] = toMatch(where, field)
		}
	}

	s.mu.Lock()
	recs, err := s.db.QueryElements(ctx, query)
	s.mu.Unlock()
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "element query failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return recordsResult(recs), nil
}

// handleQueryLint handles the query_lint tool invocation
func (s *Server) handleQueryLint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	uri, ok := args["uri"].(string)
	if !ok || uri == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "uri parameter is required", map[string]interface{}{
			"param":  "uri",
			"reason": "missing or empty",
		})
	}

	s.mu.Lock()
	recs, err := s.db.QueryLint(ctx, uri)
	s.mu.Unlock()
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "lint query failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return recordsResult(recs), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	status, err := s.db.Status(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"path":              status.Path,
		"buffered_writes":   status.BufferedWrites,
		"has_configuration": status.HasConfiguration,
		"statistics": map[string]interface{}{
			"roles":      status.Roles,
			"directives": status.Directives,
			"documents":  status.Documents,
			"elements":   status.Elements,
			"lints":      status.Lints,
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// recordsResult formats query results as indented JSON with a count.
func recordsResult(recs []types.Record) *mcp.CallToolResult {
	results := make([]interface{}, len(recs))
	for i, rec := range recs {
		results[i] = map[string]any(rec)
	}
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"count":   len(recs),
		"results": results,
	}))
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringList extracts an optional string-array parameter. A missing key
// yields nil (no filter); a present list yields its strings, preserving the
// empty-list-means-nothing semantics of the query layer.
func getStringList(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, key+" must be an array of strings", map[string]interface{}{
			"param": key,
		})
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, newMCPError(ErrorCodeInvalidParams, key+" must be an array of strings", map[string]interface{}{
				"param": key,
			})
		}
		out = append(out, s)
	}
	return out, nil
}

// toMatch converts a tool argument into a field constraint: absent is
// unset, an array is set membership, anything else is equality.
func toMatch(args map[string]interface{}, key string) storage.Match {
	raw, ok := args[key]
	if !ok {
		return storage.Match{}
	}
	if items, isList := raw.([]interface{}); isList {
		return storage.AnyOf(items...)
	}
	return storage.Is(raw)
}
