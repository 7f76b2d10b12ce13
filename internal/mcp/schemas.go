package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// nameListProperty is the shared shape of the optional name/URI list
// filters: absent means "everything", an empty list means "nothing".
func nameListProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items": map[string]interface{}{
			"type": "string",
		},
	}
}

// elementConstraintProperty describes a query_elements field constraint:
// a single value for equality or an array for set membership.
func elementConstraintProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"description": description + " (single value for equality, array for membership)",
	}
}

// queryRolesTool returns the tool definition for query_roles
func queryRolesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "query_roles",
		Description: "Look up catalog entries for registered inline roles",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"names": nameListProperty("Role names to fetch; omit to list every role"),
			},
		},
	}
}

// queryDirectivesTool returns the tool definition for query_directives
func queryDirectivesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "query_directives",
		Description: "Look up catalog entries for registered block directives",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"names": nameListProperty("Directive names to fetch; omit to list every directive"),
			},
		},
	}
}

// queryDocumentsTool returns the tool definition for query_documents
func queryDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "query_documents",
		Description: "Fetch metadata for indexed source documents",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"uris": nameListProperty("Document URIs to fetch; omit to list every document"),
			},
		},
	}
}

// queryElementsTool returns the tool definition for query_elements
func queryElementsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "query_elements",
		Description: "Query syntactic elements with optional per-field constraints; no constraints returns every element",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name":         elementConstraintProperty("Element category, e.g. 'role' or 'directive'"),
				"etype":        elementConstraintProperty("Element type, e.g. 'math' or 'code-block'"),
				"uri":          elementConstraintProperty("Document URI"),
				"lineno":       elementConstraintProperty("Line number"),
				"section_uuid": elementConstraintProperty("Enclosing section UUID"),
				"uuid":         elementConstraintProperty("Element UUID"),
				"where": map[string]interface{}{
					"type":        "object",
					"description": "Constraints on arbitrary extra record fields, field name to value or array of values",
				},
			},
		},
	}
}

// queryLintTool returns the tool definition for query_lint
func queryLintTool() mcp.Tool {
	return mcp.Tool{
		Name:        "query_lint",
		Description: "Fetch linting diagnostics recorded for one document",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"uri": map[string]interface{}{
					"type":        "string",
					"description": "Document URI",
				},
			},
			Required: []string{"uri"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report collection statistics for the workspace index",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
