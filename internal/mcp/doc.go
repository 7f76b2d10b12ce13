// Package mcp exposes the rstindex database over the Model Context
// Protocol for inspection and editor tooling.
//
// The server speaks MCP over stdio and registers read-only tools against
// the query layer:
//
//   - query_roles       catalog lookup, all roles or a name list
//   - query_directives  same, for directives
//   - query_documents   source document metadata, all or a URI list
//   - query_elements    composed multi-field element queries
//   - query_lint        diagnostics for one document
//   - get_status        collection statistics for the workspace
//
// This is not the language-server protocol surface; LSP handlers live in
// the consuming server. These tools exist so agents and developers can ask
// "what does the index currently know" without going through a client.
//
// The database expects a single active caller, so every tool handler takes
// the server's mutex before touching it. Mutating the index remains the
// parser/linter pipeline's job; no tool writes.
package mcp
