// Package types provides shared type definitions for the rstindex store.
//
// This package defines the record shapes held by the backing collections and
// the extraction boundary for extension-point metadata.
//
// # Records
//
// Record is the universal document shape: a flat map of named fields. The
// store imposes no schema beyond a handful of well-known keys; the tagged
// variants that actually occur in each collection are documented on the
// field constants below.
//
// Catalog entries come in two variants, tagged by the "element" field:
//
//	{element: "role", name, description, module}
//	{element: "directive", name, description, klass,
//	 required_arguments, optional_arguments, has_content, options}
//
// Document rows are tagged by "dtype": "configuration" for the single
// workspace configuration file, "rst" for indexed source documents.
//
// # Extension-point extraction
//
// RoleSpec and DirectiveSpec model the foreign objects the host markup
// language registers for each extension point. rstindex only reads the
// descriptive fields they expose; it never interprets them. RoleRecord and
// DirectiveRecord are the pure extraction functions that flatten a spec
// into its catalog record:
//
//	rec := types.DirectiveRecord("code-block", spec)
//	// {element: "directive", name: "code-block", ...}
package types
