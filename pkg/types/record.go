package types

import "encoding/json"

// Record is a single schema-less collection document: a flat mapping of
// field names to JSON-compatible values. Reads from the store always return
// detached copies, so mutating a Record never affects stored data.
type Record map[string]any

// Well-known record fields. Collections may carry arbitrary extra fields;
// these are the ones the store itself reads or injects.
const (
	// FieldElement tags catalog entries ("role" or "directive") and names
	// the element category on element records.
	FieldElement = "element"
	// FieldDType tags document rows ("configuration" or "rst").
	FieldDType = "dtype"

	FieldName              = "name"
	FieldDescription       = "description"
	FieldModule            = "module"
	FieldClass             = "klass"
	FieldRequiredArguments = "required_arguments"
	FieldOptionalArguments = "optional_arguments"
	FieldHasContent        = "has_content"
	FieldOptions           = "options"

	FieldURI      = "uri"
	FieldModified = "modified"
	FieldEndLine  = "endline"
	FieldEndChar  = "endchar"

	FieldType        = "type"
	FieldLine        = "lineno"
	FieldSectionUUID = "section_uuid"
	FieldUUID        = "uuid"
)

// Catalog entry variants.
const (
	ElementRole      = "role"
	ElementDirective = "directive"
)

// Document row variants.
const (
	DTypeConfiguration = "configuration"
	DTypeSource        = "rst"
)

// Clone returns a deep copy of the record by round-tripping through JSON.
// Nested maps and slices are copied, not shared.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		// Records reaching the store are JSON-encodable by contract; fall
		// back to a shallow copy for anything that is not.
		out := make(Record, len(r))
		for k, v := range r {
			out[k] = v
		}
		return out
	}
	var out Record
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}
