package types

// RoleSpec describes a registered inline role. Implementations live in the
// extension-point introspection layer; the store only reads these fields.
type RoleSpec interface {
	// Documentation returns the role's docstring, or "" when undocumented.
	Documentation() string
	// Module returns the dotted path of the module defining the role.
	Module() string
}

// DirectiveSpec describes a registered block directive.
type DirectiveSpec interface {
	// Documentation returns the directive's docstring, or "" when undocumented.
	Documentation() string
	// ClassName returns the fully qualified name of the implementing class.
	ClassName() string
	RequiredArguments() int
	OptionalArguments() int
	HasContent() bool
	// Options maps option names to the name of their conversion type.
	Options() map[string]string
}

// RoleRecord flattens a role spec into its catalog record.
func RoleRecord(name string, role RoleSpec) Record {
	return Record{
		FieldElement:     ElementRole,
		FieldName:        name,
		FieldDescription: role.Documentation(),
		FieldModule:      role.Module(),
	}
}

// DirectiveRecord flattens a directive spec into its catalog record.
// Option types are stored by name only; the store never interprets them.
func DirectiveRecord(name string, directive DirectiveSpec) Record {
	options := directive.Options()
	if options == nil {
		options = map[string]string{}
	}
	return Record{
		FieldElement:           ElementDirective,
		FieldName:              name,
		FieldDescription:       directive.Documentation(),
		FieldClass:             directive.ClassName(),
		FieldRequiredArguments: directive.RequiredArguments(),
		FieldOptionalArguments: directive.OptionalArguments(),
		FieldHasContent:        directive.HasContent(),
		FieldOptions:           options,
	}
}
