package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeRole struct {
	doc    string
	module string
}

func (r fakeRole) Documentation() string { return r.doc }
func (r fakeRole) Module() string        { return r.module }

type fakeDirective struct {
	doc     string
	class   string
	reqArgs int
	optArgs int
	content bool
	options map[string]string
}

func (d fakeDirective) Documentation() string      { return d.doc }
func (d fakeDirective) ClassName() string          { return d.class }
func (d fakeDirective) RequiredArguments() int     { return d.reqArgs }
func (d fakeDirective) OptionalArguments() int     { return d.optArgs }
func (d fakeDirective) HasContent() bool           { return d.content }
func (d fakeDirective) Options() map[string]string { return d.options }

func TestRoleRecord(t *testing.T) {
	rec := RoleRecord("math", fakeRole{doc: "Inline math.", module: "docutils.parsers.rst.roles"})

	assert.Equal(t, ElementRole, rec[FieldElement])
	assert.Equal(t, "math", rec[FieldName])
	assert.Equal(t, "Inline math.", rec[FieldDescription])
	assert.Equal(t, "docutils.parsers.rst.roles", rec[FieldModule])
}

func TestDirectiveRecord(t *testing.T) {
	rec := DirectiveRecord("code-block", fakeDirective{
		doc:     "A literal code block.",
		class:   "sphinx.directives.code.CodeBlock",
		reqArgs: 0,
		optArgs: 1,
		content: true,
		options: map[string]string{"linenos": "flag", "caption": "unchanged"},
	})

	assert.Equal(t, ElementDirective, rec[FieldElement])
	assert.Equal(t, "code-block", rec[FieldName])
	assert.Equal(t, "sphinx.directives.code.CodeBlock", rec[FieldClass])
	assert.Equal(t, 0, rec[FieldRequiredArguments])
	assert.Equal(t, 1, rec[FieldOptionalArguments])
	assert.Equal(t, true, rec[FieldHasContent])
	assert.Equal(t, map[string]string{"linenos": "flag", "caption": "unchanged"}, rec[FieldOptions])
}

func TestDirectiveRecord_NilOptions(t *testing.T) {
	rec := DirectiveRecord("raw", fakeDirective{class: "docutils.parsers.rst.directives.misc.Raw"})

	assert.Equal(t, map[string]string{}, rec[FieldOptions])
}

func TestRecordClone_Detached(t *testing.T) {
	rec := Record{
		FieldURI: "file:///docs/index.rst",
		FieldOptions: map[string]any{
			"linenos": "flag",
		},
	}

	clone := rec.Clone()
	clone[FieldURI] = "file:///docs/other.rst"
	clone[FieldOptions].(map[string]any)["linenos"] = "changed"

	assert.Equal(t, "file:///docs/index.rst", rec[FieldURI])
	assert.Equal(t, "flag", rec[FieldOptions].(map[string]any)["linenos"])
}
