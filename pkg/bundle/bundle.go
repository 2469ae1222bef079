package bundle

import (
	"io"
	"sort"

	"github.com/robfig/soy/data"
	"github.com/robfig/soy/soyhtml"
	"github.com/robfig/soy/template"

	"github.com/arthur-debert/soyforge/pkg/globals"
)

// Template describes one compiled template
type Template struct {
	// Name is the fully-qualified name, namespace.template
	Name      string
	Namespace string
	Private   bool
	// Required and Optional list the params declared in the template's SoyDoc
	Required []string
	Optional []string
	// Calls lists the fully-qualified templates this template invokes
	Calls []string
}

// Bundle is the compiled, read-only set of templates from a source set
type Bundle struct {
	registry  *template.Registry
	tofu      *soyhtml.Tofu
	globals   *globals.Bindings
	templates map[string]Template
	names     []string
}

// Names returns every template name in sorted order
func (b *Bundle) Names() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Len returns the number of templates
func (b *Bundle) Len() int {
	return len(b.names)
}

// Has reports whether name is a template in the bundle
func (b *Bundle) Has(name string) bool {
	_, ok := b.templates[name]
	return ok
}

// Template returns the metadata for name
func (b *Bundle) Template(name string) (Template, bool) {
	t, ok := b.templates[name]
	return t, ok
}

// Globals returns the bindings baked in at compile time
func (b *Bundle) Globals() *globals.Bindings {
	return b.globals
}

// Execute renders name with params into w. Callers are expected to have
// validated name and params; see package render.
func (b *Bundle) Execute(w io.Writer, name string, params data.Map) error {
	if params == nil {
		params = data.Map{}
	}
	return b.tofu.Render(w, name, params)
}

func sortedKeys(m map[string]Template) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
