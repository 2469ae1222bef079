package bundle

import (
	"reflect"
	"sort"
	"strings"

	"github.com/robfig/soy"
	"github.com/robfig/soy/ast"
	"github.com/robfig/soy/soyhtml"
	"github.com/robfig/soy/template"

	"github.com/arthur-debert/soyforge/pkg/errors"
	"github.com/arthur-debert/soyforge/pkg/globals"
	"github.com/arthur-debert/soyforge/pkg/logging"
	"github.com/arthur-debert/soyforge/pkg/sources"
)

// Compile reads, parses and validates every source in set against g and
// returns the resulting Bundle. On any failure the returned Bundle is nil.
func Compile(set *sources.Set, g *globals.Bindings) (*Bundle, error) {
	logger := logging.GetLogger("bundle")
	done := logging.LogOperationStart(logger, "compile")
	defer done()

	if set == nil || set.Len() == 0 {
		return nil, errors.New(errors.ErrCompilation, "source set is empty")
	}
	if g == nil {
		g = globals.Empty()
	}

	contents, err := set.Read()
	if err != nil {
		return nil, err
	}

	sb := soy.NewBundle().AddGlobalsMap(g.Values())
	for _, c := range contents {
		sb.AddTemplateString(c.Name, c.Text)
	}
	registry, err := sb.Compile()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCompilation, "cannot compile templates")
	}

	templates, err := index(registry)
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		registry:  registry,
		tofu:      soyhtml.NewTofu(registry),
		globals:   g,
		templates: templates,
		names:     sortedKeys(templates),
	}
	logger.Info().
		Int("sources", len(contents)).
		Int("templates", b.Len()).
		Int("globals", g.Len()).
		Msg("Compiled template bundle")
	return b, nil
}

// index builds the name → metadata table, rejecting duplicate names
func index(registry *template.Registry) (map[string]Template, error) {
	out := make(map[string]Template, len(registry.Templates))
	for _, t := range registry.Templates {
		if t.Node == nil {
			continue
		}
		name := t.Node.Name
		if _, dup := out[name]; dup {
			return nil, errors.Newf(errors.ErrCompilation, "template %s is declared more than once", name).
				WithDetail(errors.DetailTemplate, name)
		}

		info := Template{Name: name, Private: t.Node.Private}
		if t.Namespace != nil {
			info.Namespace = t.Namespace.Name
		}
		if t.Doc != nil {
			for _, p := range t.Doc.Params {
				if p.Optional {
					info.Optional = append(info.Optional, p.Name)
				} else {
					info.Required = append(info.Required, p.Name)
				}
			}
		}
		info.Calls = collectCalls(t.Node.Body, info.Namespace)
		out[name] = info
	}
	return out, nil
}

// collectCalls returns the distinct, sorted callees reachable from node
func collectCalls(node ast.Node, namespace string) []string {
	seen := make(map[string]struct{})
	walk(node, func(n ast.Node) {
		call, ok := n.(*ast.CallNode)
		if !ok {
			return
		}
		name := call.Name
		if strings.HasPrefix(name, ".") {
			name = namespace + name
		}
		seen[name] = struct{}{}
	})

	calls := make([]string, 0, len(seen))
	for name := range seen {
		calls = append(calls, name)
	}
	sort.Strings(calls)
	return calls
}

// walk visits node and every descendant, depth first
func walk(node ast.Node, visit func(ast.Node)) {
	if isNil(node) {
		return
	}
	visit(node)
	switch n := node.(type) {
	case *ast.CallNode:
		for _, p := range n.Params {
			walk(p, visit)
		}
	case *ast.CallParamContentNode:
		walk(n.Content, visit)
	case ast.ParentNode:
		for _, child := range n.Children() {
			walk(child, visit)
		}
	}
}

func isNil(node ast.Node) bool {
	if node == nil {
		return true
	}
	v := reflect.ValueOf(node)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
