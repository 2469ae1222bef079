// Package bundle compiles a source set of Soy templates into an immutable,
// queryable Bundle.
//
// Compilation is all-or-nothing. Every source is read, parsed and checked
// before a Bundle exists; any unreadable file, syntax error, duplicate
// template name, undefined global or call to an unknown template aborts the
// whole compilation and no Bundle is returned.
//
//	set := sources.NewSet().AddFile("src/windmill.soy")
//	g, _ := globals.LoadFile("dist/soyglobals.txt")
//	b, err := bundle.Compile(set, g)
//	if err != nil {
//	    return err
//	}
//	b.Has("windmill.templates.icons") // true
//
// A Bundle is never mutated after Compile returns and can be shared by any
// number of concurrent renders.
package bundle
