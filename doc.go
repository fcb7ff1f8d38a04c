// Package jade compiles template node trees into render programs and
// renders them.
//
// The heavy lifting lives in pkg/compiler (lowering) and pkg/program
// (linking and execution). This package adds the conveniences most callers
// want: a Template handle, a filename keyed template cache and go-theme
// integration.
//
//	tmpl, err := jade.CompileFile("views/index.yaml", jade.WithPretty(true))
//	if err != nil {
//		return err
//	}
//	html, err := tmpl.Render(map[string]any{"name": "ann"})
package jade
