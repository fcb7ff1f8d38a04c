package compiler

import (
	"strings"

	"github.com/goliatone/go-jade/pkg/ast"
)

var doctypes = map[string]string{
	"default":      "<!DOCTYPE html>",
	"5":            "<!DOCTYPE html>",
	"html":         "<!DOCTYPE html>",
	"xml":          `<?xml version="1.0" encoding="utf-8" ?>`,
	"transitional": `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">`,
	"strict":       `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">`,
	"frameset":     `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Frameset//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-frameset.dtd">`,
	"1.1":          `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd">`,
	"basic":        `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML Basic 1.1//EN" "http://www.w3.org/TR/xhtml-basic/xhtml-basic11.dtd">`,
	"mobile":       `<!DOCTYPE html PUBLIC "-//WAPFORUM//DTD XHTML Mobile 1.2//EN" "http://www.openmobilealliance.org/tech/DTD/xhtml-mobile12.dtd">`,
}

// Doctype returns the declaration for name. Unknown names are declared
// verbatim.
func Doctype(name string) string {
	if name == "" {
		name = "default"
	}
	if doctype, ok := doctypes[strings.ToLower(name)]; ok {
		return doctype
	}
	return "<!DOCTYPE " + name + ">"
}

// setDoctype fixes the doctype and the terse/xml modes. Only the first call
// has an effect.
func (s *state) setDoctype(name string) {
	if s.doctypeLocked {
		return
	}
	s.doctypeLocked = true
	s.doctype = Doctype(name)
	s.terse = strings.ToLower(s.doctype) == "<!doctype html>"
	s.xml = strings.HasPrefix(s.doctype, "<?xml")
}

func (s *state) processDoctype(name string) {
	if name != "" || s.doctype == "" {
		s.setDoctype(name)
	}
	s.buf.Literal(s.doctype)
	s.hasCompiledDoctype = true
}

func (s *state) visitDoctype(n ast.Node, k func(error)) {
	s.processDoctype(n.(*ast.Doctype).Value)
	k(nil)
}
