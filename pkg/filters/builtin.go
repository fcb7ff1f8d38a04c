package filters

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-jade/pkg/expr"
)

var (
	ugcPolicyOnce    sync.Once
	ugcPolicy        *bluemonday.Policy
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// Builtins returns the filters installed by Default.
func Builtins() []Filter {
	return []Filter{
		{Name: "markdown", Sync: Markdown, Format: FormatHTML},
		{Name: "md", Sync: Markdown, Format: FormatHTML},
		{Name: "sanitize", Sync: Sanitize, Format: FormatHTML},
		{Name: "pongo2", Sync: Pongo2, Format: FormatHTML},
		{Name: "django", Sync: Pongo2, Format: FormatHTML},
		{Name: "cdata", Sync: CDATA},
		{Name: "plain", Sync: Plain},
		{Name: "yaml", Sync: YAMLToJSON},
		{Name: "js", Sync: Plain, Format: FormatJS},
		{Name: "javascript", Sync: Plain, Format: FormatJS},
		{Name: "css", Sync: Plain, Format: FormatCSS},
	}
}

// Markdown renders CommonMark-style markdown to HTML. The boolean option
// "sanitize" passes the result through the user content policy.
func Markdown(text string, options map[string]any) (string, error) {
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	out := string(markdown.ToHTML([]byte(text), p, renderer))
	if expr.Truthy(options["sanitize"]) {
		out = policy("ugc").Sanitize(out)
	}
	return out, nil
}

// Sanitize strips unsafe markup. The "policy" option selects "ugc" (the
// default) or "strict", which removes every element.
func Sanitize(text string, options map[string]any) (string, error) {
	name, _ := options["policy"].(string)
	if name == "" {
		name = "ugc"
	}
	if name != "ugc" && name != "strict" {
		return "", fmt.Errorf("unknown sanitize policy %q", name)
	}
	return policy(name).Sanitize(text), nil
}

func policy(name string) *bluemonday.Policy {
	if name == "strict" {
		strictPolicyOnce.Do(func() {
			strictPolicy = bluemonday.StrictPolicy()
		})
		return strictPolicy
	}
	ugcPolicyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return ugcPolicy
}

// Pongo2 renders text as a Django-syntax template with the filter options as
// its context.
func Pongo2(text string, options map[string]any) (string, error) {
	tpl, err := pongo2.FromString(text)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	ctx := make(pongo2.Context, len(options))
	for key, value := range options {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		ctx[key] = value
	}
	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return out, nil
}

// CDATA wraps text in a CDATA section.
func CDATA(text string, _ map[string]any) (string, error) {
	return "<![CDATA[\n" + text + "\n]]>", nil
}

// Plain returns text unchanged.
func Plain(text string, _ map[string]any) (string, error) {
	return text, nil
}

// YAMLToJSON converts a YAML document to compact JSON, keeping mapping key
// order.
func YAMLToJSON(text string, _ map[string]any) (string, error) {
	value, err := expr.DecodeYAML([]byte(text))
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return string(data), nil
}
