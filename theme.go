package jade

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-jade/pkg/expr"
	theme "github.com/goliatone/go-theme"
)

// selectTheme resolves the configured selection into the value templates
// see as `theme`: name, variant, tokens (variant tokens override the
// manifest's) and cssVars, a declaration list built from the tokens.
func selectTheme(s settings) (*expr.Object, error) {
	selection, err := s.selector.Select(s.themeName, s.themeVariant)
	if err != nil {
		return nil, fmt.Errorf("jade: select theme %q: %w", s.themeName, err)
	}
	if selection == nil {
		return nil, errors.New("jade: theme selector returned no selection")
	}

	tokens := themeTokens(selection)
	out := expr.NewObject()
	out.Set("name", selection.Theme)
	out.Set("variant", selection.Variant)
	out.Set("tokens", tokens)
	out.Set("cssVars", cssVars(tokens))
	return out, nil
}

func themeTokens(selection *theme.Selection) map[string]string {
	tokens := map[string]string{}
	if selection.Manifest == nil {
		return tokens
	}
	for key, value := range selection.Manifest.Tokens {
		tokens[key] = value
	}
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		for key, value := range variant.Tokens {
			tokens[key] = value
		}
	}
	return tokens
}

func cssVars(tokens map[string]string) string {
	keys := make([]string, 0, len(tokens))
	for key := range tokens {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("--")
		b.WriteString(strings.ReplaceAll(key, ".", "-"))
		b.WriteString(": ")
		b.WriteString(tokens[key])
		b.WriteByte(';')
	}
	return b.String()
}
