package expr

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeYAML decodes a YAML (or JSON) document into expression values:
// mappings become ordered *Object values, sequences []any and numbers
// float64.
func DecodeYAML(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("expr: parse yaml: %w", err)
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	return fromYAML(&doc)
}

// DecodeLocals decodes a document whose root is a mapping, as used for
// render locals.
func DecodeLocals(data []byte) (map[string]any, error) {
	value, err := DecodeYAML(data)
	if err != nil {
		return nil, err
	}
	switch typed := value.(type) {
	case nil:
		return map[string]any{}, nil
	case *Object:
		return typed.Map(), nil
	}
	return nil, fmt.Errorf("expr: locals document must be a mapping, got %s", TypeOf(value))
}

func fromYAML(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, child := range n.Content {
			value, err := fromYAML(child)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := n.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("expr: line %d: mapping keys must be scalars: %w", n.Content[i].Line, err)
			}
			value, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(key, value)
		}
		return obj, nil
	case yaml.ScalarNode:
		var value any
		if err := n.Decode(&value); err != nil {
			return nil, fmt.Errorf("expr: line %d: %w", n.Line, err)
		}
		if f, ok := asNumber(value); ok {
			return f, nil
		}
		return value, nil
	}
	return nil, fmt.Errorf("expr: line %d: unsupported yaml node", n.Line)
}
