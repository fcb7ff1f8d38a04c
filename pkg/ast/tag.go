package ast

// inlineTags render without surrounding pretty-print whitespace.
var inlineTags = map[string]struct{}{
	"a": {}, "abbr": {}, "acronym": {}, "b": {}, "br": {}, "code": {}, "em": {},
	"font": {}, "i": {}, "img": {}, "ins": {}, "kbd": {}, "map": {}, "samp": {},
	"small": {}, "span": {}, "strong": {}, "sub": {}, "sup": {},
}

// IsInline reports whether the tag is an inline element.
func (t *Tag) IsInline() bool {
	if t == nil || t.Buffer {
		return false
	}
	_, ok := inlineTags[t.Name]
	return ok
}

// CanInline reports whether the tag's content can be rendered on the same
// line as its opening tag: the block is empty, or it holds only text and
// inline elements with no two text nodes adjacent.
func (t *Tag) CanInline() bool {
	nodes := t.Block.nodes()
	if len(nodes) == 0 {
		return true
	}
	if len(nodes) == 1 {
		return isInlineNode(nodes[0])
	}
	for _, node := range nodes {
		if !isInlineNode(node) {
			return false
		}
	}
	for i := 1; i < len(nodes); i++ {
		if IsText(nodes[i-1]) && IsText(nodes[i]) {
			return false
		}
	}
	return true
}

func isInlineNode(n Node) bool {
	switch typed := n.(type) {
	case *Block:
		for _, child := range typed.Nodes {
			if !isInlineNode(child) {
				return false
			}
		}
		return true
	case *Text:
		return true
	case *Tag:
		return typed.IsInline()
	default:
		return false
	}
}

func (b *Block) nodes() []Node {
	if b == nil {
		return nil
	}
	return b.Nodes
}
