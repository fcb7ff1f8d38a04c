package compiler

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-jade/pkg/ast"
	"github.com/goliatone/go-jade/pkg/expr"
	"github.com/goliatone/go-jade/pkg/filters"
	"github.com/goliatone/go-jade/pkg/program"
	"github.com/goliatone/go-jade/pkg/runtime"
)

const helloTree = `
- {type: Doctype, value: html}
- type: Tag
  name: p
  block: [{type: Text, value: "Hello #{name}"}]
`

func TestRenderTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		tree    string
		locals  map[string]any
		options []Option
		want    string
	}{
		{
			name:   "interpolated text",
			tree:   helloTree,
			locals: map[string]any{"name": "World"},
			want:   "<!DOCTYPE html><p>Hello World</p>",
		},
		{
			name: "escaped and raw interpolation",
			tree: `
- type: Tag
  name: p
  block: [{type: Text, value: "#{v}!{v}"}]
`,
			locals: map[string]any{"v": "<b>"},
			want:   "<p>&lt;b&gt;<b></p>",
		},
		{
			name: "escaped marker stays literal",
			tree: `
- type: Tag
  name: p
  block: [{type: Text, value: '\#{name} #{name}'}]
`,
			locals: map[string]any{"name": "x"},
			want:   "<p>#{name} x</p>",
		},
		{
			name: "constant interpolation",
			tree: `[{type: Text, value: "#{1 + 1} #{'<'}"}]`,
			want: "2 &lt;",
		},
		{
			name: "void tag in terse mode",
			tree: `
- {type: Doctype, value: html}
- {type: Tag, name: br}
`,
			want: "<!DOCTYPE html><br>",
		},
		{
			name: "void tag without doctype",
			tree: `[{type: Tag, name: br}]`,
			want: "<br/>",
		},
		{
			name: "void tag with a strict doctype",
			tree: `
- {type: Doctype, value: strict}
- {type: Tag, name: hr}
`,
			want: Doctype("strict") + "<hr/>",
		},
		{
			name: "xml mode closes every tag",
			tree: `
- {type: Doctype, value: xml}
- {type: Tag, name: br}
- {type: Tag, name: item, selfClosing: true}
`,
			want: `<?xml version="1.0" encoding="utf-8" ?><br></br><item></item>`,
		},
		{
			name: "html tag implies the doctype",
			tree: `
- type: Tag
  name: html
  block: [{type: Tag, name: body}]
`,
			want: "<!DOCTYPE html><html><body></body></html>",
		},
		{
			name:    "doctype option seeds terse mode",
			tree:    `[{type: Tag, name: img, attrs: [{name: src, value: "'a.png'"}]}]`,
			options: []Option{WithDoctype("html")},
			want:    `<img src="a.png">`,
		},
		{
			name: "first doctype locks the mode",
			tree: `
- {type: Doctype, value: transitional}
- {type: Doctype, value: html}
- {type: Tag, name: br}
`,
			want: Doctype("transitional") + Doctype("transitional") + "<br/>",
		},
		{
			name:    "custom self closing names",
			tree:    `[{type: Tag, name: icon}, {type: Tag, name: br}]`,
			options: []Option{WithSelfClosing("icon")},
			want:    "<icon/><br></br>",
		},
		{
			name: "dynamic tag name",
			tree: `[{type: Tag, name: level, buffer: true, block: [{type: Text, value: x}]}]`,
			locals: map[string]any{"level": "h3"},
			want:   "<h3>x</h3>",
		},
		{
			name: "adjacent text nodes",
			tree: `
- type: Tag
  name: p
  block: [{type: Text, value: a}, {type: Text, value: b}]
`,
			want: "<p>a\nb</p>",
		},
		{
			name: "literal and comments",
			tree: `
- {type: Literal, value: "<hr>"}
- {type: Comment, value: " shown "}
- {type: Comment, value: hidden, buffer: false}
- type: BlockComment
  value: "[if IE]"
  block: [{type: Tag, name: p}]
- type: BlockComment
  value: gone
  buffer: false
  block: [{type: Tag, name: p}]
`,
			want: "<hr><!-- shown --><!--[if IE]<p></p>-->",
		},
		{
			name: "inline code after the open tag",
			tree: `
- type: Tag
  name: p
  code: {type: Code, value: "n * 2", buffer: true}
  block: [{type: Text, value: "!"}]
`,
			locals: map[string]any{"n": 21},
			want:   "<p>42!</p>",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := mustRender(t, tt.tree, tt.locals, tt.options...)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderAttributes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tree   string
		locals map[string]any
		want   string
	}{
		{
			name: "classes accumulate",
			tree: `[{type: Tag, name: div, attrs: [{name: class, value: "'a'"}, {name: class, value: "'b'"}]}]`,
			want: `<div class="a b"></div>`,
		},
		{
			name:   "dynamic values are escaped",
			tree:   `[{type: Tag, name: a, attrs: [{name: href, value: url}]}]`,
			locals: map[string]any{"url": "/x?a=1&b=2"},
			want:   `<a href="/x?a=1&amp;b=2"></a>`,
		},
		{
			name:   "unescaped values",
			tree:   `[{type: Tag, name: a, attrs: [{name: title, value: t, escaped: false}]}]`,
			locals: map[string]any{"t": "a&b"},
			want:   `<a title="a&b"></a>`,
		},
		{
			name: "boolean attribute in terse mode",
			tree: `
- {type: Doctype}
- {type: Tag, name: input, attrs: [{name: checked, value: "true"}, {name: disabled, value: "false"}]}
`,
			want: `<!DOCTYPE html><input checked>`,
		},
		{
			name: "boolean attribute mirrored",
			tree: `[{type: Tag, name: input, attrs: [{name: checked, value: "true"}]}]`,
			want: `<input checked="checked"/>`,
		},
		{
			name:   "dynamic class list",
			tree:   `[{type: Tag, name: li, attrs: [{name: class, value: "'item'"}, {name: class, value: "active ? 'on' : null"}]}]`,
			locals: map[string]any{"active": true},
			want:   `<li class="item on"></li>`,
		},
		{
			name:   "attributes node spreads",
			tree:   `[{type: Attributes, attrs: [{name: id, value: id}]}]`,
			locals: map[string]any{"id": "main"},
			want:   ` id="main"`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := mustRender(t, tt.tree, tt.locals)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConstantAttributesArePrerendered(t *testing.T) {
	t.Parallel()

	prog := mustCompile(t, `[{type: Tag, name: a, attrs: [{name: href, value: "'/'"}, {name: class, value: "'x'"}]}]`, WithCompileDebug(DebugOff))
	ins := prog.Instructions()
	if len(ins) != 1 {
		t.Fatalf("expected a single instruction, got %d:\n%s", len(ins), prog.String())
	}
	emit, ok := ins[0].(*program.Emit)
	if !ok || len(emit.Parts) != 1 || !emit.Parts[0].IsLiteral() {
		t.Fatalf("expected one literal emit, got %s", prog.String())
	}
	if emit.Parts[0].Text != `<a href="/" class="x"></a>` {
		t.Fatalf("unexpected literal %q", emit.Parts[0].Text)
	}
}

func TestAssembleAttributes(t *testing.T) {
	t.Parallel()

	a, err := assemble([]ast.Attribute{
		{Name: "class", Value: "'a'", Escaped: true},
		{Name: "id", Value: "x", Escaped: false},
		{Name: "attributes", Value: "true"},
		{Name: "class", Value: "'b'", Escaped: true},
	}, true)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if want := `"terse": true, "id": (x), "class": [('a'), ('b')]`; a.pairs != want {
		t.Fatalf("pairs: got %s want %s", a.pairs, want)
	}
	if !a.inherits || a.constant {
		t.Fatalf("unexpected flags: inherits=%v constant=%v", a.inherits, a.constant)
	}
	escaped, err := a.escapedSource()
	if err != nil {
		t.Fatalf("escaped: %v", err)
	}
	if escaped != `{"class":true,"id":false}` {
		t.Fatalf("escaped: got %s", escaped)
	}

	if _, err := assemble([]ast.Attribute{{Name: "id", Value: "a +"}}, false); err == nil {
		t.Fatalf("expected a syntax error")
	}
}

func TestRenderControlFlow(t *testing.T) {
	t.Parallel()

	const ifElse = `
- type: Code
  value: if (user)
  block: [{type: Tag, name: p, block: [{type: Text, value: "hi #{user}"}]}]
- type: Code
  value: else if (guest)
  noDebug: true
  block: [{type: Tag, name: p, block: [{type: Text, value: guest}]}]
- type: Code
  value: else
  noDebug: true
  block: [{type: Tag, name: p, block: [{type: Text, value: anon}]}]
`
	const loop = `
- type: Tag
  name: ul
  block:
    - type: Each
      obj: items
      key: i
      val: item
      block:
        - type: Tag
          name: li
          block: [{type: Text, value: "#{i}:#{item}"}]
      alternative:
        - {type: Tag, name: li, block: [{type: Text, value: none}]}
`
	const dispatch = `
- type: Case
  expr: x
  block:
    - {type: When, expr: "1", block: [{type: Text, value: one}]}
    - {type: When, expr: "2"}
    - {type: When, expr: "3", block: [{type: Text, value: two or three}]}
    - {type: When, expr: default, block: [{type: Text, value: other}]}
`
	const statements = `
- {type: Code, value: "var total = 0"}
- type: Code
  value: for (var i = 0; i < 3; i++)
  block: [{type: Code, value: total += i}]
- {type: Code, value: total, buffer: true}
`

	tests := []struct {
		name   string
		tree   string
		locals map[string]any
		want   string
	}{
		{name: "if branch", tree: ifElse, locals: map[string]any{"user": "bob"}, want: "<p>hi bob</p>"},
		{name: "else if branch", tree: ifElse, locals: map[string]any{"guest": true}, want: "<p>guest</p>"},
		{name: "else branch", tree: ifElse, want: "<p>anon</p>"},
		{name: "each over a sequence", tree: loop, locals: map[string]any{"items": []any{"a", "b"}}, want: "<ul><li>0:a</li><li>1:b</li></ul>"},
		{name: "each over an empty sequence", tree: loop, locals: map[string]any{"items": []string{}}, want: "<ul><li>none</li></ul>"},
		{name: "each over a map", tree: loop, locals: map[string]any{"items": map[string]int{"b": 2, "a": 1}}, want: "<ul><li>a:1</li><li>b:2</li></ul>"},
		{name: "each over an ordered object", tree: loop, locals: map[string]any{"items": objectOf("z", "last", "a", "first")}, want: "<ul><li>z:last</li><li>a:first</li></ul>"},
		{name: "each over an empty map", tree: loop, locals: map[string]any{"items": map[string]any{}}, want: "<ul><li>none</li></ul>"},
		{name: "each over nil", tree: loop, want: "<ul><li>none</li></ul>"},
		{name: "case match", tree: dispatch, locals: map[string]any{"x": 1}, want: "one"},
		{name: "case fallthrough", tree: dispatch, locals: map[string]any{"x": 2}, want: "two or three"},
		{name: "case default", tree: dispatch, locals: map[string]any{"x": 9}, want: "other"},
		{name: "statements", tree: statements, want: "3"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := mustRender(t, tt.tree, tt.locals)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func objectOf(pairs ...any) *expr.Object {
	obj := expr.NewObject()
	for i := 0; i+1 < len(pairs); i += 2 {
		obj.Set(pairs[i].(string), pairs[i+1])
	}
	return obj
}

func TestEachRunsBodyOncePerItem(t *testing.T) {
	t.Parallel()

	const tree = `
- {type: Code, value: "var runs = 0"}
- type: Each
  obj: items
  val: item
  block: [{type: Code, value: runs++}]
  alternative: [{type: Text, value: empty}]
- {type: Code, value: runs, buffer: true}
`
	for n := 0; n < 4; n++ {
		items := make([]any, n)
		want := expr.FormatNumber(float64(n))
		if n == 0 {
			want = "empty0"
		}
		got := mustRender(t, tree, map[string]any{"items": items})
		if got != want {
			t.Fatalf("n=%d: got %q want %q", n, got, want)
		}
	}
}

func TestRenderMixins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tree   string
		locals map[string]any
		want   string
	}{
		{
			name: "block and attributes",
			tree: `
- type: Mixin
  name: box
  block:
    - type: Tag
      name: div
      attrs: [{name: class, value: "'box'"}, {name: attributes, value: "true"}]
      block: [{type: MixinBlock}]
- type: Mixin
  name: box
  call: true
  attrs: [{name: id, value: "'x'"}]
  block: [{type: Text, value: hi}]
`,
			want: `<div id="x" class="box">hi</div>`,
		},
		{
			name: "arguments",
			tree: `
- type: Mixin
  name: greet
  args: name
  block: [{type: Tag, name: p, block: [{type: Text, value: "Hello #{name}"}]}]
- {type: Mixin, name: greet, call: true, args: "'Ann'"}
- {type: Mixin, name: greet, call: true, args: who}
`,
			locals: map[string]any{"who": "Bob"},
			want:   "<p>Hello Ann</p><p>Hello Bob</p>",
		},
		{
			name: "rest arguments",
			tree: `
- type: Mixin
  name: list
  args: "id, ...items"
  block:
    - type: Tag
      name: ul
      attrs: [{name: id, value: id}]
      block:
        - type: Each
          obj: items
          val: item
          block: [{type: Tag, name: li, block: [{type: Text, value: "#{item}"}]}]
- {type: Mixin, name: list, call: true, args: "'l', 1, 2"}
`,
			want: `<ul id="l"><li>1</li><li>2</li></ul>`,
		},
		{
			name: "missing block renders nothing",
			tree: `
- type: Mixin
  name: wrap
  block: [{type: Tag, name: b, block: [{type: MixinBlock}]}]
- {type: Mixin, name: wrap, call: true}
`,
			want: "<b></b>",
		},
		{
			name: "block sees the caller scope",
			tree: `
- type: Mixin
  name: wrap
  block: [{type: Tag, name: i, block: [{type: MixinBlock}]}]
- type: Each
  obj: items
  val: item
  block:
    - type: Mixin
      name: wrap
      call: true
      block: [{type: Text, value: "#{item}"}]
`,
			locals: map[string]any{"items": []any{"a", "b"}},
			want:   "<i>a</i><i>b</i>",
		},
		{
			name: "inherited attributes lose to local ones",
			tree: `
- type: Mixin
  name: link
  block:
    - type: Tag
      name: a
      attrs: [{name: attributes, value: "true"}, {name: href, value: "'/local'"}]
- type: Mixin
  name: link
  call: true
  attrs: [{name: href, value: "'/caller'"}, {name: rel, value: "'nofollow'"}]
`,
			want: `<a href="/local" rel="nofollow"></a>`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := mustRender(t, tt.tree, tt.locals)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderPretty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tree string
		want string
	}{
		{
			name: "nested tags",
			tree: `
- type: Tag
  name: ul
  block:
    - {type: Tag, name: li, block: [{type: Text, value: a}]}
    - {type: Tag, name: li, block: [{type: Text, value: b}]}
`,
			want: "\n<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>",
		},
		{
			name: "mixin bodies take the call site indentation",
			tree: `
- type: Mixin
  name: item
  args: text
  block: [{type: Tag, name: li, block: [{type: Text, value: "#{text}"}]}]
- type: Tag
  name: ul
  block:
    - {type: Mixin, name: item, call: true, args: "'a'"}
    - {type: Mixin, name: item, call: true, args: "'b'"}
`,
			want: "\n<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>",
		},
		{
			name: "pre keeps its text",
			tree: `
- type: Tag
  name: pre
  block: [{type: Text, value: a}, {type: Text, value: b}]
`,
			want: "\n<pre>a\nb</pre>",
		},
		{
			name: "multi-line text is indented",
			tree: `
- type: Tag
  name: div
  block: [{type: Text, value: a}, {type: Text, value: b}]
`,
			want: "\n<div>\n  a\n  b\n</div>",
		},
		{
			name: "inline tags stay on the line",
			tree: `
- type: Tag
  name: p
  block:
    - {type: Text, value: "see "}
    - {type: Tag, name: a, block: [{type: Text, value: here}]}
`,
			want: "\n<p>see <a>here</a></p>",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := mustRender(t, tt.tree, nil, WithPretty(true))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		tree  string
		check func(t *testing.T, err error)
	}{
		{
			name: "mixin block outside a mixin",
			tree: `[{type: Tag, name: p, line: 4, block: [{type: MixinBlock, line: 5}]}]`,
			check: func(t *testing.T, err error) {
				var structural *StructuralError
				if !errors.As(err, &structural) {
					t.Fatalf("expected StructuralError, got %v", err)
				}
				var located *Error
				if !errors.As(err, &located) || located.Line != 5 {
					t.Fatalf("expected the error on line 5, got %v", err)
				}
				if !strings.Contains(err.Error(), "anonymous blocks are not allowed outside a mixin") {
					t.Fatalf("unexpected message %q", err.Error())
				}
			},
		},
		{
			name: "unknown filter",
			tree: `[{type: Filter, name: nope, block: [{type: Text, value: x}]}]`,
			check: func(t *testing.T, err error) {
				var unknown *UnknownFilterError
				if !errors.As(err, &unknown) || unknown.Name != "nope" {
					t.Fatalf("expected UnknownFilterError, got %v", err)
				}
				if !errors.Is(err, filters.ErrUnknownFilter) {
					t.Fatalf("expected filters.ErrUnknownFilter in chain")
				}
			},
		},
		{
			name: "malformed interpolation",
			tree: `[{type: Text, line: 2, value: "#{a +}"}]`,
			check: func(t *testing.T, err error) {
				var syntax *expr.SyntaxError
				if !errors.As(err, &syntax) {
					t.Fatalf("expected SyntaxError, got %v", err)
				}
			},
		},
		{
			name: "unterminated interpolation",
			tree: `[{type: Text, value: "#{a"}]`,
			check: func(t *testing.T, err error) {
				var syntax *expr.SyntaxError
				if !errors.As(err, &syntax) {
					t.Fatalf("expected SyntaxError, got %v", err)
				}
			},
		},
		{
			name: "header without a block",
			tree: `[{type: Code, value: "if (x)"}]`,
			check: func(t *testing.T, err error) {
				var structural *StructuralError
				if !errors.As(err, &structural) {
					t.Fatalf("expected StructuralError, got %v", err)
				}
			},
		},
		{
			name: "else without if",
			tree: `[{type: Code, value: else, noDebug: true, block: [{type: Text, value: x}]}]`,
			check: func(t *testing.T, err error) {
				var link *program.LinkError
				if !errors.As(err, &link) {
					t.Fatalf("expected LinkError, got %v", err)
				}
			},
		},
		{
			name: "when outside case",
			tree: `[{type: When, expr: "1", block: [{type: Text, value: x}]}]`,
			check: func(t *testing.T, err error) {
				var structural *StructuralError
				if !errors.As(err, &structural) {
					t.Fatalf("expected StructuralError, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Compile(mustTree(t, tt.tree), WithCompileDebug(DebugOff))
			if err == nil {
				t.Fatalf("expected an error")
			}
			tt.check(t, err)
		})
	}
}

func TestRuntimeErrorsCarryTheLine(t *testing.T) {
	t.Parallel()

	const tree = `
- type: Tag
  name: div
  line: 1
  block:
    - {type: Tag, name: p, line: 2}
    - {type: Code, line: 3, value: user.name, buffer: true}
`
	prog := mustCompile(t, tree, WithFilename("page.jade"), WithCompileDebug(DebugSource), WithSource("div\n  p\n  = user.name\n"))
	_, err := prog.Render(nil)
	var rtErr *runtime.RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if rtErr.Line != 3 || rtErr.Filename != "page.jade" {
		t.Fatalf("unexpected position %s:%d", rtErr.Filename, rtErr.Line)
	}
	if !strings.Contains(rtErr.Context, "  > 3|   = user.name") {
		t.Fatalf("unexpected context:\n%s", rtErr.Context)
	}

	plain := mustCompile(t, tree, WithCompileDebug(DebugOff))
	_, err = plain.Render(nil)
	if err == nil || errors.As(err, &rtErr) {
		t.Fatalf("expected an unenriched error, got %v", err)
	}
}

func TestDebugRecordsStayBalanced(t *testing.T) {
	t.Parallel()

	const tree = `
- type: Case
  expr: x
  block:
    - {type: When, expr: "1", block: [{type: Text, value: one}]}
    - {type: When, expr: default, block: [{type: Text, value: other}]}
- type: Code
  value: if (x > 1)
  block: [{type: Text, value: big}]
- type: Code
  value: else
  noDebug: true
  block: [{type: Text, value: small}]
- {type: Code, line: 9, value: missing.field, buffer: true}
`
	_, err := mustCompile(t, tree).Render(map[string]any{"x": 1})
	var rtErr *runtime.RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if rtErr.Line != 9 {
		t.Fatalf("expected line 9, got %d", rtErr.Line)
	}
}

func TestMergePreservesOutput(t *testing.T) {
	t.Parallel()

	children := []string{
		`{type: Text, value: "a #{x} "}`,
		`{type: Code, value: "y", buffer: true}`,
		`{type: Literal, value: "<br>"}`,
		`{type: Text, value: "!{x}"}`,
		`{type: Code, value: "'c'", buffer: true}`,
	}
	locals := map[string]any{"x": "<x>", "y": 7}

	var separate strings.Builder
	for _, child := range children {
		separate.WriteString(mustRender(t, "["+child+"]", locals, WithCompileDebug(DebugOff)))
	}

	merged := mustCompile(t, "["+strings.Join(children, ", ")+"]", WithCompileDebug(DebugOff))
	if n := len(merged.Instructions()); n != 1 {
		t.Fatalf("expected one coalesced instruction, got %d", n)
	}
	got, err := merged.Render(locals)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff(separate.String(), got); diff != "" {
		t.Fatalf("merged output differs (-separate +merged):\n%s", diff)
	}
}

func TestHandlersCoverEveryKind(t *testing.T) {
	t.Parallel()

	if kind, missing := missingHandler(); missing {
		t.Fatalf("no handler for %s", kind)
	}
}

func TestConcurrentCompiles(t *testing.T) {
	t.Parallel()

	tree := mustTree(t, helloTree)
	c := New(tree)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prog, err := c.Compile()
			if err != nil {
				errs <- err
				return
			}
			out, err := prog.Render(map[string]any{"name": "x"})
			if err != nil {
				errs <- err
				return
			}
			if out != "<!DOCTYPE html><p>Hello x</p>" {
				errs <- errors.New("unexpected output " + out)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent compile: %v", err)
	}
}
