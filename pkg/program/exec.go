package program

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-jade/pkg/expr"
	"github.com/goliatone/go-jade/pkg/runtime"
)

var errBreak = errors.New("program: break outside of a switch")

type debugRecord struct {
	line     int
	filename string
}

type mixinClosure struct {
	def   *mixinDefNode
	scope *expr.Scope
}

// machine is the state of one execution.
type machine struct {
	ctx    context.Context
	out    strings.Builder
	debug  []debugRecord
	indent []string
	mixins map[string]*mixinClosure
}

// Execute runs the program against locals and writes the output to w. Output
// is written only when execution succeeds. With debug enabled, runtime
// errors are enriched with the template position that was executing.
func (p *Program) Execute(ctx context.Context, w io.Writer, locals map[string]any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	m := &machine{ctx: ctx, mixins: make(map[string]*mixinClosure)}
	if p.meta.Debug {
		m.debug = []debugRecord{{line: 1, filename: p.meta.Filename}}
	}

	scope := expr.NewScope(locals)
	scope.Declare(IntrinsicName, intrinsics())

	if err := m.exec(p.root, scope); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return err
		}
		if p.meta.Debug && len(m.debug) > 0 {
			top := m.debug[0]
			return runtime.Rethrow(err, top.filename, top.line, p.source(top.filename))
		}
		return err
	}
	_, err := io.WriteString(w, m.out.String())
	return err
}

// source returns the template text shown around a runtime error.
func (p *Program) source(filename string) string {
	if p.meta.Source != "" {
		return p.meta.Source
	}
	if filename == "" || filename == p.meta.Document {
		return ""
	}
	return runtime.ReadSource(filename)
}

func intrinsics() *expr.Object {
	obj := expr.NewObject()
	obj.Set("escape", expr.Func(func(args ...any) (any, error) {
		return runtime.Escape(argAt(args, 0)), nil
	}))
	obj.Set("attrs", expr.Func(func(args ...any) (any, error) {
		return runtime.Attrs(argAt(args, 0), argAt(args, 1)), nil
	}))
	obj.Set("merge", expr.Func(func(args ...any) (any, error) {
		return runtime.Merge(argAt(args, 0), argAt(args, 1), expr.Truthy(argAt(args, 2))), nil
	}))
	return obj
}

func argAt(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func (m *machine) exec(nodes []node, scope *expr.Scope) error {
	for _, n := range nodes {
		if err := m.run(n, scope); err != nil {
			return err
		}
	}
	return nil
}

func (m *machine) run(n node, scope *expr.Scope) error {
	switch typed := n.(type) {
	case *emitNode:
		return m.emit(typed.parts, scope)
	case *stmtNode:
		return expr.Exec(typed.stmt, scope)
	case *ifNode:
		for _, branch := range typed.branches {
			if branch.cond != nil {
				cond, err := expr.Eval(branch.cond, scope)
				if err != nil {
					return err
				}
				if !expr.Truthy(cond) {
					continue
				}
			}
			return m.exec(branch.body, scope)
		}
		return nil
	case *whileNode:
		for {
			if err := m.ctx.Err(); err != nil {
				return err
			}
			cond, err := expr.Eval(typed.cond, scope)
			if err != nil {
				return err
			}
			if !expr.Truthy(cond) {
				return nil
			}
			if err := m.exec(typed.body, scope); err != nil {
				return err
			}
		}
	case *forNode:
		return m.forLoop(typed, scope)
	case *switchNode:
		return m.dispatch(typed, scope)
	case *caseLabel, *defaultLabel:
		return nil
	case *breakNode:
		return errBreak
	case *eachNode:
		return m.each(typed, scope)
	case *mixinDefNode:
		m.mixins[typed.name] = &mixinClosure{def: typed, scope: scope}
		return nil
	case *mixinCallNode:
		return m.callMixin(typed, scope)
	case *yieldNode:
		block, _ := scope.Get(BlockName)
		if !expr.Truthy(block) {
			return nil
		}
		_, err := expr.CallValue(block, nil)
		return err
	case *indentPushNode:
		m.indent = append(m.indent, typed.text)
		return nil
	case *indentPopNode:
		if len(m.indent) > 0 {
			m.indent = m.indent[:len(m.indent)-1]
		}
		return nil
	case *indentApplyNode:
		for _, text := range m.indent {
			m.out.WriteString(text)
		}
		return nil
	case *debugPushNode:
		m.debug = append([]debugRecord{{line: typed.line, filename: typed.filename}}, m.debug...)
		return nil
	case *debugPopNode:
		if len(m.debug) > 0 {
			m.debug = m.debug[1:]
		}
		return nil
	}
	return fmt.Errorf("program: unknown node %T", n)
}

func (m *machine) emit(parts []Part, scope *expr.Scope) error {
	for _, part := range parts {
		if part.IsLiteral() {
			m.out.WriteString(part.Text)
			continue
		}
		value, err := expr.Eval(part.Expr, scope)
		if err != nil {
			return err
		}
		text := runtime.Interp(value)
		if part.Escape {
			text = runtime.EscapeString(text)
		}
		m.out.WriteString(text)
	}
	return nil
}

func (m *machine) forLoop(loop *forNode, scope *expr.Scope) error {
	if err := expr.Exec(loop.header.Init, scope); err != nil {
		return err
	}
	for {
		if err := m.ctx.Err(); err != nil {
			return err
		}
		if loop.header.Test != nil {
			cond, err := expr.Eval(loop.header.Test, scope)
			if err != nil {
				return err
			}
			if !expr.Truthy(cond) {
				return nil
			}
		}
		if err := m.exec(loop.body, scope); err != nil {
			return err
		}
		if loop.header.Update != nil {
			if _, err := expr.Eval(loop.header.Update, scope); err != nil {
				return err
			}
		}
	}
}

// dispatch runs a switch: execution starts at the first case whose value is
// strictly equal to the subject (or at default) and falls through until a
// break.
func (m *machine) dispatch(sw *switchNode, scope *expr.Scope) error {
	subject, err := expr.Eval(sw.expr, scope)
	if err != nil {
		return err
	}
	start, fallback := -1, -1
	for i, n := range sw.body {
		switch label := n.(type) {
		case *caseLabel:
			value, err := expr.Eval(label.expr, scope)
			if err != nil {
				return err
			}
			if expr.StrictEqual(subject, value) {
				start = i
			}
		case *defaultLabel:
			if fallback < 0 {
				fallback = i
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		start = fallback
	}
	if start < 0 {
		return nil
	}
	if err := m.exec(sw.body[start:], scope); err != nil && !errors.Is(err, errBreak) {
		return err
	}
	return nil
}

func (m *machine) each(each *eachNode, scope *expr.Scope) error {
	obj, err := expr.Eval(each.obj, scope)
	if err != nil {
		return err
	}
	local := scope.Child()

	if items, ok := sequence(obj); ok {
		if len(items) == 0 && each.seqElse != nil {
			return m.exec(each.seqElse, local)
		}
		for i, item := range items {
			if err := m.ctx.Err(); err != nil {
				return err
			}
			local.Declare(each.key, float64(i))
			local.Declare(each.val, item)
			if err := m.exec(each.seq, local); err != nil {
				return err
			}
		}
		return nil
	}

	count := 0
	err = enumerate(obj, func(key string, value any) error {
		if err := m.ctx.Err(); err != nil {
			return err
		}
		count++
		local.Declare(each.key, key)
		local.Declare(each.val, value)
		return m.exec(each.keyed, local)
	})
	if err != nil {
		return err
	}
	if count == 0 && each.keyedElse != nil {
		return m.exec(each.keyedElse, local)
	}
	return nil
}

func (m *machine) callMixin(call *mixinCallNode, scope *expr.Scope) error {
	closure, ok := m.mixins[call.name]
	if !ok {
		return fmt.Errorf("program: mixin %q is not defined", call.name)
	}

	args := make([]any, 0, len(call.args))
	for _, argNode := range call.args {
		value, err := expr.Eval(argNode, scope)
		if err != nil {
			return err
		}
		args = append(args, value)
	}

	var attributes, escaped any = expr.NewObject(), expr.NewObject()
	if call.attributes != nil {
		value, err := expr.Eval(call.attributes, scope)
		if err != nil {
			return err
		}
		attributes = value
	}
	if call.escaped != nil {
		value, err := expr.Eval(call.escaped, scope)
		if err != nil {
			return err
		}
		escaped = value
	}

	var block any
	if call.hasBlock {
		body, caller := call.block, scope
		block = expr.Func(func(...any) (any, error) {
			return nil, m.exec(body, caller)
		})
	}

	def := closure.def
	local := closure.scope.Child()
	for i, name := range def.params {
		local.Declare(name, argAt(args, i))
	}
	if def.rest != "" {
		rest := []any{}
		if len(args) > len(def.params) {
			rest = append(rest, args[len(def.params):]...)
		}
		local.Declare(def.rest, rest)
	}
	local.Declare(BlockName, block)
	local.Declare(AttributesName, attributes)
	local.Declare(EscapedName, escaped)
	return m.exec(def.body, local)
}

// sequence reports values iterated by position: slices, arrays and strings.
func sequence(v any) ([]any, bool) {
	switch typed := v.(type) {
	case nil:
		return nil, false
	case []any:
		return typed, true
	case string:
		items := make([]any, 0, utf8.RuneCountInString(typed))
		for _, r := range typed {
			items = append(items, string(r))
		}
		return items, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, true
	}
	return nil, false
}

// enumerate visits the properties of a keyed value: *expr.Object in
// insertion order, Go maps in sorted key order, structs in field order.
func enumerate(v any, fn func(key string, value any) error) error {
	switch typed := v.(type) {
	case nil:
		return nil
	case *expr.Object:
		for _, key := range typed.Keys() {
			value, ok := typed.Get(key)
			if !ok {
				continue
			}
			if err := fn(key, value); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		keys := rv.MapKeys()
		names := make([]string, len(keys))
		byName := make(map[string]reflect.Value, len(keys))
		for i, key := range keys {
			names[i] = expr.ToString(key.Interface())
			byName[names[i]] = key
		}
		sort.Strings(names)
		for _, name := range names {
			if err := fn(name, rv.MapIndex(byName[name]).Interface()); err != nil {
				return err
			}
		}
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			if !rt.Field(i).IsExported() {
				continue
			}
			if err := fn(rt.Field(i).Name, rv.Field(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}
