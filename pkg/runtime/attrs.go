package runtime

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/goliatone/go-jade/pkg/expr"
)

// TerseKey is the attribute object key carrying the terse-mode flag. It is
// consumed by Attrs and never rendered.
const TerseKey = "terse"

// Attrs serializes an attribute object. The result is empty or starts with a
// space. escaped maps attribute names to whether their value must be
// escaped; boolean values render as bare names in terse mode and as
// name="name" otherwise; non-string data-* values render as JSON.
func Attrs(obj any, escaped any) string {
	attrs := ToObject(obj)
	flags := ToObject(escaped)
	terse := false
	if value, ok := attrs.Get(TerseKey); ok {
		terse = expr.Truthy(value)
	}

	var b strings.Builder
	for _, key := range attrs.Keys() {
		if key == TerseKey {
			continue
		}
		value, _ := attrs.Get(key)
		escape := false
		if flag, ok := flags.Get(key); ok {
			escape = expr.Truthy(flag)
		}
		writeAttr(&b, key, value, escape, terse)
	}
	return b.String()
}

func writeAttr(b *strings.Builder, key string, value any, escape, terse bool) {
	if _, isBool := value.(bool); isBool || value == nil {
		if !expr.Truthy(value) {
			return
		}
		b.WriteByte(' ')
		b.WriteString(key)
		if !terse {
			b.WriteString(`="`)
			b.WriteString(key)
			b.WriteByte('"')
		}
		return
	}

	if strings.HasPrefix(key, "data") {
		if _, isString := value.(string); !isString {
			payload, err := json.Marshal(value)
			if err != nil {
				payload = []byte(expr.ToString(value))
			}
			b.WriteByte(' ')
			b.WriteString(key)
			b.WriteString(`='`)
			b.WriteString(strings.ReplaceAll(string(payload), "'", "&apos;"))
			b.WriteByte('\'')
			return
		}
	}

	var text string
	if key == "class" {
		text = JoinClasses(value)
		if text == "" {
			return
		}
	} else {
		text = expr.ToString(value)
	}
	if escape {
		text = EscapeString(text)
	}
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteString(`="`)
	b.WriteString(text)
	b.WriteByte('"')
}

// JoinClasses flattens nested class lists, dropping nil and empty entries.
func JoinClasses(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return expr.ToString(value)
	}
	parts := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		if part := JoinClasses(rv.Index(i).Interface()); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// ToObject views an attribute or escape map as an ordered object. Go maps
// are read in sorted key order; nil yields an empty object.
func ToObject(v any) *expr.Object {
	switch typed := v.(type) {
	case *expr.Object:
		if typed == nil {
			return expr.NewObject()
		}
		return typed
	case map[string]any:
		return expr.ObjectFrom(typed)
	case map[string]bool:
		obj := expr.NewObject()
		for _, key := range sortedStringKeys(typed) {
			obj.Set(key, typed[key])
		}
		return obj
	case nil:
		return expr.NewObject()
	}
	rv := reflect.ValueOf(v)
	obj := expr.NewObject()
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return obj
	}
	keys := rv.MapKeys()
	names := make(map[string]reflect.Value, len(keys))
	for _, key := range keys {
		names[key.String()] = key
	}
	for _, name := range sortedStringKeys(names) {
		obj.Set(name, rv.MapIndex(names[name]).Interface())
	}
	return obj
}
