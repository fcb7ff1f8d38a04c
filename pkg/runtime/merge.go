package runtime

import (
	"reflect"
	"sort"

	"github.com/goliatone/go-jade/pkg/expr"
)

// Merge returns a new object holding a's keys overridden by b's. Class
// values are concatenated into a single list instead of being replaced,
// unless escapeMerge is set, in which case both arguments are escape maps and
// every key, class included, follows plain right-biased merging. Neither
// argument is modified.
func Merge(a, b any, escapeMerge bool) *expr.Object {
	left := ToObject(a).Clone()
	right := ToObject(b)

	if !escapeMerge {
		leftClass, _ := left.Get("class")
		rightClass, _ := right.Get("class")
		if expr.Truthy(leftClass) || expr.Truthy(rightClass) {
			classes := append(classList(leftClass), classList(rightClass)...)
			kept := classes[:0]
			for _, class := range classes {
				if class == nil {
					continue
				}
				if s, ok := class.(string); ok && s == "" {
					continue
				}
				kept = append(kept, class)
			}
			left.Set("class", kept)
		}
	}

	for _, key := range right.Keys() {
		if key == "class" && !escapeMerge {
			continue
		}
		value, _ := right.Get(key)
		left.Set(key, value)
	}
	return left
}

func classList(value any) []any {
	if value == nil {
		return nil
	}
	if list, ok := value.([]any); ok {
		return append([]any(nil), list...)
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{value}
}

func sortedStringKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
