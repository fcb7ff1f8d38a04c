package expr

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestObjectOrderAndJSON(t *testing.T) {
	t.Parallel()

	obj := NewObject()
	obj.Set("z", 1.0)
	obj.Set("a", []any{"x", nil})
	obj.Set("z", 2.0)
	obj.Set("gone", true)
	obj.Delete("gone")

	if diff := cmp.Diff([]string{"z", "a"}, obj.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	payload, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshal returned error: %v", err)
	}
	if string(payload) != `{"z":2,"a":["x",null]}` {
		t.Fatalf("unexpected json: %s", payload)
	}

	clone := obj.Clone()
	clone.Set("b", 1.0)
	if obj.Has("b") {
		t.Fatalf("clone should not alias the original")
	}
}

func TestToStringAndTruthy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value  any
		str    string
		truthy bool
	}{
		{nil, "undefined", false},
		{"", "", false},
		{"x", "x", true},
		{0.0, "0", false},
		{int64(7), "7", true},
		{true, "true", true},
		{[]any{1.0, nil, "a"}, "1,,a", true},
		{NewObject(), "[object Object]", true},
		{map[string]any(nil), "[object Object]", false},
	}
	for _, tc := range cases {
		if got := ToString(tc.value); got != tc.str {
			t.Fatalf("ToString(%#v) = %q, want %q", tc.value, got, tc.str)
		}
		if got := Truthy(tc.value); got != tc.truthy {
			t.Fatalf("Truthy(%#v) = %v, want %v", tc.value, got, tc.truthy)
		}
	}
}

func TestDecodeYAMLKeepsOrder(t *testing.T) {
	t.Parallel()

	value, err := DecodeYAML([]byte("title: Home\ncount: 2\nitems:\n  - b: 1\n    a: 2\n"))
	if err != nil {
		t.Fatalf("DecodeYAML returned error: %v", err)
	}
	obj := value.(*Object)
	if diff := cmp.Diff([]string{"title", "count", "items"}, obj.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	count, _ := obj.Get("count")
	if count != 2.0 {
		t.Fatalf("numbers should decode as float64, got %T", count)
	}
	items, _ := obj.Get("items")
	first := items.([]any)[0].(*Object)
	if diff := cmp.Diff([]string{"b", "a"}, first.Keys()); diff != "" {
		t.Fatalf("nested keys mismatch (-want +got):\n%s", diff)
	}

	if _, err := DecodeLocals([]byte("- a\n- b\n")); err == nil {
		t.Fatalf("expected error for non-mapping locals")
	}
	locals, err := DecodeLocals([]byte(`{"name": "World"}`))
	if err != nil || locals["name"] != "World" {
		t.Fatalf("DecodeLocals = %v, %v", locals, err)
	}
}
