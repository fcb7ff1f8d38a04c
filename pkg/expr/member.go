package expr

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
)

// GetMember reads property key of obj. Reading from nil is an error;
// missing properties read as nil.
func GetMember(obj any, key any) (any, error) {
	if obj == nil {
		return nil, fmt.Errorf("expr: cannot read property %q of undefined", ToString(key))
	}
	name := propertyName(key)

	switch value := obj.(type) {
	case *Object:
		if v, ok := value.Get(name); ok {
			return v, nil
		}
		if name == "length" {
			return float64(value.Len()), nil
		}
		return nil, nil
	case map[string]any:
		if v, ok := value[name]; ok {
			return v, nil
		}
		if name == "length" {
			return float64(len(value)), nil
		}
		return nil, nil
	case string:
		return stringMember(value, key, name), nil
	case []any:
		return sequenceMember(reflect.ValueOf(value), key, name), nil
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("expr: cannot read property %q of undefined", name)
		}
		if method := reflect.ValueOf(obj).MethodByName(name); method.IsValid() {
			return method.Interface(), nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, nil
		}
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			if name == "length" {
				return float64(rv.Len()), nil
			}
			return nil, nil
		}
		return v.Interface(), nil
	case reflect.Slice, reflect.Array:
		return sequenceMember(rv, key, name), nil
	case reflect.String:
		return stringMember(rv.String(), key, name), nil
	case reflect.Struct:
		if field, ok := structField(rv, name); ok {
			return field.Interface(), nil
		}
		if method := rv.MethodByName(name); method.IsValid() {
			return method.Interface(), nil
		}
		return nil, nil
	}
	return nil, nil
}

// SetMember assigns property key of obj.
func SetMember(obj any, key any, value any) error {
	if obj == nil {
		return fmt.Errorf("expr: cannot set property %q of undefined", ToString(key))
	}
	name := propertyName(key)

	switch target := obj.(type) {
	case *Object:
		target.Set(name, value)
		return nil
	case map[string]any:
		target[name] = value
		return nil
	}

	rv := reflect.ValueOf(obj)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			converted, err := convertValue(value, rv.Type().Elem())
			if err != nil {
				return err
			}
			rv.SetMapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()), converted)
			return nil
		}
	case reflect.Slice:
		index, ok := arrayIndex(key)
		if !ok || index >= rv.Len() {
			return fmt.Errorf("expr: index %s out of range", ToString(key))
		}
		converted, err := convertValue(value, rv.Type().Elem())
		if err != nil {
			return err
		}
		rv.Index(index).Set(converted)
		return nil
	case reflect.Pointer:
		elem := rv.Elem()
		if elem.Kind() == reflect.Struct {
			if field, ok := structField(elem, name); ok && field.CanSet() {
				converted, err := convertValue(value, field.Type())
				if err != nil {
					return err
				}
				field.Set(converted)
				return nil
			}
		}
	}
	return fmt.Errorf("expr: cannot set property %q on %s", name, TypeOf(obj))
}

func propertyName(key any) string {
	if s, ok := key.(string); ok {
		return s
	}
	return ToString(key)
}

func arrayIndex(key any) (int, bool) {
	var f float64
	switch value := key.(type) {
	case string:
		f = ToNumber(value)
	default:
		n, ok := asNumber(key)
		if !ok {
			return 0, false
		}
		f = n
	}
	if f < 0 || f != math.Trunc(f) || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if field.Name == name || (tag != "" && tag != "-" && tag == name) {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func sequenceMember(rv reflect.Value, key any, name string) any {
	if index, ok := arrayIndex(key); ok {
		if index < rv.Len() {
			return rv.Index(index).Interface()
		}
		return nil
	}
	if name == "length" {
		return float64(rv.Len())
	}
	return arrayMethod(rv, name)
}

func stringMember(s string, key any, name string) any {
	runes := []rune(s)
	if index, ok := arrayIndex(key); ok {
		if index < len(runes) {
			return string(runes[index])
		}
		return nil
	}
	if name == "length" {
		return float64(len(runes))
	}
	return stringMethod(s, name)
}

func stringMethod(s string, name string) any {
	switch name {
	case "toUpperCase":
		return Func(func(args ...any) (any, error) { return strings.ToUpper(s), nil })
	case "toLowerCase":
		return Func(func(args ...any) (any, error) { return strings.ToLower(s), nil })
	case "trim":
		return Func(func(args ...any) (any, error) { return strings.TrimSpace(s), nil })
	case "indexOf":
		return Func(func(args ...any) (any, error) {
			idx := strings.Index(s, ToString(arg(args, 0)))
			if idx < 0 {
				return float64(-1), nil
			}
			return float64(len([]rune(s[:idx]))), nil
		})
	case "includes":
		return Func(func(args ...any) (any, error) { return strings.Contains(s, ToString(arg(args, 0))), nil })
	case "startsWith":
		return Func(func(args ...any) (any, error) { return strings.HasPrefix(s, ToString(arg(args, 0))), nil })
	case "endsWith":
		return Func(func(args ...any) (any, error) { return strings.HasSuffix(s, ToString(arg(args, 0))), nil })
	case "charAt":
		return Func(func(args ...any) (any, error) {
			runes := []rune(s)
			index, ok := arrayIndex(ToNumber(arg(args, 0)))
			if arg(args, 0) == nil {
				index, ok = 0, true
			}
			if !ok || index >= len(runes) {
				return "", nil
			}
			return string(runes[index]), nil
		})
	case "replace":
		return Func(func(args ...any) (any, error) {
			return strings.Replace(s, ToString(arg(args, 0)), ToString(arg(args, 1)), 1), nil
		})
	case "split":
		return Func(func(args ...any) (any, error) {
			if arg(args, 0) == nil {
				return []any{s}, nil
			}
			parts := strings.Split(s, ToString(args[0]))
			out := make([]any, len(parts))
			for i, part := range parts {
				out[i] = part
			}
			return out, nil
		})
	case "slice", "substring":
		return Func(func(args ...any) (any, error) {
			runes := []rune(s)
			start, end := sliceBounds(len(runes), args, name == "substring")
			return string(runes[start:end]), nil
		})
	}
	return nil
}

func arrayMethod(rv reflect.Value, name string) any {
	switch name {
	case "join":
		return Func(func(args ...any) (any, error) {
			sep := ","
			if arg(args, 0) != nil {
				sep = ToString(args[0])
			}
			parts := make([]string, rv.Len())
			for i := range parts {
				if elem := rv.Index(i).Interface(); elem != nil {
					parts[i] = ToString(elem)
				}
			}
			return strings.Join(parts, sep), nil
		})
	case "indexOf", "includes":
		return Func(func(args ...any) (any, error) {
			needle := arg(args, 0)
			for i := 0; i < rv.Len(); i++ {
				if StrictEqual(rv.Index(i).Interface(), needle) {
					if name == "includes" {
						return true, nil
					}
					return float64(i), nil
				}
			}
			if name == "includes" {
				return false, nil
			}
			return float64(-1), nil
		})
	case "slice":
		return Func(func(args ...any) (any, error) {
			start, end := sliceBounds(rv.Len(), args, false)
			out := make([]any, 0, end-start)
			for i := start; i < end; i++ {
				out = append(out, rv.Index(i).Interface())
			}
			return out, nil
		})
	case "concat":
		return Func(func(args ...any) (any, error) {
			out := make([]any, 0, rv.Len()+len(args))
			for i := 0; i < rv.Len(); i++ {
				out = append(out, rv.Index(i).Interface())
			}
			for _, extra := range args {
				if ev := reflect.ValueOf(extra); extra != nil && (ev.Kind() == reflect.Slice || ev.Kind() == reflect.Array) {
					for i := 0; i < ev.Len(); i++ {
						out = append(out, ev.Index(i).Interface())
					}
					continue
				}
				out = append(out, extra)
			}
			return out, nil
		})
	}
	return nil
}

// sliceBounds resolves slice(start, end) arguments against length n.
// Negative indices count from the end unless clamp is set (substring).
func sliceBounds(n int, args []any, clamp bool) (int, int) {
	resolve := func(v any, fallback int) int {
		if v == nil {
			return fallback
		}
		f := ToNumber(v)
		if math.IsNaN(f) {
			f = 0
		}
		i := int(math.Trunc(math.Max(math.Min(f, float64(n)), -float64(n))))
		if i < 0 {
			if clamp {
				return 0
			}
			i += n
		}
		return i
	}
	start := resolve(arg(args, 0), 0)
	end := resolve(arg(args, 1), n)
	if clamp && start > end {
		start, end = end, start
	}
	if end < start {
		end = start
	}
	return start, end
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// CallValue invokes fn with args. Func values are called directly, other Go
// functions through reflection with argument coercion.
func CallValue(fn any, args []any) (any, error) {
	switch f := fn.(type) {
	case nil:
		return nil, errors.New("expr: undefined is not a function")
	case Func:
		return f(args...)
	case func(...any) (any, error):
		return f(args...)
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("expr: %s is not a function", TypeOf(fn))
	}
	rt := rv.Type()
	fixed := rt.NumIn()
	if rt.IsVariadic() {
		fixed--
	}
	in := make([]reflect.Value, 0, len(args))
	for i := 0; i < fixed; i++ {
		v, err := convertValue(arg(args, i), rt.In(i))
		if err != nil {
			return nil, fmt.Errorf("expr: argument %d: %w", i+1, err)
		}
		in = append(in, v)
	}
	if rt.IsVariadic() {
		elem := rt.In(fixed).Elem()
		for i := fixed; i < len(args); i++ {
			v, err := convertValue(args[i], elem)
			if err != nil {
				return nil, fmt.Errorf("expr: argument %d: %w", i+1, err)
			}
			in = append(in, v)
		}
	}

	out := rv.Call(in)
	errorType := reflect.TypeOf((*error)(nil)).Elem()
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if rt.Out(0) == errorType {
			if err, _ := out[0].Interface().(error); err != nil {
				return nil, err
			}
			return nil, nil
		}
		return out[0].Interface(), nil
	default:
		last := out[len(out)-1]
		if rt.Out(len(out)-1) == errorType {
			if err, _ := last.Interface().(error); err != nil {
				return nil, err
			}
		}
		return out[0].Interface(), nil
	}
}

func convertValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(ToString(v)).Convert(t), nil
	case reflect.Bool:
		return reflect.ValueOf(Truthy(v)).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		f := ToNumber(v)
		if math.IsNaN(f) {
			return reflect.Value{}, fmt.Errorf("cannot use %s as %s", ToString(v), t)
		}
		return reflect.ValueOf(f).Convert(t), nil
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", TypeOf(v), t)
}

func sortedKeys(rv reflect.Value) []string {
	keys := make([]string, 0, rv.Len())
	for _, key := range rv.MapKeys() {
		keys = append(keys, ToString(key.Interface()))
	}
	sort.Strings(keys)
	return keys
}
