package expr

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/goliatone/go-intake/pkg/visibility"
)

type node interface {
	eval(ctx visibility.Context) bool
}

type anyOf [2]node

func (n anyOf) eval(ctx visibility.Context) bool { return n[0].eval(ctx) || n[1].eval(ctx) }

type allOf [2]node

func (n allOf) eval(ctx visibility.Context) bool { return n[0].eval(ctx) && n[1].eval(ctx) }

type negate struct{ inner node }

func (n negate) eval(ctx visibility.Context) bool { return !n.inner.eval(ctx) }

type truthy struct{ path string }

func (n truthy) eval(ctx visibility.Context) bool {
	value, _ := resolve(ctx, n.path)
	return isTruthy(value)
}

type compare struct {
	path    string
	negated bool
	want    tok
}

func (n compare) eval(ctx visibility.Context) bool {
	value, _ := resolve(ctx, n.path)
	return n.equal(value) != n.negated
}

func (n compare) equal(value any) bool {
	switch n.want.kind {
	case kNull:
		return value == nil
	case kBool:
		return asBool(value) == (n.want.text == "true")
	case kNumber:
		want, _ := strconv.ParseFloat(n.want.text, 64)
		got, ok := asNumber(value)
		return ok && got == want
	default:
		// bare identifiers on the right-hand side compare as strings
		return asString(value) == n.want.text
	}
}

func resolve(ctx visibility.Context, path string) (any, bool) {
	if rest, ok := strings.CutPrefix(path, "extras."); ok {
		return walk(ctx.Extras, rest)
	}
	return walk(ctx.Values, path)
}

func walk(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}

	var current any = values
	for _, part := range strings.Split(path, ".") {
		next, ok := child(current, part)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// child indexes maps by key and slices by position so rules can address
// list items such as `vacunas.0.nombre_vacuna`.
func child(container any, key string) (any, bool) {
	rv := reflect.ValueOf(container)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	default:
		return nil, false
	}
}

func isTruthy(value any) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	}
	if n, ok := asNumber(value); ok {
		return n != 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer:
		return !rv.IsNil() && isTruthy(rv.Elem().Interface())
	}
	return true
}

func asBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case *bool:
		return v != nil && *v
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return isTruthy(value)
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case nil, bool:
		return 0, false
	}
	rv := reflect.ValueOf(value)
	switch {
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	case rv.CanFloat():
		return rv.Float(), true
	}
	return 0, false
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}
