package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-intake/pkg/schema"
)

// root returns the top-level field name of a dotted path.
func root(path string) string {
	head, _, _ := strings.Cut(path, ".")
	return head
}

func asMap(node any) (map[string]any, bool) {
	switch typed := node.(type) {
	case schema.Record:
		return typed, true
	case map[string]any:
		return typed, true
	default:
		return nil, false
	}
}

func getPath(values schema.Record, path string) (any, bool) {
	if values == nil || path == "" {
		return nil, false
	}
	var current any = values
	for _, segment := range strings.Split(path, ".") {
		if m, ok := asMap(current); ok {
			next, ok := m[segment]
			if !ok {
				return nil, false
			}
			current = next
			continue
		}
		list, ok := current.([]any)
		if !ok {
			return nil, false
		}
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= len(list) {
			return nil, false
		}
		current = list[idx]
	}
	return current, true
}

// setPath writes value at path. List items must already exist; AppendItem
// grows lists.
func setPath(values schema.Record, path string, value any) error {
	segments := strings.Split(path, ".")
	var current any = values
	for i, segment := range segments {
		last := i == len(segments)-1
		if m, ok := asMap(current); ok {
			if last {
				m[segment] = value
				return nil
			}
			next, ok := m[segment]
			if !ok || next == nil {
				if _, err := strconv.Atoi(segments[i+1]); err == nil {
					return fmt.Errorf("%w: %s has no item %s", ErrUnknownField, segment, segments[i+1])
				}
				next = schema.Record{}
				m[segment] = next
			}
			current = next
			continue
		}

		list, ok := current.([]any)
		if !ok {
			return fmt.Errorf("%w: cannot descend into %q", ErrUnknownField, strings.Join(segments[:i], "."))
		}
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= len(list) {
			return fmt.Errorf("%w: %q is not an item index", ErrUnknownField, segment)
		}
		if last {
			list[idx] = value
			return nil
		}
		if list[idx] == nil {
			list[idx] = schema.Record{}
		}
		current = list[idx]
	}
	return nil
}

func listAt(values schema.Record, path string) ([]any, error) {
	raw, ok := getPath(values, path)
	if !ok || raw == nil {
		return nil, nil
	}
	switch typed := raw.(type) {
	case []any:
		return typed, nil
	case []schema.Record:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, nil
	default:
		return nil, fmt.Errorf("form: %s is not a list", path)
	}
}
