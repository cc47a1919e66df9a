package schema

import "sort"

// Record is the flat key/value shape every form submits. Keys match the
// remote API field names; list fields hold []any of Record/map values.
type Record map[string]any

// Clone returns a deep copy of the record so callers can mutate the result
// without touching form state.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for key, value := range r {
		out[key] = deepCopy(value)
	}
	return out
}

// Keys returns the record keys in lexical order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case Record:
		return typed.Clone()
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []Record:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = v.Clone()
		}
		return clone
	default:
		return typed
	}
}

// FieldErrors maps dotted field paths to a single message each.
type FieldErrors map[string]string

// Paths returns the offending paths in lexical order.
func (e FieldErrors) Paths() []string {
	paths := make([]string, 0, len(e))
	for path := range e {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (e FieldErrors) add(path, message string) {
	if _, exists := e[path]; exists {
		return
	}
	e[path] = message
}

// Result is the outcome of Schema.Validate. Data is only populated when
// Success is true; Errors only when it is false.
type Result struct {
	Success bool
	Data    Record
	Errors  FieldErrors
}
