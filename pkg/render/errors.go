package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-intake/pkg/schema"
)

// ErrorMapping splits an API error payload into field-level messages keyed
// by the dotted paths the form controller uses, plus form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// First returns the first message per field, the shape
// form.Form.ApplyServerErrors expects.
func (m ErrorMapping) First() map[string]string {
	if len(m.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(m.Fields))
	for path, messages := range m.Fields {
		if len(messages) > 0 {
			out[path] = messages[0]
		}
	}
	return out
}

// MergeFormErrors concatenates form-level messages, trimming and dropping
// blanks and duplicates while keeping order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return dedupe(combined)
}

// MapErrorPayload resolves the keys of an API error payload against the
// fields s declares. Keys may be dotted (`vacunas.0.nombre_vacuna`), JSON
// pointers (`/body/correo`) or bracketed (`vacunas[0].fechas_dosis`); common
// envelope segments such as `body` or `data` are skipped. Keys that match no
// field become form-level messages so nothing is lost.
func MapErrorPayload(s *schema.Schema, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	for key, messages := range payload {
		messages = dedupe(messages)
		if len(messages) == 0 {
			continue
		}
		path, ok := resolve(s, key)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[path] = append(mapping.Fields[path], messages...)
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = dedupe(mapping.Form)
	return mapping
}

// FlattenPayload accepts the loose `errors` member of an API response:
// either `{"field": "msg"}`, `{"field": ["a", "b"]}` or a list of
// `{"field": ..., "message": ...}` objects.
func FlattenPayload(raw any) map[string][]string {
	out := make(map[string][]string)
	switch typed := raw.(type) {
	case map[string]any:
		for key, value := range typed {
			out[key] = append(out[key], messagesOf(value)...)
		}
	case []any:
		for _, item := range typed {
			entry, ok := item.(map[string]any)
			if !ok {
				out[""] = append(out[""], messagesOf(item)...)
				continue
			}
			key, _ := firstString(entry, "field", "path", "campo")
			msg, _ := firstString(entry, "message", "mensaje", "msg")
			out[key] = append(out[key], msg)
		}
	case string:
		out[""] = []string{typed}
	}
	return out
}

func messagesOf(value any) []string {
	switch typed := value.(type) {
	case string:
		return []string{typed}
	case []any:
		var out []string
		for _, item := range typed {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return typed
	default:
		return nil
	}
}

func firstString(entry map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := entry[key].(string); ok {
			return s, true
		}
	}
	return "", false
}

func dedupe(messages []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

var envelopes = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
}

func resolve(s *schema.Schema, key string) (string, bool) {
	if isFormLevel(key) {
		return "", false
	}
	segments := split(key)
	for len(segments) > 0 {
		if _, ok := envelopes[strings.ToLower(segments[0])]; !ok {
			break
		}
		segments = segments[1:]
	}
	matched := match(s, segments)
	if len(matched) == 0 {
		return "", false
	}
	return strings.Join(matched, "."), true
}

// match walks segments through s and returns the longest prefix that names
// a declared field. List indexes are kept; an index-less path into a list
// item falls back to the list itself.
func match(s *schema.Schema, segments []string) []string {
	if s == nil || len(segments) == 0 {
		return nil
	}
	field, ok := s.Lookup(segments[0])
	if !ok {
		return nil
	}
	out := []string{segments[0]}
	rest := segments[1:]
	if field.Kind != schema.KindList || field.Item == nil || len(rest) == 0 {
		return out
	}
	idx, err := strconv.Atoi(rest[0])
	if err != nil || idx < 0 {
		return out
	}
	out = append(out, rest[0])
	return append(out, match(field.Item, rest[1:])...)
}

func split(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/' || r == '#' || r == '$'
	})
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		out = append(out, part)
	}
	return out
}

func isFormLevel(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "general":
		return true
	default:
		return false
	}
}
