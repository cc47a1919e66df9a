package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-intake/pkg/schema"
)

// Formatter renders a normalised value for display.
type Formatter func(value any) string

// Row is one line of a review summary.
type Row struct {
	Path   string
	Label  string
	Value  string
	Indent string
}

const summarySource = `{% autoescape off %}== {{ title }} ==
{% for row in rows %}{{ row.Indent }}{{ row.Label }}: {{ row.Value }}
{% endfor %}{% if notice %}
{{ notice }}
{% endif %}{% endautoescape %}`

var summaryTemplate = pongo2.Must(pongo2.FromString(summarySource))

// Rows lists the fields of data in schema order. Variant fields only appear
// when their discriminant selected them; list items are indented under the
// list label. formatters override display by field name.
func Rows(s *schema.Schema, data schema.Record, formatters map[string]Formatter) []Row {
	return rows(s, data, formatters, "", "")
}

func rows(s *schema.Schema, data schema.Record, formatters map[string]Formatter, prefix, indent string) []Row {
	var out []Row
	s.Walk(func(entry schema.Entry) {
		field := entry.Field
		value, ok := data[field.Name]
		if !ok || !selected(s, entry, data) {
			return
		}
		path := field.Name
		if prefix != "" {
			path = prefix + "." + field.Name
		}
		label := Label(field)

		if field.Kind == schema.KindList && field.Item != nil {
			items, _ := value.([]any)
			out = append(out, Row{Path: path, Label: label, Value: fmt.Sprintf("%d", len(items)), Indent: indent})
			for i, item := range items {
				record, ok := asRecord(item)
				if !ok {
					continue
				}
				itemPath := fmt.Sprintf("%s.%d", path, i)
				out = append(out, Row{Path: itemPath, Label: fmt.Sprintf("#%d", i+1), Indent: indent + "  "})
				out = append(out, rows(field.Item, record, formatters, itemPath, indent+"    ")...)
			}
			return
		}

		text := Display(value)
		if format, ok := formatters[field.Name]; ok && format != nil {
			text = format(value)
		}
		out = append(out, Row{Path: path, Label: label, Value: text, Indent: indent})
	})
	return out
}

// selected reports whether a variant entry belongs to the tag chosen in
// data. Plain fields are always selected.
func selected(s *schema.Schema, entry schema.Entry, data schema.Record) bool {
	if entry.Discriminant == "" {
		return true
	}
	union, ok := s.Union(entry.Discriminant)
	if !ok {
		return false
	}
	tag, _ := data[entry.Discriminant].(bool)
	for _, field := range union.Variant(tag) {
		if field.Name == entry.Field.Name {
			return true
		}
	}
	return false
}

func asRecord(item any) (schema.Record, bool) {
	switch typed := item.(type) {
	case schema.Record:
		return typed, true
	case map[string]any:
		return schema.Record(typed), true
	default:
		return nil, false
	}
}

// Label returns the field label without its leading article, capitalised.
func Label(field schema.Field) string {
	label := strings.TrimSpace(field.Label)
	if label == "" {
		return field.Name
	}
	for _, article := range []string{"El ", "La ", "Los ", "Las "} {
		if rest, ok := strings.CutPrefix(label, article); ok {
			label = rest
			break
		}
	}
	first := []rune(label)
	if len(first) > 0 {
		label = strings.ToUpper(string(first[0])) + string(first[1:])
	}
	return label
}

// Display renders a normalised value the way review screens show it.
func Display(value any) string {
	switch typed := value.(type) {
	case nil:
		return "-"
	case string:
		if strings.TrimSpace(typed) == "" {
			return "-"
		}
		return typed
	case bool:
		if typed {
			return "Sí"
		}
		return "No"
	case time.Time:
		return typed.Format("02/01/2006")
	default:
		return fmt.Sprint(typed)
	}
}

// Summary renders the review text shown before a record is submitted.
func Summary(title string, rows []Row, notice string) (string, error) {
	out, err := summaryTemplate.Execute(pongo2.Context{
		"title":  title,
		"rows":   rows,
		"notice": notice,
	})
	if err != nil {
		return "", fmt.Errorf("render: summary: %w", err)
	}
	return out, nil
}
