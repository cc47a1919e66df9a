package schema

import (
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var mailbox = validator.New()

// Validate checks record against every rule and returns either the
// normalised data or all field errors. Fields the schema does not declare,
// and variant fields of the unselected tag, are left out of Data.
func (s *Schema) Validate(record Record) Result {
	errs := make(FieldErrors)
	data := make(Record)
	s.validateInto(record, "", s.now(), data, errs)
	if len(errs) > 0 {
		return Result{Errors: errs}
	}
	return Result{Success: true, Data: data}
}

func (s *Schema) validateInto(record Record, prefix string, now time.Time, data Record, errs FieldErrors) {
	for _, field := range s.Fields {
		s.validateField(field, record, prefix, now, data, errs)
	}
	for _, union := range s.Unions {
		disc := union.Discriminant
		path := joinPath(prefix, disc.Name)
		raw, present := record[disc.Name]
		if !present || raw == nil {
			errs.add(path, disc.requiredMessage())
			continue
		}
		tag, ok := coerceBool(raw)
		if !ok {
			errs.add(path, disc.typeMessage())
			continue
		}
		data[disc.Name] = tag
		for _, field := range union.Variant(tag) {
			s.validateField(field, record, prefix, now, data, errs)
		}
	}
}

func (s *Schema) validateField(field Field, record Record, prefix string, now time.Time, data Record, errs FieldErrors) {
	path := joinPath(prefix, field.Name)
	raw, present := record[field.Name]
	if !present || raw == nil {
		if !field.Optional {
			errs.add(path, field.requiredMessage())
		}
		return
	}

	switch field.Kind {
	case KindString, KindEmail:
		if value, ok := normalizeText(field, raw, path, errs); ok {
			data[field.Name] = value
		}
	case KindEnum:
		if value, ok := normalizeEnum(field, raw, path, errs); ok {
			data[field.Name] = value
		}
	case KindInteger, KindNumber:
		if value, ok := normalizeNumber(field, raw, path, errs); ok {
			data[field.Name] = value
		}
	case KindBoolean:
		value, ok := coerceBool(raw)
		if !ok {
			errs.add(path, field.typeMessage())
			return
		}
		data[field.Name] = value
	case KindDate:
		if value, ok := normalizeDate(field, raw, path, now, errs); ok {
			data[field.Name] = value
		}
	case KindList:
		if value, ok := s.normalizeList(field, raw, path, now, errs); ok {
			data[field.Name] = value
		}
	default:
		errs.add(path, field.typeMessage())
	}
}

func normalizeText(field Field, raw any, path string, errs FieldErrors) (string, bool) {
	str, ok := raw.(string)
	if !ok {
		errs.add(path, field.typeMessage())
		return "", false
	}
	trimmed := strings.TrimSpace(str)
	if trimmed == "" && field.Optional {
		return "", true
	}
	if field.Kind == KindEmail {
		if err := mailbox.Var(trimmed, "required,email"); err != nil {
			errs.add(path, field.emailMessage())
			return "", false
		}
	}
	length := utf8.RuneCountInString(trimmed)
	if field.MinLength > 0 && length < field.MinLength {
		errs.add(path, field.minLengthMessage())
		return "", false
	}
	if field.MaxLength > 0 && length > field.MaxLength {
		errs.add(path, field.maxLengthMessage())
		return "", false
	}
	if field.Pattern != nil && !field.Pattern.MatchString(trimmed) {
		errs.add(path, field.patternMessage())
		return "", false
	}
	out := applyCase(field.Case, trimmed)
	if out == trimmed {
		return out, true
	}
	// Case mapping can change the rune count (ß upper-cases to SS), so the
	// stored value has to satisfy the bounds again.
	if field.MaxLength > 0 && utf8.RuneCountInString(out) > field.MaxLength {
		errs.add(path, field.maxLengthMessage())
		return "", false
	}
	if field.Pattern != nil && !field.Pattern.MatchString(out) {
		errs.add(path, field.patternMessage())
		return "", false
	}
	return out, true
}

func normalizeEnum(field Field, raw any, path string, errs FieldErrors) (string, bool) {
	str, ok := raw.(string)
	if !ok {
		errs.add(path, field.optionMessage())
		return "", false
	}
	trimmed := strings.TrimSpace(str)
	if trimmed == "" && field.Optional {
		return "", true
	}
	if field.Case == CasePreserve {
		if !slices.Contains(field.Options, trimmed) {
			errs.add(path, field.optionMessage())
			return "", false
		}
		return trimmed, true
	}
	folded := applyCase(field.Case, trimmed)
	if !slices.Contains(field.NormalizedOptions(), folded) {
		errs.add(path, field.optionMessage())
		return "", false
	}
	return folded, true
}

// NormalizedOptions returns the enum options as they appear in validated
// data, with the field's case transform applied and duplicates dropped.
func (f Field) NormalizedOptions() []string {
	out := make([]string, 0, len(f.Options))
	for _, option := range f.Options {
		value := applyCase(f.Case, option)
		if !slices.Contains(out, value) {
			out = append(out, value)
		}
	}
	return out
}

func normalizeNumber(field Field, raw any, path string, errs FieldErrors) (any, bool) {
	if str, ok := raw.(string); ok && strings.TrimSpace(str) == "" {
		if !field.Optional {
			errs.add(path, field.requiredMessage())
		}
		return nil, false
	}
	num, ok := coerceNumber(raw)
	if !ok {
		errs.add(path, field.typeMessage())
		return nil, false
	}
	if field.Kind == KindInteger && num != float64(int64(num)) {
		errs.add(path, field.typeMessage())
		return nil, false
	}
	if field.Min != nil && num < *field.Min {
		errs.add(path, field.minMessage())
		return nil, false
	}
	if field.Kind == KindInteger {
		return int64(num), true
	}
	return num, true
}

func normalizeDate(field Field, raw any, path string, now time.Time, errs FieldErrors) (time.Time, bool) {
	date, ok := coerceDate(raw)
	if !ok {
		if isBlank(raw) {
			if !field.Optional {
				errs.add(path, field.requiredMessage())
			}
			return time.Time{}, false
		}
		errs.add(path, field.typeMessage())
		return time.Time{}, false
	}
	if field.MaxDate != nil {
		limit := DateOf(field.MaxDate(now))
		if date.After(limit) {
			errs.add(path, field.maxDateMessage())
			return time.Time{}, false
		}
	}
	return date, true
}

func (s *Schema) normalizeList(field Field, raw any, path string, now time.Time, errs FieldErrors) ([]any, bool) {
	items, ok := coerceList(raw)
	if !ok {
		errs.add(path, field.typeMessage())
		return nil, false
	}
	if len(items) < field.MinItems {
		errs.add(path, field.minItemsMessage())
		return nil, false
	}
	if field.Item == nil {
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item.Clone()
		}
		return out, true
	}

	before := len(errs)
	out := make([]any, 0, len(items))
	for i, item := range items {
		itemPath := joinPath(path, strconv.Itoa(i))
		if item == nil {
			errs.add(itemPath, field.typeMessage())
			continue
		}
		itemData := make(Record)
		field.Item.validateInto(item, itemPath, now, itemData, errs)
		out = append(out, itemData)
	}
	if len(errs) > before {
		return nil, false
	}
	return out, true
}

func applyCase(mode Case, value string) string {
	switch mode {
	case CaseUpper:
		return cases.Upper(language.Spanish).String(value)
	case CaseLower:
		return cases.Lower(language.Spanish).String(value)
	default:
		return value
	}
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}
