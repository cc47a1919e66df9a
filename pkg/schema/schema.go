package schema

import (
	"fmt"
	"strings"
	"time"
)

// Union is a discriminated field set. The discriminant must be a Boolean
// field; WhenTrue and WhenFalse list the fields that exist only under that
// tag value.
type Union struct {
	Discriminant Field
	WhenTrue     []Field
	WhenFalse    []Field
}

// Variant returns the fields selected by tag.
func (u Union) Variant(tag bool) []Field {
	if tag {
		return u.WhenTrue
	}
	return u.WhenFalse
}

// Schema validates and normalises one record shape.
type Schema struct {
	Name   string
	Fields []Field
	Unions []Union

	clock func() time.Time
}

// Option configures a Schema at construction.
type Option func(*Schema)

// WithClock fixes the time source used by relative date bounds.
func WithClock(fn func() time.Time) Option {
	return func(s *Schema) {
		if fn != nil {
			s.clock = fn
		}
	}
}

// New assembles a schema. It panics when a union discriminant is not a
// Boolean field or a field name is declared twice, since both are
// programming errors in the static form definitions.
func New(name string, fields []Field, unions []Union, opts ...Option) *Schema {
	s := &Schema{
		Name:   name,
		Fields: append([]Field(nil), fields...),
		Unions: append([]Union(nil), unions...),
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.check(); err != nil {
		panic(err)
	}
	return s
}

// WithClock returns a copy of the schema (and its list item schemas) that
// reads "now" from fn.
func (s *Schema) WithClock(fn func() time.Time) *Schema {
	if s == nil {
		return nil
	}
	clone := *s
	clone.clock = fn
	clone.Fields = withItemClock(s.Fields, fn)
	clone.Unions = make([]Union, len(s.Unions))
	for i, union := range s.Unions {
		clone.Unions[i] = Union{
			Discriminant: union.Discriminant,
			WhenTrue:     withItemClock(union.WhenTrue, fn),
			WhenFalse:    withItemClock(union.WhenFalse, fn),
		}
	}
	return &clone
}

func withItemClock(fields []Field, fn func() time.Time) []Field {
	out := make([]Field, len(fields))
	for i, field := range fields {
		if field.Item != nil {
			field.Item = field.Item.WithClock(fn)
		}
		out[i] = field
	}
	return out
}

func (s *Schema) now() time.Time {
	if s == nil || s.clock == nil {
		return time.Now()
	}
	return s.clock()
}

func (s *Schema) check() error {
	seen := make(map[string]struct{})
	claim := func(name string) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("schema %s: field name is required", s.Name)
		}
		if _, exists := seen[name]; exists {
			return fmt.Errorf("schema %s: duplicate field %q", s.Name, name)
		}
		seen[name] = struct{}{}
		return nil
	}
	for _, field := range s.Fields {
		if err := claim(field.Name); err != nil {
			return err
		}
	}
	for _, union := range s.Unions {
		if union.Discriminant.Kind != KindBoolean {
			return fmt.Errorf("schema %s: discriminant %q must be boolean", s.Name, union.Discriminant.Name)
		}
		if err := claim(union.Discriminant.Name); err != nil {
			return err
		}
		// Both variants may reuse a name; only cross-union reuse is rejected.
		variantNames := make(map[string]struct{})
		for _, field := range append(append([]Field(nil), union.WhenTrue...), union.WhenFalse...) {
			if _, ok := variantNames[field.Name]; ok {
				continue
			}
			variantNames[field.Name] = struct{}{}
			if err := claim(field.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Entry is one field as seen by Walk, with the visibility rule a form
// controller should apply to it. Rule is empty for always-visible fields.
type Entry struct {
	Field Field
	Rule  string
	// Discriminant names the union tag when the entry belongs to a variant.
	Discriminant string
}

// Walk visits plain fields in declaration order, then each union's
// discriminant followed by its true-variant and false-variant fields.
func (s *Schema) Walk(fn func(Entry)) {
	if s == nil || fn == nil {
		return
	}
	for _, field := range s.Fields {
		fn(Entry{Field: field})
	}
	for _, union := range s.Unions {
		tag := union.Discriminant.Name
		fn(Entry{Field: union.Discriminant})
		for _, field := range union.WhenTrue {
			fn(Entry{Field: field, Rule: VisibilityRule(tag, true), Discriminant: tag})
		}
		for _, field := range union.WhenFalse {
			fn(Entry{Field: field, Rule: VisibilityRule(tag, false), Discriminant: tag})
		}
	}
}

// VisibilityRule renders the rule string for fields gated on a discriminant.
func VisibilityRule(discriminant string, tag bool) string {
	return fmt.Sprintf("%s == %t", discriminant, tag)
}

// Lookup finds a top-level field (plain, discriminant, or variant member).
func (s *Schema) Lookup(name string) (Field, bool) {
	var (
		found Field
		ok    bool
	)
	s.Walk(func(entry Entry) {
		if !ok && entry.Field.Name == name {
			found, ok = entry.Field, true
		}
	})
	return found, ok
}

// Discriminants lists the union tags in declaration order.
func (s *Schema) Discriminants() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Unions))
	for _, union := range s.Unions {
		out = append(out, union.Discriminant.Name)
	}
	return out
}

// Union returns the union governed by discriminant.
func (s *Schema) Union(discriminant string) (Union, bool) {
	if s == nil {
		return Union{}, false
	}
	for _, union := range s.Unions {
		if union.Discriminant.Name == discriminant {
			return union, true
		}
	}
	return Union{}, false
}

// VisibilityRules maps every variant field to its rule.
func (s *Schema) VisibilityRules() map[string]string {
	rules := make(map[string]string)
	s.Walk(func(entry Entry) {
		if entry.Rule != "" {
			rules[entry.Field.Name] = entry.Rule
		}
	})
	return rules
}
