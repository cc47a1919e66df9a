package schema

import (
	"regexp"
	"time"
)

// Kind enumerates the value shapes a field accepts.
type Kind string

const (
	KindString  Kind = "string"
	KindEmail   Kind = "email"
	KindEnum    Kind = "enum"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindDate    Kind = "date"
	KindList    Kind = "list"
)

// Case selects the case transform applied after a string passes its checks.
type Case int

const (
	CasePreserve Case = iota
	CaseUpper
	CaseLower
)

// Messages overrides the generated error text for a field. Empty entries fall
// back to messages derived from the field label.
type Messages struct {
	Required  string
	Type      string
	MinLength string
	MaxLength string
	Pattern   string
	Option    string
	Email     string
	Min       string
	MaxDate   string
	MinItems  string
}

// DateBound computes a date limit relative to the validation clock.
type DateBound func(now time.Time) time.Time

// Field describes one input. Use the constructors (String, Email, Enum, ...)
// and the chainable setters; the zero value is not useful on its own.
//
// Label doubles as the subject of generated messages, so it carries its
// article ("El primer nombre", "La ciudad de residencia").
type Field struct {
	Name      string
	Label     string
	Kind      Kind
	Optional  bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Case      Case
	Options   []string
	Min       *float64
	MaxDate   DateBound
	Item      *Schema
	MinItems  int
	Messages  Messages
}

func newField(kind Kind, name, label string) Field {
	return Field{Name: name, Label: label, Kind: kind}
}

// String declares a free-text field. Strings are always trimmed.
func String(name, label string) Field { return newField(KindString, name, label) }

// Email declares a mailbox field; values are trimmed and lower-cased.
func Email(name, label string) Field {
	f := newField(KindEmail, name, label)
	f.Case = CaseLower
	return f
}

// Enum declares a field whose value must be one of options.
func Enum(name, label string, options []string) Field {
	f := newField(KindEnum, name, label)
	f.Options = append([]string(nil), options...)
	return f
}

// Integer declares a whole-number field. Numeric strings are coerced.
func Integer(name, label string) Field { return newField(KindInteger, name, label) }

// Number declares a numeric field. Numeric strings are coerced.
func Number(name, label string) Field { return newField(KindNumber, name, label) }

// Boolean declares a true/false field.
func Boolean(name, label string) Field { return newField(KindBoolean, name, label) }

// Date declares a calendar date; time components are dropped.
func Date(name, label string) Field { return newField(KindDate, name, label) }

// List declares a sequence whose items are validated with item.
func List(name, label string, item *Schema) Field {
	f := newField(KindList, name, label)
	f.Item = item
	return f
}

// Length sets inclusive length bounds. Zero disables a bound.
func (f Field) Length(min, max int) Field {
	f.MinLength = min
	f.MaxLength = max
	return f
}

// Upper upper-cases the value after validation.
func (f Field) Upper() Field {
	f.Case = CaseUpper
	return f
}

// Lower lower-cases the value after validation.
func (f Field) Lower() Field {
	f.Case = CaseLower
	return f
}

// Preserve keeps the value's case; it is still trimmed.
func (f Field) Preserve() Field {
	f.Case = CasePreserve
	return f
}

// AsOptional marks the field as accepting absence or the empty string.
func (f Field) AsOptional() Field {
	f.Optional = true
	return f
}

// Match requires the trimmed value to match re.
func (f Field) Match(re *regexp.Regexp, message string) Field {
	f.Pattern = re
	f.Messages.Pattern = message
	return f
}

// AtLeast sets an inclusive numeric lower bound.
func (f Field) AtLeast(min float64, message string) Field {
	f.Min = &min
	f.Messages.Min = message
	return f
}

// NotAfter bounds a date field.
func (f Field) NotAfter(bound DateBound, message string) Field {
	f.MaxDate = bound
	f.Messages.MaxDate = message
	return f
}

// Items requires at least n list items.
func (f Field) Items(n int, message string) Field {
	f.MinItems = n
	f.Messages.MinItems = message
	return f
}

// WithMessages replaces the non-empty entries of the field's messages.
func (f Field) WithMessages(m Messages) Field {
	merge := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	merge(&f.Messages.Required, m.Required)
	merge(&f.Messages.Type, m.Type)
	merge(&f.Messages.MinLength, m.MinLength)
	merge(&f.Messages.MaxLength, m.MaxLength)
	merge(&f.Messages.Pattern, m.Pattern)
	merge(&f.Messages.Option, m.Option)
	merge(&f.Messages.Email, m.Email)
	merge(&f.Messages.Min, m.Min)
	merge(&f.Messages.MaxDate, m.MaxDate)
	merge(&f.Messages.MinItems, m.MinItems)
	return f
}
