package form

import (
	"github.com/goliatone/go-intake/pkg/visibility"
	"github.com/goliatone/go-intake/pkg/visibility/expr"
	"go.uber.org/zap"
)

// Mode selects when edits trigger validation.
type Mode int

const (
	// ModeChange validates the whole record after every edit.
	ModeChange Mode = iota
	// ModeBlur defers validation until the edited field loses focus. Once a
	// full pass has run (a submit attempt) edits re-validate immediately.
	ModeBlur
)

func (m Mode) String() string {
	switch m {
	case ModeBlur:
		return "blur"
	default:
		return "change"
	}
}

// ParseMode maps "change" and "blur" onto a Mode.
func ParseMode(raw string) (Mode, bool) {
	switch raw {
	case "change", "onChange", "":
		return ModeChange, true
	case "blur", "onBlur":
		return ModeBlur, true
	default:
		return ModeChange, false
	}
}

// Option customises a Form.
type Option func(*Form)

// WithMode sets the validation trigger.
func WithMode(mode Mode) Option {
	return func(f *Form) {
		f.mode = mode
	}
}

// WithEvaluator replaces the visibility rule evaluator.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(f *Form) {
		if evaluator != nil {
			f.evaluator = evaluator
		}
	}
}

// WithExtras exposes additional values to visibility rules under `extras.`.
func WithExtras(extras map[string]any) Option {
	return func(f *Form) {
		f.extras = extras
	}
}

// WithLogger attaches a logger for validation tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func defaultEvaluator() visibility.Evaluator {
	return expr.New()
}
