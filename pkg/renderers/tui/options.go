package tui

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/render"
)

// DefaultMaxAttempts bounds how often one field is re-asked after failing
// validation.
const DefaultMaxAttempts = 5

// Theme captures optional message prefixes the runner applies when printing.
type Theme struct {
	InfoPrefix    string
	SuccessPrefix string
	ErrorPrefix   string
}

// DefaultTheme is used when no theme is configured.
func DefaultTheme() Theme {
	return Theme{InfoPrefix: "ℹ ", SuccessPrefix: "✔ ", ErrorPrefix: "✖ "}
}

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithCatalog supplies the labels shown for enum options.
func WithCatalog(catalog intake.Catalog) Option {
	return func(r *Runner) {
		r.catalog = catalog
	}
}

// WithFormatters overrides how review rows render values, keyed by field
// name.
func WithFormatters(formatters map[string]render.Formatter) Option {
	return func(r *Runner) {
		for name, fn := range formatters {
			r.formatters[name] = fn
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithMaxAttempts changes how often an invalid field is re-asked. Values
// below one are ignored.
func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func phoneFormatter(value any) string {
	raw, _ := value.(string)
	if shown := intake.DisplayPhone(raw); shown != "" {
		return shown
	}
	return render.Display(value)
}
