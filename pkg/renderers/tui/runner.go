package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/schema"
	"github.com/goliatone/go-intake/pkg/submission"
)

// ErrIncomplete is returned by Review when the form still has errors.
var ErrIncomplete = errors.New("tui: form has errors")

// Runner walks a form controller through terminal prompts. A Runner is used
// from one goroutine, like the form it drives.
type Runner struct {
	driver      PromptDriver
	catalog     intake.Catalog
	formatters  map[string]render.Formatter
	theme       Theme
	maxAttempts int
	logger      *zap.Logger
}

// New constructs a Runner with the survey driver and the embedded catalog.
func New(opts ...Option) *Runner {
	r := &Runner{
		catalog: intake.MustDefaultCatalog(),
		formatters: map[string]render.Formatter{
			intake.FieldMobile:        phoneFormatter,
			intake.FieldLandline:      phoneFormatter,
			intake.FieldEmployerPhone: phoneFormatter,
		},
		theme:       DefaultTheme(),
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Fill prompts every visible field in schema order. Discriminants are asked
// before the fields they gate, so toggling one changes what follows. Locked
// fields are printed, not asked.
func (r *Runner) Fill(ctx context.Context, f *form.Form) error {
	return r.fill(ctx, f, "", f.Schema(), nil)
}

// Fix re-asks only the top-level fields that currently show an error, such
// as those flagged by the server.
func (r *Runner) Fix(ctx context.Context, f *form.Form) error {
	errs := f.Errors()
	if len(errs) == 0 {
		return nil
	}
	only := make(map[string]bool, len(errs))
	for _, path := range errs.Paths() {
		name, _, _ := strings.Cut(path, ".")
		only[name] = true
		if err := r.warn(ctx, fmt.Sprintf("%s: %s", r.labelOf(f.Schema(), name), errs[path])); err != nil {
			return err
		}
	}
	return r.fill(ctx, f, "", f.Schema(), only)
}

func (r *Runner) fill(ctx context.Context, f *form.Form, prefix string, s *schema.Schema, only map[string]bool) error {
	var entries []schema.Entry
	s.Walk(func(entry schema.Entry) { entries = append(entries, entry) })

	for _, entry := range entries {
		field := entry.Field
		if only != nil && !only[field.Name] {
			continue
		}
		path := join(prefix, field.Name)
		if !f.Visible(path) {
			continue
		}
		if prefix == "" && f.Locked(field.Name) {
			value, _ := f.Value(path)
			if err := r.info(ctx, fmt.Sprintf("%s: %s", render.Label(field), render.Display(value))); err != nil {
				return err
			}
			continue
		}
		if err := r.ask(ctx, f, path, field); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) ask(ctx context.Context, f *form.Form, path string, field schema.Field) error {
	if field.Kind == schema.KindList && field.Item != nil {
		return r.askList(ctx, f, path, field)
	}
	for attempt := 1; ; attempt++ {
		value, err := r.prompt(ctx, f, path, field)
		if err != nil {
			return err
		}
		if err := f.Set(path, value); err != nil {
			return err
		}
		if err := f.Blur(path); err != nil {
			return err
		}
		msg := f.Error(path)
		if msg == "" {
			return nil
		}
		r.logger.Debug("answer rejected", zap.String("field", path), zap.Int("attempt", attempt))
		if err := r.warn(ctx, msg); err != nil {
			return err
		}
		if attempt >= r.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, path)
		}
	}
}

func (r *Runner) prompt(ctx context.Context, f *form.Form, path string, field schema.Field) (any, error) {
	current, _ := f.Value(path)
	message := render.Label(field)

	switch field.Kind {
	case schema.KindBoolean:
		def, _ := current.(bool)
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def})
		if err != nil {
			return nil, err
		}
		return answer, nil

	case schema.KindEnum:
		options := r.catalog.OptionsFor(field.Name)
		labels := make([]string, len(field.Options))
		for i, value := range field.Options {
			labels[i] = intake.LabelFor(options, value)
		}
		selected, _ := current.(string)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      labels,
			DefaultIndex: slices.Index(field.Options, selected),
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(field.Options) {
			return nil, fmt.Errorf("tui: %s: option %d out of range", path, idx)
		}
		return field.Options[idx], nil

	default:
		answer, err := r.driver.Input(ctx, InputConfig{
			Message: message,
			Default: defaultText(current),
			Help:    help(field),
		})
		if err != nil {
			return nil, err
		}
		return answer, nil
	}
}

// askList repairs items that show errors, then offers to append new ones
// until the user declines and the list itself is valid.
func (r *Runner) askList(ctx context.Context, f *form.Form, path string, field schema.Field) error {
	label := render.Label(field)
	errs := f.Errors()

	count := 0
	if raw, ok := f.Value(path); ok {
		if items, ok := raw.([]any); ok {
			count = len(items)
		}
	}
	for i := 0; i < count; i++ {
		itemPath := fmt.Sprintf("%s.%d", path, i)
		if !hasErrorUnder(errs, itemPath) {
			continue
		}
		if err := r.info(ctx, fmt.Sprintf("%s #%d", label, i+1)); err != nil {
			return err
		}
		if err := r.fill(ctx, f, itemPath, field.Item, nil); err != nil {
			return err
		}
	}

	for attempt := 1; ; attempt++ {
		for {
			more, err := r.driver.Confirm(ctx, ConfirmConfig{
				Message: fmt.Sprintf("¿Agregar un registro a %s?", strings.ToLower(label)),
				Default: count == 0,
			})
			if err != nil {
				return err
			}
			if !more {
				break
			}
			idx, err := f.AppendItem(path, schema.Record{})
			if err != nil {
				return err
			}
			if err := r.info(ctx, fmt.Sprintf("%s #%d", label, idx+1)); err != nil {
				return err
			}
			if err := r.fill(ctx, f, fmt.Sprintf("%s.%d", path, idx), field.Item, nil); err != nil {
				return err
			}
			count = idx + 1
		}

		if err := f.Blur(path); err != nil {
			return err
		}
		msg := f.Error(path)
		if msg == "" {
			return nil
		}
		if err := r.warn(ctx, msg); err != nil {
			return err
		}
		if attempt >= r.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, path)
		}
	}
}

// Review validates f, prints its summary and asks for confirmation. notice is
// printed under the rows when not empty.
func (r *Runner) Review(ctx context.Context, title string, f *form.Form, notice string) error {
	result := f.Validate()
	if !result.Success {
		for _, path := range result.Errors.Paths() {
			name, _, _ := strings.Cut(path, ".")
			if err := r.warn(ctx, fmt.Sprintf("%s: %s", r.labelOf(f.Schema(), name), result.Errors[path])); err != nil {
				return err
			}
		}
		return fmt.Errorf("%w: %d", ErrIncomplete, len(result.Errors))
	}

	text, err := r.Summary(title, f.Schema(), result.Data, notice)
	if err != nil {
		return err
	}
	if err := r.driver.Info(ctx, text); err != nil {
		return err
	}
	ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "¿La información es correcta?", Default: true})
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}

// Ask poses a yes/no question outside of any form.
func (r *Runner) Ask(ctx context.Context, message string, def bool) (bool, error) {
	return r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def})
}

// Heading prints a form title and subtitle.
func (r *Runner) Heading(ctx context.Context, title, subtitle string) error {
	text := title
	if subtitle != "" {
		text += "\n" + subtitle
	}
	return r.driver.Info(ctx, text)
}

// Summary renders the review text for a normalised record.
func (r *Runner) Summary(title string, s *schema.Schema, data schema.Record, notice string) (string, error) {
	return render.Summary(title, render.Rows(s, data, r.formatters), notice)
}

// Sink prints submission events through the driver.
func (r *Runner) Sink(ctx context.Context) submission.Sink {
	return submission.SinkFunc(func(e submission.Event) {
		var err error
		switch e.Kind {
		case submission.EventBusy:
			err = r.info(ctx, "Enviando...")
		case submission.EventNotify:
			err = r.notify(ctx, e.Notification)
		case submission.EventNavigate:
			err = r.info(ctx, "Continuando en "+e.Target)
		}
		if err != nil {
			r.logger.Warn("could not print submission event", zap.Stringer("event", e.Kind), zap.Error(err))
		}
	})
}

func (r *Runner) notify(ctx context.Context, n submission.Notification) error {
	switch n.Level {
	case submission.LevelSuccess:
		return r.driver.Info(ctx, r.theme.SuccessPrefix+n.Message)
	case submission.LevelError:
		return r.warn(ctx, n.Message)
	default:
		return r.info(ctx, n.Message)
	}
}

func (r *Runner) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Runner) warn(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func (r *Runner) labelOf(s *schema.Schema, name string) string {
	if field, ok := s.Lookup(name); ok {
		return render.Label(field)
	}
	return name
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func hasErrorUnder(errs schema.FieldErrors, prefix string) bool {
	for path := range errs {
		if strings.HasPrefix(path, prefix+".") {
			return true
		}
	}
	return false
}

func defaultText(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case time.Time:
		return typed.Format(time.DateOnly)
	default:
		return fmt.Sprint(typed)
	}
}

func help(field schema.Field) string {
	var parts []string
	if field.Kind == schema.KindDate {
		parts = append(parts, "Formato AAAA-MM-DD")
	}
	if field.Optional {
		parts = append(parts, "Opcional")
	}
	if field.MaxLength > 0 {
		parts = append(parts, fmt.Sprintf("Máximo %d caracteres", field.MaxLength))
	}
	return strings.Join(parts, ". ")
}
