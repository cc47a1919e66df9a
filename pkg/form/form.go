package form

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/goliatone/go-intake/pkg/schema"
	"github.com/goliatone/go-intake/pkg/visibility"
	"go.uber.org/zap"
)

// Form is the controller for one record.
type Form struct {
	schema    *schema.Schema
	defaults  schema.Record
	values    schema.Record
	rules     map[string]string
	mode      Mode
	evaluator visibility.Evaluator
	extras    map[string]any
	logger    *zap.Logger

	result    *schema.Result
	server    schema.FieldErrors
	touched   map[string]bool
	edited    map[string]bool
	locked    map[string]any
	bindings  map[string]string
	submitted bool
}

// New seeds a form from defaults. The schema must not be nil.
func New(s *schema.Schema, defaults schema.Record, opts ...Option) *Form {
	if s == nil {
		panic("form: schema is required")
	}
	f := &Form{
		schema:    s,
		defaults:  defaults.Clone(),
		rules:     s.VisibilityRules(),
		mode:      ModeChange,
		evaluator: defaultEvaluator(),
		logger:    zap.NewNop(),
		locked:    make(map[string]any),
		bindings:  make(map[string]string),
	}
	if f.defaults == nil {
		f.defaults = schema.Record{}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	f.clear()
	return f
}

// Schema returns the schema driving the form.
func (f *Form) Schema() *schema.Schema { return f.schema }

// Mode reports the validation trigger.
func (f *Form) Mode() Mode { return f.mode }

func (f *Form) clear() {
	f.values = f.defaults.Clone()
	for path, value := range f.locked {
		f.values[path] = value
	}
	f.result = nil
	f.server = schema.FieldErrors{}
	f.touched = make(map[string]bool)
	f.edited = make(map[string]bool)
	f.submitted = false
}

// Set updates one field. Paths address list items with indexes, e.g.
// "vacunas.0.nombre_vacuna". Turning a discriminant off unregisters the
// fields it was gating.
func (f *Form) Set(path string, value any) error {
	if err := f.editable(path); err != nil {
		return err
	}

	before := f.visibleSet()
	if err := setPath(f.values, path, value); err != nil {
		return err
	}
	f.markEdited(path)
	f.unregisterHidden(before)

	if f.mode == ModeChange || f.submitted {
		f.run()
	}
	return nil
}

// Blur records focus loss on path and validates in blur mode.
func (f *Form) Blur(path string) error {
	if _, ok := f.schema.Lookup(root(path)); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
	f.touched[path] = true
	if f.mode == ModeBlur {
		f.run()
	}
	return nil
}

// AppendItem adds an item to the list at path and returns its index.
func (f *Form) AppendItem(path string, item schema.Record) (int, error) {
	if err := f.editable(path); err != nil {
		return -1, err
	}
	list, err := listAt(f.values, path)
	if err != nil {
		return -1, err
	}
	list = append(slices.Clone(list), item.Clone())
	if err := setPath(f.values, path, list); err != nil {
		return -1, err
	}
	f.markEdited(path)
	if f.mode == ModeChange || f.submitted {
		f.run()
	}
	return len(list) - 1, nil
}

// RemoveItem deletes the list item at index.
func (f *Form) RemoveItem(path string, index int) error {
	if err := f.editable(path); err != nil {
		return err
	}
	list, err := listAt(f.values, path)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(list) {
		return fmt.Errorf("%w: %s.%d", ErrUnknownField, path, index)
	}
	list = slices.Delete(slices.Clone(list), index, index+1)
	if err := setPath(f.values, path, list); err != nil {
		return err
	}
	f.forget(path + ".")
	f.markEdited(path)
	if f.mode == ModeChange || f.submitted {
		f.run()
	}
	return nil
}

func (f *Form) editable(path string) error {
	name := root(path)
	if _, ok := f.schema.Lookup(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
	if _, ok := f.locked[name]; ok {
		return fmt.Errorf("%w: %s", ErrReadOnly, name)
	}
	if !f.Visible(name) {
		return fmt.Errorf("%w: %s", ErrHidden, name)
	}
	return nil
}

func (f *Form) markEdited(path string) {
	f.edited[path] = true
	for key := range f.server {
		if key == path || strings.HasPrefix(key, path+".") || key == root(path) {
			delete(f.server, key)
		}
	}
}

// unregisterHidden drops values of fields that were visible before the
// last edit and are hidden now.
func (f *Form) unregisterHidden(before map[string]bool) {
	after := f.visibleSet()
	for name, wasVisible := range before {
		if !wasVisible || after[name] {
			continue
		}
		delete(f.values, name)
		f.forget(name)
		f.logger.Debug("field unregistered", zap.String("form", f.schema.Name), zap.String("field", name))
	}
}

// forget clears interaction state for a field or a path prefix.
func (f *Form) forget(prefix string) {
	match := func(key string) bool {
		return key == prefix || strings.HasPrefix(key, prefix+".") || (strings.HasSuffix(prefix, ".") && strings.HasPrefix(key, prefix))
	}
	maps.DeleteFunc(f.touched, func(k string, _ bool) bool { return match(k) })
	maps.DeleteFunc(f.edited, func(k string, _ bool) bool { return match(k) })
	maps.DeleteFunc(f.server, func(k string, _ string) bool { return match(k) })
}

func (f *Form) context() visibility.Context {
	return visibility.Context{Values: f.values, Extras: f.extras}
}

// Visible reports whether the top-level field of path is currently shown.
func (f *Form) Visible(path string) bool {
	name := root(path)
	rule, ok := f.rules[name]
	if !ok {
		return true
	}
	visible, err := f.evaluator.Eval(name, rule, f.context())
	if err != nil {
		f.logger.Warn("visibility rule failed",
			zap.String("field", name),
			zap.String("rule", rule),
			zap.Error(err),
		)
		return false
	}
	return visible
}

func (f *Form) visibleSet() map[string]bool {
	out := make(map[string]bool, len(f.rules))
	for name := range f.rules {
		out[name] = f.Visible(name)
	}
	return out
}

// ActiveFields lists the visible top-level fields in schema order.
func (f *Form) ActiveFields() []schema.Field {
	var out []schema.Field
	f.schema.Walk(func(entry schema.Entry) {
		if entry.Rule == "" || f.Visible(entry.Field.Name) {
			out = append(out, entry.Field)
		}
	})
	return out
}

// Values returns a copy of the record as presented to validation: hidden
// fields are left out.
func (f *Form) Values() schema.Record {
	out := f.values.Clone()
	for name, visible := range f.visibleSet() {
		if !visible {
			delete(out, name)
		}
	}
	return out
}

// Value returns the raw value stored at path.
func (f *Form) Value(path string) (any, bool) {
	return getPath(f.values, path)
}

func (f *Form) run() {
	result := f.schema.Validate(f.Values())
	f.result = &result
	f.logger.Debug("form validated",
		zap.String("form", f.schema.Name),
		zap.Bool("success", result.Success),
		zap.Int("errors", len(result.Errors)),
	)
}

// Validate runs a full pass and makes every error visible, as a submit
// attempt does.
func (f *Form) Validate() schema.Result {
	f.submitted = true
	f.run()
	return *f.result
}

// Result returns the last validation pass, if any.
func (f *Form) Result() (schema.Result, bool) {
	if f.result == nil {
		return schema.Result{}, false
	}
	return *f.result, true
}

// Submittable is true iff the last validation pass succeeded.
func (f *Form) Submittable() bool {
	return f.result != nil && f.result.Success
}

// Payload returns the normalised record from the last successful pass.
func (f *Form) Payload() (schema.Record, bool) {
	if !f.Submittable() {
		return nil, false
	}
	return f.result.Data.Clone(), true
}

func (f *Form) shown(path string) bool {
	if f.submitted || f.touched[path] || f.edited[path] {
		return true
	}
	for key := range f.edited {
		if strings.HasPrefix(key, path+".") || strings.HasPrefix(path, key+".") {
			return true
		}
	}
	return false
}

// Error returns the message currently shown for path. Schema errors appear
// once the field has been edited or blurred, or after Validate; server
// errors appear immediately.
func (f *Form) Error(path string) string {
	if msg, ok := f.server[path]; ok {
		return msg
	}
	if f.result == nil || !f.shown(path) {
		return ""
	}
	return f.result.Errors[path]
}

// Errors returns every message currently shown.
func (f *Form) Errors() schema.FieldErrors {
	out := schema.FieldErrors{}
	if f.result != nil {
		for path, msg := range f.result.Errors {
			if f.shown(path) {
				out[path] = msg
			}
		}
	}
	maps.Copy(out, f.server)
	return out
}

// ApplyServerErrors attaches messages returned by the API. They stay until
// the field is edited again.
func (f *Form) ApplyServerErrors(errs map[string]string) {
	for path, msg := range errs {
		if strings.TrimSpace(msg) == "" {
			continue
		}
		f.server[path] = msg
	}
}

// Dirty reports whether any value differs from the defaults.
func (f *Form) Dirty() bool {
	baseline := f.defaults.Clone()
	for path, value := range f.locked {
		baseline[path] = value
	}
	return !reflect.DeepEqual(map[string]any(baseline), map[string]any(f.values))
}

// Touched reports whether path has lost focus at least once.
func (f *Form) Touched(path string) bool {
	return f.touched[path]
}

// Submitted reports whether Validate has run since the last reset.
func (f *Form) Submitted() bool {
	return f.submitted
}

// Reset restores defaults and clears interaction state. Locked fields keep
// their values.
func (f *Form) Reset() {
	f.clear()
	f.logger.Debug("form reset", zap.String("form", f.schema.Name))
}

// Lock sets a top-level field and makes it read-only.
func (f *Form) Lock(name string, value any) error {
	if strings.Contains(name, ".") {
		return fmt.Errorf("form: only top-level fields can be locked, got %q", name)
	}
	if _, ok := f.schema.Lookup(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	f.locked[name] = value
	f.values[name] = value
	if f.mode == ModeChange || f.submitted {
		f.run()
	}
	return nil
}

// Locked reports whether name is read-only.
func (f *Form) Locked(name string) bool {
	_, ok := f.locked[name]
	return ok
}

// BindOnce locks name to value the first time key is seen for it. Calling it
// again with the same key is a no-op; a different key rebinds. It reports
// whether the value was written.
func (f *Form) BindOnce(key, name string, value any) (bool, error) {
	if prev, ok := f.bindings[name]; ok && prev == key {
		return false, nil
	}
	if err := f.Lock(name, value); err != nil {
		return false, err
	}
	f.bindings[name] = key
	return true, nil
}
