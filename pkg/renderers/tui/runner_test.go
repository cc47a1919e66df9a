package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/schema"
	"github.com/goliatone/go-intake/pkg/submission"
)

type stubDriver struct {
	inputs     []string
	selectIdx  []int
	confirm    []bool
	inputPos   int
	selectPos  int
	confirmPos int

	asked        []string
	selects      []SelectConfig
	infoMessages []string
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.asked = append(s.asked, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted for " + cfg.Message)
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.asked = append(s.asked, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted for " + cfg.Message)
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.asked = append(s.asked, cfg.Message)
	s.selects = append(s.selects, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted for " + cfg.Message)
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) infoContaining(sub string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}

func fixedClock() time.Time { return time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC) }

func TestFillVaccinationForm(t *testing.T) {
	catalog := intake.MustDefaultCatalog()
	s := intake.VaccinationSchema(catalog, intake.WithClock(fixedClock))
	f := form.New(s, intake.VaccinationDefaults())
	if err := f.Lock(intake.FieldApplicantDocument, "1143994968"); err != nil {
		t.Fatalf("Lock: %v", err)
	}

	driver := &stubDriver{
		confirm:   []bool{true, true, false, true},
		selectIdx: []int{0},
		inputs:    []string{"2", "2021-06-01"},
	}
	r := New(WithPromptDriver(driver), WithCatalog(catalog))

	ctx := context.Background()
	if err := r.Fill(ctx, f); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if err := r.Review(ctx, "Vacunas Covid", f, ""); err != nil {
		t.Fatalf("Review: %v", err)
	}

	payload, ok := f.Payload()
	if !ok {
		t.Fatalf("form should be submittable, errors: %v", f.Errors())
	}
	want := schema.Record{
		intake.FieldApplicantDocument: "1143994968",
		intake.FieldHasVaccines:       true,
		intake.FieldVaccines: []any{
			schema.Record{
				intake.FieldVaccineName: "PFIZER",
				intake.FieldDosesGiven:  int64(2),
				intake.FieldDoseDate:    time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	if got := driver.selects[0].Options[0]; got != "Pfizer-BioNTech" {
		t.Errorf("enum options should show catalog labels, got %q", got)
	}
	if !driver.infoContaining("Número de documento del postulante: 1143994968") {
		t.Errorf("locked field should be printed, got %v", driver.infoMessages)
	}
	if !driver.infoContaining("Vacuna: PFIZER") {
		t.Errorf("summary missing vaccine row: %v", driver.infoMessages)
	}
}

func demoSchema() *schema.Schema {
	return schema.New("demo",
		[]schema.Field{
			schema.String("codigo", "El código").Length(6, 10),
			schema.String("alias", "El alias").Length(1, 20),
		},
		[]schema.Union{{
			Discriminant: schema.Boolean("tiene_hijos", "¿Tiene hijos?"),
			WhenTrue: []schema.Field{
				schema.Integer("numero_hijos", "El número de hijos").AtLeast(1, "Debe tener al menos 1 hijo."),
			},
		}},
	)
}

func demoDefaults() schema.Record {
	return schema.Record{"codigo": "", "alias": "", "tiene_hijos": false}
}

func TestFillReasksInvalidAnswers(t *testing.T) {
	f := form.New(demoSchema(), demoDefaults(), form.WithMode(form.ModeBlur))
	driver := &stubDriver{
		inputs:  []string{"123", "123456", "ana"},
		confirm: []bool{false},
	}
	r := New(WithPromptDriver(driver))

	if err := r.Fill(context.Background(), f); err != nil {
		t.Fatalf("Fill: %v", err)
	}

	want := []string{"Código", "Código", "Alias", "¿Tiene hijos?"}
	if diff := cmp.Diff(want, driver.asked); diff != "" {
		t.Fatalf("prompt sequence mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 1 || !strings.HasPrefix(driver.infoMessages[0], DefaultTheme().ErrorPrefix) {
		t.Fatalf("expected one error message, got %v", driver.infoMessages)
	}
	if got, _ := f.Value("codigo"); got != "123456" {
		t.Fatalf("codigo = %v", got)
	}
}

func TestFillGivesUpAfterMaxAttempts(t *testing.T) {
	f := form.New(demoSchema(), demoDefaults())
	driver := &stubDriver{inputs: []string{"1", "2"}}
	r := New(WithPromptDriver(driver), WithMaxAttempts(2))

	err := r.Fill(context.Background(), f)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestFillFollowsDiscriminant(t *testing.T) {
	f := form.New(demoSchema(), demoDefaults())
	driver := &stubDriver{
		inputs:  []string{"123456", "ana", "3"},
		confirm: []bool{true},
	}
	r := New(WithPromptDriver(driver))

	if err := r.Fill(context.Background(), f); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	want := []string{"Código", "Alias", "¿Tiene hijos?", "Número de hijos"}
	if diff := cmp.Diff(want, driver.asked); diff != "" {
		t.Fatalf("prompt sequence mismatch (-want +got):\n%s", diff)
	}
	if got := f.Values()["numero_hijos"]; got != "3" {
		t.Fatalf("numero_hijos = %v", got)
	}
}

func TestFixOnlyAsksFlaggedFields(t *testing.T) {
	f := form.New(demoSchema(), schema.Record{"codigo": "123456", "alias": "ana", "tiene_hijos": false})
	f.ApplyServerErrors(map[string]string{"alias": "El alias ya existe."})

	driver := &stubDriver{inputs: []string{"ana2"}}
	r := New(WithPromptDriver(driver))

	if err := r.Fix(context.Background(), f); err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if diff := cmp.Diff([]string{"Alias"}, driver.asked); diff != "" {
		t.Fatalf("prompt sequence mismatch (-want +got):\n%s", diff)
	}
	if !driver.infoContaining("Alias: El alias ya existe.") {
		t.Fatalf("server error not shown: %v", driver.infoMessages)
	}
	if msg := f.Error("alias"); msg != "" {
		t.Fatalf("server error should clear after editing, got %q", msg)
	}
}

func TestReviewOutcomes(t *testing.T) {
	ctx := context.Background()

	incomplete := form.New(demoSchema(), demoDefaults())
	r := New(WithPromptDriver(&stubDriver{}))
	if err := r.Review(ctx, "Demo", incomplete, ""); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}

	complete := form.New(demoSchema(), schema.Record{"codigo": "123456", "alias": "ana", "tiene_hijos": false})
	driver := &stubDriver{confirm: []bool{false}}
	r = New(WithPromptDriver(driver))
	if err := r.Review(ctx, "Demo", complete, "Sin envío remoto."); !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if !driver.infoContaining("Sin envío remoto.") || !driver.infoContaining("== Demo ==") {
		t.Fatalf("summary not printed: %v", driver.infoMessages)
	}
}

func TestSummaryFormatsPhones(t *testing.T) {
	s := intake.SpouseSchema(intake.MustDefaultCatalog(), intake.WithClock(fixedClock))
	data := schema.Record{
		intake.FieldMobile: "3192976668",
		intake.FieldHasJob: false,
	}
	out, err := New(WithPromptDriver(&stubDriver{})).Summary("Cónyuge", s, data, "")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !strings.Contains(out, "Celular: +57 319 2976668") {
		t.Fatalf("mobile not formatted:\n%s", out)
	}
}

func TestSinkPrintsNotifications(t *testing.T) {
	driver := &stubDriver{}
	theme := Theme{InfoPrefix: "[i] ", SuccessPrefix: "[ok] ", ErrorPrefix: "[x] "}
	sink := New(WithPromptDriver(driver), WithTheme(theme)).Sink(context.Background())

	sink.Emit(submission.Event{Kind: submission.EventBusy})
	sink.Emit(submission.Event{Kind: submission.EventNotify, Notification: submission.Notification{Level: submission.LevelSuccess, Message: "Registro exitoso"}})
	sink.Emit(submission.Event{Kind: submission.EventNotify, Notification: submission.Notification{Level: submission.LevelError, Message: "Error de conexión."}})
	sink.Emit(submission.Event{Kind: submission.EventReset})
	sink.Emit(submission.Event{Kind: submission.EventNavigate, Target: "/vacunas-covid/1"})
	sink.Emit(submission.Event{Kind: submission.EventIdle})

	want := []string{
		"[i] Enviando...",
		"[ok] Registro exitoso",
		"[x] Error de conexión.",
		"[i] Continuando en /vacunas-covid/1",
	}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("sink output mismatch (-want +got):\n%s", diff)
	}
}
