package submission_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/intake"
	"github.com/goliatone/go-intake/pkg/schema"
	"github.com/goliatone/go-intake/pkg/submission"
)

func fixedNow() time.Time {
	return time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
}

func applicantRecord(status string) schema.Record {
	record := intake.ApplicantDefaults()
	for key, value := range map[string]any{
		intake.FieldDocumentType:          "CC",
		intake.FieldDocumentNumber:        "1143994968",
		intake.FieldFirstName:             "steven",
		intake.FieldFirstSurname:          "alvarado",
		intake.FieldSecondSurname:         "paez",
		intake.FieldBirthDate:             "1999-02-07",
		intake.FieldBirthCountry:          "colombia",
		intake.FieldBirthState:            "valle del cauca",
		intake.FieldBirthCity:             "cali",
		intake.FieldResidenceNeighborhood: "villacolombia",
		intake.FieldResidenceAddress:      "Calle 33b #12A 15",
		intake.FieldResidenceCity:         "cali",
		intake.FieldResidenceState:        "valle del cauca",
		intake.FieldSex:                   "MASCULINO",
		intake.FieldBloodType:             "O+",
		intake.FieldMaritalStatus:         status,
		intake.FieldMobile:                "3192976668",
		intake.FieldEmail:                 "Steven@Example.com",
	} {
		record[key] = value
	}
	return record
}

func applicantForm(status string) *form.Form {
	s := intake.ApplicantSchema(intake.MustDefaultCatalog(), intake.WithClock(fixedNow))
	f := form.New(s, intake.ApplicantDefaults(), form.WithMode(form.ModeBlur))
	for key, value := range applicantRecord(status) {
		if err := f.Set(key, value); err != nil {
			panic(err)
		}
	}
	return f
}

type recorder struct {
	mu     sync.Mutex
	events []submission.Event
	sleeps []time.Duration
}

func (r *recorder) Emit(e submission.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sleeps = append(r.sleeps, d)
	return nil
}

func (r *recorder) kinds() []submission.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]submission.EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

func newHandler(endpoint string, rec *recorder, opts ...submission.Option) *submission.Handler {
	base := []submission.Option{
		submission.WithSink(rec),
		submission.WithSleeper(rec.sleep),
		submission.WithNavigator(submission.ApplicantNavigator{}),
	}
	return submission.New(endpoint, append(base, opts...)...)
}

func TestSubmitCreatedNavigatesToSpouseForm(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != intake.ApplicantPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected content type %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing request id")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":201,"message":"Registro exitoso"}`))
	}))
	defer server.Close()

	endpoint, err := submission.Endpoint(server.URL, intake.ApplicantPath)
	if err != nil {
		t.Fatalf("Endpoint: %v", err)
	}
	rec := &recorder{}
	h := newHandler(endpoint, rec)
	f := applicantForm("CASADO")

	outcome, err := h.Submit(context.Background(), f)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if outcome.Kind != submission.OutcomeCreated {
		t.Fatalf("expected created, got %v", outcome.Kind)
	}
	want := submission.Notification{Level: submission.LevelSuccess, Message: "Registro exitoso"}
	if diff := cmp.Diff(want, outcome.Notification); diff != "" {
		t.Fatalf("notification mismatch (-want +got):\n%s", diff)
	}
	if outcome.Target != "/postulante-conyuge/1143994968" {
		t.Fatalf("unexpected target %q", outcome.Target)
	}

	wantKinds := []submission.EventKind{
		submission.EventBusy,
		submission.EventNotify,
		submission.EventReset,
		submission.EventNavigate,
		submission.EventIdle,
	}
	if diff := cmp.Diff(wantKinds, rec.kinds()); diff != "" {
		t.Fatalf("event order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]time.Duration{submission.DefaultResetDelay, submission.DefaultSettleDelay}, rec.sleeps); diff != "" {
		t.Fatalf("delays mismatch (-want +got):\n%s", diff)
	}

	if got := received[intake.FieldFirstName]; got != "STEVEN" {
		t.Errorf("payload not normalised: primer_nombre=%v", got)
	}
	if got := received[intake.FieldEmail]; got != "steven@example.com" {
		t.Errorf("payload not normalised: correo=%v", got)
	}
	if got := received[intake.FieldBirthDate]; got != "1999-02-07T00:00:00Z" {
		t.Errorf("unexpected date encoding %v", got)
	}
	if _, ok := received[intake.FieldChildren]; ok {
		t.Errorf("numero_hijos must not be sent when tiene_hijos is false")
	}

	if got, _ := f.Value(intake.FieldFirstName); got != "" {
		t.Fatalf("form should be reset after success, primer_nombre=%v", got)
	}
	if h.Busy() {
		t.Fatalf("busy flag should be cleared")
	}
}

func TestSubmitSingleNavigatesToVaccination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":201}`))
	}))
	defer server.Close()

	rec := &recorder{}
	outcome, err := newHandler(server.URL, rec).Submit(context.Background(), applicantForm("SOLTERO"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Target != "/vacunas-covid/1143994968" {
		t.Fatalf("unexpected target %q", outcome.Target)
	}
	if outcome.Notification.Message != "Registro exitoso" {
		t.Fatalf("expected default success message, got %q", outcome.Notification.Message)
	}
}

func TestSubmitUpdated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":200}`))
	}))
	defer server.Close()

	rec := &recorder{}
	f := applicantForm("UNION LIBRE")
	outcome, err := newHandler(server.URL, rec).Submit(context.Background(), f)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Kind != submission.OutcomeUpdated || outcome.Notification.Message != "Registro actualizado" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if outcome.Target != "/postulante-conyuge/1143994968" {
		t.Fatalf("unexpected target %q", outcome.Target)
	}
	if f.Dirty() {
		t.Fatalf("form should be back to defaults")
	}
}

func TestSubmitUnexpectedBodyStatusKeepsValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":409,"message":"ya existe"}`))
	}))
	defer server.Close()

	rec := &recorder{}
	f := applicantForm("SOLTERO")
	outcome, err := newHandler(server.URL, rec).Submit(context.Background(), f)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Kind != submission.OutcomeUnexpected || outcome.Notification.Level != submission.LevelError {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if outcome.Notification.Message != submission.DefaultMessages().Failed {
		t.Fatalf("expected generic message, got %q", outcome.Notification.Message)
	}
	if got, _ := f.Value(intake.FieldFirstName); got != "steven" {
		t.Fatalf("values must be kept, primer_nombre=%v", got)
	}
	wantKinds := []submission.EventKind{submission.EventBusy, submission.EventNotify, submission.EventIdle}
	if diff := cmp.Diff(wantKinds, rec.kinds()); diff != "" {
		t.Fatalf("event order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]time.Duration{submission.DefaultSettleDelay}, rec.sleeps); diff != "" {
		t.Fatalf("delays mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitRejectedMapsFieldErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"<b>Documento</b> duplicado","errors":{"body.correo":["ya registrado"]}}`))
	}))
	defer server.Close()

	rec := &recorder{}
	f := applicantForm("SOLTERO")
	outcome, err := newHandler(server.URL, rec).Submit(context.Background(), f)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Kind != submission.OutcomeRejected || outcome.HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if outcome.Notification.Message != "Documento duplicado" {
		t.Fatalf("server message not sanitised: %q", outcome.Notification.Message)
	}
	if diff := cmp.Diff(map[string]string{intake.FieldEmail: "ya registrado"}, outcome.FieldErrors); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if got := f.Error(intake.FieldEmail); got != "ya registrado" {
		t.Fatalf("server error not applied to the form: %q", got)
	}
	if got, _ := f.Value(intake.FieldFirstName); got != "steven" {
		t.Fatalf("values must be kept, primer_nombre=%v", got)
	}
}

func TestSubmitRejectedWithoutBodyUsesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	rec := &recorder{}
	outcome, err := newHandler(server.URL, rec).Submit(context.Background(), applicantForm("SOLTERO"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Kind != submission.OutcomeRejected || outcome.Notification.Message != submission.DefaultMessages().Failed {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

type failingClient struct{ err error }

func (c failingClient) Do(*http.Request) (*http.Response, error) { return nil, c.err }

func TestSubmitConnectionFailureKeepsValues(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("dial tcp: connection refused")
	h := newHandler("http://intake.invalid/api/postulante", rec, submission.WithClient(failingClient{err: boom}))
	f := applicantForm("CASADO")

	outcome, err := h.Submit(context.Background(), f)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Kind != submission.OutcomeConnection || !errors.Is(outcome.Err, boom) {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if outcome.Notification.Message != submission.DefaultMessages().Connection {
		t.Fatalf("unexpected message %q", outcome.Notification.Message)
	}
	if outcome.Target != "" {
		t.Fatalf("failed submission must not navigate")
	}
	if got, _ := f.Value(intake.FieldFirstName); got != "steven" {
		t.Fatalf("values must be kept, primer_nombre=%v", got)
	}
	if h.Busy() {
		t.Fatalf("busy flag should clear after a failure")
	}
	if diff := cmp.Diff([]time.Duration{submission.DefaultSettleDelay}, rec.sleeps); diff != "" {
		t.Fatalf("delays mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitUndecodableSuccessIsConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>proxy</html>`))
	}))
	defer server.Close()

	outcome, err := newHandler(server.URL, &recorder{}).Submit(context.Background(), applicantForm("SOLTERO"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if outcome.Kind != submission.OutcomeConnection {
		t.Fatalf("expected connection outcome, got %v", outcome.Kind)
	}
}

type blockingClient struct {
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (c *blockingClient) Do(*http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	close(c.entered)
	<-c.release
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"status":201}`)),
		Header:     make(http.Header),
	}, nil
}

func TestSubmitWhileBusyReturnsErrBusy(t *testing.T) {
	client := &blockingClient{entered: make(chan struct{}), release: make(chan struct{})}
	rec := &recorder{}
	h := newHandler("http://intake.test/api/postulante", rec, submission.WithClient(client))

	done := make(chan error, 1)
	go func() {
		_, err := h.Submit(context.Background(), applicantForm("SOLTERO"))
		done <- err
	}()

	<-client.entered
	if !h.Busy() {
		t.Fatalf("expected busy while the request is in flight")
	}
	if _, err := h.Submit(context.Background(), applicantForm("SOLTERO")); !errors.Is(err, submission.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(client.release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.calls != 1 {
		t.Fatalf("expected exactly one request, got %d", client.calls)
	}
}

func TestSubmitInvalidFormSendsNothing(t *testing.T) {
	client := failingClient{err: errors.New("must not be called")}
	rec := &recorder{}
	h := newHandler("http://intake.test/api/postulante", rec, submission.WithClient(client))

	f := applicantForm("SOLTERO")
	if err := f.Set(intake.FieldDocumentNumber, "123"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	_, err := h.Submit(context.Background(), f)
	if !errors.Is(err, submission.ErrNotSubmittable) {
		t.Fatalf("expected ErrNotSubmittable, got %v", err)
	}
	if len(rec.kinds()) != 0 {
		t.Fatalf("no events expected, got %v", rec.kinds())
	}
	if h.Busy() {
		t.Fatalf("busy flag must not stick after a validation failure")
	}
	if f.Error(intake.FieldDocumentNumber) == "" {
		t.Fatalf("validation errors should be visible after a submit attempt")
	}
}

func TestEndpointJoinsBase(t *testing.T) {
	got, err := submission.Endpoint("https://api.example.com/", intake.SpousePath)
	if err != nil {
		t.Fatalf("Endpoint: %v", err)
	}
	if got != "https://api.example.com/api/conyuge" {
		t.Fatalf("unexpected endpoint %q", got)
	}
	if _, err := submission.Endpoint(" ", intake.SpousePath); err == nil {
		t.Fatalf("expected error for empty base")
	}
}
