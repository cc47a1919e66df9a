package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/form"
	"github.com/goliatone/go-intake/pkg/render"
)

const maxResponseBytes = 1 << 20

// Handler posts form payloads to one endpoint.
type Handler struct {
	endpoint    string
	client      Doer
	resetDelay  time.Duration
	settleDelay time.Duration
	logger      *zap.Logger
	navigator   Navigator
	sink        Sink
	sleep       Sleeper
	messages    Messages
	policy      *bluemonday.Policy
	requestID   func() string

	busy atomic.Bool
}

// New returns a Handler posting to endpoint.
func New(endpoint string, opts ...Option) *Handler {
	h := &Handler{
		endpoint:    endpoint,
		client:      &http.Client{},
		resetDelay:  DefaultResetDelay,
		settleDelay: DefaultSettleDelay,
		logger:      zap.NewNop(),
		sink:        discard{},
		sleep:       sleepContext,
		messages:    DefaultMessages(),
		policy:      bluemonday.StrictPolicy(),
		requestID:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Endpoint joins an API base address and a path.
func Endpoint(base, path string) (string, error) {
	if strings.TrimSpace(base) == "" {
		return "", errors.New("submission: api base is required")
	}
	out, err := url.JoinPath(base, path)
	if err != nil {
		return "", fmt.Errorf("submission: endpoint %q + %q: %w", base, path, err)
	}
	return out, nil
}

// Busy reports whether a submission is in progress.
func (h *Handler) Busy() bool {
	return h.busy.Load()
}

type envelope struct {
	Status  *int   `json:"status"`
	Message string `json:"message"`
	Errors  any    `json:"errors"`
}

// Submit validates f and, if it passes, sends one request. Server and
// transport failures are reported through the Outcome and events, not as
// errors; the returned error is only ErrBusy, ErrNotSubmittable, or an
// encoding failure.
//
// On success the handler waits the reset delay, resets f, then navigates.
// The busy flag clears after the settle delay whatever happened.
func (h *Handler) Submit(ctx context.Context, f *form.Form) (Outcome, error) {
	if !h.busy.CompareAndSwap(false, true) {
		return Outcome{}, ErrBusy
	}

	result := f.Validate()
	if !result.Success {
		h.busy.Store(false)
		return Outcome{}, ErrNotSubmittable
	}
	payload, _ := f.Payload()
	body, err := json.Marshal(payload)
	if err != nil {
		h.busy.Store(false)
		return Outcome{}, fmt.Errorf("submission: encode payload: %w", err)
	}

	id := h.requestID()
	log := h.logger.With(zap.String("request_id", id), zap.String("endpoint", h.endpoint))

	h.sink.Emit(Event{Kind: EventBusy, RequestID: id})
	defer func() {
		_ = h.sleep(context.WithoutCancel(ctx), h.settleDelay)
		h.busy.Store(false)
		h.sink.Emit(Event{Kind: EventIdle, RequestID: id})
	}()

	outcome := h.send(ctx, f, id, body, log)
	outcome.RequestID = id
	h.sink.Emit(Event{Kind: EventNotify, RequestID: id, Notification: outcome.Notification})

	if !outcome.Kind.Success() {
		return outcome, nil
	}

	if err := h.sleep(ctx, h.resetDelay); err != nil {
		log.Warn("reset delay interrupted", zap.Error(err))
	}
	f.Reset()
	h.sink.Emit(Event{Kind: EventReset, RequestID: id})

	if h.navigator != nil {
		if target, ok := h.navigator.Next(payload); ok {
			outcome.Target = target
			log.Info("navigating", zap.String("target", target))
			h.sink.Emit(Event{Kind: EventNavigate, RequestID: id, Target: target})
		}
	}
	return outcome, nil
}

func (h *Handler) send(ctx context.Context, f *form.Form, id string, body []byte, log *zap.Logger) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return h.connectionFailure(log, fmt.Errorf("submission: build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", id)

	resp, err := h.client.Do(req)
	if err != nil {
		return h.connectionFailure(log, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return h.connectionFailure(log, fmt.Errorf("submission: read response: %w", err))
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome := Outcome{Kind: OutcomeRejected, HTTPStatus: resp.StatusCode}
		message := h.clean(env.Message)
		if decodeErr == nil && env.Errors != nil {
			mapping := render.MapErrorPayload(f.Schema(), render.FlattenPayload(env.Errors))
			outcome.FieldErrors = mapping.First()
			f.ApplyServerErrors(outcome.FieldErrors)
			if message == "" && len(mapping.Form) > 0 {
				message = h.clean(mapping.Form[0])
			}
		}
		if message == "" {
			message = h.messages.Failed
		}
		outcome.Notification = Notification{Level: LevelError, Message: message}
		log.Warn("submission rejected",
			zap.Int("http_status", resp.StatusCode),
			zap.Int("field_errors", len(outcome.FieldErrors)),
		)
		return outcome
	}

	if decodeErr != nil {
		return h.connectionFailure(log, fmt.Errorf("submission: decode response: %w", decodeErr))
	}

	outcome := Outcome{HTTPStatus: resp.StatusCode}
	if env.Status != nil {
		outcome.Status = *env.Status
	}
	switch outcome.Status {
	case http.StatusCreated:
		outcome.Kind = OutcomeCreated
		outcome.Notification = Notification{Level: LevelSuccess, Message: h.orDefault(env.Message, h.messages.Created)}
	case http.StatusOK:
		outcome.Kind = OutcomeUpdated
		outcome.Notification = Notification{Level: LevelInfo, Message: h.orDefault(env.Message, h.messages.Updated)}
	default:
		outcome.Kind = OutcomeUnexpected
		outcome.Notification = Notification{Level: LevelError, Message: h.messages.Failed}
	}
	log.Info("submission answered",
		zap.Int("http_status", resp.StatusCode),
		zap.Int("status", outcome.Status),
		zap.Stringer("outcome", outcome.Kind),
	)
	return outcome
}

func (h *Handler) connectionFailure(log *zap.Logger, err error) Outcome {
	log.Error("submission failed", zap.Error(err))
	return Outcome{
		Kind:         OutcomeConnection,
		Notification: Notification{Level: LevelError, Message: h.messages.Connection},
		Err:          err,
	}
}

// clean strips markup from server text.
func (h *Handler) clean(message string) string {
	return strings.TrimSpace(html.UnescapeString(h.policy.Sanitize(message)))
}

func (h *Handler) orDefault(message, fallback string) string {
	if cleaned := h.clean(message); cleaned != "" {
		return cleaned
	}
	return fallback
}
