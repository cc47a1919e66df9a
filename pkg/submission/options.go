package submission

import (
	"context"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Default delays.
const (
	DefaultResetDelay  = 2 * time.Second
	DefaultSettleDelay = 1 * time.Second
)

// Doer sends HTTP requests; *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Messages are the notification texts used when the server sends none.
type Messages struct {
	Created    string
	Updated    string
	Failed     string
	Connection string
}

// DefaultMessages returns the Spanish notification texts.
func DefaultMessages() Messages {
	return Messages{
		Created:    "Registro exitoso",
		Updated:    "Registro actualizado",
		Failed:     "Ocurrió un error al procesar la solicitud.",
		Connection: "Error de conexión. Verifique su red e intente nuevamente.",
	}
}

// Option configures a Handler.
type Option func(*Handler)

// WithClient replaces the HTTP client.
func WithClient(client Doer) Option {
	return func(h *Handler) {
		if client != nil {
			h.client = client
		}
	}
}

// WithResetDelay sets the wait between a success notification and the form
// reset.
func WithResetDelay(d time.Duration) Option {
	return func(h *Handler) {
		if d >= 0 {
			h.resetDelay = d
		}
	}
}

// WithSettleDelay sets how long the busy flag outlives the request.
func WithSettleDelay(d time.Duration) Option {
	return func(h *Handler) {
		if d >= 0 {
			h.settleDelay = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithNavigator enables navigation after successful submissions.
func WithNavigator(nav Navigator) Option {
	return func(h *Handler) {
		h.navigator = nav
	}
}

// WithSink receives submission events.
func WithSink(sink Sink) Option {
	return func(h *Handler) {
		if sink != nil {
			h.sink = sink
		}
	}
}

// WithSleeper replaces the delay implementation, mainly for tests.
func WithSleeper(sleep Sleeper) Option {
	return func(h *Handler) {
		if sleep != nil {
			h.sleep = sleep
		}
	}
}

// WithMessages overrides the fallback notification texts. Empty entries keep
// their defaults.
func WithMessages(m Messages) Option {
	return func(h *Handler) {
		if m.Created != "" {
			h.messages.Created = m.Created
		}
		if m.Updated != "" {
			h.messages.Updated = m.Updated
		}
		if m.Failed != "" {
			h.messages.Failed = m.Failed
		}
		if m.Connection != "" {
			h.messages.Connection = m.Connection
		}
	}
}

// WithPolicy replaces the sanitiser applied to server messages.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(h *Handler) {
		if policy != nil {
			h.policy = policy
		}
	}
}

// WithRequestID overrides request id generation.
func WithRequestID(fn func() string) Option {
	return func(h *Handler) {
		if fn != nil {
			h.requestID = fn
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
