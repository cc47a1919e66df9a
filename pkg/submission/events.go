package submission

// Level grades a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is the transient message a front end shows after a request.
type Notification struct {
	Level   Level
	Message string
}

// EventKind enumerates what a Handler reports while submitting.
type EventKind int

const (
	// EventBusy fires before the request; front ends disable submit and
	// show a loading indicator.
	EventBusy EventKind = iota + 1
	// EventNotify carries the response notification.
	EventNotify
	// EventReset fires after the reset delay, once the form is back to its
	// defaults.
	EventReset
	// EventNavigate carries the next route.
	EventNavigate
	// EventIdle fires when the busy flag has been cleared.
	EventIdle
)

func (k EventKind) String() string {
	switch k {
	case EventBusy:
		return "busy"
	case EventNotify:
		return "notify"
	case EventReset:
		return "reset"
	case EventNavigate:
		return "navigate"
	case EventIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Event is one step of a submission.
type Event struct {
	Kind         EventKind
	RequestID    string
	Notification Notification
	Target       string
}

// Sink receives events in order on the submitting goroutine.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(Event)

// Emit calls fn.
func (fn SinkFunc) Emit(e Event) { fn(e) }

// ChannelSink forwards events to ch. Sends block, so ch needs a reader or
// enough buffer for one submission (at most five events).
func ChannelSink(ch chan<- Event) Sink {
	return SinkFunc(func(e Event) { ch <- e })
}

type discard struct{}

func (discard) Emit(Event) {}

// OutcomeKind classifies how a submission ended.
type OutcomeKind int

const (
	// OutcomeCreated means body status 201.
	OutcomeCreated OutcomeKind = iota + 1
	// OutcomeUpdated means body status 200.
	OutcomeUpdated
	// OutcomeRejected means a non-2xx HTTP status.
	OutcomeRejected
	// OutcomeUnexpected means a 2xx response whose body status was neither
	// 200 nor 201.
	OutcomeUnexpected
	// OutcomeConnection means the request or its decoding failed.
	OutcomeConnection
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	case OutcomeRejected:
		return "rejected"
	case OutcomeUnexpected:
		return "unexpected"
	case OutcomeConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// Success reports whether the record was accepted.
func (k OutcomeKind) Success() bool {
	return k == OutcomeCreated || k == OutcomeUpdated
}

// Outcome summarises one Submit call.
type Outcome struct {
	Kind         OutcomeKind
	RequestID    string
	HTTPStatus   int
	Status       int
	Notification Notification
	// Target is the navigation route chosen after a successful submission.
	Target string
	// FieldErrors are server messages applied to the form.
	FieldErrors map[string]string
	// Err holds the transport or decode failure for OutcomeConnection.
	Err error
}
