package event

type EventType string

const (
	// ProgressEventType emitted by the scan engine as port outcomes finalize
	ProgressEventType EventType = "scan-progress"
	// FatalErrorEventType emitted when a run cannot continue
	FatalErrorEventType EventType = "fatal-error"
	// ErrorEventType emitted for recoverable errors worth surfacing
	ErrorEventType EventType = "error"
)

// Event data structure representing any event we may want to react to
type Event struct {
	Type    EventType
	Payload any
}
