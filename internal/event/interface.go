package event

//go:generate mockgen -destination=../mock/event/mock_event.go -package=mock_event . Manager

// Manager interface for publishing events to registered listeners
type Manager interface {
	RegisterListener(eventType EventType, listener chan Event) int
	RemoveListener(id int) int
	Send(event Event)
	SendSync(event Event)
	ReportFatalError(err error)
	ReportError(err error)
}
