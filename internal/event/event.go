package event

import "sync"

type registeredListener struct {
	id        int
	eventType EventType
	channel   chan Event
}

// EventManager implements Manager as an in-process listener registry.
// Send is strictly fire-and-forget: a listener that is not ready loses
// the event, so high-frequency producers (the scan engine's progress
// ticks) can never be throttled by a slow consumer. Terminal events
// use SendSync, which waits for delivery.
type EventManager struct {
	listeners []*registeredListener
	nextID    int
	mux       sync.Mutex
}

// NewEventManager returns a new EventManager
func NewEventManager() *EventManager {
	return &EventManager{
		listeners: []*registeredListener{},
		nextID:    1,
		mux:       sync.Mutex{},
	}
}

// RegisterListener registers a channel to receive events of the given
// type and returns an id used to remove the listener later
func (m *EventManager) RegisterListener(eventType EventType, listener chan Event) int {
	m.mux.Lock()
	defer m.mux.Unlock()

	registered := &registeredListener{
		id:        m.nextID,
		eventType: eventType,
		channel:   listener,
	}

	m.listeners = append(m.listeners, registered)
	m.nextID++

	return registered.id
}

// RemoveListener removes a previously registered listener
func (m *EventManager) RemoveListener(id int) int {
	m.mux.Lock()
	defer m.mux.Unlock()

	listeners := []*registeredListener{}

	for _, l := range m.listeners {
		if l.id != id {
			listeners = append(listeners, l)
		}
	}

	m.listeners = listeners

	return id
}

// Send delivers an event to all matching listeners without blocking.
// Listeners that are not ready are skipped.
func (m *EventManager) Send(evt Event) {
	for _, l := range m.matching(evt.Type) {
		select {
		case l.channel <- evt:
		default:
		}
	}
}

// SendSync delivers an event to all matching listeners, waiting for
// each. Used for events that must not be dropped, like the final
// progress tick of a scan.
func (m *EventManager) SendSync(evt Event) {
	for _, l := range m.matching(evt.Type) {
		l.channel <- evt
	}
}

// ReportFatalError publishes a fatal error event
func (m *EventManager) ReportFatalError(err error) {
	m.SendSync(Event{
		Type:    FatalErrorEventType,
		Payload: err,
	})
}

// ReportError publishes a recoverable error event
func (m *EventManager) ReportError(err error) {
	m.SendSync(Event{
		Type:    ErrorEventType,
		Payload: err,
	})
}

func (m *EventManager) matching(eventType EventType) []*registeredListener {
	m.mux.Lock()
	defer m.mux.Unlock()

	matched := []*registeredListener{}

	for _, l := range m.listeners {
		if l.eventType == eventType {
			matched = append(matched, l)
		}
	}

	return matched
}
