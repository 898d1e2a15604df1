package ports

// EventSink receives domain events describing completed mutations. The UI
// layer subscribes through this; the command core only publishes.
type EventSink interface {
	Publish(event any)
}

// EventSinkFunc adapts a function to the EventSink interface
type EventSinkFunc func(event any)

func (f EventSinkFunc) Publish(event any) { f(event) }

// NopEventSink discards all events
type NopEventSink struct{}

func (NopEventSink) Publish(event any) {}
