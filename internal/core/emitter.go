package core

import "sync"

// Emitter fans domain events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type Emitter struct {
	mu   sync.Mutex
	subs map[<-chan Event]chan Event
}

// NewEmitter constructs an emitter with no subscribers.
func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[<-chan Event]chan Event)}
}

// Subscribe registers a new subscriber and returns its event channel.
func (e *Emitter) Subscribe(buffer int) <-chan Event {
	ch := make(chan Event, buffer)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs[ch] = ch
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (e *Emitter) Unsubscribe(ch <-chan Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if sub, ok := e.subs[ch]; ok {
		delete(e.subs, ch)
		close(sub)
	}
}

// Publish delivers the event to every subscriber.
func (e *Emitter) Publish(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, sub := range e.subs {
		select {
		case sub <- ev:
		default:
			// Drop if slow consumer.
		}
	}
}

// Fail publishes an error event with the given code.
func (e *Emitter) Fail(code, msg string) {
	e.Publish(Event{Kind: EventError, Error: coreError(code, msg)})
}

// Close drops all subscribers and closes their channels.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, sub := range e.subs {
		close(sub)
	}
	e.subs = make(map[<-chan Event]chan Event)
}
