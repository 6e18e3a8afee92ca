package core

import "testing"

func TestEmitterFanOut(t *testing.T) {
	emitter := NewEmitter()
	first := emitter.Subscribe(4)
	second := emitter.Subscribe(4)

	emitter.Publish(Event{Kind: EventQueryConnected})

	mustEvent(t, first, EventQueryConnected)
	mustEvent(t, second, EventQueryConnected)
}

func TestEmitterDropsForSlowConsumer(t *testing.T) {
	emitter := NewEmitter()
	slow := emitter.Subscribe(1)
	fast := emitter.Subscribe(4)

	emitter.Publish(Event{Kind: EventQueryConnected})
	emitter.Publish(Event{Kind: EventHTTPStarted, Port: 3000, Scheme: "http"})

	// The slow subscriber's buffer held only the first event; Publish must
	// not have blocked on it.
	mustEvent(t, fast, EventHTTPStarted)
	mustEvent(t, slow, EventQueryConnected)
	mustNoEvent(t, slow)
}

func TestEmitterUnsubscribeClosesChannel(t *testing.T) {
	emitter := NewEmitter()
	events := emitter.Subscribe(1)
	emitter.Unsubscribe(events)

	if _, ok := <-events; ok {
		t.Fatalf("expected closed channel after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	emitter.Publish(Event{Kind: EventQueryConnected})
}

func TestEmitterClose(t *testing.T) {
	emitter := NewEmitter()
	events := emitter.Subscribe(1)
	emitter.Close()

	if _, ok := <-events; ok {
		t.Fatalf("expected closed channel after emitter close")
	}
}
