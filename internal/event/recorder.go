package event

import (
	"context"
	"sync"

	pkgkafka "github.com/Rohit-bisht-rise/shopmanagement/pkg/kafka"
)

// Recorder is a pkgkafka.Publisher that keeps published events in memory.
// Tests use it to assert on what a service emitted.
type Recorder struct {
	mu     sync.Mutex
	events map[string][]*pkgkafka.Event
	Err    error
}

func NewRecorder() *Recorder {
	return &Recorder{events: make(map[string][]*pkgkafka.Event)}
}

func (r *Recorder) Publish(_ context.Context, topic string, e *pkgkafka.Event) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[topic] = append(r.events[topic], e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns what was published to topic.
func (r *Recorder) Events(topic string) []*pkgkafka.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*pkgkafka.Event(nil), r.events[topic]...)
}
