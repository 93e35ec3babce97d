// Package eventtest provides an event.Publisher that records what it receives.
package eventtest

import (
	"context"
	"sync"

	"github.com/daap14/teamhub/internal/event"
)

// Recorder is an event.Publisher that keeps every published payload.
type Recorder struct {
	mu     sync.Mutex
	events []event.Payload
	// Err, when set, is returned from Publish after recording.
	Err error
}

// Publish implements event.Publisher.
func (r *Recorder) Publish(_ context.Context, p event.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, p)
	return r.Err
}

// Events returns a copy of the recorded payloads.
func (r *Recorder) Events() []event.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Payload(nil), r.events...)
}
