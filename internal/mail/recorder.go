package mail

import (
	"context"
	"sync"
)

// Recorder is a Sender that keeps every message in memory.
type Recorder struct {
	mu   sync.Mutex
	sent []Message

	// Err, when set, is returned by Send after validation.
	Err error
}

// Send implements Sender.
func (r *Recorder) Send(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}
