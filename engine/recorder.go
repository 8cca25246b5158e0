package engine

import (
	"context"
	"fmt"
	"sync"
)

// Write is one recorded parameter write.
type Write struct {
	Name  string
	Value float64
}

// Recorder is an in-memory Engine. It records writes and assignments in
// order, which makes it the fake for tests and the sink for offline asset
// checks.
type Recorder struct {
	mu       sync.Mutex
	Required []BufferRef
	Writes   []Write
	Assigned map[string]Buffer

	// Params, when non-empty, restricts which names are accepted; writes to
	// other names are dropped like a device without that parameter.
	Params map[string]bool

	// Reject fails assignment of the listed ids.
	Reject map[string]error

	subs []func(Event)
}

// NewRecorder creates a recorder requiring the given buffer ids.
func NewRecorder(required ...string) *Recorder {
	r := &Recorder{Assigned: make(map[string]Buffer)}
	for _, id := range required {
		r.Required = append(r.Required, BufferRef{ID: id})
	}
	return r
}

func (r *Recorder) SetParameterValue(name string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Params) > 0 && !r.Params[name] {
		return
	}
	r.Writes = append(r.Writes, Write{Name: name, Value: value})
}

func (r *Recorder) AssignBuffer(ctx context.Context, id string, buf Buffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.Reject[id]; ok {
		return fmt.Errorf("assign %s: %w", id, err)
	}
	r.Assigned[id] = buf
	return nil
}

func (r *Recorder) RequiredBuffers() []BufferRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]BufferRef(nil), r.Required...)
}

func (r *Recorder) Subscribe(fn func(Event)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, fn)
	idx := len(r.subs) - 1
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.subs[idx] = nil
	}
}

// Emit delivers an output event to subscribers.
func (r *Recorder) Emit(ev Event) {
	r.mu.Lock()
	subs := append(([]func(Event))(nil), r.subs...)
	r.mu.Unlock()
	for _, fn := range subs {
		if fn != nil {
			fn(ev)
		}
	}
}

// Names returns the parameter names written so far, in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.Writes))
	for i, w := range r.Writes {
		names[i] = w.Name
	}
	return names
}

// Reset forgets recorded writes.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Writes = nil
}
