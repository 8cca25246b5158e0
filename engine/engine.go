// Package engine is the boundary to the audio-processing device. The surface
// writes named parameters and assigns decoded buffers; everything behind the
// boundary is a black box.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/simukka/filter-surface/debug"
)

// ErrNotConnected is returned by buffer assignment before an engine is attached.
var ErrNotConnected = errors.New("engine not connected")

// Buffer is decoded, engine-ready audio.
type Buffer interface {
	Duration() time.Duration
	Channels() int
}

// BufferRef names one buffer the engine requires before playback.
type BufferRef struct {
	ID string `json:"id"`
}

// Event is a tagged output message from the engine.
type Event struct {
	Tag     string
	Payload []float64
}

// Engine is implemented by the Web Audio device adapter and by Recorder.
type Engine interface {
	SetParameterValue(name string, value float64)
	AssignBuffer(ctx context.Context, id string, buf Buffer) error
	RequiredBuffers() []BufferRef
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Conn is the session's single handle to the engine. Until Attach is called
// every call is a no-op, which is the normal state before initialization.
type Conn struct {
	mu     sync.RWMutex
	eng    Engine
	unsub  func()
	events []func(Event)
}

// NewConn returns a disconnected handle.
func NewConn() *Conn {
	return &Conn{}
}

// Attach connects an engine, replacing any previous one.
func (c *Conn) Attach(e Engine) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	c.eng = e
	if e != nil {
		c.unsub = e.Subscribe(c.dispatch)
	}
}

// Connected reports whether an engine is attached.
func (c *Conn) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.eng != nil
}

// OnEvent registers an observer for engine output events.
func (c *Conn) OnEvent(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, fn)
}

func (c *Conn) dispatch(ev Event) {
	c.mu.RLock()
	fns := append(([]func(Event))(nil), c.events...)
	c.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// SetParameterValue forwards a write, or logs and drops it when disconnected.
func (c *Conn) SetParameterValue(name string, value float64) {
	c.mu.RLock()
	e := c.eng
	c.mu.RUnlock()

	if e == nil {
		debug.Log("engine", "drop %s=%g: not connected", name, value)
		return
	}
	e.SetParameterValue(name, value)
}

// AssignBuffer forwards an assignment.
func (c *Conn) AssignBuffer(ctx context.Context, id string, buf Buffer) error {
	c.mu.RLock()
	e := c.eng
	c.mu.RUnlock()

	if e == nil {
		return ErrNotConnected
	}
	return e.AssignBuffer(ctx, id, buf)
}

// RequiredBuffers lists the engine's buffer requirements, or nothing when
// disconnected.
func (c *Conn) RequiredBuffers() []BufferRef {
	c.mu.RLock()
	e := c.eng
	c.mu.RUnlock()

	if e == nil {
		return nil
	}
	return e.RequiredBuffers()
}
