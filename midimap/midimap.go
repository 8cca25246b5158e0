// Package midimap lets a hardware MIDI controller drive the surface by
// mapping control-change numbers onto control ids.
package midimap

import (
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/simukka/filter-surface/debug"
)

// AnyChannel accepts control changes on every channel.
const AnyChannel = -1

// Map translates raw MIDI messages into normalized control positions.
type Map struct {
	mu       sync.RWMutex
	bindings map[uint8]string
	channel  int
	learning string // control id waiting for its CC
}

// New creates a map listening on every channel.
func New(bindings map[uint8]string) *Map {
	m := &Map{bindings: make(map[uint8]string, len(bindings)), channel: AnyChannel}
	for cc, id := range bindings {
		m.bindings[cc] = id
	}
	return m
}

// SetChannel restricts input to one 0-based channel, or AnyChannel.
func (m *Map) SetChannel(ch int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channel = ch
}

// Bind maps cc to a control, replacing any earlier binding for cc.
func (m *Map) Bind(cc uint8, controlID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[cc] = controlID
}

// Learn binds the next incoming control change to controlID.
func (m *Map) Learn(controlID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.learning = controlID
}

// Translate returns the control and normalized value carried by raw. Anything
// that is not a bound control change reports false.
func (m *Map) Translate(raw []byte) (string, float64, bool) {
	if len(raw) < 3 {
		return "", 0, false
	}
	var ch, cc, val uint8
	if !gomidi.Message(raw).GetControlChange(&ch, &cc, &val) {
		return "", 0, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.channel != AnyChannel && int(ch) != m.channel {
		return "", 0, false
	}
	if m.learning != "" {
		debug.Log("midi", "learned CC %d -> %s", cc, m.learning)
		m.bindings[cc] = m.learning
		m.learning = ""
	}
	id, ok := m.bindings[cc]
	if !ok {
		debug.LogEvery(20, "midi", "unbound CC %d on channel %d", cc, ch)
		return "", 0, false
	}
	return id, float64(val) / 127, true
}
