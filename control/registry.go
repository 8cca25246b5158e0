package control

import (
	"sync"

	"github.com/simukka/filter-surface/debug"
)

// Decl declares one physical control.
type Decl struct {
	ID      string  `json:"id"`
	Param   string  `json:"param"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Initial float64 `json:"initial"`
}

// Control is one knob or slider. Normalized always equals
// ToNormalized(Raw, Min, Max).
type Control struct {
	ID         string
	Param      string
	Min        float64
	Max        float64
	Raw        float64
	Normalized float64
	Active     bool // being dragged
}

// Registry owns every control of a session. Observers run outside the lock.
type Registry struct {
	mu        sync.RWMutex
	controls  []*Control
	byID      map[string]*Control
	lastValue map[string]float64 // per parameter
	formats   Formats
	observers []func(Control, string)
}

// NewRegistry creates controls from their declarations. Duplicate ids keep
// the first declaration.
func NewRegistry(decls []Decl, formats Formats) *Registry {
	r := &Registry{
		byID:      make(map[string]*Control, len(decls)),
		lastValue: make(map[string]float64, len(decls)),
		formats:   formats,
	}
	for _, d := range decls {
		if _, dup := r.byID[d.ID]; dup {
			debug.Log("control", "duplicate control %q ignored", d.ID)
			continue
		}
		c := &Control{ID: d.ID, Param: d.Param, Min: d.Min, Max: d.Max}
		c.Normalized = ToNormalized(d.Initial, d.Min, d.Max)
		c.Raw = ToRaw(c.Normalized, d.Min, d.Max)
		r.controls = append(r.controls, c)
		r.byID[c.ID] = c
		if _, ok := r.lastValue[c.Param]; !ok {
			r.lastValue[c.Param] = c.Raw
		}
	}
	return r
}

// OnChange registers an observer called after every mutation with the new
// state and its formatted text.
func (r *Registry) OnChange(fn func(c Control, text string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Get returns a snapshot of a control.
func (r *Registry) Get(id string) (Control, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return Control{}, false
	}
	return *c, true
}

// All returns snapshots in declaration order.
func (r *Registry) All() []Control {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Control, len(r.controls))
	for i, c := range r.controls {
		out[i] = *c
	}
	return out
}

// Value returns the last raw value written to param through any control.
func (r *Registry) Value(param string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.lastValue[param]
	return v, ok
}

// Text formats a control's current value.
func (r *Registry) Text(c Control) string {
	return r.formats.Format(c.Param, c.Raw)
}

// SetRaw stores a raw value, clamped to the control's range.
func (r *Registry) SetRaw(id string, raw float64) (Control, bool) {
	r.mu.Lock()
	c, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return Control{}, false
	}
	return r.set(c, ToNormalized(raw, c.Min, c.Max)), true
}

// SetNormalized stores a normalized position, clamped to [0, 1].
func (r *Registry) SetNormalized(id string, n float64) (Control, bool) {
	r.mu.Lock()
	c, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return Control{}, false
	}
	return r.set(c, n), true
}

// SetActive marks a control as being dragged.
func (r *Registry) SetActive(id string, active bool) {
	r.mu.Lock()
	c, ok := r.byID[id]
	if !ok || c.Active == active {
		r.mu.Unlock()
		return
	}
	c.Active = active
	r.unlockAndNotify(*c)
}

// set expects r.mu held and releases it.
func (r *Registry) set(c *Control, n float64) Control {
	c.Raw = ToRaw(n, c.Min, c.Max)
	c.Normalized = ToNormalized(c.Raw, c.Min, c.Max)
	r.lastValue[c.Param] = c.Raw
	snap := *c
	r.unlockAndNotify(snap)
	return snap
}

func (r *Registry) unlockAndNotify(snap Control) {
	observers := r.observers
	r.mu.Unlock()
	if len(observers) == 0 {
		return
	}
	text := r.Text(snap)
	for _, fn := range observers {
		fn(snap, text)
	}
}
