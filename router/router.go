// Package router turns a single parameter write into the ordered engine
// writes the device expects, expanding coupled filter parameters into their
// whole group.
package router

import (
	"time"

	"github.com/simukka/filter-surface/debug"
)

// Writer receives low-level parameter writes. *engine.Conn implements it.
type Writer interface {
	SetParameterValue(name string, value float64)
}

// Values supplies the last-known value of a parameter. *control.Registry
// implements it.
type Values interface {
	Value(param string) (float64, bool)
}

// Scheduler runs f after d. time.AfterFunc satisfies it through AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// AfterFunc adapts time.AfterFunc to Scheduler.
type AfterFunc func(d time.Duration, f func()) *time.Timer

func (fn AfterFunc) AfterFunc(d time.Duration, f func()) { fn(d, f) }

// Router holds no state of its own beyond the group lookup.
type Router struct {
	out     Writer
	values  Values
	groups  []Group
	byParam map[string]int // parameter -> index in groups
}

// New builds the parameter-to-group lookup once.
func New(out Writer, values Values, groups []Group) *Router {
	r := &Router{
		out:     out,
		values:  values,
		groups:  groups,
		byParam: make(map[string]int),
	}
	for i, g := range groups {
		for _, m := range g.Send {
			if _, dup := r.byParam[m.Param]; dup {
				debug.Log("router", "parameter %s already grouped, ignoring in %s", m.Param, g.Name)
				continue
			}
			r.byParam[m.Param] = i
		}
	}
	return r
}

// GroupOf returns the group containing param.
func (r *Router) GroupOf(param string) (Group, bool) {
	i, ok := r.byParam[param]
	if !ok {
		return Group{}, false
	}
	return r.groups[i], true
}

// Write sends value for param. A grouped parameter expands into one write per
// member in send order: the requested value for param, the last-known value
// (or the member default) for the others.
func (r *Router) Write(param string, value float64) {
	if param == "" {
		return
	}
	g, ok := r.GroupOf(param)
	if !ok {
		r.out.SetParameterValue(param, value)
		return
	}
	for _, m := range g.Send {
		v := value
		if m.Param != param {
			v = r.lastKnown(m)
		}
		r.out.SetParameterValue(m.Param, v)
	}
}

func (r *Router) lastKnown(m Member) float64 {
	if r.values != nil {
		if v, ok := r.values.Value(m.Param); ok {
			return v
		}
	}
	return m.Default
}

// Init is one parameter write used when synchronizing the engine.
type Init struct {
	Param string
	Value float64
}

// Sync pushes every bound value, then the fixed power and tier values. It is
// idempotent and safe to repeat.
func (r *Router) Sync(bound []Init, fixed ...Init) {
	for _, b := range bound {
		r.Write(b.Param, b.Value)
	}
	for _, f := range fixed {
		r.Write(f.Param, f.Value)
	}
}

// Reassert writes each resonance parameter alone, now and again after delay.
// The device drops resonance across a power transition, so both writes are
// required.
func (r *Router) Reassert(params []string, delay time.Duration, sched Scheduler) {
	r.writeAlone(params)
	if sched == nil {
		return
	}
	sched.AfterFunc(delay, func() {
		r.writeAlone(params)
	})
}

func (r *Router) writeAlone(params []string) {
	for _, p := range params {
		if r.values != nil {
			if v, ok := r.values.Value(p); ok {
				r.out.SetParameterValue(p, v)
				continue
			}
		}
		debug.Log("router", "no control bound to %s, skipping re-assert", p)
	}
}
