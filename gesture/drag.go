// Package gesture converts pointer input into control values: relative
// vertical drags for rotary knobs and absolute positions for the tier slider.
package gesture

import (
	"github.com/simukka/filter-surface/common"
	"github.com/simukka/filter-surface/control"
	"github.com/simukka/filter-surface/debug"
)

// ParamWriter receives parameter writes. *router.Router implements it.
type ParamWriter interface {
	Write(param string, value float64)
}

// Session is the anchor of an in-progress drag.
type Session struct {
	ControlID       string
	StartY          float64
	StartNormalized float64
}

// Drag is the rotary controller: Idle until Begin, Dragging until End.
type Drag struct {
	controls    *control.Registry
	out         ParamWriter
	sensitivity float64
	session     *Session
}

// NewDrag creates a drag controller. sensitivity is normalized units per
// pixel.
func NewDrag(controls *control.Registry, out ParamWriter, sensitivity float64) *Drag {
	return &Drag{controls: controls, out: out, sensitivity: sensitivity}
}

// Begin anchors a drag on a control. It reports false for unknown controls.
func (d *Drag) Begin(controlID string, y float64) bool {
	c, ok := d.controls.Get(controlID)
	if !ok {
		debug.Log("gesture", "drag on unknown control %q", controlID)
		return false
	}
	if d.session != nil {
		d.End()
	}
	d.session = &Session{ControlID: controlID, StartY: y, StartNormalized: c.Normalized}
	d.controls.SetActive(controlID, true)
	return true
}

// Move recomputes the value from the anchor, so repeated or jittery events
// never accumulate error. Screen-space up increases the value. Without an
// active drag it does nothing.
func (d *Drag) Move(y float64) (control.Control, bool) {
	s := d.session
	if s == nil {
		return control.Control{}, false
	}
	n := common.Clamp01(s.StartNormalized + (s.StartY-y)*d.sensitivity)
	c, ok := d.controls.SetNormalized(s.ControlID, n)
	if !ok {
		return control.Control{}, false
	}
	debug.LogEvery(50, "gesture", "%s -> %g", c.Param, c.Raw)
	d.out.Write(c.Param, c.Raw)
	return c, true
}

// End releases the drag without changing the value.
func (d *Drag) End() {
	if d.session == nil {
		return
	}
	d.controls.SetActive(d.session.ControlID, false)
	d.session = nil
}

// Active returns the current drag anchor.
func (d *Drag) Active() (Session, bool) {
	if d.session == nil {
		return Session{}, false
	}
	return *d.session, true
}
