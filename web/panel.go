//go:build js
// +build js

package web

import (
	"fmt"
	"math"

	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/filter-surface/control"
	"github.com/simukka/filter-surface/debug"
	"github.com/simukka/filter-surface/loader"
	"github.com/simukka/filter-surface/session"
)

// Panel binds DOM elements to a session. Element ids match control ids; the
// value label of a control is "<id>-val".
type Panel struct {
	s        *session.Session
	audioCtx *js.Object
	doc      *js.Object

	sliderDragging bool
	learnNext      bool
}

// NewPanel creates a panel for the session.
func NewPanel(s *session.Session, audioCtx *js.Object) *Panel {
	return &Panel{s: s, audioCtx: audioCtx, doc: js.Global.Get("document")}
}

func (p *Panel) byID(id string) *js.Object {
	el := p.doc.Call("getElementById", id)
	if !defined(el) {
		return nil
	}
	return el
}

// Attach registers observers and input handlers.
func (p *Panel) Attach() {
	p.s.Controls.OnChange(p.renderControl)
	p.s.Slider.OnChange(p.renderSlider)
	p.s.OnStatus(p.renderStatus)
	p.s.OnProgress(p.renderProgress)

	for _, c := range p.s.Controls.All() {
		if c.ID == p.s.Config.TierControl {
			continue
		}
		p.attachKnob(c.ID)
		p.renderControl(c, p.s.Controls.Text(c))
	}
	p.attachSlider()
	p.attachPower()
	p.attachKeys()
	p.attachMIDI()
	p.renderStatus(p.s.Status())
}

func (p *Panel) attachKnob(id string) {
	knob := p.byID(id)
	if knob == nil {
		debug.Log("panel", "no element for control %s", id)
		return
	}
	knob.Call("addEventListener", "pointerdown", func(e *js.Object) {
		e.Call("preventDefault")
		knob.Call("setPointerCapture", e.Get("pointerId"))
		if p.learnNext {
			p.learnNext = false
			p.s.MIDI.Learn(id)
			p.renderStatus("Move a MIDI control to bind " + id)
		}
		p.s.Dispatch(session.BeginDrag{ControlID: id, Y: e.Get("clientY").Float()})
	})
	knob.Call("addEventListener", "pointermove", func(e *js.Object) {
		p.s.Dispatch(session.MoveDrag{Y: e.Get("clientY").Float()})
	})
	end := func(e *js.Object) {
		p.s.Dispatch(session.EndDrag{})
	}
	knob.Call("addEventListener", "pointerup", end)
	knob.Call("addEventListener", "pointercancel", end)
}

func (p *Panel) attachSlider() {
	track := p.byID(p.s.Config.TierControl)
	if track == nil {
		return
	}
	move := func(e *js.Object) {
		rect := track.Call("getBoundingClientRect")
		p.s.Slider.SetTrack(rect.Get("left").Float(), rect.Get("width").Float())
		p.s.Dispatch(session.SetTier{X: e.Get("clientX").Float()})
	}
	track.Call("addEventListener", "pointerdown", func(e *js.Object) {
		e.Call("preventDefault")
		track.Call("setPointerCapture", e.Get("pointerId"))
		p.sliderDragging = true
		move(e)
	})
	track.Call("addEventListener", "pointermove", func(e *js.Object) {
		if p.sliderDragging {
			move(e)
		}
	})
	track.Call("addEventListener", "pointerup", func(e *js.Object) {
		p.sliderDragging = false
	})
	p.renderSlider(p.s.Slider.Position(), p.s.Slider.Tier())
}

func (p *Panel) togglePower() {
	Resume(p.audioCtx)
	on := !p.s.Powered()
	if err := p.s.SetPower(on); err != nil {
		p.renderStatus("Still loading samples")
		return
	}
	if btn := p.byID("power"); btn != nil {
		btn.Get("classList").Call("toggle", "on", on)
		btn.Set("textContent", control.OnOff(boolValue(on)))
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (p *Panel) attachPower() {
	btn := p.byID("power")
	if btn == nil {
		return
	}
	btn.Call("addEventListener", "click", func() {
		p.togglePower()
	})
}

func (p *Panel) attachKeys() {
	p.doc.Call("addEventListener", "keydown", func(event *js.Object) {
		if event.Get("repeat").Bool() {
			return
		}
		switch TranslateKeyCode(event.Get("keyCode").Int()) {
		case ActionPower:
			p.togglePower()
			event.Call("preventDefault")
		case ActionLearn:
			p.learnNext = true
			p.renderStatus("Click a knob, then move a MIDI control")
		}
	})
}

func (p *Panel) attachMIDI() {
	nav := js.Global.Get("navigator")
	if !defined(nav.Get("requestMIDIAccess")) {
		debug.Log("midi", "Web MIDI not available")
		return
	}
	nav.Call("requestMIDIAccess").Call("then", func(access *js.Object) {
		access.Get("inputs").Call("forEach", func(input *js.Object) {
			debug.Log("midi", "listening on %s", input.Get("name").String())
			input.Set("onmidimessage", func(e *js.Object) {
				p.s.Dispatch(session.MIDIMessage{Data: bytesOf(e.Get("data"))})
			})
		})
	}, func(err *js.Object) {
		debug.Log("midi", "access denied: %s", err.String())
	})
}

func (p *Panel) renderControl(c control.Control, text string) {
	if knob := p.byID(c.ID); knob != nil {
		if c.ID != p.s.Config.TierControl {
			knob.Get("style").Set("transform", fmt.Sprintf("rotate(%.1fdeg)", KnobAngle(c.Normalized)))
		}
		knob.Get("classList").Call("toggle", "active", c.Active)
	}
	if label := p.byID(c.ID + "-val"); label != nil {
		label.Set("textContent", text)
	}
}

func (p *Panel) renderSlider(position float64, tier int) {
	id := p.s.Config.TierControl
	pct := fmt.Sprintf("%.1f%%", position*100)
	if fill := p.byID(id + "-fill"); fill != nil {
		fill.Get("style").Set("width", pct)
	}
	if thumb := p.byID(id + "-thumb"); thumb != nil {
		thumb.Get("style").Set("left", pct)
	}
	if label := p.byID(id + "-val"); label != nil {
		label.Set("textContent", control.Multiplier(float64(tier)))
	}
}

func (p *Panel) renderStatus(text string) {
	if el := p.byID("status"); el != nil {
		el.Set("textContent", text)
	}
}

func (p *Panel) renderProgress(pr loader.Progress) {
	bar := p.byID("load-progress")
	if bar != nil {
		if pr.Current != "" && pr.Percent < 0 {
			bar.Call("removeAttribute", "value")
		} else {
			bar.Set("value", math.Round(pr.Fraction*100))
		}
	}
	if count := p.byID("load-count"); count != nil {
		text := fmt.Sprintf("%d / %d", pr.Loaded, pr.Total)
		if pr.Current != "" && pr.Percent < 0 {
			text += fmt.Sprintf(" (%d KB)", pr.Bytes/1024)
		}
		count.Set("textContent", text)
	}
}
