package gesture

import (
	"github.com/simukka/filter-surface/common"
	"github.com/simukka/filter-surface/control"
	"github.com/simukka/filter-surface/debug"
)

// Tier quantizes a normalized position into 1..count.
func Tier(n float64, count int) int {
	if count < 2 {
		return 1
	}
	return common.RoundInt(common.Clamp01(n)*float64(count-1)) + 1
}

// Slider is the discrete speed slider. Position is absolute along the track;
// only the integer tier reaches the engine.
type Slider struct {
	controls  *control.Registry
	out       ParamWriter
	controlID string
	tiers     int

	left, width float64
	position    float64
	tier        int

	onChange []func(position float64, tier int)
}

// NewSlider binds a slider to a declared control whose raw value is the tier.
func NewSlider(controls *control.Registry, out ParamWriter, controlID string, tiers int) *Slider {
	s := &Slider{controls: controls, out: out, controlID: controlID, tiers: tiers, tier: 1}
	if c, ok := controls.Get(controlID); ok && tiers >= 2 {
		s.tier = Tier(c.Normalized, tiers)
		s.position = float64(s.tier-1) / float64(tiers-1)
	}
	return s
}

// SetTrack records the track geometry in pointer coordinates.
func (s *Slider) SetTrack(left, width float64) {
	s.left, s.width = left, width
}

// OnChange registers a visual observer for the continuous position.
func (s *Slider) OnChange(fn func(position float64, tier int)) {
	s.onChange = append(s.onChange, fn)
}

// Set moves the thumb to pointer x.
func (s *Slider) Set(x float64) (float64, int) {
	if s.width <= 0 {
		debug.Log("gesture", "slider %s has no track width", s.controlID)
		return s.position, s.tier
	}
	return s.SetNormalized((x - s.left) / s.width)
}

// SetNormalized moves the thumb to a normalized position, writing the tier
// only when it changes.
func (s *Slider) SetNormalized(n float64) (float64, int) {
	s.position = common.Clamp01(n)
	tier := Tier(s.position, s.tiers)
	if tier != s.tier {
		s.tier = tier
		if c, ok := s.controls.SetRaw(s.controlID, float64(tier)); ok {
			s.out.Write(c.Param, float64(tier))
		}
	}
	for _, fn := range s.onChange {
		fn(s.position, s.tier)
	}
	return s.position, s.tier
}

// Reset returns the thumb to tier 1 without writing to the engine.
func (s *Slider) Reset() {
	s.position = 0
	s.tier = 1
	s.controls.SetRaw(s.controlID, 1)
	for _, fn := range s.onChange {
		fn(s.position, s.tier)
	}
}

// Position returns the continuous thumb position.
func (s *Slider) Position() float64 { return s.position }

// Tier returns the current tier.
func (s *Slider) Tier() int { return s.tier }
