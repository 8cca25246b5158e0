package control

import (
	"fmt"
	"math"
)

// Formatter renders a raw parameter value as short display text.
type Formatter func(raw float64) string

// Formats is keyed by parameter name, not control id, because several
// controls may be bound to one parameter.
type Formats map[string]Formatter

// Format renders raw with the formatter registered for param, or with two
// decimals when there is none.
func (f Formats) Format(param string, raw float64) string {
	if fn, ok := f[param]; ok && fn != nil {
		return fn(raw)
	}
	return fmt.Sprintf("%.2f", raw)
}

// Hz rounds to whole hertz.
func Hz(raw float64) string {
	return fmt.Sprintf("%d Hz", int(math.Round(raw)))
}

// Percent renders a unit value as a whole percentage.
func Percent(raw float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(raw*100)))
}

// OnOff renders a power switch.
func OnOff(raw float64) string {
	if raw >= 0.5 {
		return "On"
	}
	return "Off"
}

// Multiplier renders a 1-based tier as its power-of-two multiplier (tier 3 is "4×").
func Multiplier(raw float64) string {
	tier := int(math.Round(raw))
	if tier < 1 {
		tier = 1
	}
	return fmt.Sprintf("%d×", 1<<(tier-1))
}
