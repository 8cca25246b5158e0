// Package control holds the per-knob state of the surface: raw and normalized
// values, display formatting and change notification.
package control

import "github.com/simukka/filter-surface/common"

// ToNormalized maps raw from [min, max] onto [0, 1], clamped.
func ToNormalized(raw, min, max float64) float64 {
	if max == min {
		return 0
	}
	return common.Clamp01((raw - min) / (max - min))
}

// ToRaw maps a normalized position back onto [min, max], clamped.
func ToRaw(n, min, max float64) float64 {
	raw := min + common.Clamp01(n)*(max-min)
	if min <= max {
		return common.Clamp(raw, min, max)
	}
	return common.Clamp(raw, max, min)
}
