package web

// Actions triggered from the keyboard.
const (
	ActionNone = iota
	ActionPower
	ActionLearn
)

// KeyMap maps key codes to surface actions.
var KeyMap = map[int]int{
	32: ActionPower, // Space
	80: ActionPower, // P
	76: ActionLearn, // L
}

// TranslateKeyCode returns the action bound to a key code.
func TranslateKeyCode(keyCode int) int {
	if action, ok := KeyMap[keyCode]; ok {
		return action
	}
	return ActionNone
}

// KnobAngle maps a normalized value onto the knob's 270 degree sweep.
func KnobAngle(n float64) float64 {
	return -135 + n*270
}
