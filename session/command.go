package session

// Command is a discrete input event, decoupled from DOM event types.
type Command interface {
	command()
}

// BeginDrag presses on a rotary control at vertical pointer position Y.
type BeginDrag struct {
	ControlID string
	Y         float64
}

// MoveDrag moves the pointer during a drag.
type MoveDrag struct {
	Y float64
}

// EndDrag releases the pointer.
type EndDrag struct{}

// SetTier moves the tier slider to absolute pointer position X.
type SetTier struct {
	X float64
}

// SetNormalized positions a control directly, as MIDI or presets do.
type SetNormalized struct {
	ControlID string
	Value     float64
}

// SetPower switches the instrument on or off.
type SetPower struct {
	On bool
}

// MIDIMessage carries raw bytes from a MIDI input.
type MIDIMessage struct {
	Data []byte
}

func (BeginDrag) command()     {}
func (MoveDrag) command()      {}
func (EndDrag) command()       {}
func (SetTier) command()       {}
func (SetNormalized) command() {}
func (SetPower) command()      {}
func (MIDIMessage) command()   {}
