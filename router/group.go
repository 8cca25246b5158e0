package router

// Member is one parameter of a coupled group.
type Member struct {
	Param string
	// Default is written when no control is bound to Param.
	Default float64
}

// Group is a set of parameters the engine must receive together, in Send
// order, whenever any one of them changes.
type Group struct {
	Name string
	Send []Member
}

// HighPass writes resonance before cutoff.
func HighPass(cutoff, res string, cutoffDefault, resDefault float64) Group {
	return Group{
		Name: "highpass",
		Send: []Member{{Param: res, Default: resDefault}, {Param: cutoff, Default: cutoffDefault}},
	}
}

// LowPass writes cutoff before resonance.
func LowPass(cutoff, res string, cutoffDefault, resDefault float64) Group {
	return Group{
		Name: "lowpass",
		Send: []Member{{Param: cutoff, Default: cutoffDefault}, {Param: res, Default: resDefault}},
	}
}
