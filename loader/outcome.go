package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSource marks a required buffer missing from the source table.
	ErrNoSource = errors.New("no source mapping")
	// ErrDecodeTimeout marks a decode that did not finish in time.
	ErrDecodeTimeout = errors.New("decode timeout")
	// ErrHTTPStatus wraps non-success responses.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
)

// Status is the load state of one buffer asset.
type Status int

const (
	Pending Status = iota
	Fetching
	Decoding
	Assigned
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fetching:
		return "fetching"
	case Decoding:
		return "decoding"
	case Assigned:
		return "assigned"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Terminal reports whether the asset is finished either way.
func (s Status) Terminal() bool {
	return s == Assigned || s == Failed
}

// Outcome is the per-asset record of a loading session.
type Outcome struct {
	ID     string
	Source string
	Status Status
	Err    error
}

// Report lists outcomes in the order the engine required them.
type Report struct {
	Outcomes []Outcome
}

// Complete reports whether every asset reached a terminal state.
func (r Report) Complete() bool {
	for _, o := range r.Outcomes {
		if !o.Status.Terminal() {
			return false
		}
	}
	return true
}

// Failed returns the failed outcomes.
func (r Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == Failed {
			out = append(out, o)
		}
	}
	return out
}

// Statuses maps id to status.
func (r Report) Statuses() map[string]Status {
	m := make(map[string]Status, len(r.Outcomes))
	for _, o := range r.Outcomes {
		m[o.ID] = o.Status
	}
	return m
}

// Progress is the aggregate state reported while loading.
type Progress struct {
	Loaded  int    // assets with a terminal outcome
	Total   int    // assets required
	Current string // id being fetched, empty between assets
	// Percent of the current asset's bytes, or -1 when the response has no
	// known length; Bytes then carries the raw count.
	Percent  float64
	Bytes    int64
	Fraction float64 // (Loaded + current asset fraction) / Total
}
