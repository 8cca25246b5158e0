package config

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/simukka/filter-surface/control"
	"github.com/simukka/filter-surface/router"
)

// Parameter names exposed by the device.
const (
	ParamLowCutoff  = "lp_cutoff"
	ParamLowRes     = "lp_res"
	ParamHighCutoff = "hp_cutoff"
	ParamHighRes    = "hp_res"
	ParamVolume     = "volume"
	ParamPower      = "power"
	ParamSpeed      = "speed"
)

type Config struct {
	// Gesture settings
	DragSensitivity float64 // normalized units per pixel of vertical travel
	TierCount       int     // discrete slider levels, 1..TierCount
	TierControl     string  // control id of the discrete slider
	TierParam       string  // parameter receiving the integer tier

	// Power settings
	PowerParam    string
	PowerOff      float64
	PowerOn       float64
	ReassertDelay time.Duration // second resonance write after power-on

	// Loading settings
	DecodeTimeout time.Duration
	ManifestURL   string
	PatchURL      string // exported device patcher

	// Static tables
	Controls   []control.Decl
	Formats    control.Formats
	Groups     []router.Group
	Resonances []string          // parameters re-asserted after power-on
	Sources    map[string]string // buffer id -> URL; omitted ids are never fetched
	MIDI       map[uint8]string  // CC number -> control id
}

// Default returns the instrument's built-in configuration.
func Default() *Config {
	return &Config{
		DragSensitivity: 0.005,
		TierCount:       5,
		TierControl:     "slider-speed",
		TierParam:       ParamSpeed,

		PowerParam:    ParamPower,
		PowerOff:      0,
		PowerOn:       1,
		ReassertDelay: 100 * time.Millisecond,

		DecodeTimeout: 60 * time.Second,
		ManifestURL:   "/api/manifest",
		PatchURL:      "/export/patch.export.json",

		Controls: []control.Decl{
			{ID: "knob-hp-cutoff", Param: ParamHighCutoff, Min: 20, Max: 20000, Initial: 20},
			{ID: "knob-hp-res", Param: ParamHighRes, Min: 0, Max: 1, Initial: 0},
			{ID: "knob-lp-cutoff", Param: ParamLowCutoff, Min: 20, Max: 20000, Initial: 20000},
			{ID: "knob-lp-res", Param: ParamLowRes, Min: 0, Max: 1, Initial: 0},
			{ID: "knob-volume", Param: ParamVolume, Min: 0, Max: 1, Initial: 0.8},
			{ID: "slider-speed", Param: ParamSpeed, Min: 1, Max: 5, Initial: 1},
		},
		Formats: control.Formats{
			ParamHighCutoff: control.Hz,
			ParamLowCutoff:  control.Hz,
			ParamHighRes:    control.Percent,
			ParamLowRes:     control.Percent,
			ParamVolume:     control.Percent,
			ParamPower:      control.OnOff,
			ParamSpeed:      control.Multiplier,
		},
		Groups: []router.Group{
			router.HighPass(ParamHighCutoff, ParamHighRes, 20, 0),
			router.LowPass(ParamLowCutoff, ParamLowRes, 20000, 0),
		},
		Resonances: []string{ParamHighRes, ParamLowRes},
		// The long ambient beds are left out: they are too large to decode
		// reliably in a browser tab.
		Sources: map[string]string{
			"kick":  "/media/kick.wav",
			"snare": "/media/snare.wav",
			"hat":   "/media/hat.wav",
			"bass":  "/media/bass.ogg",
			"lead":  "/media/lead.mp3",
		},
		MIDI: map[uint8]string{
			21: "knob-hp-cutoff",
			22: "knob-hp-res",
			23: "knob-lp-cutoff",
			24: "knob-lp-res",
			25: "knob-volume",
			26: "slider-speed",
		},
	}
}

// Manifest is the JSON document served at ManifestURL.
type Manifest struct {
	Sources map[string]string `json:"sources"`
}

// LoadManifest decodes a manifest.
func LoadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// ApplyManifest replaces the source table when the manifest carries one.
func (c *Config) ApplyManifest(m *Manifest) {
	if m == nil || m.Sources == nil {
		return
	}
	c.Sources = make(map[string]string, len(m.Sources))
	for id, url := range m.Sources {
		c.Sources[id] = url
	}
}

// Validate reports declarations that cannot work together.
func (c *Config) Validate() error {
	if c.TierCount < 2 {
		return fmt.Errorf("tier count %d: need at least 2", c.TierCount)
	}
	if c.DragSensitivity <= 0 {
		return fmt.Errorf("drag sensitivity %g: must be positive", c.DragSensitivity)
	}
	ids := make(map[string]bool, len(c.Controls))
	for _, d := range c.Controls {
		if ids[d.ID] {
			return fmt.Errorf("control %q declared twice", d.ID)
		}
		ids[d.ID] = true
		if d.Max <= d.Min {
			return fmt.Errorf("control %q: max %g not above min %g", d.ID, d.Max, d.Min)
		}
	}
	seen := make(map[string]string)
	for _, g := range c.Groups {
		if len(g.Send) < 2 {
			return fmt.Errorf("group %q: needs at least 2 members", g.Name)
		}
		for _, m := range g.Send {
			if other, dup := seen[m.Param]; dup {
				return fmt.Errorf("parameter %q in groups %q and %q", m.Param, other, g.Name)
			}
			seen[m.Param] = g.Name
		}
	}
	for cc, id := range c.MIDI {
		if !ids[id] {
			return fmt.Errorf("MIDI CC %d bound to unknown control %q", cc, id)
		}
	}
	if c.TierControl != "" && !ids[c.TierControl] {
		return fmt.Errorf("tier control %q not declared", c.TierControl)
	}
	return nil
}
