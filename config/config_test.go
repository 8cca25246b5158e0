package config

import (
	"strings"
	"testing"

	"github.com/simukka/filter-surface/control"
	"github.com/simukka/filter-surface/router"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestDefault_GroupSendOrder(t *testing.T) {
	cfg := Default()

	order := map[string][]string{}
	for _, g := range cfg.Groups {
		for _, m := range g.Send {
			order[g.Name] = append(order[g.Name], m.Param)
		}
	}

	if got := strings.Join(order["highpass"], ","); got != "hp_res,hp_cutoff" {
		t.Errorf("Expected highpass order hp_res,hp_cutoff, got %s", got)
	}
	if got := strings.Join(order["lowpass"], ","); got != "lp_cutoff,lp_res" {
		t.Errorf("Expected lowpass order lp_cutoff,lp_res, got %s", got)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"single tier", func(c *Config) { c.TierCount = 1 }},
		{"zero sensitivity", func(c *Config) { c.DragSensitivity = 0 }},
		{"duplicate control", func(c *Config) { c.Controls = append(c.Controls, c.Controls[0]) }},
		{"inverted range", func(c *Config) {
			c.Controls = append(c.Controls, control.Decl{ID: "bad", Param: "x", Min: 2, Max: 1})
		}},
		{"one-member group", func(c *Config) {
			c.Groups = append(c.Groups, router.Group{Name: "solo", Send: []router.Member{{Param: "x"}}})
		}},
		{"param in two groups", func(c *Config) {
			c.Groups = append(c.Groups, router.LowPass(ParamLowCutoff, "other", 0, 0))
		}},
		{"midi unknown control", func(c *Config) { c.MIDI[99] = "ghost" }},
		{"tier control missing", func(c *Config) { c.TierControl = "ghost" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestLoadManifest_ReplacesSources(t *testing.T) {
	m, err := LoadManifest(strings.NewReader(`{"sources":{"kick":"/media/kick.wav","pad":"/media/pad.ogg"}}`))
	if err != nil {
		t.Fatalf("Expected manifest to decode, got %v", err)
	}

	cfg := Default()
	cfg.ApplyManifest(m)

	if len(cfg.Sources) != 2 {
		t.Errorf("Expected 2 sources, got %d", len(cfg.Sources))
	}
	if cfg.Sources["pad"] != "/media/pad.ogg" {
		t.Errorf("Expected pad source, got %q", cfg.Sources["pad"])
	}
}

func TestApplyManifest_WithoutSourcesKeepsDefaults(t *testing.T) {
	cfg := Default()
	before := len(cfg.Sources)

	cfg.ApplyManifest(&Manifest{})
	cfg.ApplyManifest(nil)

	if len(cfg.Sources) != before {
		t.Errorf("Expected %d default sources, got %d", before, len(cfg.Sources))
	}
}

func TestLoadManifest_BadJSON(t *testing.T) {
	if _, err := LoadManifest(strings.NewReader("{")); err == nil {
		t.Error("Expected error for truncated JSON")
	}
}
