//go:build js
// +build js

package main

import (
	"bytes"
	"context"

	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/filter-surface/config"
	"github.com/simukka/filter-surface/debug"
	"github.com/simukka/filter-surface/loader"
	"github.com/simukka/filter-surface/session"
	"github.com/simukka/filter-surface/web"
)

func main() {
	cfg := config.Default()

	audioCtx, err := web.NewAudioContext()
	if err != nil {
		js.Global.Get("document").Call("getElementById", "status").Set("textContent", err.Error())
		return
	}

	fetcher := &loader.HTTPFetcher{BaseURL: js.Global.Get("location").Get("origin").String()}
	s, err := session.New(cfg, fetcher, web.NewDecoder(audioCtx))
	if err != nil {
		panic(err)
	}

	panel := web.NewPanel(s, audioCtx)
	panel.Attach()

	// Expose the surface to page scripts
	js.Global.Set("FilterSurface", map[string]interface{}{
		"power": func(on bool) bool {
			return s.SetPower(on) == nil
		},
		"isReady": func() bool {
			return s.Ready()
		},
		"status": func() string {
			return s.Status()
		},
		"learn": func(controlID string) {
			s.MIDI.Learn(controlID)
		},
	})

	go func() {
		ctx := context.Background()

		if data, err := fetcher.Fetch(ctx, cfg.ManifestURL, nil); err != nil {
			debug.Log("session", "manifest unavailable, using built-in sources: %v", err)
		} else if m, err := config.LoadManifest(bytes.NewReader(data)); err != nil {
			debug.Log("session", "%v", err)
		} else {
			cfg.ApplyManifest(m)
		}

		dev, err := web.CreateDevice(audioCtx, cfg.PatchURL)
		if err != nil {
			debug.Log("engine", "%v", err)
			return
		}
		s.Connect(dev)

		report := s.Load(ctx)
		for _, o := range report.Failed() {
			debug.Log("loader", "%s: %v", o.ID, o.Err)
		}
	}()

	select {}
}
