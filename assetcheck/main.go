//go:build !js
// +build !js

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/simukka/filter-surface/config"
	"github.com/simukka/filter-surface/engine"
	"github.com/simukka/filter-surface/loader"
	"github.com/simukka/filter-surface/pcm"
)

// requiredIDs returns the explicit list, or every id in the source table.
func requiredIDs(explicit string, sources map[string]string) []string {
	if explicit != "" {
		var ids []string
		for _, id := range strings.Split(explicit, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		return ids
	}
	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func main() {
	server := flag.String("server", "http://localhost:8080", "Base URL of the surface server")
	require := flag.String("require", "", "Comma-separated buffer ids (default: every source in the manifest)")
	timeout := flag.Duration("decode-timeout", 60*time.Second, "Per-asset decode timeout")
	plain := flag.Bool("plain", false, "Print plain log lines instead of the interactive view")
	flag.Parse()

	cfg := config.Default()
	fetcher := &loader.HTTPFetcher{BaseURL: *server}
	ctx := context.Background()

	data, err := fetcher.Fetch(ctx, cfg.ManifestURL, nil)
	if err != nil {
		log.Printf("Manifest unavailable, checking built-in sources: %v", err)
	} else if m, err := config.LoadManifest(bytes.NewReader(data)); err != nil {
		log.Fatal(err)
	} else {
		cfg.ApplyManifest(m)
	}

	ids := requiredIDs(*require, cfg.Sources)
	rec := engine.NewRecorder(ids...)
	p := &loader.Pipeline{
		Fetcher:       fetcher,
		Decoder:       pcm.Decoder{},
		Assigner:      rec,
		DecodeTimeout: *timeout,
	}

	var report loader.Report
	if *plain {
		p.OnOutcome = func(o loader.Outcome) {
			if o.Status == loader.Failed {
				log.Printf("FAIL %s: %v", o.ID, o.Err)
				return
			}
			log.Printf("ok   %s (%s)", o.ID, rec.Assigned[o.ID].Duration().Round(time.Millisecond))
		}
		report = p.LoadAll(ctx, ids, cfg.Sources)
	} else {
		events := make(chan tea.Msg, 64)
		p.OnProgress = func(pr loader.Progress) { events <- progressMsg(pr) }
		p.OnOutcome = func(o loader.Outcome) { events <- outcomeMsg(o) }
		go func() {
			r := p.LoadAll(ctx, ids, cfg.Sources)
			events <- doneMsg(r)
		}()
		final, err := tea.NewProgram(newModel(events)).Run()
		if err != nil {
			log.Fatal(err)
		}
		fm := final.(model)
		if fm.report == nil {
			os.Exit(130)
		}
		report = *fm.report
	}

	if failed := report.Failed(); len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d assets failed\n", len(failed), len(report.Outcomes))
		os.Exit(1)
	}
}
