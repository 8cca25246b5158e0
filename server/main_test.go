//go:build !js
// +build !js

package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/simukka/filter-surface/config"
)

func writeFile(t *testing.T, dir, name string, size int) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestBuildManifest_OmitsOversizedAndNonAudio(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "kick.wav", 100)
	writeFile(t, dir, "bass.OGG", 100)
	writeFile(t, dir, "ambient.wav", 5000)
	writeFile(t, dir, "notes.txt", 10)
	os.Mkdir(filepath.Join(dir, "sub.wav"), 0755)

	m, skipped, err := buildManifest(dir, 1000)
	if err != nil {
		t.Fatalf("Expected manifest, got %v", err)
	}

	if len(m.Sources) != 2 {
		t.Errorf("Expected 2 sources, got %v", m.Sources)
	}
	if m.Sources["kick"] != "/media/kick.wav" || m.Sources["bass"] != "/media/bass.OGG" {
		t.Errorf("Unexpected sources %v", m.Sources)
	}
	if len(skipped) != 1 || skipped[0] != "ambient" {
		t.Errorf("Expected ambient skipped, got %v", skipped)
	}
}

func TestBuildManifest_MissingDir(t *testing.T) {
	if _, _, err := buildManifest(filepath.Join(t.TempDir(), "nope"), 0); err == nil {
		t.Error("Expected error for missing media dir")
	}
}

func TestMux_Routes(t *testing.T) {
	media := t.TempDir()
	writeFile(t, media, "snare.wav", 64)
	srv := httptest.NewServer(newMux(Options{StaticDir: t.TempDir(), MediaDir: media}))
	defer srv.Close()

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"index", "/", http.StatusOK},
		{"health", "/api/health", http.StatusOK},
		{"media", "/media/snare.wav", http.StatusOK},
		{"missing media", "/media/kick.wav", http.StatusNotFound},
		{"missing static", "/main.js", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("GET %s: expected %d, got %d", tt.path, tt.status, resp.StatusCode)
			}
		})
	}
}

func TestMux_Manifest(t *testing.T) {
	media := t.TempDir()
	writeFile(t, media, "hat.wav", 64)
	srv := httptest.NewServer(newMux(Options{StaticDir: t.TempDir(), MediaDir: media}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/manifest")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	m, err := config.LoadManifest(resp.Body)
	if err != nil {
		t.Fatalf("Expected manifest JSON, got %v", err)
	}
	if m.Sources["hat"] != "/media/hat.wav" {
		t.Errorf("Expected hat source, got %v", m.Sources)
	}
}

func TestMux_IndexIsEmbedded(t *testing.T) {
	srv := httptest.NewServer(newMux(Options{StaticDir: t.TempDir(), MediaDir: t.TempDir()}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "knob-lp-cutoff") {
		t.Error("Expected embedded page to contain the lowpass knob")
	}
}
