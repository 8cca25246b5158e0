//go:build !js
// +build !js

package main

import (
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/simukka/filter-surface/config"
)

//go:embed index.html
var indexHTML []byte

// audioExts are the media files listed in the manifest.
var audioExts = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".ogg":  true,
	".flac": true,
}

// Options configures the server.
type Options struct {
	StaticDir     string
	MediaDir      string
	MaxAssetBytes int64
}

// buildManifest lists the media directory as a source table. Files over
// maxBytes are omitted so the browser never tries to decode them.
func buildManifest(dir string, maxBytes int64) (*config.Manifest, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read media dir: %w", err)
	}

	m := &config.Manifest{Sources: make(map[string]string)}
	var skipped []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !audioExts[ext] {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		info, err := e.Info()
		if err != nil {
			return nil, nil, err
		}
		if maxBytes > 0 && info.Size() > maxBytes {
			skipped = append(skipped, id)
			continue
		}
		m.Sources[id] = "/media/" + e.Name()
	}
	sort.Strings(skipped)
	return m, skipped, nil
}

func newMux(opts Options) *http.ServeMux {
	mux := http.NewServeMux()

	// Serve embedded index.html at root path
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || r.URL.Path == "/index.html" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(indexHTML)
			return
		}
		// Serve the compiled bundle, patcher export and other files from disk
		http.FileServer(http.Dir(opts.StaticDir)).ServeHTTP(w, r)
	})

	mux.Handle("/media/", http.StripPrefix("/media/", http.FileServer(http.Dir(opts.MediaDir))))

	mux.HandleFunc("/api/manifest", func(w http.ResponseWriter, r *http.Request) {
		m, skipped, err := buildManifest(opts.MediaDir, opts.MaxAssetBytes)
		if err != nil {
			log.Printf("Manifest: %v", err)
			http.Error(w, "manifest unavailable", http.StatusInternalServerError)
			return
		}
		if len(skipped) > 0 {
			log.Printf("Manifest omits oversized assets: %s", strings.Join(skipped, ", "))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		json.NewEncoder(w).Encode(m)
	})

	// Health check
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})

	return mux
}

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	staticDir := flag.String("static", ".", "Directory to serve static files from")
	mediaDir := flag.String("media", "media", "Directory holding audio assets")
	maxAsset := flag.Int64("max-asset-bytes", 32<<20, "Omit assets larger than this from the manifest (0 = no limit)")
	flag.Parse()

	mux := newMux(Options{
		StaticDir:     *staticDir,
		MediaDir:      *mediaDir,
		MaxAssetBytes: *maxAsset,
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Filter surface server starting on http://localhost%s", addr)
	log.Printf("Serving static files from: %s", *staticDir)
	log.Printf("Serving media from: %s", *mediaDir)
	log.Printf("Manifest endpoint: /api/manifest")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
