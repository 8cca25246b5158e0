package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	logger  = log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)
	enabled = true
)

// SetOutput redirects log lines. Under gopherjs stderr already ends up in the
// browser console.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

// Enable turns logging back on after Disable.
func Enable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = true
}

// Disable silences all categories.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	enabled = false
}

// Log writes a message tagged with a category.
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	msg := fmt.Sprintf(format, args...)
	logger.Printf("%-8s %s", category, msg)
}

// LogEvery logs only every N calls (use for high-frequency events like drag moves)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
