package debug

import (
	"bytes"
	"strings"
	"testing"
)

func TestLog_WritesCategory(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	Log("loader", "asset %s failed", "kick")

	out := buf.String()
	if !strings.Contains(out, "loader") || !strings.Contains(out, "asset kick failed") {
		t.Errorf("Expected category and message in output, got %q", out)
	}
}

func TestLog_DisabledIsSilent(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	Disable()
	Log("router", "dropped")
	Enable()

	if buf.Len() != 0 {
		t.Errorf("Expected no output while disabled, got %q", buf.String())
	}
}

func TestLogEvery_OnlyEveryNth(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	for i := 0; i < 6; i++ {
		LogEvery(3, "drag", "move unique-marker")
	}

	if n := strings.Count(buf.String(), "unique-marker"); n != 2 {
		t.Errorf("Expected 2 lines, got %d", n)
	}
}
