package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLevel(LevelWarning)

	SetLevel(LevelWarning)
	Info("hidden %d", 1)
	Warning("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warning level: %q", out)
	}
	// prefix, then the timestamp, then the message
	if !strings.HasPrefix(out, "W ") || !strings.HasSuffix(out, " shown 2\n") {
		t.Errorf("warning message missing: %q", out)
	}

	buf.Reset()
	SetLevel(LevelNone)
	Error("nothing")
	if buf.Len() != 0 {
		t.Errorf("expected no output at LevelNone, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warn":    LevelWarning,
		"error":   LevelError,
		"bogus":   LevelNone,
		" debug ": LevelDebug,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
