package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestDebugInfoSection_OnlyWhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	SetVerbose(false)
	Debug("hidden %d", 1)
	Info("hidden")
	Section("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output when not verbose, got %q", buf.String())
	}

	SetVerbose(true)
	Debug("value %d", 42)
	Info("ready")
	Section("Store")

	out := buf.String()
	for _, want := range []string{"[DEBUG] value 42", "[INFO] ready", "=== Store ==="} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestWarn_AlwaysPrinted(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("vector %d orphaned", 7)
	if got := buf.String(); got != "[WARN] vector 7 orphaned\n" {
		t.Errorf("unexpected warning output %q", got)
	}
}

func TestSince(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Since("resolve", time.Now().Add(-time.Millisecond))
	if !strings.Contains(buf.String(), "[DEBUG] resolve took") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			SetVerbose(n%2 == 0)
			Debug("n=%d", n)
			_ = IsVerbose()
		}(i)
	}
	wg.Wait()
}
