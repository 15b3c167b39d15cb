package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidLevel) {
			t.Errorf("ParseLevel(%q) error = %v, want ErrInvalidLevel", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLevel_String(t *testing.T) {
	t.Parallel()

	if LevelWarn.String() != "warn" {
		t.Errorf("LevelWarn.String() = %q", LevelWarn.String())
	}
	if Level(42).String() != "unknown" {
		t.Errorf("Level(42).String() = %q", Level(42).String())
	}
}

// The tests below share the global logging state and must not run in parallel.

func TestInit_InvalidConfig(t *testing.T) {
	dir := t.TempDir()

	if err := Init(Config{Level: "loud", Path: filepath.Join(dir, "a.log")}); err == nil {
		t.Error("Init() with bad level error = nil")
	}
	if err := Init(Config{Level: "info", Path: filepath.Join(dir, "b.log"), Components: map[string]string{"engine": "x"}}); err == nil {
		t.Error("Init() with bad component level error = nil")
	}
	if err := Init(Config{Level: "info", Path: filepath.Join(dir, "c.log"), ConsoleLevel: "x"}); err == nil {
		t.Error("Init() with bad console level error = nil")
	}
}

func TestGet_ReconfiguredInPlace(t *testing.T) {
	// Obtained before Init, like a package-level logger.
	early := Get("early-component")
	early.Info("dropped before init")

	dir := t.TempDir()
	path := filepath.Join(dir, "blendsync.log")
	if err := Init(Config{Level: "info", Path: path}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if Get("early-component") != early {
		t.Error("Get() returned a different logger for the same component")
	}
	early.Info("after init", "key", "value")
	early.Debug("below level")

	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	early.Info("after close")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "after init") || !strings.Contains(content, "key=value") {
		t.Errorf("log missing message: %q", content)
	}
	for _, unwanted := range []string{"dropped before init", "below level", "after close"} {
		if strings.Contains(content, unwanted) {
			t.Errorf("log unexpectedly contains %q", unwanted)
		}
	}
}

func TestComponentLevelAndConsole(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blendsync.log")
	var console bytes.Buffer

	err := Init(Config{
		Level:        "warn",
		Path:         path,
		Components:   map[string]string{"chatty": "debug"},
		ConsoleLevel: "info",
		Console:      &console,
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	Get("chatty").Debug("chatty debug")
	Get("quiet").Info("quiet info")
	Get("quiet").With("target", "4.2").Warn("quiet warn")

	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	file := string(data)

	if !strings.Contains(file, "chatty debug") {
		t.Error("component override should allow debug")
	}
	if strings.Contains(file, "quiet info") {
		t.Error("default level warn should drop info")
	}
	if !strings.Contains(file, "target=4.2") {
		t.Error("With() context missing")
	}

	if !strings.Contains(console.String(), "quiet info") {
		t.Errorf("console should get info messages: %q", console.String())
	}
	if strings.Contains(console.String(), "chatty debug") {
		t.Error("console level info should drop debug")
	}
}
