package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zfogg/clipfeed/cli/pkg/config"
)

func TestLoggerFunctions_NoNilPointers(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logger function panicked: %v", r)
		}
	}()

	logger = nil
	Debug("test debug", "key", "value")
	Info("test info", "key", "value")
	Warn("test warn", "key", "value")
	Error("test error", "key", "value")
}

func TestInitWritesToLogFile(t *testing.T) {
	dir := t.TempDir()
	if err := config.Init(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	path := filepath.Join(dir, "cli.log")
	config.Override("log.file", path)

	Init(true)
	Debug("fetching batch", "session", "abc")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "fetching batch") {
		t.Errorf("log file missing message:\n%s", data)
	}
}

func TestInitRespectsLevel(t *testing.T) {
	dir := t.TempDir()
	if err := config.Init(filepath.Join(dir, "config.toml")); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	path := filepath.Join(dir, "cli.log")
	config.Override("log.file", path)
	config.Override("log.level", "warn")

	Init(false)
	Info("hidden")
	Warn("shown")
	Close()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Error("info message written at warn level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Error("warn message missing")
	}
}
