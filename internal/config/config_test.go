package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decoder.yaml")
	data := "decoder:\n  workers: 3\nlogging:\n  level: DEBUG\nserver:\n  addr: \"127.0.0.1:9000\"\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Decoder.Workers != 3 {
		t.Errorf("workers: %d != 3", cfg.Decoder.Workers)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("level: %q != DEBUG", cfg.Logging.Level)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("addr: %q", cfg.Server.Addr)
	}
	// untouched keys keep their defaults
	if cfg.Server.MaxUploadMB != 16 || !cfg.Metrics.Enabled {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(""); err != nil {
		t.Errorf("empty path: %v", err)
	}

	_, err := Load(filepath.Join(t.TempDir(), "other.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := "decoder:\n  workers: 0\nlogging:\n  level: LOUD\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"decoder.workers", "logging.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLogFilter(t *testing.T) {
	var buf bytes.Buffer
	f := NewLogFilter("WARN", &buf)

	f.Write([]byte("[DEBUG] hidden\n"))
	f.Write([]byte("[INFO] hidden\n"))
	f.Write([]byte("[WARN] shown\n"))
	f.Write([]byte("[ERROR] shown\n"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("low levels leaked: %q", out)
	}
	if strings.Count(out, "shown") != 2 {
		t.Errorf("expected 2 lines, got %q", out)
	}
}
