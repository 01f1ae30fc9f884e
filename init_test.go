package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phobologic/umlgen/internal/config"
)

// TestInitCreatesFile verifies that runInit creates the target file when it
// does not exist.
func TestInitCreatesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "umlgen.yaml")

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{path}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("file not created: %v", err)
	}
	if string(data) != starterConfig() {
		t.Error("written file differs from the starter config")
	}
	if !strings.Contains(stderr.String(), "wrote "+path) {
		t.Errorf("stderr = %q", stderr.String())
	}
}

// TestInitRefusesOverwrite verifies that an existing file is kept unless
// -force is given.
func TestInitRefusesOverwrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "umlgen.yaml")

	existing := "theme: dark\n"
	if err := os.WriteFile(path, []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := runInit([]string{path}, &buf, &buf); err == nil {
		t.Fatal("expected error for existing file")
	}
	data, _ := os.ReadFile(path)
	if string(data) != existing {
		t.Error("existing file must not be modified without -force")
	}

	if err := runInit([]string{"-force", path}, &buf, &buf); err != nil {
		t.Fatalf("runInit -force: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != starterConfig() {
		t.Error("-force should overwrite the file")
	}
}

// TestInitDryRun verifies that -dry-run prints the file and writes nothing.
func TestInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "umlgen.yaml")

	var stdout, stderr bytes.Buffer
	if err := runInit([]string{"--dry-run", path}, &stdout, &stderr); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	if _, err := os.Stat(path); err == nil {
		t.Error("--dry-run should not create the file")
	}
	if stdout.String() != starterConfig() {
		t.Errorf("dry-run output:\n%s", stdout.String())
	}
}

// TestInitStarterConfigLoads verifies that the starter file is a valid
// configuration equal to the defaults.
func TestInitStarterConfigLoads(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "umlgen.yaml")

	var buf bytes.Buffer
	if err := runInit([]string{path}, &buf, &buf); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	cfg, err := config.Load(path, "")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	def := config.Default()
	if cfg.Theme != def.Theme || cfg.Format != def.Format || cfg.Renderer != def.Renderer {
		t.Errorf("starter config = %+v, want defaults %+v", cfg, def)
	}
	if len(cfg.Exclude) != 0 || len(cfg.Skinparams) != 0 || cfg.Output != "" {
		t.Errorf("starter config should not set lists or output: %+v", cfg)
	}
}

// TestInitViaRun verifies that the init subcommand is dispatched by run.
func TestInitViaRun(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	if err := run([]string{"init", "-dry-run"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "theme: plain") {
		t.Errorf("expected starter config on stdout, got:\n%s", stdout.String())
	}
}
