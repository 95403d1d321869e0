package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/rcxctl/internal/testutil/testlog"
)

func TestWriteThenValidate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "rcxctl.toml")

	if err := run([]string{"--output", path}); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := run([]string{"--output", path}); err == nil {
		t.Fatalf("expected refusal to overwrite without --force")
	}
	if err := run([]string{"--output", path, "--force"}); err != nil {
		t.Fatalf("forced write: %v", err)
	}
	if err := run([]string{"--validate", "--input", path}); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "rcxctl.toml")
	if err := os.WriteFile(path, []byte("driver = \"lirc\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := run([]string{"--validate", "-i", path}); err == nil {
		t.Fatalf("expected validation failure")
	}
}
