package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultsAreValid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("Defaults().Validate() = %v", err)
	}
	d := Defaults()
	if d.World.GridWidth != 120 || d.World.GridHeight != 88 {
		t.Errorf("default grid = %dx%d, want 120x88", d.World.GridWidth, d.World.GridHeight)
	}
}

func TestDefaultsAreIndependent(t *testing.T) {
	a := Defaults()
	a.Compiler.Jobs = 99
	a.World.GridWidth = 1
	if b := Defaults(); b.Compiler.Jobs != 4 || b.World.GridWidth != 120 {
		t.Errorf("Defaults() shares state: jobs=%d grid width=%d", b.Compiler.Jobs, b.World.GridWidth)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapc.yaml")
	data := "compiler:\n  jobs: 8\nwatch:\n  debounce: 250ms\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Defaults()
	want.Compiler.Jobs = 8
	want.Watch.Debounce = 250 * time.Millisecond
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := Load(path, false); err == nil {
		t.Error("expected an error for a required missing file")
	}
	s, err := Load(path, true)
	if err != nil {
		t.Fatalf("optional missing file: %v", err)
	}
	if diff := cmp.Diff(Defaults(), s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapc.yaml")
	if err := os.WriteFile(path, []byte("compiler:\n  jobs: 0\nworld:\n  grid_width: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path, false)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	for _, want := range []string{"compiler.jobs", "world grid"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvTileset:      "tiles.tsx",
		EnvJobs:         "2",
		EnvGridWidth:    "240",
		EnvOTLPEndpoint: "http://localhost:4318",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	s := Defaults()
	if err := s.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if s.Compiler.Tileset != "tiles.tsx" || s.Compiler.Jobs != 2 || s.World.GridWidth != 240 || s.World.GridHeight != 88 {
		t.Errorf("settings = %+v", s)
	}
	if s.Telemetry.Endpoint != "http://localhost:4318" {
		t.Errorf("endpoint = %q", s.Telemetry.Endpoint)
	}

	env[EnvJobs] = "many"
	if err := Defaults().ApplyEnv(lookup); err == nil {
		t.Error("expected an error for a non-numeric MAPC_JOBS")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("MAPC_TEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MAPC_TEST_DOTENV", "")
	os.Unsetenv("MAPC_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("MAPC_TEST_DOTENV"); got != "from-file" {
		t.Errorf("MAPC_TEST_DOTENV = %q, want from-file", got)
	}
}
