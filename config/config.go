package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the project configuration file looked up by the CLI.
const DefaultFile = "mapc.yaml"

// CompilerConfig contains room compiler settings
type CompilerConfig struct {
	Tileset string `yaml:"tileset"` // tileset file name, resolved next to each room
	Jobs    int    `yaml:"jobs"`    // rooms compiled in parallel by build/watch
}

// WorldConfig contains world processor settings
type WorldConfig struct {
	// Size of one world cell (one screen) in pixels
	GridWidth  int `yaml:"grid_width"`
	GridHeight int `yaml:"grid_height"`
}

// WatchConfig contains watch mode settings
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"` // per-file event coalescing window
}

// TelemetryConfig contains tracing settings. Tracing is exported only when
// an OTLP endpoint is configured.
type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// Settings holds every configurable value of the tool
type Settings struct {
	Compiler  CompilerConfig  `yaml:"compiler"`
	World     WorldConfig     `yaml:"world"`
	Watch     WatchConfig     `yaml:"watch"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Defaults returns the built-in configuration. Each call returns a fresh
// value; callers pass their Settings explicitly.
func Defaults() *Settings {
	return &Settings{
		Compiler: CompilerConfig{
			Tileset: "tileset.tsx",
			Jobs:    4,
		},
		World: WorldConfig{
			GridWidth:  15 * 8, // 15x11 tiles of 8px
			GridHeight: 11 * 8,
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "mapc",
		},
	}
}

// Load reads a YAML configuration file over the defaults. A missing file is
// not an error when optional is set.
func Load(path string, optional bool) (*Settings, error) {
	s := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return s, nil
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	var errs []error
	if s.Compiler.Tileset == "" {
		errs = append(errs, errors.New("compiler.tileset must not be empty"))
	}
	if s.Compiler.Jobs < 1 {
		errs = append(errs, fmt.Errorf("compiler.jobs must be at least 1, got %d", s.Compiler.Jobs))
	}
	if s.World.GridWidth <= 0 || s.World.GridHeight <= 0 {
		errs = append(errs, fmt.Errorf("world grid must be positive, got %dx%d", s.World.GridWidth, s.World.GridHeight))
	}
	if s.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce must not be negative, got %s", s.Watch.Debounce))
	}
	return errors.Join(errs...)
}

// Environment overrides, applied after the YAML file
const (
	EnvTileset      = "MAPC_TILESET"
	EnvJobs         = "MAPC_JOBS"
	EnvGridWidth    = "MAPC_GRID_WIDTH"
	EnvGridHeight   = "MAPC_GRID_HEIGHT"
	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// ApplyEnv overlays MAPC_* and OTEL_* environment variables onto s.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvTileset); ok && v != "" {
		s.Compiler.Tileset = v
	}
	if v, ok := lookup(EnvOTLPEndpoint); ok {
		s.Telemetry.Endpoint = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvJobs, &s.Compiler.Jobs},
		{EnvGridWidth, &s.World.GridWidth},
		{EnvGridHeight, &s.World.GridHeight},
	}
	for _, e := range ints {
		v, ok := lookup(e.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}
	return s.Validate()
}
