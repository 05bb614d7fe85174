package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/oomph-ac/simregion/oerror"
	"gopkg.in/yaml.v3"
)

// Settings contains everything that can be configured for the simulation and the process running it.
type Settings struct {
	World      World      `toml:"world" yaml:"world"`
	Simulation Simulation `toml:"simulation" yaml:"simulation"`
	Camera     Camera     `toml:"camera" yaml:"camera"`
	Logging    Logging    `toml:"logging" yaml:"logging"`
	Snapshot   Snapshot   `toml:"snapshot" yaml:"snapshot"`
	Sentry     Sentry     `toml:"sentry" yaml:"sentry"`
	Debug      Debug      `toml:"debug" yaml:"debug"`
}

// World holds the geometry of the world grid.
type World struct {
	TileSideInMeters  float32 `toml:"tile_side_in_meters" yaml:"tile_side_in_meters"`
	TileDepthInMeters float32 `toml:"tile_depth_in_meters" yaml:"tile_depth_in_meters"`
	TilesPerChunk     int32   `toml:"tiles_per_chunk" yaml:"tiles_per_chunk"`
}

// Simulation holds the tuning of the region builder and the movement solver.
type Simulation struct {
	// TickRate is the number of ticks simulated per second.
	TickRate          int     `toml:"tick_rate" yaml:"tick_rate"`
	MaxEntityRadius   float32 `toml:"max_entity_radius" yaml:"max_entity_radius"`
	MaxEntityVelocity float32 `toml:"max_entity_velocity" yaml:"max_entity_velocity"`
	VerticalMargin    float32 `toml:"vertical_margin" yaml:"vertical_margin"`
	Capacity          int     `toml:"capacity" yaml:"capacity"`
	Gravity           float32 `toml:"gravity" yaml:"gravity"`
	StepHeight        float32 `toml:"step_height" yaml:"step_height"`
	// Restitution is zero to slide along contacts and one to bounce off them.
	Restitution   float32 `toml:"restitution" yaml:"restitution"`
	MaxIterations int     `toml:"max_iterations" yaml:"max_iterations"`
}

// Camera holds the extent of the region simulated around the camera, in tiles.
type Camera struct {
	TileSpanX      int32   `toml:"tile_span_x" yaml:"tile_span_x"`
	TileSpanY      int32   `toml:"tile_span_y" yaml:"tile_span_y"`
	TileSpanZ      int32   `toml:"tile_span_z" yaml:"tile_span_z"`
	SpanMultiplier float32 `toml:"span_multiplier" yaml:"span_multiplier"`
}

// Logging configures the process logger.
type Logging struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level" yaml:"level"`
	// Format is either console or json.
	Format string `toml:"format" yaml:"format"`
}

// Snapshot configures world snapshots.
type Snapshot struct {
	Path string `toml:"path" yaml:"path"`
	// Interval is the number of ticks between snapshots. Zero only writes one on shutdown.
	Interval uint64 `toml:"interval" yaml:"interval"`
	// Level is the zstd encoder level, from 1 (fastest) to 4 (best compression).
	Level   int `toml:"level" yaml:"level"`
	Workers int `toml:"workers" yaml:"workers"`
}

// Sentry configures crash reporting. An empty DSN disables it.
type Sentry struct {
	DSN         string `toml:"dsn" yaml:"dsn"`
	Environment string `toml:"environment" yaml:"environment"`
}

// Debug holds developer toggles.
type Debug struct {
	StatsView     bool   `toml:"stats_view" yaml:"stats_view"`
	StatsViewAddr string `toml:"stats_view_addr" yaml:"stats_view_addr"`
	Solver        bool   `toml:"solver" yaml:"solver"`
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	s := Settings{}
	s.World.TileSideInMeters = 1.4
	s.World.TileDepthInMeters = 3.0
	s.World.TilesPerChunk = 16

	s.Simulation.TickRate = 30
	s.Simulation.MaxEntityRadius = 5
	s.Simulation.MaxEntityVelocity = 30
	s.Simulation.VerticalMargin = 1
	s.Simulation.Capacity = 4096
	s.Simulation.Gravity = 9.8
	s.Simulation.StepHeight = 0.1
	s.Simulation.MaxIterations = 4

	s.Camera.TileSpanX = 17
	s.Camera.TileSpanY = 9
	s.Camera.TileSpanZ = 1
	s.Camera.SpanMultiplier = 3

	s.Logging.Level = "info"
	s.Logging.Format = "console"

	s.Snapshot.Path = "world.snap"
	s.Snapshot.Level = 2
	s.Snapshot.Workers = 1

	s.Sentry.Environment = "development"
	s.Debug.StatsViewAddr = "localhost:18066"
	return s
}

// Validate reports the first setting that holds a value the simulation cannot run with.
func (s Settings) Validate() error {
	switch {
	case s.World.TileSideInMeters <= 0 || s.World.TileDepthInMeters <= 0 || s.World.TilesPerChunk <= 0:
		return fmt.Errorf("world geometry must be positive: %+v", s.World)
	case s.Simulation.TickRate <= 0:
		return fmt.Errorf("tick rate must be positive, got %d", s.Simulation.TickRate)
	case s.Simulation.MaxEntityRadius <= 0 || s.Simulation.MaxEntityVelocity <= 0:
		return fmt.Errorf("entity radius and velocity bounds must be positive")
	case s.Simulation.Gravity <= 0 || s.Simulation.StepHeight <= 0 || s.Simulation.VerticalMargin <= 0:
		return fmt.Errorf("gravity, step height and vertical margin must be positive: %+v", s.Simulation)
	case s.Simulation.Capacity <= 0 || s.Simulation.MaxIterations <= 0:
		return fmt.Errorf("capacity and max iterations must be positive: %+v", s.Simulation)
	case s.Simulation.Restitution < 0 || s.Simulation.Restitution > 1:
		return fmt.Errorf("restitution must be in [0, 1], got %v", s.Simulation.Restitution)
	case s.Camera.TileSpanX <= 0 || s.Camera.TileSpanY <= 0 || s.Camera.TileSpanZ <= 0 || s.Camera.SpanMultiplier <= 0:
		return fmt.Errorf("camera span must be positive: %+v", s.Camera)
	case s.Logging.Format != "console" && s.Logging.Format != "json":
		return fmt.Errorf("unknown log format %q", s.Logging.Format)
	}
	return nil
}

type format int

const (
	formatTOML format = iota
	formatYAML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return formatTOML, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	}
	return 0, fmt.Errorf("%w: %s", oerror.ErrUnknownFormat, path)
}

// SaveDefault will create and save the default settings file, encoded according to the extension of
// path. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return errors.New("settings file already exists")
	}

	var data []byte
	switch f {
	case formatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(DefaultSettings()); err != nil {
			return fmt.Errorf("failed encoding default settings: %w", err)
		}
		data = buf.Bytes()
	case formatYAML:
		if data, err = yaml.Marshal(DefaultSettings()); err != nil {
			return fmt.Errorf("failed encoding default settings: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed creating settings file: %w", err)
	}
	return nil
}

// Load will load the settings from the file at path, decoded according to its extension. Settings the
// file leaves out keep their default values.
func Load(path string) (Settings, error) {
	f, err := formatOf(path)
	if err != nil {
		return Settings{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config %s: %w", path, err)
	}

	s := DefaultSettings()
	switch f {
	case formatTOML:
		err = toml.Unmarshal(data, &s)
	case formatYAML:
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config %s: %w", path, err)
	}
	return s, nil
}
