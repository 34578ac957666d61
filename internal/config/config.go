// Package config loads and validates voxelstream's configuration,
// patterned on dittofs's pkg/config: a typed struct decoded from a
// YAML file and VOXELSTREAM_*-prefixed environment variables through
// viper + mapstructure, then checked with go-playground/validator
// struct tags. This replaces the teacher's internal/config, an ad hoc
// mutex-guarded global settings struct with hand-rolled clamping — fine
// for a handful of render toggles, not for a working-set manager with
// this many interdependent tunables.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// RegionFileBackend selects the concrete RegionFile collaborator.
type RegionFileBackend string

const (
	RegionFileMemory RegionFileBackend = "memory"
	RegionFileBadger RegionFileBackend = "badger"
)

// LoggingConfig controls internal/logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// MetricsConfig controls whether internal/metrics registers its
// collectors and where they are served.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen" validate:"required_if=Enabled true"`
}

// WorldConfig names the persisted world and its backing store.
type WorldConfig struct {
	Name            string            `mapstructure:"name" validate:"required"`
	Path            string            `mapstructure:"path"`
	RegionBackend   RegionFileBackend `mapstructure:"region_backend" validate:"required,oneof=memory badger"`
	WorldSizeChunks int32             `mapstructure:"world_size_chunks" validate:"required,gt=0"`
}

// WorkingSetConfig carries the tunables from spec.md §6's table.
type WorkingSetConfig struct {
	ViewDistance         int `mapstructure:"view_distance" validate:"required,gt=0"`
	ChunksToLoadPerFrame int `mapstructure:"chunks_to_load_per_frame" validate:"required,gt=0"`
	MeshSwapsPerFrame    int `mapstructure:"mesh_swaps_per_frame" validate:"required,gt=0"`
}

// Config is voxelstream's full configuration surface.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	World      WorldConfig      `mapstructure:"world"`
	WorkingSet WorkingSetConfig `mapstructure:"working_set"`
}

// Default returns the configuration spec.md's tunables table implies:
// view distance 12, 8 chunks/frame, 15 swaps/frame.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: false, Listen: ":9090"},
		World: WorldConfig{
			Name:            "world",
			Path:            "./world",
			RegionBackend:   RegionFileMemory,
			WorldSizeChunks: 64,
		},
		WorkingSet: WorkingSetConfig{
			ViewDistance:         12,
			ChunksToLoadPerFrame: 8,
			MeshSwapsPerFrame:    15,
		},
	}
}

// PoolSize returns S = (2D+1)(D+1)(2D+1) for the configured view
// distance, per spec.md §3's WorkingSetSlot definition.
func (c *Config) PoolSize() int {
	d := c.WorkingSet.ViewDistance
	return (2*d + 1) * (d + 1) * (2*d + 1)
}

// Load reads configPath (if non-empty) and VOXELSTREAM_* environment
// variables over the defaults, then validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VOXELSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()
	bindDefaults(v, cfg)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.listen", cfg.Metrics.Listen)
	v.SetDefault("world.name", cfg.World.Name)
	v.SetDefault("world.path", cfg.World.Path)
	v.SetDefault("world.region_backend", string(cfg.World.RegionBackend))
	v.SetDefault("world.world_size_chunks", cfg.World.WorldSizeChunks)
	v.SetDefault("working_set.view_distance", cfg.WorkingSet.ViewDistance)
	v.SetDefault("working_set.chunks_to_load_per_frame", cfg.WorkingSet.ChunksToLoadPerFrame)
	v.SetDefault("working_set.mesh_swaps_per_frame", cfg.WorkingSet.MeshSwapsPerFrame)
}

var validate = validator.New()

// Validate checks cfg's struct tags with go-playground/validator,
// following the same `validate:"..."` tag conventions dittofs's config
// package declares on its own fields.
func Validate(cfg *Config) error {
	return validate.Struct(cfg)
}
