// Package config loads revad settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/revad/internal/arena"
	"github.com/born-ml/revad/internal/autodiff"
	"github.com/born-ml/revad/internal/parallel"
)

// ErrInvalid reports a configuration value out of range.
var ErrInvalid = errors.New("config: invalid value")

// Config is the full revad configuration.
type Config struct {
	Arena ArenaConfig `yaml:"arena"`
	Log   LogConfig   `yaml:"log"`
	Bench BenchConfig `yaml:"bench"`
}

// ArenaConfig sizes the arenas of every stack created from this config.
type ArenaConfig struct {
	BlockShift uint `yaml:"block_shift"` // Node blocks hold 1<<BlockShift nodes.
	MaxBlocks  int  `yaml:"max_blocks"`  // Zero means unbounded.
}

// LogConfig selects the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// BenchConfig drives the bench command.
type BenchConfig struct {
	Iterations int  `yaml:"iterations"`
	Parallel   bool `yaml:"parallel"`
	Dim        int  `yaml:"dim"`
	Workers    int  `yaml:"workers"` // Zero means one per CPU.
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Arena: ArenaConfig{BlockShift: arena.DefaultBlockShift},
		Log:   LogConfig{Level: "info"},
		Bench: BenchConfig{Iterations: 1000, Dim: 16},
	}
}

// Load reads configuration with priority env > file > defaults.
// An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	loadFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("REVAD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("REVAD_MAX_BLOCKS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Arena.MaxBlocks = i
		}
	}
	if v := os.Getenv("REVAD_BLOCK_SHIFT"); v != "" {
		if i, err := strconv.ParseUint(v, 10, 8); err == nil {
			cfg.Arena.BlockShift = uint(i)
		}
	}
}

// Validate checks every field.
func (c Config) Validate() error {
	if c.Arena.BlockShift < 1 || c.Arena.BlockShift > 24 {
		return fmt.Errorf("arena.block_shift %d not in [1, 24]: %w", c.Arena.BlockShift, ErrInvalid)
	}
	if c.Arena.MaxBlocks < 0 {
		return fmt.Errorf("arena.max_blocks %d is negative: %w", c.Arena.MaxBlocks, ErrInvalid)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Bench.Iterations < 1 {
		return fmt.Errorf("bench.iterations %d must be positive: %w", c.Bench.Iterations, ErrInvalid)
	}
	if c.Bench.Dim < 1 {
		return fmt.Errorf("bench.dim %d must be positive: %w", c.Bench.Dim, ErrInvalid)
	}
	if c.Bench.Workers < 0 {
		return fmt.Errorf("bench.workers %d is negative: %w", c.Bench.Workers, ErrInvalid)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", s, ErrInvalid)
	}
	return l, nil
}

// Logger builds a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// StackOptions returns the autodiff options matching the arena settings.
func (c Config) StackOptions(logger *slog.Logger) []autodiff.Option {
	opts := []autodiff.Option{
		autodiff.WithBlockShift(c.Arena.BlockShift),
		autodiff.WithMaxBlocks(c.Arena.MaxBlocks),
	}
	if logger != nil {
		opts = append(opts, autodiff.WithLogger(logger))
	}
	return opts
}

// Parallel returns the worker configuration for batch evaluation.
func (c Config) Parallel() parallel.Config {
	p := parallel.DefaultConfig()
	p.Enabled = c.Bench.Parallel
	if c.Bench.Workers > 0 {
		p.NumWorkers = c.Bench.Workers
	}
	return p
}
