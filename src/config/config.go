// Package config holds the runtime settings of the triangle renderer. The
// settings are read from an optional TOML or YAML file; every field has a
// default.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "VKTRI_CONFIG"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`

	// ShaderDir is the directory the shader blobs are read from.
	ShaderDir      string `toml:"shader_dir" yaml:"shader_dir"`
	VertexShader   string `toml:"vertex_shader" yaml:"vertex_shader"`
	FragmentShader string `toml:"fragment_shader" yaml:"fragment_shader"`

	// Debug turns on the validation layer in builds with the debug tag.
	Debug      bool       `toml:"debug" yaml:"debug"`
	LogLevel   string     `toml:"log_level" yaml:"log_level"`
	ClearColor [4]float32 `toml:"clear_color" yaml:"clear_color"`
}

func Default() Config {
	return Config{
		Title:          "vulkan",
		Width:          1280,
		Height:         720,
		ShaderDir:      ".",
		VertexShader:   "vs.spv",
		FragmentShader: "ps.spv",
		Debug:          true,
		LogLevel:       "info",
		ClearColor:     [4]float32{0, 1, 1, 1},
	}
}

// Load reads TOML from r over the defaults. Keys that do not name a field
// are an error.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return cfg, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, cfg.Validate()
}

// LoadYAML is Load for YAML input. An empty document yields the defaults.
func LoadYAML(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, cfg.Validate()
}

// LoadFile reads the config file at path. Files ending in .yaml or .yml
// are YAML, anything else is TOML.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Default(), err
	}
	defer f.Close()
	load := Load
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		load = LoadYAML
	}
	cfg, err := load(f)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv loads the file named by VKTRI_CONFIG, or returns the defaults
// when the variable is unset.
func FromEnv() (Config, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Width, c.Height))
	}
	if c.VertexShader == "" {
		errs = append(errs, fmt.Errorf("%w: vertex_shader is empty", ErrInvalid))
	}
	if c.FragmentShader == "" {
		errs = append(errs, fmt.Errorf("%w: fragment_shader is empty", ErrInvalid))
	}
	for i, v := range c.ClearColor {
		if math32.IsNaN(v) || math32.IsInf(v, 0) || v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%w: clear_color[%d] = %g is outside [0, 1]", ErrInvalid, i, v))
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level is the parsed LogLevel. An invalid level falls back to info.
func (c Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel accepts debug, info, warn and error in any case. An empty
// string means info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalid, s)
	}
	return lvl, nil
}
