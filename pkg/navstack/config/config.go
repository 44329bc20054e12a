// Package config loads container layouts and logging settings from TOML or YAML
// files and turns them into navstack container configurations.
//
// A layout file looks like this (TOML):
//
//	log_level = "info"
//
//	[[containers]]
//	id = "main"
//	accept = "kind != 'dialog'"
//	empty_behavior = "close_parent"
//
//	[[containers]]
//	id = "overlay"
//	accept = "kind == 'dialog'"
//	directions = ["present"]
//
// Accept expressions are CEL and see two variables: kind (the key's Kind) and
// key (the key's exported fields, as encoded to JSON).
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/BrandonKowalski/navstack/pkg/navstack"
)

// Format is a configuration file syntax.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// Empty behavior names accepted in ContainerSpec.EmptyBehavior.
const (
	EmptyAllow       = "allow_empty"
	EmptyCloseParent = "close_parent"
)

// Config is the top level of a layout file.
type Config struct {
	LogLevel         string          `toml:"log_level" yaml:"log_level"`
	InternalLogLevel string          `toml:"internal_log_level" yaml:"internal_log_level"`
	LogPath          string          `toml:"log_path" yaml:"log_path"`
	Containers       []ContainerSpec `toml:"containers" yaml:"containers"`
}

// ContainerSpec describes one container.
type ContainerSpec struct {
	ID            string   `toml:"id" yaml:"id"`
	Accept        string   `toml:"accept" yaml:"accept"`                 // CEL; empty accepts every key
	Directions    []string `toml:"directions" yaml:"directions"`         // Empty accepts every direction
	EmptyBehavior string   `toml:"empty_behavior" yaml:"empty_behavior"` // allow_empty (default) or close_parent
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("config: unsupported file extension %q", filepath.Ext(path))
}

// Load reads and validates a layout file.
func Load(path string) (*Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg, err := Decode(file, format)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads and validates a layout in the given format. Unknown keys are
// rejected.
func Decode(r io.Reader, format Format) (*Config, error) {
	var cfg Config

	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		decoder := yaml.NewDecoder(r)
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown format %d", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ids, directions, empty behaviors and accept expressions.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Containers))
	var errs []error

	for i, spec := range c.Containers {
		if spec.ID == "" {
			errs = append(errs, fmt.Errorf("containers[%d]: id is required", i))
			continue
		}
		if seen[spec.ID] {
			errs = append(errs, fmt.Errorf("containers[%d]: duplicate id %q", i, spec.ID))
		}
		seen[spec.ID] = true

		if _, err := Build(spec); err != nil {
			errs = append(errs, fmt.Errorf("containers[%d] %q: %w", i, spec.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Options returns the logging settings as navstack init options.
func (c *Config) Options() navstack.Options {
	return navstack.Options{
		LogPath:          c.LogPath,
		LogLevel:         c.LogLevel,
		InternalLogLevel: c.InternalLogLevel,
	}
}

// Container returns the ContainerSpec with the given id.
func (c *Config) Container(id string) (ContainerSpec, bool) {
	for _, spec := range c.Containers {
		if spec.ID == id {
			return spec, true
		}
	}
	return ContainerSpec{}, false
}
