package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "TOUCHEMU_"

// Format is a config file format.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatOf returns the format for a file path by extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load builds a configuration from the defaults, the file at path (may be
// empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadEnv(NewEnvLoader(EnvPrefix)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes the file at path over c. Unknown keys are errors.
func (c *Config) LoadFile(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := c.Decode(path, format, bytes.NewReader(data)); err != nil {
		return err
	}
	c.Source = path
	return nil
}

// Decode reads a document in the given format over c. source names the
// document in errors.
func (c *Config) Decode(source string, format Format, r io.Reader) error {
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(r).DisallowUnknownFields()
		if err := dec.Decode(c); err != nil {
			return tomlParseError(source, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return yamlParseError(source, err)
		}
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	return nil
}

// LoadEnv applies environment overrides over c.
func (c *Config) LoadEnv(l *EnvLoader) error {
	values, err := l.Load()
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	// The environment is a partial document: round-trip it through TOML
	// so it decodes with the same rules as a file.
	data, err := toml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding environment overrides: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return tomlParseError("environment", err)
	}
	return nil
}

// Encode writes c in the given format.
func (c *Config) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(c)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

func tomlParseError(source string, err error) error {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	var derr *toml.DecodeError
	var serr *toml.StrictMissingError
	switch {
	case errors.As(err, &derr):
		pe.Line, pe.Column = derr.Position()
	case errors.As(err, &serr) && len(serr.Errors) > 0:
		pe.Line, pe.Column = serr.Errors[0].Position()
		pe.Message = "unknown key " + strings.Join(serr.Errors[0].Key(), ".")
	}
	return pe
}

func yamlParseError(source string, err error) error {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	var terr *yaml.TypeError
	if errors.As(err, &terr) && len(terr.Errors) > 0 {
		pe.Message = terr.Errors[0]
		var line int
		if _, scanErr := fmt.Sscanf(terr.Errors[0], "line %d:", &line); scanErr == nil {
			pe.Line = line
		}
	}
	return pe
}
