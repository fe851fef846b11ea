package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads options from a TOML or YAML rc file, selected by extension
// (.toml, .yaml, .yml). A missing file is not an error: defaults come
// back unchanged.
func Load(path string) (Options, error) {
	opts := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := unmarshal(path, data, &opts); err != nil {
		return Default(), err
	}
	return opts, nil
}

// unmarshal decodes by file extension.
func unmarshal(path string, data []byte, opts *Options) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, opts); err != nil {
			return &ParseError{Path: path, Err: err}
		}
	default:
		if err := toml.Unmarshal(data, opts); err != nil {
			return &ParseError{Path: path, Err: err}
		}
	}
	return nil
}

// ParseError reports a malformed rc file.
type ParseError struct {
	// Path is the offending file.
	Path string

	// Err is the decoder failure.
	Err error
}

// Error returns the parse diagnostic.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing config file %s: %v", e.Path, e.Err)
}

// Unwrap returns the decoder failure.
func (e *ParseError) Unwrap() error { return e.Err }
