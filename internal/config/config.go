// Package config loads quillc project settings from quill.yaml or
// quill.cue. Both formats are checked against the same CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// FileNames lists the names Discover looks for, in order.
var FileNames = []string{"quill.yaml", "quill.yml", "quill.cue"}

// Config holds project settings. Command-line flags override them.
type Config struct {
	// Target is the backend name, see backend.Names.
	Target string `yaml:"target" json:"target"`
	// Prelude controls whether the runtime prelude is prepended to output.
	Prelude bool `yaml:"prelude" json:"prelude"`
	// Cache is the path of the build cache database. Empty disables it.
	Cache string `yaml:"cache" json:"cache"`
	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose" json:"verbose"`
	Lint    Lint `yaml:"lint" json:"lint"`
}

// Lint holds linter settings.
type Lint struct {
	Disable []string `yaml:"disable" json:"disable"`
}

// Default returns the settings used when no config file is present.
func Default() *Config {
	return &Config{
		Target:  "js",
		Prelude: true,
		Lint:    Lint{Disable: []string{}},
	}
}

// Load reads the config file at path. An empty path yields Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		return loadYAML(path, data)
	case ".cue":
		return loadCUE(path, data)
	default:
		return nil, fmt.Errorf("unsupported config format %q: %s", ext, path)
	}
}

// Discover returns the first config file found in dir, or "" if there is
// none.
func Discover(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}

func loadYAML(path string, data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
	}
	if cfg.Lint.Disable == nil {
		cfg.Lint.Disable = []string{}
	}

	ctx := cuecontext.New()
	def, err := schema(ctx)
	if err != nil {
		return nil, err
	}
	v := def.Unify(ctx.Encode(cfg))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", path, err)
	}
	return cfg, nil
}

func loadCUE(path string, data []byte) (*Config, error) {
	ctx := cuecontext.New()
	def, err := schema(ctx)
	if err != nil {
		return nil, err
	}
	file := ctx.CompileBytes(data, cue.Filename(path))
	if err := file.Err(); err != nil {
		return nil, fmt.Errorf("%s: failed to parse CUE: %w", path, err)
	}
	v := def.Unify(file)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Lint.Disable == nil {
		cfg.Lint.Disable = []string{}
	}
	return cfg, nil
}

func schema(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("config schema: %w", err)
	}
	return v.LookupPath(cue.ParsePath("#Config")), nil
}
