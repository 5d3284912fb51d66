package compiler

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"qzone/internal/placer"
)

// Config is the compiler configuration file.
//
//	placer:
//	  use_window: true
//	  window_size: 10
//	  dynamic_placement: true
//	  reverse_initial_placement: false
//	  atom_transfer_cost: 0.9999
type Config struct {
	Placer placer.Config `yaml:"placer"`
}

func DefaultConfig() Config {
	return Config{Placer: placer.DefaultConfig()}
}

// LoadConfig reads a YAML configuration. Fields missing from the input keep
// their default value.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Placer.Validate(); err != nil {
		return Config{}, errors.WithMessage(err, "placer")
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML configuration from path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "open config")
	}
	defer f.Close()
	return LoadConfig(f)
}
