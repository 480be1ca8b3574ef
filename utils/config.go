package utils

import (
	"fmt"
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v2"
)

const DefaultOverpassEndpoint = "https://overpass-api.de/api/interpreter"

// Config is the struct representing the configuration of a masking run. It
// contains the cache directory layout root, the OSM service endpoint and the
// rasterization options.
type Config struct {
	WorkDir                string  `yaml:"work_dir"`
	OverpassEndpoint       string  `yaml:"overpass_endpoint"`
	OverpassTimeoutSeconds int     `yaml:"overpass_timeout_seconds"`
	BufferPixels           float64 `yaml:"buffer_pixels"`
	AllTouched             bool    `yaml:"all_touched"`
	Plot                   bool    `yaml:"plot"`
}

func DefaultConfig() *Config {
	return &Config{
		WorkDir:                ".",
		OverpassEndpoint:       DefaultOverpassEndpoint,
		OverpassTimeoutSeconds: 180,
		BufferPixels:           1.0,
		AllTouched:             true,
	}
}

// LoadConfig reads a YAML config file, filling absent fields with defaults.
// An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	cfgData, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %v", path, err)
	}
	if err := yaml.Unmarshal(cfgData, config); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %v", path, err)
	}

	if config.WorkDir == "" {
		config.WorkDir = "."
	}
	if config.OverpassEndpoint == "" {
		config.OverpassEndpoint = DefaultOverpassEndpoint
	}
	if config.OverpassTimeoutSeconds <= 0 {
		config.OverpassTimeoutSeconds = 180
	}
	if config.BufferPixels < 0 {
		return nil, fmt.Errorf("buffer_pixels must not be negative: %v", config.BufferPixels)
	}
	return config, nil
}

func (c *Config) OverpassTimeout() time.Duration {
	return time.Duration(c.OverpassTimeoutSeconds) * time.Second
}
