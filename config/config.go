package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/smartgrid/core/metrics"
	"github.com/kilianp07/smartgrid/infra/mqtt"
)

type Config struct {
	Grid     GridConfig     `json:"grid"`
	Data     DataConfig     `json:"data"`
	Pipeline PipelineConfig `json:"pipeline"`
	Metrics  metrics.Config `json:"metrics"`
	MQTT     mqtt.Config    `json:"mqtt"`
	Logging  LoggingConfig  `json:"logging"`
	Output   OutputConfig   `json:"output"`
	API      APIConfig      `json:"api"`
}

type section interface {
	SetDefaults()
	Validate() error
}

func (c *Config) sections() map[string]section {
	return map[string]section{
		"grid":     &c.Grid,
		"data":     &c.Data,
		"pipeline": &c.Pipeline,
		"logging":  &c.Logging,
		"output":   &c.Output,
		"api":      &c.API,
	}
}

// Default returns a configuration with every section defaulted. Data paths
// still have to be provided.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	for _, s := range c.sections() {
		s.SetDefaults()
	}
}

// Validate checks every section and names the failing one.
func (c *Config) Validate() error {
	for _, name := range []string{"grid", "data", "pipeline", "logging", "output", "api"} {
		if err := c.sections()[name].Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Load reads path, applies K_ environment overrides and defaults, then
// validates the result.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation, for callers that complete the
// configuration from other sources first.
func Read(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	return &cfg, nil
}
