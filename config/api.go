package config

import "errors"

// APIConfig configures the run log HTTP server started by `serve`.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on /api/runs.
	Token string `json:"token"`
	// Metrics exposes the Prometheus registry under /metrics.
	Metrics bool `json:"metrics"`
}

func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

func (c APIConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	return nil
}
