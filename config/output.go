package config

import (
	"fmt"
	"slices"

	"github.com/kilianp07/smartgrid/pkg/export"
)

// OutputConfig selects where and how the result is written. An empty Path
// writes to standard output.
type OutputConfig struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

func (c *OutputConfig) SetDefaults() {
	if c.Format == "" {
		c.Format = export.FormatJSON
	}
}

func (c OutputConfig) Validate() error {
	if !slices.Contains(export.Formats(), c.Format) {
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
