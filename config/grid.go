package config

import (
	"fmt"

	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/infra/dataset"
)

// GridConfig holds the prices of a district.
type GridConfig struct {
	BatteryCost float64 `json:"battery_cost"`
	CablePrice  float64 `json:"cable_price"`
}

// SetDefaults applies the district prices.
func (c *GridConfig) SetDefaults() {
	if c.BatteryCost == 0 {
		c.BatteryCost = model.DefaultBatteryCost
	}
	if c.CablePrice == 0 {
		c.CablePrice = model.DefaultCablePrice
	}
}

// Validate rejects negative prices.
func (c GridConfig) Validate() error {
	if c.BatteryCost < 0 {
		return fmt.Errorf("battery_cost must not be negative")
	}
	if c.CablePrice < 0 {
		return fmt.Errorf("cable_price must not be negative")
	}
	return nil
}

// DatasetOptions converts the prices for the dataset loader.
func (c GridConfig) DatasetOptions() dataset.Options {
	return dataset.Options{BatteryCost: c.BatteryCost, CablePrice: c.CablePrice}
}

// DataConfig locates the district files. Either both explicit paths or a
// directory laid out as district_<n>/district-<n>_{batteries,houses}.csv.
type DataConfig struct {
	Dir       string `json:"dir"`
	District  int    `json:"district"`
	Batteries string `json:"batteries"`
	Houses    string `json:"houses"`
	// Start optionally names a saved connection list to start from.
	Start string `json:"start"`
}

// SetDefaults derives missing paths from Dir and District.
func (c *DataConfig) SetDefaults() {
	if c.District == 0 {
		c.District = 1
	}
	if c.Dir == "" {
		return
	}
	b, h := dataset.DistrictPaths(c.Dir, c.District)
	if c.Batteries == "" {
		c.Batteries = b
	}
	if c.Houses == "" {
		c.Houses = h
	}
}

// Validate checks that both files are known.
func (c DataConfig) Validate() error {
	if c.District < 0 {
		return fmt.Errorf("district must be positive")
	}
	if c.Batteries == "" || c.Houses == "" {
		return fmt.Errorf("batteries and houses files are required")
	}
	return nil
}

// Name labels the district in metrics and logs.
func (c DataConfig) Name() string { return fmt.Sprintf("district-%d", c.District) }
