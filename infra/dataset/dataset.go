// Package dataset reads district files: one CSV of batteries
// (positie,capaciteit), one CSV of houses (x,y,maxoutput) and optionally a
// saved connection list ("battery id",houses).
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/smartgrid/core/model"
)

var (
	ErrMissingColumn = errors.New("dataset: missing column")
	ErrEmptyFile     = errors.New("dataset: no header row")
	ErrDuplicateRow  = errors.New("dataset: battery listed twice")
)

// Options tune how a district is turned into a Grid.
type Options struct {
	BatteryCost float64
	CablePrice  float64
}

// DefaultOptions returns the district prices.
func DefaultOptions() Options {
	return Options{BatteryCost: model.DefaultBatteryCost, CablePrice: model.DefaultCablePrice}
}

// DistrictPaths returns the conventional file locations of district n below
// dir: district_<n>/district-<n>_batteries.csv and ..._houses.csv.
func DistrictPaths(dir string, n int) (batteries, houses string) {
	base := filepath.Join(dir, fmt.Sprintf("district_%d", n), fmt.Sprintf("district-%d", n))
	return base + "_batteries.csv", base + "_houses.csv"
}

// table is a CSV body indexed by header name.
type table struct {
	cols map[string]int
	rows [][]string
}

func readTable(r io.Reader, required ...string) (table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return table{}, err
	}
	if len(records) == 0 {
		return table{}, ErrEmptyFile
	}
	t := table{cols: make(map[string]int, len(records[0])), rows: records[1:]}
	for i, name := range records[0] {
		t.cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := t.cols[name]; !ok {
			return table{}, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}
	return t, nil
}

func (t table) field(row []string, name string) string {
	i := t.cols[name]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t table) float(row []string, name string) (float64, error) {
	v, err := strconv.ParseFloat(t.field(row, name), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func (t table) integer(row []string, name string) (int, error) {
	v, err := strconv.Atoi(t.field(row, name))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// LoadBatteries parses a battery file. Ids follow row order starting at 0 and
// every battery costs cost.
func LoadBatteries(r io.Reader, cost float64) ([]model.Battery, error) {
	t, err := readTable(r, "positie", "capaciteit")
	if err != nil {
		return nil, fmt.Errorf("batteries: %w", err)
	}
	out := make([]model.Battery, 0, len(t.rows))
	for i, row := range t.rows {
		loc, err := model.ParsePoint(t.field(row, "positie"))
		if err != nil {
			return nil, fmt.Errorf("batteries line %d: %w", i+2, err)
		}
		capacity, err := t.float(row, "capaciteit")
		if err != nil {
			return nil, fmt.Errorf("batteries line %d: %w", i+2, err)
		}
		out = append(out, model.Battery{ID: i, Location: loc, Capacity: capacity, Cost: cost})
	}
	return out, nil
}

// LoadHouses parses a house file. Ids follow row order starting at 0.
func LoadHouses(r io.Reader) ([]model.House, error) {
	t, err := readTable(r, "x", "y", "maxoutput")
	if err != nil {
		return nil, fmt.Errorf("houses: %w", err)
	}
	out := make([]model.House, 0, len(t.rows))
	for i, row := range t.rows {
		x, err := t.integer(row, "x")
		if err != nil {
			return nil, fmt.Errorf("houses line %d: %w", i+2, err)
		}
		y, err := t.integer(row, "y")
		if err != nil {
			return nil, fmt.Errorf("houses line %d: %w", i+2, err)
		}
		output, err := t.float(row, "maxoutput")
		if err != nil {
			return nil, fmt.Errorf("houses line %d: %w", i+2, err)
		}
		out = append(out, model.House{ID: i, Location: model.Point{X: x, Y: y}, Output: output})
	}
	return out, nil
}

// LoadConnections parses a saved assignment: one row per battery with its
// house ids separated by commas.
func LoadConnections(r io.Reader) (model.Assignment, error) {
	t, err := readTable(r, "battery id", "houses")
	if err != nil {
		return nil, fmt.Errorf("connections: %w", err)
	}
	a := make(model.Assignment, len(t.rows))
	for i, row := range t.rows {
		bID, err := t.integer(row, "battery id")
		if err != nil {
			return nil, fmt.Errorf("connections line %d: %w", i+2, err)
		}
		if _, dup := a[bID]; dup {
			return nil, fmt.Errorf("connections line %d: battery %d: %w", i+2, bID, ErrDuplicateRow)
		}
		a[bID] = []int{}
		for _, f := range strings.Split(t.field(row, "houses"), ",") {
			f = strings.TrimSpace(f)
			if f == "" {
				continue
			}
			hID, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("connections line %d: house %q: %w", i+2, f, err)
			}
			a.Add(bID, hID)
		}
	}
	return a, nil
}

// LoadGrid reads both district files and builds the Grid.
func LoadGrid(batteriesPath, housesPath string, opts Options) (*model.Grid, error) {
	bf, err := os.Open(batteriesPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = bf.Close() }()
	batteries, err := LoadBatteries(bf, opts.BatteryCost)
	if err != nil {
		return nil, err
	}

	hf, err := os.Open(housesPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = hf.Close() }()
	houses, err := LoadHouses(hf)
	if err != nil {
		return nil, err
	}
	return model.NewGrid(batteries, houses, model.GridOptions{CablePrice: opts.CablePrice})
}

// LoadConnectionsFile opens path and parses it with LoadConnections.
func LoadConnectionsFile(path string) (model.Assignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadConnections(f)
}
