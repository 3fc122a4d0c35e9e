// Package export writes pipeline results: the district JSON document, a flat
// CSV of connections and the connection list read back by the dataset
// loader.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/pipeline"
)

// Supported formats.
const (
	FormatJSON        = "json"
	FormatCSV         = "csv"
	FormatConnections = "connections"
)

// Formats lists every supported output format.
func Formats() []string { return []string{FormatJSON, FormatCSV, FormatConnections} }

// DistrictInfo heads the JSON document. Exactly one of the cost fields is set
// depending on whether the cables are shared.
type DistrictInfo struct {
	District    int      `json:"district"`
	SharedCosts *float64 `json:"shared-costs,omitempty"`
	OwnCosts    *float64 `json:"own-costs,omitempty"`
}

// BatteryDoc is one battery entry of the JSON document.
type BatteryDoc struct {
	Location string     `json:"location"`
	Capacity float64    `json:"capacity"`
	Houses   []HouseDoc `json:"houses"`
}

// HouseDoc is a connected house with the cells of its cable.
type HouseDoc struct {
	Location string   `json:"location"`
	Output   float64  `json:"output"`
	Cables   []string `json:"cables"`
}

// Document builds the JSON document: the district info followed by one entry
// per battery in id order.
func Document(g *model.Grid, res pipeline.Result) []any {
	total := res.TotalCost()
	info := DistrictInfo{District: res.District}
	if res.Network.Shared {
		info.SharedCosts = &total
	} else {
		info.OwnCosts = &total
	}
	doc := []any{info}

	cables := res.CablesPerHouse()
	for _, b := range g.Batteries() {
		bd := BatteryDoc{Location: b.Location.String(), Capacity: b.Capacity, Houses: []HouseDoc{}}
		for _, hID := range res.Houses(b.ID) {
			h, ok := g.House(hID)
			if !ok {
				continue
			}
			hd := HouseDoc{Location: h.Location.String(), Output: h.Output, Cables: []string{}}
			for _, p := range cables[hID].Path {
				hd.Cables = append(hd.Cables, p.String())
			}
			bd.Houses = append(bd.Houses, hd)
		}
		doc = append(doc, bd)
	}
	return doc
}

// WriteJSON writes the district document to w.
func WriteJSON(w io.Writer, g *model.Grid, res pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document(g, res))
}

// WriteCSV writes one battery_id,house_id,length row per routed cable.
func WriteCSV(w io.Writer, res pipeline.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"battery_id", "house_id", "length"}); err != nil {
		return err
	}
	for _, c := range res.Network.Cables {
		rec := []string{
			strconv.Itoa(c.BatteryID),
			strconv.Itoa(c.HouseID),
			strconv.Itoa(c.Length()),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteConnections writes a "battery id",houses row per battery, the layout
// dataset.LoadConnections reads.
func WriteConnections(w io.Writer, a model.Assignment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"battery id", "houses"}); err != nil {
		return err
	}
	for _, bID := range a.BatteryIDs() {
		ids := make([]string, len(a[bID]))
		for i, h := range a[bID] {
			ids[i] = strconv.Itoa(h)
		}
		if err := cw.Write([]string{strconv.Itoa(bID), strings.Join(ids, ", ")}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write encodes res to w in format.
func Write(w io.Writer, format string, g *model.Grid, res pipeline.Result) error {
	switch format {
	case "", FormatJSON:
		return WriteJSON(w, g, res)
	case FormatCSV:
		return WriteCSV(w, res)
	case FormatConnections:
		return WriteConnections(w, res.Assignment)
	default:
		return fmt.Errorf("export: unknown format %q", format)
	}
}

// WriteFile writes res to path, replacing any existing file.
func WriteFile(path, format string, g *model.Grid, res pipeline.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, format, g, res)
}
