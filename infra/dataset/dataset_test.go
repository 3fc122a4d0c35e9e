package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/smartgrid/core/model"
)

const batteriesCSV = `positie,capaciteit
"38,12",1507.0
"43,13",1508.25
`

const housesCSV = `x,y,maxoutput
33,7,39.45
30,12,80.58
`

func TestLoadBatteries(t *testing.T) {
	bs, err := LoadBatteries(strings.NewReader(batteriesCSV), 5000)
	require.NoError(t, err)
	require.Len(t, bs, 2)
	assert.Equal(t, model.Battery{ID: 0, Location: model.Point{X: 38, Y: 12}, Capacity: 1507, Cost: 5000}, bs[0])
	assert.Equal(t, 1, bs[1].ID)
	assert.Equal(t, 1508.25, bs[1].Capacity)
}

func TestLoadHouses(t *testing.T) {
	hs, err := LoadHouses(strings.NewReader(housesCSV))
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, model.House{ID: 1, Location: model.Point{X: 30, Y: 12}, Output: 80.58}, hs[1])
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name    string
		load    func(string) error
		in      string
		wantErr error
	}{
		{"empty batteries", batteries, "", ErrEmptyFile},
		{"missing capacity", batteries, "positie\n\"1,2\"\n", ErrMissingColumn},
		{"malformed point", batteries, "positie,capaciteit\n\"1;2\",10\n", model.ErrMalformedPoint},
		{"missing output", houses, "x,y\n1,2\n", ErrMissingColumn},
		{"bad x", houses, "x,y,maxoutput\na,2,3\n", nil},
		{"bad house id", connections, "battery id,houses\n0,\"1, x\"\n", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.load(tc.in)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func batteries(in string) error {
	_, err := LoadBatteries(strings.NewReader(in), 5000)
	return err
}

func houses(in string) error {
	_, err := LoadHouses(strings.NewReader(in))
	return err
}

func connections(in string) error {
	_, err := LoadConnections(strings.NewReader(in))
	return err
}

func TestLoadConnections(t *testing.T) {
	in := "battery id,houses\n0,\"3, 1, 2\"\n1,\"0\"\n2,\n"
	a, err := LoadConnections(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, model.Assignment{0: {3, 1, 2}, 1: {0}, 2: {}}, a)
}

func TestLoadConnectionsDuplicateBattery(t *testing.T) {
	in := "battery id,houses\n0,\"1,2\"\n1,\"4\"\n0,\"3\"\n"
	a, err := LoadConnections(strings.NewReader(in))
	require.ErrorIs(t, err, ErrDuplicateRow)
	assert.Contains(t, err.Error(), "line 4")
	assert.Nil(t, a)
}

func TestLoadGrid(t *testing.T) {
	dir := t.TempDir()
	bPath, hPath := DistrictPaths(dir, 1)
	assert.Equal(t, filepath.Join(dir, "district_1", "district-1_batteries.csv"), bPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(bPath), 0o755))
	require.NoError(t, os.WriteFile(bPath, []byte(batteriesCSV), 0o644))
	require.NoError(t, os.WriteFile(hPath, []byte(housesCSV), 0o644))

	g, err := LoadGrid(bPath, hPath, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, g.Batteries(), 2)
	assert.Len(t, g.Houses(), 2)
	assert.Equal(t, model.DefaultCablePrice, g.CablePrice())

	_, err = LoadGrid(filepath.Join(dir, "missing.csv"), hPath, DefaultOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
