package metrics_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/smartgrid/core/factory"
	metrics "github.com/kilianp07/smartgrid/core/metrics"
	_ "github.com/kilianp07/smartgrid/infra/metrics"
)

func TestSinkTypes(t *testing.T) {
	assert.Subset(t, metrics.SinkTypes(), []string{"influx", "nop", "prometheus"})
}

func TestNewMetricsSink(t *testing.T) {
	cases := []struct {
		name    string
		cfgs    []factory.ModuleConfig
		want    any
		wantErr bool
	}{
		{"no config", nil, metrics.NopSink{}, false},
		{"single nop", []factory.ModuleConfig{{Type: "nop"}}, metrics.NopSink{}, false},
		{"two sinks", []factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}}, &metrics.MultiSink{}, false},
		{"blank entries skipped", []factory.ModuleConfig{{}, {Type: "nop"}}, metrics.NopSink{}, false},
		{"unknown", []factory.ModuleConfig{{Type: "missing"}}, nil, true},
		{"unknown among several", []factory.ModuleConfig{{Type: "nop"}, {Type: "missing"}}, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := metrics.NewMetricsSink(tc.cfgs)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tc.want, s)
		})
	}
}

func TestMetricsConfigDecode(t *testing.T) {
	var fromYAML metrics.Config
	require.NoError(t, yaml.Unmarshal([]byte("sinks:\n  - type: nop\n  - type: nop\n"), &fromYAML))
	s, err := metrics.NewMetricsSink(fromYAML.Sinks)
	require.NoError(t, err)
	m, ok := s.(*metrics.MultiSink)
	require.True(t, ok)
	assert.Len(t, m.Sinks, 2)

	var fromJSON metrics.Config
	require.NoError(t, json.Unmarshal([]byte(`{"sinks":[{"type":"missing"}],"prometheus_addr":":2112"}`), &fromJSON))
	assert.Equal(t, ":2112", fromJSON.PrometheusAddr)
	_, err = metrics.NewMetricsSink(fromJSON.Sinks)
	assert.Error(t, err)
}
