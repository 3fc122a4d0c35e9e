package runlog

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/smartgrid/core/model"
)

func sampleRecords(base time.Time) []Record {
	return []Record{
		{Timestamp: base, RunID: "a", Stages: []string{"kmeans", "depth-first"}, Router: "shared", Valid: true,
			Assignment: model.Assignment{0: {1, 2}}},
		{Timestamp: base.Add(time.Hour), RunID: "b", Stages: []string{"randomize"}, Router: "unique"},
		{Timestamp: base.Add(2 * time.Hour), RunID: "c", Stages: []string{"nearest-free", "group-swap"}, Router: "shared", Valid: true},
	}
}

func TestRecordJSONKeys(t *testing.T) {
	data, err := json.Marshal(Record{Timestamp: time.Unix(0, 0), RunID: "x"})
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, k := range []string{"timestamp", "run_id", "stages", "router", "costs", "valid", "assignment"} {
		assert.Contains(t, m, k)
	}
}

func TestJSONLStoreQuery(t *testing.T) {
	ctx := context.Background()
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, r := range sampleRecords(base) {
		require.NoError(t, store.Append(ctx, r))
	}

	cases := []struct {
		name string
		q    Query
		want []string
	}{
		{"all", Query{}, []string{"a", "b", "c"}},
		{"by run", Query{RunID: "b"}, []string{"b"}},
		{"valid only", Query{ValidOnly: true}, []string{"a", "c"}},
		{"by stage", Query{Algorithm: "group-swap"}, []string{"c"}},
		{"by router", Query{Algorithm: "shared"}, []string{"a", "c"}},
		{"window", Query{Start: base.Add(30 * time.Minute), End: base.Add(90 * time.Minute)}, []string{"b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := store.Query(ctx, tc.q)
			require.NoError(t, err)
			var ids []string
			for _, r := range out {
				ids = append(ids, r.RunID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}

	out, err := store.Query(ctx, Query{RunID: "a"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []int{1, 2}, out[0].Assignment[0])
}

func TestRotatingJSONLStoreReadsBackups(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "logs", "runs.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 3, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	recs := sampleRecords(time.Now())
	require.NoError(t, store.Append(ctx, recs[0]))
	require.NoError(t, store.logger.Rotate())
	require.NoError(t, store.Append(ctx, recs[1]))

	files, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	out, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].RunID)
	assert.Equal(t, "b", out[1].RunID)
}

func TestOpen(t *testing.T) {
	s, err := Open(Options{})
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, s)

	s, err = Open(Options{Backend: "jsonl", Path: filepath.Join(t.TempDir(), "r.jsonl")})
	require.NoError(t, err)
	assert.IsType(t, &JSONLStore{}, s)

	_, err = Open(Options{Backend: "sqlite"})
	assert.Error(t, err)
}

func TestAppendHonoursCancellation(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "r.jsonl"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Append(ctx, Record{}), context.Canceled)
}
