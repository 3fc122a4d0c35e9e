package runs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/smartgrid/core/runlog"
)

func seededStore(t *testing.T) runlog.Store {
	t.Helper()
	store, err := runlog.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, rec := range []runlog.Record{
		{RunID: "a", Stages: []string{"kmeans", "depth-first"}, Router: "shared", Valid: true},
		{RunID: "b", Stages: []string{"randomize"}, Router: "unique", Valid: false},
		{RunID: "c", Stages: []string{"nearest-free", "simple-swap"}, Router: "shared", Valid: true},
	} {
		rec.Timestamp = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Append(context.Background(), rec))
	}
	return store
}

func get(t *testing.T, h http.Handler, url, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandlerFilters(t *testing.T) {
	h := NewHandler(seededStore(t), "tok")
	cases := []struct {
		name string
		url  string
		want []string
	}{
		{"all", "/api/runs", []string{"a", "b", "c"}},
		{"by id", "/api/runs?run_id=b", []string{"b"}},
		{"by stage", "/api/runs?algorithm=simple-swap", []string{"c"}},
		{"by router", "/api/runs?algorithm=shared", []string{"a", "c"}},
		{"valid only", "/api/runs?valid=true", []string{"a", "c"}},
		{"window", "/api/runs?start=2024-03-01T12:30:00Z&end=2024-03-01T13:30:00Z", []string{"b"}},
		{"nothing", "/api/runs?run_id=zzz", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := get(t, h, tc.url, "tok")
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			var out []runlog.Record
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
			ids := []string{}
			for _, r := range out {
				ids = append(ids, r.RunID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestHandlerRejects(t *testing.T) {
	h := NewHandler(seededStore(t), "tok")

	assert.Equal(t, http.StatusUnauthorized, get(t, h, "/api/runs", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(t, h, "/api/runs", "other").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/runs?start=yesterday", "tok").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/runs?valid=maybe", "tok").Code)

	req := httptest.NewRequest(http.MethodPost, "/api/runs", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestMuxRoutes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "smartgrid_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()
	mux := NewMux(seededStore(t), "", reg)

	assert.Equal(t, http.StatusOK, get(t, mux, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, get(t, mux, "/api/runs", "").Code)
	rr := get(t, mux, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "smartgrid_test_total 1")

	assert.Equal(t, http.StatusNotFound, get(t, NewMux(runlog.NopStore{}, "", nil), "/metrics", "").Code)
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", NewMux(runlog.NopStore{}, "", nil), nil) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
