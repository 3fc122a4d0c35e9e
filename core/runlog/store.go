package runlog

import (
	"context"
	"time"

	"github.com/kilianp07/smartgrid/core/model"
)

// Record captures one pipeline run and its outcome.
type Record struct {
	Timestamp   time.Time        `json:"timestamp"`
	RunID       string           `json:"run_id"`
	Dataset     string           `json:"dataset"`
	Stages      []string         `json:"stages"`
	Router      string           `json:"router"`
	Seed        int64            `json:"seed"`
	Costs       model.Costs      `json:"costs"`
	CableLength int              `json:"cable_length"`
	Valid       bool             `json:"valid"`
	Assignment  model.Assignment `json:"assignment"`
}

// Query defines filters for retrieving records. Zero fields match anything.
type Query struct {
	Start     time.Time
	End       time.Time
	RunID     string
	Algorithm string
	ValidOnly bool
}

func (q Query) match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.ValidOnly && !r.Valid {
		return false
	}
	if q.Algorithm != "" && r.Router != q.Algorithm {
		for _, s := range r.Stages {
			if s == q.Algorithm {
				return true
			}
		}
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards every record.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error        { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                  { return nil }
