package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordSink struct {
	runs         int
	improvements int
	err          error
}

func (r *recordSink) RecordRun(RunRecord) error {
	r.runs++
	return r.err
}

func (r *recordSink) RecordImprovement(ImprovementRecord) error {
	r.improvements++
	return nil
}

type runOnly struct{ runs int }

func (r *runOnly) RecordRun(RunRecord) error { r.runs++; return nil }

func TestMultiSink(t *testing.T) {
	s1, s2, s3 := &recordSink{}, &recordSink{}, &runOnly{}
	m := NewMultiSink(s1, s2, s3)
	assert.NoError(t, m.RecordRun(RunRecord{RunID: "r"}))
	assert.NoError(t, m.RecordImprovement(ImprovementRecord{RunID: "r"}))
	assert.Equal(t, 1, s1.runs)
	assert.Equal(t, 1, s2.improvements)
	assert.Equal(t, 1, s3.runs)
}

func TestMultiSinkStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	s1, s2 := &recordSink{err: boom}, &recordSink{}
	err := NewMultiSink(s1, s2).RecordRun(RunRecord{})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, s2.runs)
}
