package mqtt

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/smartgrid/core/events"
	coremqtt "github.com/kilianp07/smartgrid/core/mqtt"
)

// MockPublisher records everything it is asked to publish.
type MockPublisher struct {
	Results  []coremqtt.ResultMessage
	Progress []events.Event
	// Fail makes every publish return an error.
	Fail bool
	mu   sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher { return &MockPublisher{} }

// PublishResult records msg or fails when configured to.
func (m *MockPublisher) PublishResult(_ context.Context, msg coremqtt.ResultMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Results = append(m.Results, msg)
	return nil
}

// PublishProgress records e or fails when configured to.
func (m *MockPublisher) PublishProgress(_ context.Context, e events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Progress = append(m.Progress, e)
	return nil
}

// ProgressCount returns the number of recorded progress events.
func (m *MockPublisher) ProgressCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Progress)
}
