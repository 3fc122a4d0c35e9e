package metrics

import (
	"context"

	"github.com/kilianp07/smartgrid/core/events"
	coremetrics "github.com/kilianp07/smartgrid/core/metrics"
	"github.com/kilianp07/smartgrid/infra/logger"
	"github.com/kilianp07/smartgrid/internal/eventbus"
)

// StartEventCollector subscribes to the progress bus and forwards
// improvements to sinks implementing ImprovementRecorder. It returns a
// channel closed once the collector has drained and exited, which happens
// when ctx is cancelled or the bus is closed.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.ImprovementRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	log := logger.New("event-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if ev.Kind != events.KindImprovement {
					continue
				}
				if err := rec.RecordImprovement(coremetrics.ImprovementRecord{
					RunID:     ev.RunID,
					Algorithm: ev.Algorithm,
					Iteration: ev.Iteration,
					Value:     ev.Value,
					Valid:     ev.Valid,
					Time:      ev.Time,
				}); err != nil {
					log.Warnf("record improvement: %v", err)
				}
			}
		}
	}()
	return done
}
