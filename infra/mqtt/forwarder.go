package mqtt

import (
	"context"

	"github.com/kilianp07/smartgrid/core/events"
	coremqtt "github.com/kilianp07/smartgrid/core/mqtt"
	"github.com/kilianp07/smartgrid/infra/logger"
	"github.com/kilianp07/smartgrid/internal/eventbus"
)

// StartProgressForwarder publishes the stage and improvement events of the
// bus until ctx is cancelled or the bus is closed. The returned channel is
// closed once the forwarder exits.
func StartProgressForwarder(ctx context.Context, bus *eventbus.TypedBus[events.Event], pub coremqtt.Publisher) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
		close(done)
		return done
	}
	log := logger.New("mqtt_forwarder")
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
				if err := pub.PublishProgress(ctx, ev); err != nil {
					log.Warnf("publish progress of run %s: %v", ev.RunID, err)
				}
			}
		}
	}()
	return done
}
