package mqtt

import (
	"context"

	"github.com/kilianp07/smartgrid/core/events"
)

// Publisher sends run results and progress to a broker.
type Publisher interface {
	// PublishResult sends the summary of a finished run.
	PublishResult(ctx context.Context, msg ResultMessage) error

	// PublishProgress sends one progress event of a running pipeline.
	PublishProgress(ctx context.Context, e events.Event) error
}
