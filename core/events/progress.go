package events

import "time"

// Kind identifies a progress event.
type Kind string

const (
	KindStageStarted  Kind = "stage_started"
	KindStageFinished Kind = "stage_finished"
	KindImprovement   Kind = "improvement"
)

// Event reports the progress of a pipeline run. Value carries the objective
// value of the incumbent for improvements and finished stages.
type Event struct {
	RunID     string    `json:"run_id"`
	Kind      Kind      `json:"kind"`
	Algorithm string    `json:"algorithm"`
	Iteration int       `json:"iteration"`
	Value     float64   `json:"value"`
	Valid     bool      `json:"valid"`
	Time      time.Time `json:"time"`
}

// Publisher receives progress events. Publishing must not block the caller.
type Publisher interface {
	Publish(Event)
}

// Emit stamps e and hands it to p. A nil publisher drops the event.
func Emit(p Publisher, e Event) {
	if p == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	p.Publish(e)
}

// Improvement builds an improvement event.
func Improvement(algorithm string, iteration int, value float64, valid bool) Event {
	return Event{Kind: KindImprovement, Algorithm: algorithm, Iteration: iteration, Value: value, Valid: valid}
}
