// Package events defines the progress events emitted while a pipeline runs.
//
// Available event kinds:
//   - KindStageStarted: an algorithm stage begins
//   - KindImprovement: a stage found a better assignment
//   - KindStageFinished: a stage returned its assignment
package events
