// Package pipeline chains named algorithms into a run: one initial
// constructor, any number of optimizers and a router. Algorithms and routers
// are created from factory.ModuleConfig values through package registries so
// that new variants plug in without touching the runner.
package pipeline
