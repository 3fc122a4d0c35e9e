// Package routing lays cables for a finalized assignment, either one
// independent cable per house or a shared tree per battery.
package routing

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/rng"
)

// ErrPathLength is returned when a built path does not have exactly the
// Manhattan length between its endpoints.
var ErrPathLength = errors.New("routing: path length differs from manhattan distance")

// BuildPath returns the points of one shortest Manhattan path from from to
// to, both included. The order of horizontal and vertical steps is shuffled
// with r so cables do not all bend the same way.
func BuildPath(from, to model.Point, r *rand.Rand) []model.Point {
	dx, dy := to.X-from.X, to.Y-from.Y
	steps := make([]model.Point, 0, model.Manhattan(from, to))
	for i := 0; i < abs(dx); i++ {
		steps = append(steps, model.Point{X: sign(dx)})
	}
	for i := 0; i < abs(dy); i++ {
		steps = append(steps, model.Point{Y: sign(dy)})
	}
	if r == nil {
		r = rng.New(0)
	}
	r.Shuffle(len(steps), func(i, j int) { steps[i], steps[j] = steps[j], steps[i] })

	path := make([]model.Point, 0, len(steps)+1)
	cur := from
	path = append(path, cur)
	for _, s := range steps {
		cur = model.Point{X: cur.X + s.X, Y: cur.Y + s.Y}
		path = append(path, cur)
	}
	return path
}

// CheckPath verifies that path runs from from to to in exactly
// Manhattan(from, to) unit steps.
func CheckPath(path []model.Point, from, to model.Point) error {
	want := model.Manhattan(from, to)
	if len(path) != want+1 || path[0] != from || path[len(path)-1] != to {
		return fmt.Errorf("%w: %s to %s has %d points, want %d", ErrPathLength, from, to, len(path), want+1)
	}
	for i := 1; i < len(path); i++ {
		if model.Manhattan(path[i-1], path[i]) != 1 {
			return fmt.Errorf("%w: %s to %s is not contiguous", ErrPathLength, from, to)
		}
	}
	return nil
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
