// Package bounds brackets the achievable total cost of a district.
package bounds

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/smartgrid/core/model"
)

// ErrInfeasible is returned when the batteries cannot hold the total output
// even fractionally.
var ErrInfeasible = errors.New("bounds: capacity relaxation is infeasible")

const simplexTol = 1e-9

// Report lists the bounds of a district.
type Report struct {
	// Nearest prices every house on its closest battery, ignoring capacity.
	Nearest float64 `json:"nearest"`
	// Furthest prices every house on its most distant battery.
	Furthest float64 `json:"furthest"`
	// Relaxation is the LP relaxation of the capacitated assignment. It is
	// never below Nearest.
	Relaxation float64 `json:"relaxation"`
}

// Compute returns all bounds of g.
func Compute(g *model.Grid) (Report, error) {
	lpBound, err := LPRelaxation(g)
	if err != nil {
		return Report{}, err
	}
	var near, far int
	for _, h := range g.Houses() {
		lo, hi := -1, -1
		for _, b := range g.Batteries() {
			d := model.Manhattan(h.Location, b.Location)
			if lo < 0 || d < lo {
				lo = d
			}
			if d > hi {
				hi = d
			}
		}
		near += lo
		far += hi
	}
	fixed := g.CostBreakdown(g.EmptyAssignment()).Batteries
	return Report{
		Nearest:    fixed + g.CablePrice()*float64(near),
		Furthest:   fixed + g.CablePrice()*float64(far),
		Relaxation: lpBound,
	}, nil
}

// LPRelaxation solves the assignment with fractional house splits allowed.
// Variables are x[i][j], the share of house i on battery j, followed by one
// capacity slack per battery:
//
//	min  Σ dist(i,j)·x[i][j]
//	s.t. Σ_j x[i][j] = 1                      for every house i
//	     Σ_i out(i)·x[i][j] + s[j] = cap(j)   for every battery j
//	     x, s ≥ 0
//
// The result is priced like Grid.TotalCost and is a lower bound for every
// valid assignment.
func LPRelaxation(g *model.Grid) (float64, error) {
	houses, batteries := g.Houses(), g.Batteries()
	n, m := len(houses), len(batteries)
	vars := n*m + m
	rows := n + m

	c := make([]float64, vars)
	A := mat.NewDense(rows, vars, nil)
	b := make([]float64, rows)
	for i, h := range houses {
		for j, bat := range batteries {
			col := i*m + j
			c[col] = float64(model.Manhattan(h.Location, bat.Location))
			A.Set(i, col, 1)
			A.Set(n+j, col, h.Output)
		}
		b[i] = 1
	}
	for j, bat := range batteries {
		A.Set(n+j, n*m+j, 1)
		b[n+j] = bat.Capacity
	}

	opt, _, err := lp.Simplex(c, A, b, simplexTol, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return 0, fmt.Errorf("%w: %v", ErrInfeasible, err)
		}
		return 0, fmt.Errorf("bounds: simplex: %w", err)
	}
	fixed := g.CostBreakdown(g.EmptyAssignment()).Batteries
	return fixed + g.CablePrice()*opt, nil
}
