package drainage

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/matzehuels/drainflow/pkg/grid"
)

// cancelCheckInterval is how many cells the sweep visits between context
// checks.
const cancelCheckInterval = 4096

// Resolve assigns a D8 direction and an accumulated area to every eligible
// cell of in.
//
// Cells are visited from the highest elevation to the lowest. Configuration
// errors are returned before any work is done. Cells that cannot be resolved
// are reported in Result.Faults and counted in Result.Unresolved; they never
// fail the call. If ctx is cancelled mid-sweep the partial result is returned
// together with ctx.Err().
func Resolve(ctx context.Context, in Input, opts Options) (*Result, error) {
	opts.setDefaults()
	if err := opts.validate(in); err != nil {
		return nil, err
	}
	logger := opts.Logger
	start := time.Now()

	s := newState(in, opts)
	order := NewOrdering(in.Elevation)
	res := &Result{}
	for i := range s.dir {
		if s.eligible(i) {
			res.Eligible++
		} else if _, ok := s.elevation(i); ok {
			res.Skipped++
		}
	}
	logger.Debug("ordering built", "cells", len(order.Index), "valid", order.ValidCount, "eligible", res.Eligible)

	err := s.sweep(ctx, order, res, opts.StrictAbort)
	if err == nil && opts.FixedNetwork && !res.Aborted {
		res.Corrected = s.correctNetwork(in.Network)
		s.reaccumulate()
		if res.HasOutlet {
			i := grid.Index(res.Outlet.Row, res.Outlet.Col, s.cols)
			res.HasOutlet = s.dir[i] == Outlet
		}
		logger.Debug("network corrected", "changed", res.Corrected)
	}

	s.collect(in, res)
	for _, f := range res.Faults {
		logger.Debug("unresolved cell", "kind", f.Kind, "cell", f.Cell, "detail", f.Detail)
	}
	for _, w := range res.Warnings {
		logger.Warn(w)
	}
	logger.Info("directions resolved",
		"metric", opts.Metric,
		"lambda", opts.Lambda,
		"resolved", res.Resolved,
		"unresolved", res.Unresolved,
		"faults", len(res.Faults),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return res, err
}

// sweep visits the ordering from its high end.
func (s *state) sweep(ctx context.Context, order Ordering, res *Result, strict bool) error {
	processed := 0
	for k := len(order.Index) - 1; k >= 0; k-- {
		if (len(order.Index)-1-k)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				res.Partial = true
				return err
			}
		}

		i := order.Index[k]
		if !s.eligible(i) {
			if strict && processed < res.Eligible {
				res.Aborted = true
				res.Warnings = append(res.Warnings, fmt.Sprintf("sweep aborted at %s: missing elevation or old direction", s.cell(i)))
				return nil
			}
			continue
		}

		processed++
		if !s.assign(i, processed == res.Eligible, res) && strict {
			res.Aborted = true
			res.Warnings = append(res.Warnings, fmt.Sprintf("sweep aborted at %s: cell could not be resolved", s.cell(i)))
			return nil
		}
	}
	return nil
}

// assign resolves one cell. last is true for the final eligible cell of the
// sweep. It returns false if the cell was left unresolved.
func (s *state) assign(i int, last bool, res *Result) bool {
	d := s.steepest(i)
	sumdev := s.upstream(i)

	if d.slope > 0 {
		return s.assignDescent(i, d, sumdev)
	}

	s.dev[i] = s.lambda * sumdev
	if last {
		s.dir[i] = Outlet
		res.Outlet, res.HasOutlet = s.cell(i), true
		if s.area[i] != float64(res.Eligible) {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"outlet %s drains %.0f of %d eligible cells; the grid has disconnected basins",
				s.cell(i), s.area[i], res.Eligible))
		}
		return true
	}

	// Flat or pit: keep the existing direction and ride its chain.
	old := s.oldDirection(i)
	if !old.Valid() {
		s.fault(FaultBadDirection, i, fmt.Sprintf("old direction %d", int(old)))
		s.unresolve(i)
		return false
	}
	s.dir[i] = old
	return s.inject(i)
}

// assignDescent picks the cardinal or the diagonal edge of the steepest facet,
// whichever keeps the cumulative deviation smaller.
func (s *state) assignDescent(i int, d descent, sumdev float64) bool {
	e0, _ := s.elevation(i)
	dev1, dev2 := s.deviations(d.angle, d.tri.sigma)
	sumdev1 := dev1 + s.lambda*sumdev
	sumdev2 := dev2 + s.lambda*sumdev

	switch {
	case math.Abs(sumdev1) <= math.Abs(sumdev2) && e0-d.eCard > 0:
		s.dir[i], s.dev[i] = d.tri.cardinal, sumdev1
	case math.Abs(sumdev1) > math.Abs(sumdev2) || e0-d.eDiag > 0:
		s.dir[i], s.dev[i] = d.tri.diagonal, sumdev2
	default:
		s.fault(FaultAmbiguous, i, fmt.Sprintf("facet %v/%v", d.tri.cardinal, d.tri.diagonal))
		s.unresolve(i)
		return false
	}

	if j := s.next(i); j >= 0 && s.analyzed[j] {
		return s.inject(i)
	}
	return true
}

// inject adds the area of i to every analyzed cell downstream of it, up to the
// first cell not analyzed yet. The chain is walked once without writing; if
// it returns to i or runs longer than rows×cols steps nothing is added and i
// is left unresolved.
func (s *state) inject(i int) bool {
	budget := s.rows * s.cols
	var path []int
	for j := s.next(i); j >= 0 && s.analyzed[j]; j = s.next(j) {
		if j == i {
			s.fault(FaultCycle, i, fmt.Sprintf("direction %v leads back to the cell", s.dir[i]))
			s.unresolve(i)
			return false
		}
		if len(path) >= budget {
			s.fault(FaultStepBudget, i, fmt.Sprintf("chain longer than %d cells", budget))
			s.unresolve(i)
			return false
		}
		path = append(path, j)
	}
	for _, j := range path {
		s.area[j] += s.area[i]
	}
	return true
}

// collect copies the working state into the output grids.
func (s *state) collect(in Input, res *Result) {
	dir := grid.New(s.rows, s.cols, in.OldDirection.NoValue())
	area := grid.New(s.rows, s.cols, in.Elevation.NoValue())
	dirData, areaData := dir.Data(), area.Data()
	for i, d := range s.dir {
		if d == None {
			continue
		}
		dirData[i] = int(d)
		areaData[i] = s.area[i]
		res.Resolved++
	}
	res.Direction = dir
	res.Area = area
	res.Unresolved = res.Eligible - res.Resolved
	res.Faults = s.faults
	if !res.HasOutlet && res.Eligible > 0 && !res.Partial && !res.Aborted {
		res.Warnings = append(res.Warnings, "no outlet found: the lowest eligible cell still drains downhill")
	}
}
