package query

import (
	"context"
	"math"
	"runtime"

	"github.com/brimdata/thermo/dataset"
	"github.com/brimdata/thermo/service/srverr"
	"golang.org/x/sync/errgroup"
)

const MaxSweepPoints = 10000

// Points returns from, from+step, ... up to and including to.  The last
// point is to itself when the steps land on it within rounding.
func Points(from, to, step float64) ([]float64, error) {
	for _, v := range []float64{from, to, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, srverr.ErrInvalid("sweep bounds and step must be finite")
		}
	}
	if step <= 0 {
		return nil, srverr.ErrInvalid("sweep step must be positive")
	}
	if from > to {
		return nil, srverr.ErrInvalid("sweep start %s is above its end %s", format(from), format(to))
	}
	n := math.Floor((to-from)/step+1e-9) + 1
	if n > MaxSweepPoints {
		return nil, srverr.ErrInvalid("sweep of %d points exceeds the limit of %d", int64(n), MaxSweepPoints)
	}
	points := make([]float64, int(n))
	for i := range points {
		v := from + float64(i)*step
		if v > to || math.Abs(v-to) <= step*1e-9 {
			v = to
		}
		points[i] = v
	}
	return points, nil
}

// Sweep runs req at each value from from to to in increments of step using
// at most workers goroutines.  Results are in key order.  The first failing
// point fails the sweep.
func Sweep(ctx context.Context, ds *dataset.Dataset, req Request, from, to, step float64, workers int) ([]*Result, error) {
	if _, _, err := Resolve(ds, req); err != nil {
		return nil, err
	}
	points, err := Points(from, to, step)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]*Result, len(points))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, v := range points {
		if gctx.Err() != nil {
			break
		}
		i, r := i, req
		r.Value = v
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := Run(ds, r)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
