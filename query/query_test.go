package query

import (
	"context"
	"sync"
	"testing"

	"github.com/brimdata/thermo/dataset"
	"github.com/brimdata/thermo/service/srverr"
	"github.com/brimdata/thermo/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steam(t *testing.T) *dataset.Dataset {
	ds, err := dataset.LoadDefault()
	require.NoError(t, err)
	return ds
}

func pressure(v float64) *float64 {
	return &v
}

func TestRunInterpolates(t *testing.T) {
	res, err := Run(steam(t), Request{Mode: "sat-t", Value: 125})
	require.NoError(t, err)
	assert.Equal(t, "sat-t", res.Mode)
	assert.Equal(t, "T", res.Key)
	assert.False(t, res.Exact)
	assert.Equal(t, 120.0, res.Lower)
	assert.Equal(t, 130.0, res.Upper)
	require.Len(t, res.Values, 13)
	assert.Equal(t, "P", res.Values[0].Name)
	assert.Equal(t, "kPa", res.Values[0].Unit)
	assert.InDelta(t, 234.315, res.Values[0].Value, 1e-9)
	assert.Equal(t, "s_g", res.Values[12].Name)
	assert.Nil(t, res.Filter)
}

func TestRunSuperheatedExact(t *testing.T) {
	res, err := Run(steam(t), Request{
		Mode:    "superheat",
		Value:   200,
		Filter:  pressure(1.0),
		Outputs: []string{"h", "v"},
	})
	require.NoError(t, err)
	assert.True(t, res.Exact)
	assert.Equal(t, "P", res.FilterColumn)
	assert.Equal(t, 1.0, *res.Filter)
	assert.Equal(t, []Property{
		{Name: "h", Value: 2827.9, Unit: "kJ/kg"},
		{Name: "v", Value: 0.206, Unit: "m³/kg"},
	}, res.Values)
	h, ok := res.Get("h")
	assert.True(t, ok)
	assert.Equal(t, 2827.9, h)
	assert.Equal(t, map[string]float64{"h": 2827.9, "v": 0.206}, res.Map())
}

func TestRunSuperheatedInterpolates(t *testing.T) {
	res, err := Run(steam(t), Request{Mode: "superheat", Value: 225, Filter: pressure(0.5), Outputs: []string{"u"}})
	require.NoError(t, err)
	assert.InDelta(t, (2642.9+2723.5)/2, res.Values[0].Value, 1e-9)
}

func TestRunRejects(t *testing.T) {
	ds := steam(t)
	for name, c := range map[string]struct {
		req   Request
		check func(error) bool
	}{
		"unknown mode":      {Request{Mode: "sat-x", Value: 100}, srverr.IsNotFound},
		"missing filter":    {Request{Mode: "superheat", Value: 200}, srverr.IsInvalid},
		"unlisted filter":   {Request{Mode: "superheat", Value: 200, Filter: pressure(0.75)}, srverr.IsInvalid},
		"unexpected filter": {Request{Mode: "sat-p", Value: 100, Filter: pressure(1)}, srverr.IsInvalid},
		"unknown output":    {Request{Mode: "sat-t", Value: 100, Outputs: []string{"h"}}, srverr.IsInvalid},
		"key as output":     {Request{Mode: "sat-t", Value: 100, Outputs: []string{"T"}}, srverr.IsInvalid},
		"out of range":      {Request{Mode: "sat-t", Value: 151}, srverr.IsInvalid},
		"slice range":       {Request{Mode: "superheat", Value: 150, Filter: pressure(1.0)}, srverr.IsInvalid},
	} {
		_, err := Run(ds, c.req)
		require.Error(t, err, name)
		assert.True(t, c.check(err), "%s: %v", name, err)
	}
	_, err := Run(ds, Request{Mode: "sat-t", Value: 151})
	assert.ErrorIs(t, err, table.ErrOutOfRange)
	_, err = Run(ds, Request{Mode: "superheat", Value: 200, Filter: pressure(0.75)})
	assert.Contains(t, err.Error(), "choices are 0.01, 0.1, 0.5, 1")
}

func TestRunConcurrent(t *testing.T) {
	ds := steam(t)
	want, err := Run(ds, Request{Mode: "sat-p", Value: 150})
	require.NoError(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := Run(ds, Request{Mode: "sat-p", Value: 150})
				assert.NoError(t, err)
				assert.Equal(t, want, got)
			}
		}()
	}
	wg.Wait()
}

func TestPoints(t *testing.T) {
	points, err := Points(0, 1, 0.1)
	require.NoError(t, err)
	require.Len(t, points, 11)
	assert.Equal(t, 0.0, points[0])
	assert.Equal(t, 1.0, points[10])

	points, err = Points(100, 125, 10)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 110, 120}, points)

	points, err = Points(5, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, points)

	_, err = Points(0, 1, 0)
	assert.True(t, srverr.IsInvalid(err))
	_, err = Points(2, 1, 1)
	assert.True(t, srverr.IsInvalid(err))
	_, err = Points(0, 1e9, 1)
	assert.True(t, srverr.IsInvalid(err))
}

func TestSweepInOrder(t *testing.T) {
	results, err := Sweep(context.Background(), steam(t), Request{Mode: "sat-t", Outputs: []string{"P"}}, 100, 150, 5, 3)
	require.NoError(t, err)
	require.Len(t, results, 11)
	for i, res := range results {
		assert.Equal(t, 100+5*float64(i), res.Value)
	}
	assert.True(t, results[2].Exact)
	assert.Equal(t, 143.27, results[2].Values[0].Value)
	assert.False(t, results[1].Exact)
}

func TestSweepOutOfRangeFails(t *testing.T) {
	_, err := Sweep(context.Background(), steam(t), Request{Mode: "sat-t"}, 140, 160, 5, 2)
	assert.ErrorIs(t, err, table.ErrOutOfRange)
}

func TestSweepValidatesFirst(t *testing.T) {
	_, err := Sweep(context.Background(), steam(t), Request{Mode: "superheat"}, 100, 200, 50, 2)
	assert.True(t, srverr.IsInvalid(err))
}

func TestSweepCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Sweep(ctx, steam(t), Request{Mode: "sat-t"}, 100, 150, 1, 2)
	assert.ErrorIs(t, err, context.Canceled)
}
