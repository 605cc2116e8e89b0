package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/brimdata/thermo/api"
	"github.com/brimdata/thermo/api/client"
	"github.com/brimdata/thermo/querycache"
	"github.com/brimdata/thermo/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(v float64) *float64 {
	return &v
}

func TestModes(t *testing.T) {
	_, conn := newCore(t)
	modes, err := conn.Modes(context.Background())
	require.NoError(t, err)
	require.Len(t, modes, 3)
	assert.Equal(t, "sat-t", modes[0].Name)
	assert.Equal(t, "T", modes[0].Key)
	assert.Empty(t, modes[0].Choices)
	assert.Equal(t, "kPa", modes[0].Units["P"])

	sh := modes[2]
	assert.Equal(t, "superheat", sh.Name)
	assert.Equal(t, "P", sh.Filter)
	assert.Equal(t, []float64{0.01, 0.1, 0.5, 1}, sh.Choices)
	assert.Equal(t, 50.0, sh.Min)
	assert.Equal(t, 300.0, sh.Max)
}

func TestModeGet(t *testing.T) {
	_, conn := newCore(t)
	info, err := conn.Mode(context.Background(), "sat-p")
	require.NoError(t, err)
	assert.Equal(t, "P", info.Key)
	assert.Equal(t, "T", info.Outputs[0])
	assert.Less(t, info.Min, info.Max)

	_, err = conn.Mode(context.Background(), "sat-q")
	assert.ErrorIs(t, err, client.ErrModeNotFound)
}

func TestQueryInterpolates(t *testing.T) {
	_, conn := newCore(t)
	res, err := conn.Query(context.Background(), api.QueryRequest{
		Mode:    "sat-t",
		Value:   value(125),
		Outputs: []string{"P", "h_g"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sat-t", res.Mode)
	assert.Equal(t, "T", res.Key)
	assert.False(t, res.Exact)
	assert.Equal(t, 120.0, res.Lower)
	assert.Equal(t, 130.0, res.Upper)
	require.Len(t, res.Values, 2)
	assert.Equal(t, "P", res.Values[0].Name)
	assert.Equal(t, "kPa", res.Values[0].Unit)
	assert.InDelta(t, 234.315, res.Values[0].Value, 1e-9)
	assert.InDelta(t, 2713.4, res.Values[1].Value, 1e-9)
}

func TestQuerySuperheatedExact(t *testing.T) {
	_, conn := newCore(t)
	res, err := conn.Query(context.Background(), api.QueryRequest{
		Mode:    "superheat",
		Value:   value(200),
		Filter:  value(1.0),
		Outputs: []string{"h"},
	})
	require.NoError(t, err)
	assert.True(t, res.Exact)
	assert.Equal(t, "P", res.FilterColumn)
	assert.Equal(t, 1.0, *res.Filter)
	assert.Equal(t, []api.Property{{Name: "h", Value: 2827.9, Unit: "kJ/kg"}}, res.Values)
}

func TestQueryRejected(t *testing.T) {
	_, conn := newCore(t)
	ctx := context.Background()
	for name, req := range map[string]api.QueryRequest{
		"out of range":      {Mode: "sat-t", Value: value(1000)},
		"missing value":     {Mode: "sat-t"},
		"missing filter":    {Mode: "superheat", Value: value(200)},
		"unlisted filter":   {Mode: "superheat", Value: value(200), Filter: value(0.7)},
		"unexpected filter": {Mode: "sat-p", Value: value(200), Filter: value(1)},
		"unknown output":    {Mode: "sat-t", Value: value(125), Outputs: []string{"x"}},
	} {
		_, err := conn.Query(ctx, req)
		require.Error(t, err, name)
		assert.Equal(t, http.StatusBadRequest, statusCode(err), name)
	}

	_, err := conn.Query(ctx, api.QueryRequest{Mode: "liquid", Value: value(1)})
	assert.ErrorIs(t, err, client.ErrModeNotFound)
}

func TestQueryOutOfRangeInfo(t *testing.T) {
	_, conn := newCore(t)
	_, err := conn.Query(context.Background(), api.QueryRequest{Mode: "superheat", Value: value(20), Filter: value(1)})
	var apierr *api.Error
	require.True(t, errors.As(err, &apierr))
	assert.Equal(t, "invalid operation", apierr.Kind)
	assert.Contains(t, apierr.Message, "outside the tabulated range")
	info, ok := apierr.Info.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 20.0, info["value"])
	assert.Equal(t, 200.0, info["min"])
}

func TestQueryGetFormats(t *testing.T) {
	_, conn := newCoreWithConfig(t, service.Config{Precision: 6})
	ctx := context.Background()
	req := api.QueryRequest{Mode: "sat-t", Value: value(125), Outputs: []string{"P", "h_g"}}

	read := func(format string) (string, string) {
		res, err := conn.QueryFormat(ctx, req, format)
		require.NoError(t, err)
		defer res.Body.Close()
		b, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		return res.Header.Get("Content-Type"), string(b)
	}

	typ, body := read("text")
	assert.Equal(t, api.MediaTypeText, typ)
	assert.Equal(t, "# sat-t: T = 125 °C (interpolated between T = 120 and 130)\nP = 234.315 kPa\nh_g = 2713.4 kJ/kg\n", body)

	typ, body = read("csv")
	assert.Equal(t, api.MediaTypeCSV, typ)
	assert.Equal(t, "125,234.315,2713.4", strings.Split(body, "\n")[1])

	typ, body = read("json")
	assert.Equal(t, api.MediaTypeJSON, typ)
	var res api.QueryResponse
	require.NoError(t, json.Unmarshal([]byte(body), &res))
	assert.InDelta(t, 234.315, res.Values[0].Value, 1e-9)
}

func TestQueryGetBadParams(t *testing.T) {
	_, conn := newCore(t)
	res, body := conn.get("/query/sat-t?value=hot", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, body, `\"hot\" is not a number`)

	res, _ = conn.get("/query/sat-t", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = conn.get("/query/sat-t?value=125", http.Header{"Accept": {"image/png"}})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = conn.get("/query/sat-t?value=125", http.Header{"Accept": {"application/x-www-form-urlencoded"}})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, api.MediaTypeJSON, res.Header.Get("Content-Type"))
}

func TestQueryGetNonFinite(t *testing.T) {
	_, conn := newCore(t)
	for _, v := range []string{"NaN", "Inf", "-Inf", "+Infinity"} {
		res, body := conn.get("/query/sat-t?value="+url.QueryEscape(v), nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, v)
		assert.Contains(t, body, "is not a finite number", v)
	}
}

func TestQueryMalformedBody(t *testing.T) {
	_, conn := newCore(t)
	for _, body := range []string{`{"mode":`, `{"mode":"sat-t","value":125,"temperature":1}`} {
		req := conn.NewRequest(context.Background(), http.MethodPost, "/query", strings.NewReader(body))
		_, err := conn.Do(req)
		assert.Equal(t, http.StatusBadRequest, statusCode(err), body)
	}
}

func TestSweep(t *testing.T) {
	_, conn := newCore(t)
	res, err := conn.Sweep(context.Background(), api.SweepRequest{
		Mode:    "sat-t",
		Outputs: []string{"P"},
		From:    100,
		To:      150,
		Step:    5,
	})
	require.NoError(t, err)
	assert.Equal(t, "sat-t", res.Mode)
	require.Len(t, res.Results, 11)
	for i, r := range res.Results {
		assert.Equal(t, 100+5*float64(i), r.Value)
	}
	assert.True(t, res.Results[2].Exact)
	assert.Equal(t, 143.27, res.Results[2].Values[0].Value)
	assert.False(t, res.Results[3].Exact)
}

func TestSweepRejected(t *testing.T) {
	_, conn := newCore(t)
	ctx := context.Background()
	for name, req := range map[string]api.SweepRequest{
		"out of range": {Mode: "sat-t", From: 300, To: 1000, Step: 100},
		"bad step":     {Mode: "sat-t", From: 100, To: 150, Step: 0},
		"too many":     {Mode: "sat-t", From: 100, To: 150, Step: 1e-6},
	} {
		_, err := conn.Sweep(ctx, req)
		assert.Equal(t, http.StatusBadRequest, statusCode(err), name)
	}
}

func TestSweepCSV(t *testing.T) {
	_, conn := newCore(t)
	req := conn.NewRequest(context.Background(), http.MethodPost, "/sweep", api.SweepRequest{
		Mode:    "superheat",
		Filter:  value(1),
		Outputs: []string{"h"},
		From:    200,
		To:      300,
		Step:    50,
	})
	req.Header.Set("Accept", api.MediaTypeCSV)
	res, err := conn.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "200,1,2827.9", lines[1])
	assert.Equal(t, "300,1,3051.2", lines[3])
}

func TestAuxRoutes(t *testing.T) {
	_, conn := newCore(t)
	ctx := context.Background()

	version, err := conn.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v0.0.0-test", version)

	_, err = conn.Ping(ctx)
	require.NoError(t, err)

	res, body := conn.get("/status", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	var status api.StatusResponse
	require.NoError(t, json.Unmarshal([]byte(body), &status))
	assert.Equal(t, api.StatusResponse{Status: "ok", Dataset: "embedded:steam.yaml"}, status)

	res, body = conn.get("/", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "<code>superheat</code>")
}

func TestRequestID(t *testing.T) {
	_, conn := newCore(t)
	res, _ := conn.get("/modes", nil)
	assert.NotEmpty(t, res.Header.Get(api.RequestIDHeader))

	res, _ = conn.get("/modes", http.Header{api.RequestIDHeader: {"abc"}})
	assert.Equal(t, "abc", res.Header.Get(api.RequestIDHeader))
}

func TestQueryMetrics(t *testing.T) {
	core, conn := newCore(t)
	ctx := context.Background()
	_, err := conn.Query(ctx, api.QueryRequest{Mode: "sat-t", Value: value(125)})
	require.NoError(t, err)
	_, err = conn.Query(ctx, api.QueryRequest{Mode: "sat-t", Value: value(1000)})
	require.Error(t, err)
	_, err = conn.Query(ctx, api.QueryRequest{Mode: "nope", Value: value(1)})
	require.Error(t, err)

	reg := core.Registry()
	assert.Equal(t, 1.0, promCounterValue(reg, "thermo_queries_total", "mode", "sat-t", "outcome", "ok"))
	assert.Equal(t, 1.0, promCounterValue(reg, "thermo_queries_total", "mode", "sat-t", "outcome", "invalid"))
	assert.Equal(t, 1.0, promCounterValue(reg, "thermo_queries_total", "mode", "unknown", "outcome", "not_found"))

	_, body := conn.get("/metrics", nil)
	assert.Contains(t, body, "thermo_query_duration_seconds")
}

func TestLocalCache(t *testing.T) {
	core, conn := newCoreWithConfig(t, newCacheConfig(querycache.KindLocal))
	ctx := context.Background()
	req := api.QueryRequest{Mode: "sat-t", Value: value(125)}
	first, err := conn.Query(ctx, req)
	require.NoError(t, err)
	second, err := conn.Query(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1.0, promCounterValue(core.Registry(), "thermo_query_cache_misses_total", "mode", "sat-t"))
	assert.Equal(t, 1.0, promCounterValue(core.Registry(), "thermo_query_cache_hits_total", "mode", "sat-t"))
}

func newCacheConfig(kind querycache.Kind) service.Config {
	return service.Config{Cache: querycache.Config{Kind: kind, LocalSize: 16}}
}
