package service

import (
	"net/http"
	"time"

	"github.com/brimdata/thermo/api"
	"github.com/brimdata/thermo/dataset"
	"github.com/brimdata/thermo/mode"
	"github.com/brimdata/thermo/query"
	"github.com/brimdata/thermo/service/auth"
	"github.com/brimdata/thermo/service/srverr"
	"go.uber.org/zap"
)

func handleModeList(c *Core, w *ResponseWriter, r *Request) {
	var infos []api.ModeInfo
	for _, m := range mode.All() {
		info, err := ModeInfo(c.conf.Dataset, m)
		if err != nil {
			w.Error(err)
			return
		}
		infos = append(infos, info)
	}
	w.Respond(http.StatusOK, infos)
}

func handleModeGet(c *Core, w *ResponseWriter, r *Request) {
	name, ok := r.StringFromPath(w, "mode")
	if !ok {
		return
	}
	m, err := mode.Lookup(name)
	if err != nil {
		w.Error(srverr.ErrNotFound(err))
		return
	}
	info, err := ModeInfo(c.conf.Dataset, m)
	if err != nil {
		w.Error(err)
		return
	}
	w.Respond(http.StatusOK, info)
}

func handleQueryPost(c *Core, w *ResponseWriter, r *Request) {
	var req api.QueryRequest
	if !r.Unmarshal(w, &req) {
		return
	}
	if req.Value == nil {
		w.Error(srverr.ErrInvalid("query requires a value"))
		return
	}
	c.runQuery(w, r, query.Request{
		Mode:    req.Mode,
		Value:   *req.Value,
		Filter:  req.Filter,
		Outputs: req.Outputs,
	})
}

func handleQueryGet(c *Core, w *ResponseWriter, r *Request) {
	name, ok := r.StringFromPath(w, "mode")
	if !ok {
		return
	}
	value, ok := r.FloatFromQuery(w, "value")
	if !ok {
		return
	}
	if value == nil {
		w.Error(srverr.ErrInvalid("query requires a value"))
		return
	}
	filter, ok := r.FloatFromQuery(w, "filter")
	if !ok {
		return
	}
	c.runQuery(w, r, query.Request{
		Mode:    name,
		Value:   *value,
		Filter:  filter,
		Outputs: r.ListFromQuery("outputs"),
	})
}

func (c *Core) runQuery(w *ResponseWriter, r *Request, req query.Request) {
	start := time.Now()
	res, err := c.runner.Run(r.Context(), req)
	c.metrics.observe("query", req.Mode, err, time.Since(start))
	if err != nil {
		w.Error(err)
		return
	}
	w.RespondResults(queryResponse(res), res)
}

func handleSweep(c *Core, w *ResponseWriter, r *Request) {
	var req api.SweepRequest
	if !r.Unmarshal(w, &req) {
		return
	}
	start := time.Now()
	results, err := query.Sweep(r.Context(), c.conf.Dataset, query.Request{
		Mode:    req.Mode,
		Filter:  req.Filter,
		Outputs: req.Outputs,
	}, req.From, req.To, req.Step, c.conf.SweepWorkers)
	c.metrics.observe("sweep", req.Mode, err, time.Since(start))
	if err != nil {
		w.Error(err)
		return
	}
	body := api.SweepResponse{Results: make([]api.QueryResponse, 0, len(results))}
	for _, res := range results {
		body.Mode = res.Mode
		body.Results = append(body.Results, queryResponse(res))
	}
	r.Logger.Debug("Sweep completed", zap.String("mode", body.Mode), zap.Int("points", len(results)))
	w.RespondResults(body, results...)
}

func handleAuthIdentityGet(c *Core, w *ResponseWriter, r *Request) {
	ident := auth.IdentityFromContext(r.Context())
	w.Respond(http.StatusOK, api.AuthIdentityResponse{Subject: ident.Subject})
}

// ModeInfo describes m and the part of ds it covers.
func ModeInfo(ds *dataset.Dataset, m *mode.Mode) (api.ModeInfo, error) {
	min, max, err := ds.Range(m)
	if err != nil {
		return api.ModeInfo{}, err
	}
	units := make(map[string]string, len(m.Units))
	for k, v := range m.Units {
		units[k] = v
	}
	return api.ModeInfo{
		Name:    m.Name,
		Title:   m.Title,
		Table:   m.Table,
		Key:     m.Key,
		Filter:  m.Filter,
		Outputs: append([]string(nil), m.Outputs...),
		Units:   units,
		Min:     min,
		Max:     max,
		Choices: ds.Choices(m),
	}, nil
}

func queryResponse(res *query.Result) api.QueryResponse {
	values := make([]api.Property, 0, len(res.Values))
	for _, p := range res.Values {
		values = append(values, api.Property{Name: p.Name, Value: p.Value, Unit: p.Unit})
	}
	return api.QueryResponse{
		Mode:         res.Mode,
		Key:          res.Key,
		Value:        res.Value,
		FilterColumn: res.FilterColumn,
		Filter:       res.Filter,
		Exact:        res.Exact,
		Lower:        res.Lower,
		Upper:        res.Upper,
		Values:       values,
	}
}
