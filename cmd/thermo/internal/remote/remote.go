// Package remote runs thermo queries against a thermo service.
package remote

import (
	"context"

	"github.com/brimdata/thermo/api"
	"github.com/brimdata/thermo/api/client"
	"github.com/brimdata/thermo/query"
)

type Runner struct {
	conn *client.Connection
}

// New returns a Runner for the service at url, authenticating with token
// when it is not empty.
func New(url, token string) *Runner {
	conn := client.NewConnectionTo(url)
	if token != "" {
		conn.SetAuthToken(token)
	}
	return &Runner{conn}
}

func (r *Runner) Connection() *client.Connection {
	return r.conn
}

func (r *Runner) Run(ctx context.Context, req query.Request) (*query.Result, error) {
	res, err := r.conn.Query(ctx, api.QueryRequest{
		Mode:    req.Mode,
		Value:   &req.Value,
		Filter:  req.Filter,
		Outputs: req.Outputs,
	})
	if err != nil {
		return nil, err
	}
	return Result(res), nil
}

func (r *Runner) Sweep(ctx context.Context, req query.Request, from, to, step float64) ([]*query.Result, error) {
	res, err := r.conn.Sweep(ctx, api.SweepRequest{
		Mode:    req.Mode,
		Filter:  req.Filter,
		Outputs: req.Outputs,
		From:    from,
		To:      to,
		Step:    step,
	})
	if err != nil {
		return nil, err
	}
	results := make([]*query.Result, 0, len(res.Results))
	for _, r := range res.Results {
		results = append(results, Result(r))
	}
	return results, nil
}

// Result converts a service response to the form the output writers take.
func Result(res api.QueryResponse) *query.Result {
	values := make([]query.Property, 0, len(res.Values))
	for _, p := range res.Values {
		values = append(values, query.Property{Name: p.Name, Value: p.Value, Unit: p.Unit})
	}
	return &query.Result{
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
