package querycache

import (
	"context"

	"github.com/brimdata/thermo/dataset"
	"github.com/brimdata/thermo/query"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultLocalSize = 1024

type LocalCache struct {
	metrics
	ds  *dataset.Dataset
	lru *lru.Cache[string, *query.Result]
}

func NewLocalCache(ds *dataset.Dataset, size int, reg prometheus.Registerer) (*LocalCache, error) {
	if size <= 0 {
		size = DefaultLocalSize
	}
	c, err := lru.New[string, *query.Result](size)
	if err != nil {
		return nil, err
	}
	return &LocalCache{
		metrics: newMetrics(reg),
		ds:      ds,
		lru:     c,
	}, nil
}

func (c *LocalCache) Run(_ context.Context, req query.Request) (*query.Result, error) {
	m, outputs, err := query.Resolve(c.ds, req)
	if err != nil {
		return nil, err
	}
	k := key(c.ds.Source(), m.Name, outputs, req)
	if res, ok := c.lru.Get(k); ok {
		c.hits.WithLabelValues(m.Name).Inc()
		return clone(res), nil
	}
	res, err := query.Run(c.ds, req)
	if err != nil {
		return nil, err
	}
	c.lru.Add(k, clone(res))
	c.misses.WithLabelValues(m.Name).Inc()
	return res, nil
}

func (c *LocalCache) Len() int {
	return c.lru.Len()
}
