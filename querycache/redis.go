package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/brimdata/thermo/dataset"
	"github.com/brimdata/thermo/query"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
)

const redisKeyPrefix = "thermo:query:"

// RedisCache shares results among processes serving the same dataset.
// Entries are keyed by dataset source, so processes serving different
// datasets may share one Redis.
type RedisCache struct {
	metrics
	ds     *dataset.Dataset
	client *redis.Client
	expiry time.Duration
}

func NewRedisCache(ds *dataset.Dataset, client *redis.Client, expiry time.Duration, reg prometheus.Registerer) *RedisCache {
	return &RedisCache{
		metrics: newMetrics(reg),
		ds:      ds,
		client:  client,
		expiry:  expiry,
	}
}

func (c *RedisCache) Run(ctx context.Context, req query.Request) (*query.Result, error) {
	m, outputs, err := query.Resolve(c.ds, req)
	if err != nil {
		return nil, err
	}
	k := redisKeyPrefix + key(c.ds.Source(), m.Name, outputs, req)
	b, err := c.client.Get(ctx, k).Bytes()
	if err == nil {
		var res query.Result
		if err := json.Unmarshal(b, &res); err == nil {
			c.hits.WithLabelValues(m.Name).Inc()
			return &res, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}
	res, err := query.Run(c.ds, req)
	if err != nil {
		return nil, err
	}
	c.misses.WithLabelValues(m.Name).Inc()
	if b, err = json.Marshal(res); err != nil {
		return nil, err
	}
	return res, c.client.Set(ctx, k, b, c.expiry).Err()
}
