// Package querycache memoizes query results.  A dataset never changes once
// loaded, so a result computed for a request stays valid for as long as
// the dataset it came from is served.
package querycache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brimdata/thermo/dataset"
	"github.com/brimdata/thermo/query"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Kind string

const (
	KindNone  Kind = "none"
	KindLocal Kind = "local"
	KindRedis Kind = "redis"
)

func (k Kind) String() string {
	if k == "" {
		return string(KindNone)
	}
	return string(k)
}

func (k *Kind) Set(s string) error {
	switch kind := Kind(strings.ToLower(s)); kind {
	case KindNone, KindLocal, KindRedis:
		*k = kind
		return nil
	}
	return fmt.Errorf("unknown cache kind %q (options are none, local, redis)", s)
}

type Config struct {
	Kind      Kind `yaml:"kind"`
	LocalSize int  `yaml:"local_size"`
	// RedisKeyExpiration of zero means keys never expire and should only
	// be used when Redis has a key eviction policy.
	RedisKeyExpiration time.Duration `yaml:"redis_key_expiration"`
}

// Runner answers query requests against one dataset.
type Runner interface {
	Run(context.Context, query.Request) (*query.Result, error)
}

// New returns a Runner for ds that caches according to conf.  client is
// used only for KindRedis.
func New(conf Config, ds *dataset.Dataset, client *redis.Client, reg prometheus.Registerer) (Runner, error) {
	switch conf.Kind {
	case KindNone, "":
		return NewDirect(ds), nil
	case KindLocal:
		return NewLocalCache(ds, conf.LocalSize, reg)
	case KindRedis:
		if client == nil {
			return nil, fmt.Errorf("redis cache requires a redis client")
		}
		return NewRedisCache(ds, client, conf.RedisKeyExpiration, reg), nil
	}
	return nil, fmt.Errorf("unknown cache kind %q", conf.Kind)
}

// Direct runs every request against the dataset.
type Direct struct {
	ds *dataset.Dataset
}

func NewDirect(ds *dataset.Dataset) *Direct {
	return &Direct{ds}
}

func (d *Direct) Run(_ context.Context, req query.Request) (*query.Result, error) {
	return query.Run(d.ds, req)
}

type metrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return metrics{
		hits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thermo_query_cache_hits_total",
				Help: "Number of hits for a query cache lookup.",
			},
			[]string{"mode"},
		),
		misses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thermo_query_cache_misses_total",
				Help: "Number of misses for a query cache lookup.",
			},
			[]string{"mode"},
		),
	}
}

// key returns the canonical form of req, which must already be resolved
// to its mode name and outputs.
func key(source, modeName string, outputs []string, req query.Request) string {
	var b strings.Builder
	b.WriteString(source)
	b.WriteByte('|')
	b.WriteString(modeName)
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(req.Value, 'g', -1, 64))
	b.WriteByte('|')
	if req.Filter != nil {
		b.WriteString(strconv.FormatFloat(*req.Filter, 'g', -1, 64))
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(outputs, ","))
	return b.String()
}

func clone(res *query.Result) *query.Result {
	out := *res
	out.Values = append([]query.Property(nil), res.Values...)
	if res.Filter != nil {
		f := *res.Filter
		out.Filter = &f
	}
	return &out
}
