package cacheflags

import (
	"flag"
	"time"

	"github.com/brimdata/thermo/querycache"
)

type Flags struct {
	querycache.Config
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	fs.Var(&f.Kind, "cache.kind", "kind of query result cache [none,local,redis]")
	fs.IntVar(&f.LocalSize, "cache.local.size", querycache.DefaultLocalSize, "number of query results to keep in the local cache")
	fs.DurationVar(&f.RedisKeyExpiration, "cache.redis.keyexpiry", 24*time.Hour, "expiration duration of cached results in redis")
}
