package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/pprof"

	"github.com/brimdata/thermo/api"
	"github.com/brimdata/thermo/dataset"
	"github.com/brimdata/thermo/querycache"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

//go:embed docs.md
var docs []byte

const indexPage = `<!DOCTYPE html>
<html>
  <head><meta charset="utf-8"><title>thermo</title></head>
  <body style="padding:10px; font-family:sans-serif">
%s
  </body>
</html>
`

type Config struct {
	Auth                  AuthConfig
	Cache                 querycache.Config
	CORSAllowedOrigins    []string
	Dataset               *dataset.Dataset
	DefaultResponseFormat string
	Logger                *zap.Logger
	// Precision of values in text, table and csv responses.  See
	// output.FormatValue.
	Precision    int
	Redis        RedisConfig
	SweepWorkers int
	Version      string
}

type Core struct {
	auth      *jwtAuthenticator
	conf      Config
	logger    *zap.Logger
	metrics   *metrics
	redis     *redis.Client
	registry  *prometheus.Registry
	root      http.Handler
	routerAPI *mux.Router
	routerAux *mux.Router
	runner    querycache.Runner
}

func NewCore(ctx context.Context, conf Config) (*Core, error) {
	if conf.Logger == nil {
		conf.Logger = zap.NewNop()
	}
	if conf.Version == "" {
		conf.Version = "unknown"
	}
	if conf.DefaultResponseFormat == "" {
		conf.DefaultResponseFormat = "json"
	}
	if conf.Precision == 0 {
		conf.Precision = -1
	}
	if conf.Dataset == nil {
		ds, err := dataset.LoadDefault()
		if err != nil {
			return nil, err
		}
		conf.Dataset = ds
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())

	var authenticator *jwtAuthenticator
	if conf.Auth.Enabled || conf.Auth.Secret != "" {
		var err error
		if authenticator, err = newAuthenticator(conf.Logger, registry, conf.Auth); err != nil {
			return nil, err
		}
	}

	index, err := renderIndex()
	if err != nil {
		return nil, err
	}
	routerAux := mux.NewRouter()
	routerAux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(index)
	})

	debug := routerAux.PathPrefix("/debug/pprof").Subrouter()
	debug.HandleFunc("/cmdline", pprof.Cmdline)
	debug.HandleFunc("/profile", pprof.Profile)
	debug.HandleFunc("/symbol", pprof.Symbol)
	debug.HandleFunc("/trace", pprof.Trace)
	debug.PathPrefix("/").HandlerFunc(pprof.Index)

	routerAux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	routerAux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, &api.StatusResponse{Status: "ok", Dataset: conf.Dataset.Source()})
	})
	routerAux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, &api.VersionResponse{Version: conf.Version})
	})

	routerAPI := mux.NewRouter()
	routerAPI.Use(requestIDMiddleware())
	routerAPI.Use(accessLogMiddleware(conf.Logger))
	routerAPI.Use(panicCatchMiddleware(conf.Logger))

	c := &Core{
		auth:      authenticator,
		conf:      conf,
		logger:    conf.Logger.Named("core"),
		metrics:   newMetrics(registry),
		registry:  registry,
		routerAPI: routerAPI,
		routerAux: routerAux,
	}
	if err := c.initRunner(ctx); err != nil {
		c.Shutdown()
		return nil, err
	}
	c.addAPIServerRoutes()
	c.root = http.HandlerFunc(c.route)
	if len(conf.CORSAllowedOrigins) > 0 {
		c.root = corsHandler(conf.CORSAllowedOrigins, c.root)
	}
	c.logger.Info("Started",
		zap.String("dataset", conf.Dataset.Source()),
		zap.Stringer("cache", conf.Cache.Kind),
		zap.Bool("auth", authenticator != nil),
	)
	return c, nil
}

func (c *Core) addAPIServerRoutes() {
	c.authhandle("/auth/identity", handleAuthIdentityGet).Methods("GET")
	c.authhandle("/modes", handleModeList).Methods("GET")
	c.authhandle("/modes/{mode}", handleModeGet).Methods("GET")
	c.authhandle("/query", handleQueryPost).Methods("POST")
	c.authhandle("/query/{mode}", handleQueryGet).Methods("GET")
	c.authhandle("/sweep", handleSweep).Methods("POST")
}

func (c *Core) initRunner(ctx context.Context) (err error) {
	if c.conf.Cache.Kind == querycache.KindRedis {
		c.conf.Redis.Enabled = true
	}
	c.redis, err = NewRedisClient(ctx, c.logger, c.conf.Redis)
	if err != nil {
		return err
	}
	c.runner, err = querycache.New(c.conf.Cache, c.conf.Dataset, c.redis, c.registry)
	return err
}

func (c *Core) handler(f func(*Core, *ResponseWriter, *Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, req, ok := newRequest(w, r, c)
		if ok {
			f(c, res, req)
		}
	})
}

func (c *Core) authhandle(path string, f func(*Core, *ResponseWriter, *Request)) *mux.Route {
	var h http.Handler
	if c.auth != nil {
		h = c.auth.Middleware(c.handler(f))
	} else {
		h = c.handler(f)
	}
	return c.routerAPI.Handle(path, h)
}

func (c *Core) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Core) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.root.ServeHTTP(w, r)
}

func (c *Core) route(w http.ResponseWriter, r *http.Request) {
	var rm mux.RouteMatch
	if c.routerAux.Match(r, &rm) {
		rm.Handler.ServeHTTP(w, r)
		return
	}
	c.routerAPI.ServeHTTP(w, r)
}

func (c *Core) Shutdown() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.logger.Warn("Closing redis client", zap.Error(err))
		}
	}
	c.logger.Info("Shutdown")
}

func renderIndex() ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.New(goldmark.WithExtensions(extension.Table)).Convert(docs, &body); err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf(indexPage, body.String())), nil
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", api.MediaTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
