package service

import (
	"errors"
	"flag"
	"net/http"
	"strings"

	"github.com/brimdata/thermo/api"
	"github.com/brimdata/thermo/service/auth"
	"github.com/brimdata/thermo/service/srverr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Secret   string `yaml:"secret"`
	Audience string `yaml:"audience"`
}

func (c *AuthConfig) SetFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.Enabled, "auth.enabled", false, "require a bearer token on API requests")
	fs.StringVar(&c.Secret, "auth.secret", "", "HS256 secret shared with token issuers (implies -auth.enabled)")
	fs.StringVar(&c.Audience, "auth.audience", "thermo", "expected JWT audience claim")
}

// jwtAuthenticator is a middleware that checks for an HS256 JWT signed with
// the configured secret and naming the configured audience.
type jwtAuthenticator struct {
	logger       *zap.Logger
	validator    *auth.Validator
	unauthorized prometheus.Counter
}

func newAuthenticator(logger *zap.Logger, registerer prometheus.Registerer, conf AuthConfig) (*jwtAuthenticator, error) {
	if conf.Secret == "" {
		return nil, errors.New("authentication enabled without a secret")
	}
	validator, err := auth.NewValidator([]byte(conf.Secret), conf.Audience)
	if err != nil {
		return nil, err
	}
	factory := promauto.With(registerer)
	return &jwtAuthenticator{
		logger:    logger,
		validator: validator,
		unauthorized: factory.NewCounter(prometheus.CounterOpts{
			Name: "request_errors_unauthorized_total",
			Help: "Number of request errors due to bad or missing authorization.",
		}),
	}, nil
}

func (a *jwtAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, err := a.identify(r)
		if err != nil {
			a.unauthorized.Inc()
			a.logger.Info("Unauthorized request",
				zap.String("request_id", api.RequestIDFromContext(r.Context())),
				zap.Error(err))
			status, res := errorResponse(srverr.ErrNoCredentials(err))
			respondJSON(w, status, res)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), ident)))
	})
}

func (a *jwtAuthenticator) identify(r *http.Request) (auth.Identity, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return auth.Identity{}, errors.New("no authorization header")
	}
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return auth.Identity{}, errors.New("authorization header is not a bearer token")
	}
	return a.validator.Validate(strings.TrimSpace(token))
}
