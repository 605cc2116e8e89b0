package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/brimdata/thermo/api"
	"github.com/brimdata/thermo/dataset"
	"github.com/brimdata/thermo/mode"
	"github.com/brimdata/thermo/output"
	"github.com/brimdata/thermo/query"
	"github.com/brimdata/thermo/service/srverr"
	"github.com/brimdata/thermo/table"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Request struct {
	*http.Request
	Logger *zap.Logger
}

func newRequest(w http.ResponseWriter, r *http.Request, c *Core) (*ResponseWriter, *Request, bool) {
	req := &Request{Request: r}
	req.Logger = c.logger.With(zap.String("request_id", req.ID()))
	res := &ResponseWriter{
		ResponseWriter: w,
		Logger:         req.Logger,
		request:        req,
		precision:      c.conf.Precision,
	}
	format, err := api.MediaTypeToFormat(r.Header.Get("Accept"), c.conf.DefaultResponseFormat)
	if err != nil {
		var uerr *api.ErrUnsupportedMimeType
		if !errors.As(err, &uerr) || uerr.Type != "application/x-www-form-urlencoded" {
			res.Format = "json"
			res.Error(srverr.ErrInvalid("could not find supported MIME type in Accept header: %w", err))
			return nil, nil, false
		}
		// curl sets the Accept header to application/x-www-form-urlencoded
		// by default so treat it as no preference.
		format = c.conf.DefaultResponseFormat
	}
	res.Format = format
	return res, req, true
}

func (r *Request) ID() string {
	return api.RequestIDFromContext(r.Context())
}

func (r *Request) StringFromPath(w *ResponseWriter, arg string) (string, bool) {
	v := mux.Vars(r.Request)
	s, ok := v[arg]
	if !ok {
		w.Error(srverr.ErrInvalid("no arg %q in path", arg))
		return "", false
	}
	decoded, err := url.PathUnescape(s)
	if err != nil {
		w.Error(srverr.ErrInvalid("invalid path param %q: %w", arg, err))
		return "", false
	}
	return decoded, true
}

// FloatFromQuery returns the value of the query parameter param, or nil
// if the parameter is absent.
func (r *Request) FloatFromQuery(w *ResponseWriter, param string) (*float64, bool) {
	s := r.URL.Query().Get(param)
	if s == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		w.Error(srverr.ErrInvalid("invalid query param %q: %q is not a number", param, s))
		return nil, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		w.Error(srverr.ErrInvalid("invalid query param %q: %q is not a finite number", param, s))
		return nil, false
	}
	return &f, true
}

func (r *Request) ListFromQuery(param string) []string {
	var out []string
	for _, v := range r.URL.Query()[param] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Unmarshal decodes the JSON request body into body.
func (r *Request) Unmarshal(w *ResponseWriter, body interface{}) bool {
	if typ := r.Header.Get("Content-Type"); typ != "" {
		format, err := api.MediaTypeToFormat(typ, "json")
		if err != nil || format != "json" {
			w.Error(srverr.ErrInvalid("unsupported request Content-Type %q", typ))
			return false
		}
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(body); err != nil {
		w.Error(srverr.ErrInvalid("malformed request body: %w", err))
		return false
	}
	return true
}

type ResponseWriter struct {
	http.ResponseWriter
	Format    string
	Logger    *zap.Logger
	precision int
	request   *Request
	written   int32
}

func (w *ResponseWriter) ContentType() string {
	return w.Header().Get("Content-Type")
}

// Respond writes body as JSON regardless of the negotiated format.
func (w *ResponseWriter) Respond(status int, body interface{}) bool {
	if !atomic.CompareAndSwapInt32(&w.written, 0, 1) {
		return false
	}
	w.Header().Set("Content-Type", api.MediaTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		w.Logger.Warn("Error writing response", zap.Error(err))
		return false
	}
	return true
}

// RespondResults writes results in the negotiated format.  JSON responses
// carry body, the API form of the results.
func (w *ResponseWriter) RespondResults(body interface{}, results ...*query.Result) bool {
	if w.Format == "json" {
		return w.Respond(http.StatusOK, body)
	}
	if !atomic.CompareAndSwapInt32(&w.written, 0, 1) {
		return false
	}
	w.Header().Set("Content-Type", api.FormatToMediaType(w.Format))
	ow, err := output.NewWriter(nopCloser{w}, output.WriterOpts{
		Format:    w.Format,
		Precision: w.precision,
		Units:     true,
	})
	if err == nil {
		for _, res := range results {
			if err = ow.Write(res); err != nil {
				break
			}
		}
	}
	if err == nil {
		err = ow.Close()
	}
	if err != nil {
		// Headers are gone by now so all that is left is to log it.
		w.Logger.Warn("Error writing response", zap.Error(err))
		return false
	}
	return true
}

func (w *ResponseWriter) Error(err error) {
	if errors.Is(err, context.Canceled) && w.request.Context().Err() != nil {
		w.Logger.Info("Request context canceled")
		return
	}
	status, res := errorResponse(err)
	if status >= 500 {
		w.Logger.Warn("Error", zap.Int("status", status), zap.Error(err))
	}
	if atomic.CompareAndSwapInt32(&w.written, 0, 1) {
		w.Header().Set("Content-Type", api.MediaTypeJSON)
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(res); err != nil {
			w.Logger.Warn("Error writing response", zap.Error(err))
		}
	}
}

type nopCloser struct {
	http.ResponseWriter
}

func (nopCloser) Close() error { return nil }

func errorResponse(e error) (status int, ae *api.Error) {
	status = http.StatusInternalServerError
	ae = &api.Error{Type: "Error"}

	var oe *table.OutOfRangeError
	if errors.As(e, &oe) && finite(oe.Value, oe.Min, oe.Max) {
		ae.Info = map[string]float64{"value": oe.Value, "min": oe.Min, "max": oe.Max}
	}

	var ze *srverr.Error
	if !errors.As(e, &ze) {
		ze = &srverr.Error{Err: e}
	}

	switch {
	case errors.Is(e, mode.ErrNotFound):
		ze.Kind = srverr.NotFound
	case errors.Is(e, table.ErrOutOfRange) || errors.Is(e, table.ErrEmptyTable) ||
		errors.Is(e, table.ErrUnknownColumn) || errors.Is(e, dataset.ErrNeedsFilter) ||
		errors.Is(e, dataset.ErrNoFilter):
		if ze.Kind == srverr.Other {
			ze.Kind = srverr.Invalid
		}
	}

	switch ze.Kind {
	case srverr.Invalid:
		status = http.StatusBadRequest
	case srverr.NotFound:
		status = http.StatusNotFound
	case srverr.Exists:
		status = http.StatusBadRequest
	case srverr.Conflict:
		status = http.StatusConflict
	case srverr.NoCredentials:
		status = http.StatusUnauthorized
	case srverr.Forbidden:
		status = http.StatusForbidden
	}

	ae.Kind = ze.Kind.String()
	ae.Message = ze.Message()
	return
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
