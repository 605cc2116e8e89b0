package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/brimdata/thermo/api"
)

const (
	// DefaultPort thermo service port to connect with.
	DefaultPort      = 9867
	DefaultUserAgent = "thermo-client-golang"
)

var (
	// ErrModeNotFound is returned when the service does not know a mode.
	ErrModeNotFound = errors.New("mode not found")
	// ErrUnauthorized is returned when the service rejects the credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

type Connection struct {
	client        *http.Client
	defaultHeader http.Header
	hostURL       string
}

// NewConnection creates a new connection with a base URL set up to talk to
// http://localhost:defaultport
func NewConnection() *Connection {
	u := "http://localhost:" + strconv.Itoa(DefaultPort)
	return NewConnectionTo(u)
}

// NewConnectionTo creates a new connection with a base URL derived from the
// hostURL argument.
func NewConnectionTo(hostURL string) *Connection {
	h := http.Header{
		"Accept":     []string{api.MediaTypeJSON},
		"User-Agent": []string{DefaultUserAgent},
	}
	return &Connection{
		client:        &http.Client{},
		defaultHeader: h,
		hostURL:       strings.TrimSuffix(hostURL, "/"),
	}
}

// ClientHostURL allows us to print the host in log messages and internal error messages
func (c *Connection) ClientHostURL() string {
	return c.hostURL
}

func (c *Connection) SetAuthToken(token string) {
	value := fmt.Sprintf("Bearer %s", token)
	c.defaultHeader.Set(http.CanonicalHeaderKey("Authorization"), value)
}

func (c *Connection) SetUserAgent(useragent string) {
	c.defaultHeader.Set("User-Agent", useragent)
}

type Response struct {
	*http.Response
	Duration time.Duration
}

func (c *Connection) Do(req *Request) (*Response, error) {
	httpreq, err := req.HTTPRequest()
	if err != nil {
		return nil, err
	}
	res, err := c.client.Do(httpreq)
	if err != nil {
		return nil, err
	}
	req.end = time.Now()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		err = parseError(res)
	}
	return &Response{
		Response: res,
		Duration: req.Duration(),
	}, err
}

func (c *Connection) doAndUnmarshal(req *Request, i interface{}) error {
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return json.NewDecoder(res.Body).Decode(i)
}

// parseError parses an error from an http.Response with an error status
// code.  A JSON body is decoded as an api.Error.
func parseError(r *http.Response) error {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	resErr := &ErrorResponse{Response: r}
	if typ := r.Header.Get("Content-Type"); strings.HasPrefix(typ, api.MediaTypeJSON) {
		var apierr api.Error
		if err := json.Unmarshal(body, &apierr); err != nil {
			return err
		}
		resErr.Err = &apierr
	} else {
		resErr.Err = errors.New(strings.TrimSpace(string(body)))
	}
	return resErr
}

func errIsStatus(err error, code int) bool {
	var errRes *ErrorResponse
	return errors.As(err, &errRes) && errRes.StatusCode == code
}

func (c *Connection) NewRequest(ctx context.Context, method, path string, body interface{}) *Request {
	h := make(http.Header)
	for key, val := range c.defaultHeader {
		h[key] = val
	}
	req := newRequest(ctx, c.hostURL, h)
	req.Method = method
	req.Path = path
	req.Body = body
	return req
}

// Ping checks to see if the server and measure the time it takes to
// get back the response.
func (c *Connection) Ping(ctx context.Context) (time.Duration, error) {
	req := c.NewRequest(ctx, http.MethodGet, "/status", nil)
	res, err := c.Do(req)
	if err != nil {
		return 0, err
	}
	res.Body.Close()
	return res.Duration, nil
}

// Version retrieves the version string from the service.
func (c *Connection) Version(ctx context.Context) (string, error) {
	req := c.NewRequest(ctx, http.MethodGet, "/version", nil)
	var res api.VersionResponse
	if err := c.doAndUnmarshal(req, &res); err != nil {
		return "", err
	}
	return res.Version, nil
}

// AuthIdentity returns the identity the service associates with the
// connection's token.
func (c *Connection) AuthIdentity(ctx context.Context) (api.AuthIdentityResponse, error) {
	req := c.NewRequest(ctx, http.MethodGet, "/auth/identity", nil)
	var res api.AuthIdentityResponse
	err := c.doAndUnmarshal(req, &res)
	return res, c.classify(err)
}

func (c *Connection) Modes(ctx context.Context) ([]api.ModeInfo, error) {
	req := c.NewRequest(ctx, http.MethodGet, "/modes", nil)
	var modes []api.ModeInfo
	err := c.doAndUnmarshal(req, &modes)
	return modes, c.classify(err)
}

func (c *Connection) Mode(ctx context.Context, name string) (api.ModeInfo, error) {
	req := c.NewRequest(ctx, http.MethodGet, urlPath("modes", name), nil)
	var info api.ModeInfo
	err := c.doAndUnmarshal(req, &info)
	return info, c.classify(err)
}

func (c *Connection) Query(ctx context.Context, payload api.QueryRequest) (api.QueryResponse, error) {
	req := c.NewRequest(ctx, http.MethodPost, "/query", payload)
	var res api.QueryResponse
	err := c.doAndUnmarshal(req, &res)
	return res, c.classify(err)
}

// QueryFormat runs a query through the GET endpoint and returns the
// response body rendered in format (text, table, csv or json).
func (c *Connection) QueryFormat(ctx context.Context, payload api.QueryRequest, format string) (*Response, error) {
	v := url.Values{}
	if payload.Value != nil {
		v.Set("value", strconv.FormatFloat(*payload.Value, 'g', -1, 64))
	}
	if payload.Filter != nil {
		v.Set("filter", strconv.FormatFloat(*payload.Filter, 'g', -1, 64))
	}
	if len(payload.Outputs) > 0 {
		v.Set("outputs", strings.Join(payload.Outputs, ","))
	}
	req := c.NewRequest(ctx, http.MethodGet, urlPath("query", payload.Mode)+"?"+v.Encode(), nil)
	if typ := api.FormatToMediaType(format); typ != "" {
		req.Header.Set("Accept", typ)
	}
	res, err := c.Do(req)
	return res, c.classify(err)
}

func (c *Connection) Sweep(ctx context.Context, payload api.SweepRequest) (api.SweepResponse, error) {
	req := c.NewRequest(ctx, http.MethodPost, "/sweep", payload)
	var res api.SweepResponse
	err := c.doAndUnmarshal(req, &res)
	return res, c.classify(err)
}

func (c *Connection) classify(err error) error {
	switch {
	case errIsStatus(err, http.StatusNotFound):
		return fmt.Errorf("%w: %v", ErrModeNotFound, err)
	case errIsStatus(err, http.StatusUnauthorized):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return err
}

type ErrorResponse struct {
	*http.Response
	Err error
}

func (e *ErrorResponse) Unwrap() error {
	return e.Err
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("status code %d: %v", e.StatusCode, e.Err)
}

func urlPath(elem ...string) string {
	var s string
	for _, e := range elem {
		s += "/" + url.PathEscape(e)
	}
	return path.Clean(s)
}
