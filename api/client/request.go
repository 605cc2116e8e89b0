package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

type Request struct {
	Header http.Header
	Method string
	Path   string
	Body   interface{}

	ctx     context.Context
	hostURL string
	start   time.Time
	end     time.Time
}

func newRequest(ctx context.Context, hostURL string, h http.Header) *Request {
	return &Request{
		Header:  h,
		ctx:     ctx,
		hostURL: hostURL,
	}
}

func (r *Request) reader() (io.Reader, error) {
	switch b := r.Body.(type) {
	case nil:
		return nil, nil
	case io.Reader:
		return b, nil
	case string:
		return strings.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	default:
		body, err := json.Marshal(b)
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", "application/json")
		return bytes.NewReader(body), nil
	}
}

func (r *Request) HTTPRequest() (*http.Request, error) {
	body, err := r.reader()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(r.ctx, r.Method, r.hostURL+r.Path, body)
	if err != nil {
		return nil, err
	}
	req.Header = r.Header
	r.start = time.Now()
	return req, nil
}

// Duration is the time from building the request to its response.
func (r *Request) Duration() time.Duration {
	if r.end.IsZero() {
		return time.Since(r.start)
	}
	return r.end.Sub(r.start)
}
