package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/brimdata/thermo/service/srverr"
)

type HTTPEngine struct {
	client *http.Client
}

var _ Engine = (*HTTPEngine)(nil)

func NewHTTP() *HTTPEngine {
	return &HTTPEngine{client: http.DefaultClient}
}

// Get fetches the whole body so that the returned Reader supports ReadAt.
// Reference data is small enough that this is not a concern.
func (h *HTTPEngine) Get(ctx context.Context, u *URI) (Reader, error) {
	resp, err := h.do(ctx, http.MethodGet, u)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return NewBytesReader(b), nil
}

func (h *HTTPEngine) Size(ctx context.Context, u *URI) (int64, error) {
	resp, err := h.do(ctx, http.MethodHead, u)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	if resp.ContentLength < 0 {
		return 0, ErrNotSupported
	}
	return resp.ContentLength, nil
}

func (h *HTTPEngine) Exists(ctx context.Context, u *URI) (bool, error) {
	resp, err := h.do(ctx, http.MethodHead, u)
	if err != nil {
		if srverr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	resp.Body.Close()
	return true, nil
}

func (h *HTTPEngine) do(ctx context.Context, method string, u *URI) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var msg bytes.Buffer
		io.Copy(&msg, io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, srverr.ErrNotFound("%s", u)
		}
		return nil, errors.New(resp.Status)
	}
	return resp, nil
}
