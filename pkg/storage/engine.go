//go:generate mockgen -destination=./mock/mock_engine.go -package=mock github.com/brimdata/thermo/pkg/storage Engine

// Package storage provides read access to reference data held on the local
// file system, behind an HTTP server, or in S3.
package storage

import (
	"context"
	"errors"
	"io"
)

type Reader interface {
	io.Reader
	io.ReaderAt
	io.Closer
}

type Sizer interface {
	Size() (int64, error)
}

var ErrNotSupported = errors.New("method call on storage engine not supported")

type Engine interface {
	Get(context.Context, *URI) (Reader, error)
	Exists(context.Context, *URI) (bool, error)
	Size(context.Context, *URI) (int64, error)
}

func NewRemoteEngine() *Router {
	router := NewRouter()
	router.Enable(HTTPScheme)
	router.Enable(HTTPSScheme)
	router.Enable(S3Scheme)
	return router
}

func NewLocalEngine() *Router {
	router := NewRemoteEngine()
	router.Enable(FileScheme)
	return router
}

func Get(ctx context.Context, engine Engine, u *URI) ([]byte, error) {
	r, err := engine.Get(ctx, u)
	if err != nil {
		return nil, err
	}
	b, err := io.ReadAll(r)
	if closeErr := r.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func Size(r Reader) (int64, error) {
	if sizer, ok := r.(Sizer); ok {
		return sizer.Size()
	}
	return 0, ErrNotSupported
}

// NewSeeker provides a seeker implementation on top of Reader.
// This seeker interface is provided for libraries like parquet-go and
// excelize that are based on an io.ReadSeeker.
func NewSeeker(r Reader) (*Seeker, error) {
	size, err := Size(r)
	if err != nil {
		return nil, err
	}
	return &Seeker{
		ReadSeeker: io.NewSectionReader(r, 0, size),
		Reader:     r,
	}, nil
}

type Seeker struct {
	io.ReadSeeker
	Reader
}

// Read resolves the ambiguous selector s.Read to s.ReadSeeker.Read.
func (s *Seeker) Read(b []byte) (int, error) {
	return s.ReadSeeker.Read(b)
}
