package storage

import (
	"context"
	"errors"
	"os"
	"syscall"

	"github.com/brimdata/thermo/pkg/fs"
	"github.com/brimdata/thermo/service/srverr"
)

type FileSystem struct{}

var _ Engine = (*FileSystem)(nil)

func NewFileSystem() *FileSystem {
	return &FileSystem{}
}

func (f *FileSystem) Get(ctx context.Context, u *URI) (Reader, error) {
	r, err := fs.Open(u.Filepath())
	if err != nil {
		return nil, wrapfileError(u, err)
	}
	return &fileSizer{r, u}, nil
}

func (f *FileSystem) Size(_ context.Context, u *URI) (int64, error) {
	info, err := os.Stat(u.Filepath())
	if err != nil {
		return 0, wrapfileError(u, err)
	}
	return info.Size(), nil
}

func (f *FileSystem) Exists(_ context.Context, u *URI) (bool, error) {
	_, err := os.Stat(u.Filepath())
	if notExist(err) {
		return false, nil
	}
	if err != nil {
		return false, wrapfileError(u, err)
	}
	return true, nil
}

// notExist reports whether err means nothing is at the path, including a
// path that descends through a regular file.
func notExist(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR)
}

func wrapfileError(uri *URI, err error) error {
	if notExist(err) {
		return srverr.ErrNotFound("%s", uri)
	}
	return err
}

type fileSizer struct {
	*os.File
	uri *URI
}

var _ Sizer = (*fileSizer)(nil)

func (f *fileSizer) Size() (int64, error) {
	info, err := f.File.Stat()
	if err != nil {
		return 0, wrapfileError(f.uri, err)
	}
	return info.Size(), nil
}
