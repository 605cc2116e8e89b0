package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

var errAborted = errors.New("replacer aborted")

// Replacer is an io.WriteCloser that atomically replaces the content of a
// file.  Writes go to a temporary file in the same directory that Close
// renames over the target.  After a failed write or a call to Abort, Close
// removes the temporary file and leaves the target untouched.
type Replacer struct {
	tmp      *os.File
	filename string
	perm     os.FileMode
	err      error
	closed   bool
}

func NewFileReplacer(filename string, perm os.FileMode) (*Replacer, error) {
	filename, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".tmp-"+filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	return &Replacer{tmp: tmp, filename: filename, perm: perm}, nil
}

func (r *Replacer) Write(b []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.tmp.Write(b)
	if err != nil {
		r.err = err
	}
	return n, err
}

// Abort discards everything written.
func (r *Replacer) Abort() {
	if r.err == nil {
		r.err = errAborted
	}
	r.Close()
}

func (r *Replacer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.tmp.Close()
	if err == nil {
		err = os.Chmod(r.tmp.Name(), r.perm)
	}
	if err == nil && r.err == nil {
		err = os.Rename(r.tmp.Name(), r.filename)
	}
	if err != nil || r.err != nil {
		os.Remove(r.tmp.Name())
	}
	if r.err == errAborted {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return err
}

// ReplaceFile replaces the content of name with what fn writes, leaving
// name as it was if fn fails.
func ReplaceFile(name string, perm os.FileMode, fn func(w io.Writer) error) error {
	r, err := NewFileReplacer(name, perm)
	if err != nil {
		return err
	}
	if err := fn(r); err != nil {
		r.Abort()
		return err
	}
	return r.Close()
}
