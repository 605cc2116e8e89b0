package mode

import "errors"

var ErrNotFound = errors.New("no such mode")
