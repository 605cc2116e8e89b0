package fs

import (
	"os"
)

// Open is os.Open with the file mode the rest of the code base expects.
// It exists so that platform-specific open flags live in one place.
func Open(name string) (*os.File, error) {
	return OpenFile(name, os.O_RDONLY, 0)
}

func OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, flag, perm)
}
