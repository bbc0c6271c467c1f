//go:build windows

package storage

import (
	"errors"
	"io/fs"
	"os"
)

// openNoFollow opens path. O_NOFOLLOW is not available on Windows.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return f, nil
}
