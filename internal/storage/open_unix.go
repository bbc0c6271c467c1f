//go:build !windows

package storage

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// openNoFollow opens path with O_NOFOLLOW so a symlink planted at a document
// path cannot redirect reads or writes outside the root.
// Only the final path component is protected.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		switch {
		case errors.Is(err, syscall.ELOOP):
			return nil, fmt.Errorf("%s: refusing to follow symlink", path)
		case errors.Is(err, syscall.ENOENT):
			return nil, ErrNotExist
		}
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return os.NewFile(uintptr(fd), path), nil
}
