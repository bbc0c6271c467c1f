package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// File stores one document per key below a root directory, mapping keys
// 1:1 to relative paths. This is the layout the portfolio's data/ directory
// has always used.
//
// Writes go to a temp file that is renamed into place, so a single document
// is never half-written. Apply is sequential: a failure part way through a
// batch leaves the earlier documents written.
type File struct {
	root string
}

// NewFile opens (creating if needed) a file backend rooted at dir.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("file backend: empty root directory")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &File{root: dir}, nil
}

// Root returns the backend's root directory.
func (f *File) Root() string {
	return f.root
}

func (f *File) path(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(f.root, filepath.FromSlash(key)), nil
}

// Read returns the document at key.
func (f *File) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}

	file, err := openNoFollow(p, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Write replaces the document at key via temp file and rename.
func (f *File) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := f.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return fmt.Errorf("create directory for %s: %w", key, err)
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generate temp file name: %w", err)
	}
	tempPath := p + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := openNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", key, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	file = nil

	if info, err := os.Lstat(p); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%s: refusing to replace symlink", key)
	}
	if err := os.Rename(tempPath, p); err != nil {
		return fmt.Errorf("finalize %s: %w", key, err)
	}

	success = true
	return nil
}

// Delete removes the document at key.
func (f *File) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// ListKeys walks the root and returns document keys under prefix.
// Hidden files and in-flight temp files are skipped.
func (f *File) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := d.Name()
		if p != f.root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || strings.HasSuffix(name, ".tmp") {
			return nil
		}

		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}

	slices.Sort(keys)
	return keys, nil
}

// Apply validates every op, then applies them one at a time.
func (f *File) Apply(ctx context.Context, ops []Op) error {
	if err := validateOps(ops); err != nil {
		return err
	}
	return applySequential(ctx, f, ops)
}

// Close is a no-op.
func (f *File) Close() error {
	return nil
}
