// Package ops implements the content store operations. Every operation
// takes a *Store and returns typed errors from internal/errors.
package ops

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/maaackz/folio/internal/auth"
	"github.com/maaackz/folio/internal/errors"
	"github.com/maaackz/folio/internal/storage"
)

// DeleteOutput contains the result of a delete operation.
type DeleteOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"` // false when nothing was stored under ID
}

// requireAdmin fails unless ctx carries the admin flag.
func requireAdmin(ctx context.Context) error {
	if !auth.IsAdmin(ctx) {
		return errors.NewUnauthorized()
	}
	return nil
}

// readDoc decodes the document at key. A missing document is NOT_FOUND
// with the given kind and identifier.
func readDoc[T any](ctx context.Context, b storage.Backend, key, kind, identifier string) (*T, error) {
	data, err := b.Read(ctx, key)
	if stderrors.Is(err, storage.ErrNotExist) {
		return nil, errors.NewNotFound(kind, identifier)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("decode %s: %w", key, err))
	}
	return &v, nil
}

// readDocOr decodes the document at key, or returns def when it is absent.
func readDocOr[T any](ctx context.Context, b storage.Backend, key string, def T) (T, error) {
	data, err := b.Read(ctx, key)
	if stderrors.Is(err, storage.ErrNotExist) {
		return def, nil
	}
	if err != nil {
		return def, errors.NewInternal(err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return def, errors.NewInternal(fmt.Errorf("decode %s: %w", key, err))
	}
	return v, nil
}

// exists reports whether a document is stored at key.
func exists(ctx context.Context, b storage.Backend, key string) (bool, error) {
	_, err := b.Read(ctx, key)
	if stderrors.Is(err, storage.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// encodeDoc renders v the way the data directory has always been written:
// two-space indented JSON.
func encodeDoc(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return data, nil
}

func writeOp(key string, v any) (storage.Op, error) {
	data, err := encodeDoc(v)
	if err != nil {
		return storage.Op{}, err
	}
	return storage.WriteOp(key, data), nil
}

func writeDoc(ctx context.Context, b storage.Backend, key string, v any) error {
	data, err := encodeDoc(v)
	if err != nil {
		return err
	}
	if err := b.Write(ctx, key, data); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func apply(ctx context.Context, b storage.Backend, ops []storage.Op) error {
	if err := storage.Apply(ctx, b, ops); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// listDocs decodes every direct child document of prefix. When setName is
// non-nil it is called with each document's key name, which is
// authoritative over the body. Documents removed between listing and
// reading are skipped.
func listDocs[T any](ctx context.Context, b storage.Backend, prefix string, setName func(*T, string)) ([]T, error) {
	keys, err := b.ListKeys(ctx, prefix)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	out := make([]T, 0, len(keys))
	for _, key := range keys {
		name := leafName(prefix, key)
		if name == "" {
			continue
		}
		data, err := b.Read(ctx, key)
		if stderrors.Is(err, storage.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, errors.NewInternal(fmt.Errorf("decode %s: %w", key, err))
		}
		if setName != nil {
			setName(&v, name)
		}
		out = append(out, v)
	}
	return out, nil
}
