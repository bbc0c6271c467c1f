// Package storage implements the document backends the content store runs on.
//
// Every backend holds opaque JSON documents addressed by slash-separated keys
// such as "projects/my-site.json". The SQL backend lives in internal/db.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotExist is returned by Read when no document is stored under the key.
var ErrNotExist = errors.New("document does not exist")

// Backend defines the interface for document backends.
type Backend interface {
	// Read returns the document stored under key, or ErrNotExist.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores data under key, replacing any previous document.
	Write(ctx context.Context, key string, data []byte) error

	// Delete removes the document under key. A missing key is not an error.
	Delete(ctx context.Context, key string) error

	// ListKeys returns every key starting with prefix, sorted ascending.
	ListKeys(ctx context.Context, prefix string) ([]string, error)

	// Close releases the backend's resources.
	Close() error
}

// Batcher is implemented by backends that can apply several operations as
// one unit. Backends that can, apply them all-or-nothing.
type Batcher interface {
	Apply(ctx context.Context, ops []Op) error
}

// OpKind selects what an Op does.
type OpKind int

const (
	OpWrite OpKind = iota
	OpDelete
)

// Op is one write or delete inside a batch.
type Op struct {
	Kind OpKind
	Key  string
	Data []byte
}

// WriteOp returns an Op storing data under key.
func WriteOp(key string, data []byte) Op {
	return Op{Kind: OpWrite, Key: key, Data: data}
}

// DeleteOp returns an Op removing key.
func DeleteOp(key string) Op {
	return Op{Kind: OpDelete, Key: key}
}

// Apply runs ops against b, as one batch when b is a Batcher and one by one
// otherwise.
func Apply(ctx context.Context, b Backend, ops []Op) error {
	if batcher, ok := b.(Batcher); ok {
		return batcher.Apply(ctx, ops)
	}
	return applySequential(ctx, b, ops)
}

func applySequential(ctx context.Context, b Backend, ops []Op) error {
	for _, op := range ops {
		var err error
		switch op.Kind {
		case OpWrite:
			err = b.Write(ctx, op.Key, op.Data)
		case OpDelete:
			err = b.Delete(ctx, op.Key)
		default:
			err = fmt.Errorf("unknown op kind %d", op.Kind)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ValidateKey rejects keys that are empty, absolute, or not in clean form
// (no "." or ".." elements, no doubled or trailing slashes, no backslashes).
func ValidateKey(key string) error {
	switch {
	case key == "":
		return errors.New("empty key")
	case strings.HasPrefix(key, "/"):
		return fmt.Errorf("key %q is absolute", key)
	case strings.ContainsAny(key, "\\\x00"):
		return fmt.Errorf("key %q contains an invalid character", key)
	case path.Clean(key) != key:
		return fmt.Errorf("key %q is not clean", key)
	case key == ".." || strings.HasPrefix(key, "../"):
		return fmt.Errorf("key %q escapes the store", key)
	}
	return nil
}

func validateOps(ops []Op) error {
	for _, op := range ops {
		if err := ValidateKey(op.Key); err != nil {
			return err
		}
		if op.Kind != OpWrite && op.Kind != OpDelete {
			return fmt.Errorf("unknown op kind %d", op.Kind)
		}
	}
	return nil
}
