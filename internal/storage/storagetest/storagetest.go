// Package storagetest provides a conformance suite every storage backend
// must pass.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maaackz/folio/internal/storage"
)

// Factory returns a fresh, empty backend. Cleanup is the factory's job.
type Factory func(t *testing.T) storage.Backend

// Run exercises the Backend contract against backends built by newBackend.
func Run(t *testing.T, newBackend Factory) {
	t.Run("ReadMissing", func(t *testing.T) {
		b := newBackend(t)
		_, err := b.Read(context.Background(), "sections/missing.json")
		require.ErrorIs(t, err, storage.ErrNotExist)
	})

	t.Run("WriteThenRead", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		require.NoError(t, b.Write(ctx, "sections/intro.json", []byte(`{"id":"intro"}`)))
		got, err := b.Read(ctx, "sections/intro.json")
		require.NoError(t, err)
		assert.Equal(t, `{"id":"intro"}`, string(got))

		require.NoError(t, b.Write(ctx, "sections/intro.json", []byte(`{"id":"intro","title":"v2"}`)))
		got, err = b.Read(ctx, "sections/intro.json")
		require.NoError(t, err)
		assert.Equal(t, `{"id":"intro","title":"v2"}`, string(got))
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		require.NoError(t, b.Write(ctx, "projects/p.json", []byte(`{}`)))
		require.NoError(t, b.Delete(ctx, "projects/p.json"))
		require.NoError(t, b.Delete(ctx, "projects/p.json"))

		_, err := b.Read(ctx, "projects/p.json")
		require.ErrorIs(t, err, storage.ErrNotExist)
	})

	t.Run("ListKeysSortedByPrefix", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		keys, err := b.ListKeys(ctx, "projects/")
		require.NoError(t, err)
		assert.Empty(t, keys)

		for _, k := range []string{
			"projects/b.json",
			"projects/a.json",
			"pages/games/arcade.json",
			"pages/games/puzzle.json",
			"pages/websites/demo.json",
			"structure.json",
		} {
			require.NoError(t, b.Write(ctx, k, []byte(`{}`)))
		}

		keys, err = b.ListKeys(ctx, "projects/")
		require.NoError(t, err)
		assert.Equal(t, []string{"projects/a.json", "projects/b.json"}, keys)

		keys, err = b.ListKeys(ctx, "pages/games/")
		require.NoError(t, err)
		assert.Equal(t, []string{"pages/games/arcade.json", "pages/games/puzzle.json"}, keys)

		keys, err = b.ListKeys(ctx, "")
		require.NoError(t, err)
		assert.Len(t, keys, 6)
		assert.IsIncreasing(t, keys)
	})

	t.Run("ApplyMixedBatch", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		require.NoError(t, b.Write(ctx, "pages/games/old.json", []byte(`{}`)))
		require.NoError(t, storage.Apply(ctx, b, []storage.Op{
			storage.WriteOp("pages/games/new.json", []byte(`{"slug":"new"}`)),
			storage.WriteOp("structure.json", []byte(`{"categories":[]}`)),
			storage.DeleteOp("pages/games/old.json"),
		}))

		got, err := b.Read(ctx, "pages/games/new.json")
		require.NoError(t, err)
		assert.Equal(t, `{"slug":"new"}`, string(got))

		_, err = b.Read(ctx, "pages/games/old.json")
		require.ErrorIs(t, err, storage.ErrNotExist)
	})

	t.Run("ApplyRejectsBadKeyBeforeWriting", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		err := storage.Apply(ctx, b, []storage.Op{
			storage.WriteOp("sections/ok.json", []byte(`{}`)),
			storage.WriteOp("../escape.json", []byte(`{}`)),
		})
		require.Error(t, err)

		_, err = b.Read(ctx, "sections/ok.json")
		require.ErrorIs(t, err, storage.ErrNotExist)
	})

	t.Run("WriteRejectsBadKeys", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()

		for _, key := range []string{"", "/abs.json", "../up.json", "a//b.json", "a/./b.json", `a\b.json`} {
			assert.Error(t, b.Write(ctx, key, []byte(`{}`)), "key %q", key)
		}
	})
}
