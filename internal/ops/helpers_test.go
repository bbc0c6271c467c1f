package ops

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/maaackz/folio/internal/auth"
	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/db"
	"github.com/maaackz/folio/internal/storage"
)

func adminCtx() context.Context {
	return auth.WithAdmin(context.Background())
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(storage.NewMemory())
}

// backendFactories builds one store per backend kind for tests that must
// hold on every adapter.
func backendFactories() map[string]func(t *testing.T) *Store {
	return map[string]func(t *testing.T) *Store{
		"memory": func(t *testing.T) *Store {
			return NewStore(storage.NewMemory())
		},
		"file": func(t *testing.T) *Store {
			b, err := storage.NewFile(t.TempDir())
			require.NoError(t, err)
			return NewStore(b)
		},
		"sqlite": func(t *testing.T) *Store {
			database, err := db.Init(t.TempDir())
			require.NoError(t, err)
			st := NewStore(db.NewStore(database, db.SQLite))
			t.Cleanup(func() { st.Close() })
			return st
		},
		"redis": func(t *testing.T) *Store {
			s := miniredis.RunT(t)
			b, err := storage.NewRedis("redis://"+s.Addr(), "")
			require.NoError(t, err)
			st := NewStore(b)
			t.Cleanup(func() { st.Close() })
			return st
		},
	}
}

func mustUpsertSection(t *testing.T, st *Store, id, title, body string) {
	t.Helper()
	_, err := UpsertSection(adminCtx(), st, content.Section{ID: id, Title: title, Content: body})
	require.NoError(t, err)
}

func mustCreateProject(t *testing.T, st *Store, p content.Project) *content.Project {
	t.Helper()
	out, err := CreateProject(adminCtx(), st, CreateProjectInput{Project: p})
	require.NoError(t, err)
	return out
}

func stringPtr(s string) *string {
	return &s
}
