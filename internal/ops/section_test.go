package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/errors"
)

func TestUpsertSection_ThenGet(t *testing.T) {
	st := newTestStore(t)

	out, err := UpsertSection(adminCtx(), st, content.Section{ID: " intro ", Title: " Hello ", Content: "# hi"})
	require.NoError(t, err)
	assert.Equal(t, content.Section{ID: "intro", Title: "Hello", Content: "# hi"}, *out)

	got, err := GetSection(context.Background(), st, "intro")
	require.NoError(t, err)
	assert.Equal(t, *out, *got)
}

func TestUpsertSection_IsIdempotent(t *testing.T) {
	st := newTestStore(t)
	s := content.Section{ID: "intro", Title: "Hello", Content: "body"}

	_, err := UpsertSection(adminCtx(), st, s)
	require.NoError(t, err)
	first, err := st.Backend().Read(context.Background(), sectionKey("intro"))
	require.NoError(t, err)

	_, err = UpsertSection(adminCtx(), st, s)
	require.NoError(t, err)
	second, err := st.Backend().Read(context.Background(), sectionKey("intro"))
	require.NoError(t, err)

	assert.Equal(t, first, second)

	list, err := ListSections(context.Background(), st)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpsertSection_FullReplace(t *testing.T) {
	st := newTestStore(t)
	mustUpsertSection(t, st, "intro", "Old", "old body")
	mustUpsertSection(t, st, "intro", "New", "")

	got, err := GetSection(context.Background(), st, "intro")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Empty(t, got.Content)
}

func TestUpsertSection_Validation(t *testing.T) {
	st := newTestStore(t)

	tests := []struct {
		name    string
		section content.Section
	}{
		{name: "missing id", section: content.Section{Title: "T"}},
		{name: "missing title", section: content.Section{ID: "x"}},
		{name: "path in id", section: content.Section{ID: "../x", Title: "T"}},
		{name: "hidden id", section: content.Section{ID: ".x", Title: "T"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UpsertSection(adminCtx(), st, tt.section)
			assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
		})
	}

	keys, err := st.Backend().ListKeys(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys, "nothing written")
}

func TestSectionMutations_RequireAdmin(t *testing.T) {
	st := newTestStore(t)
	mustUpsertSection(t, st, "intro", "Hello", "")

	_, err := UpsertSection(context.Background(), st, content.Section{ID: "other", Title: "T"})
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	_, err = DeleteSection(context.Background(), st, "intro")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	got, err := GetSection(context.Background(), st, "intro")
	require.NoError(t, err, "reads do not need admin")
	assert.Equal(t, "Hello", got.Title)
}

func TestGetSection_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := GetSection(context.Background(), st, "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestListSections_SortedByID(t *testing.T) {
	st := newTestStore(t)
	for _, id := range []string{"b", "a-b", "a", "c"} {
		mustUpsertSection(t, st, id, id, "")
	}

	list, err := ListSections(context.Background(), st)
	require.NoError(t, err)

	ids := make([]string, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"a", "a-b", "b", "c"}, ids)
}

func TestDeleteSection_Idempotent(t *testing.T) {
	st := newTestStore(t)
	mustUpsertSection(t, st, "intro", "Hello", "")

	out, err := DeleteSection(adminCtx(), st, "intro")
	require.NoError(t, err)
	assert.True(t, out.Deleted)

	out, err = DeleteSection(adminCtx(), st, "intro")
	require.NoError(t, err)
	assert.False(t, out.Deleted)

	_, err = GetSection(context.Background(), st, "intro")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
