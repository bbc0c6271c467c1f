package ops

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/errors"
	"github.com/maaackz/folio/internal/storage"
)

func sectionIDs(p *content.ResolvedPage) []string {
	ids := make([]string, 0, len(p.Sections))
	for _, s := range p.Sections {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestSavePage_ThenGetResolves(t *testing.T) {
	st := newTestStore(t)
	mustUpsertSection(t, st, "s1", "One", "first")
	mustUpsertSection(t, st, "s2", "Two", "second")

	saved, err := SavePage(adminCtx(), st, SavePageInput{
		Category: "games",
		Slug:     "arcade",
		Title:    "Arcade",
		Sections: []string{"s2", "s1"},
		Tags:     []string{"retro"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s1"}, saved.Sections)

	page, err := GetPage(context.Background(), st, "games", "arcade")
	require.NoError(t, err)
	assert.Equal(t, "Arcade", page.Title)
	assert.Equal(t, "games", page.Category)
	assert.Equal(t, []string{"s2", "s1"}, sectionIDs(page))
	assert.Equal(t, "second", page.Sections[0].Content)
	assert.Equal(t, []string{"retro"}, page.Tags)
}

func TestSavePage_AppendsToStructureOnce(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := SavePage(adminCtx(), st, SavePageInput{Category: "games", Slug: "arcade", Title: "Arcade"})
		require.NoError(t, err)
	}
	_, err := SavePage(adminCtx(), st, SavePageInput{Category: "games", Slug: "puzzle", Title: "Puzzle"})
	require.NoError(t, err)

	s, err := GetStructure(ctx, st)
	require.NoError(t, err)
	require.Len(t, s.Categories, 1)
	assert.Equal(t, content.StructureCategory{Title: "games", Slug: "games", Pages: []string{"arcade", "puzzle"}}, s.Categories[0])
}

func TestSavePage_KeepsExistingCategoryTitle(t *testing.T) {
	st := newTestStore(t)
	_, err := SaveStructure(adminCtx(), st, content.Structure{Categories: []content.StructureCategory{
		{Title: "Games & Toys", Slug: "games", Pages: []string{"old"}},
	}})
	require.NoError(t, err)

	_, err = SavePage(adminCtx(), st, SavePageInput{Category: "games", Slug: "arcade"})
	require.NoError(t, err)

	entry, err := GetCategory(context.Background(), st, "games")
	require.NoError(t, err)
	assert.Equal(t, "Games & Toys", entry.Title)
	assert.Equal(t, []string{"old", "arcade"}, entry.Pages)
}

func TestSavePage_DefaultsTitleToSlug(t *testing.T) {
	st := newTestStore(t)

	page, err := SavePage(adminCtx(), st, SavePageInput{Category: "games", Slug: "arcade"})
	require.NoError(t, err)
	assert.Equal(t, "arcade", page.Title)
}

func TestSavePage_Validation(t *testing.T) {
	st := newTestStore(t)

	_, err := SavePage(adminCtx(), st, SavePageInput{Category: "", Slug: "x"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = SavePage(adminCtx(), st, SavePageInput{Category: "games", Slug: "a/b"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = SavePage(context.Background(), st, SavePageInput{Category: "games", Slug: "x"})
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	keys, err := st.Backend().ListKeys(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestGetPage_DropsDeletedSections(t *testing.T) {
	st := newTestStore(t)
	mustUpsertSection(t, st, "s1", "One", "")
	mustUpsertSection(t, st, "s2", "Two", "")
	mustUpsertSection(t, st, "s3", "Three", "")

	_, err := SavePage(adminCtx(), st, SavePageInput{Category: "c", Slug: "p", Sections: []string{"s1", "s2", "s3"}})
	require.NoError(t, err)

	_, err = DeleteSection(adminCtx(), st, "s2")
	require.NoError(t, err)

	page, err := GetPage(context.Background(), st, "c", "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s3"}, sectionIDs(page))

	// The stored reference is untouched.
	pages, err := ListPages(context.Background(), st, "c")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, []string{"s1", "s2", "s3"}, pages[0].Sections)
}

func TestGetPage_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := GetPage(context.Background(), st, "games", "nothing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestGetPage_DanglingStructureEntryIsNotFound(t *testing.T) {
	st := newTestStore(t)
	_, err := SaveStructure(adminCtx(), st, content.Structure{Categories: []content.StructureCategory{
		{Title: "Games", Slug: "games", Pages: []string{"ghost"}},
	}})
	require.NoError(t, err)

	_, err = GetPage(context.Background(), st, "games", "ghost")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestGetPage_LegacyRecordWithoutCategory(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	mustUpsertSection(t, st, "s1", "One", "")
	require.NoError(t, st.Backend().Write(ctx, pageKey("games", "old"),
		[]byte(`{"title":"Old","slug":"old","sections":["s1"],"tags":["x"]}`)))

	page, err := GetPage(ctx, st, "games", "old")
	require.NoError(t, err)
	assert.Equal(t, "games", page.Category)
	assert.Equal(t, []string{"s1"}, sectionIDs(page))
}

func TestDeletePage(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_, err := SavePage(adminCtx(), st, SavePageInput{Category: "games", Slug: "arcade"})
	require.NoError(t, err)
	_, err = SavePage(adminCtx(), st, SavePageInput{Category: "games", Slug: "puzzle"})
	require.NoError(t, err)

	out, err := DeletePage(adminCtx(), st, "games", "arcade")
	require.NoError(t, err)
	assert.Equal(t, "games/arcade", out.ID)

	_, err = GetPage(ctx, st, "games", "arcade")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	entry, err := GetCategory(ctx, st, "games")
	require.NoError(t, err)
	assert.Equal(t, []string{"puzzle"}, entry.Pages)

	_, err = DeletePage(adminCtx(), st, "games", "arcade")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestListPages(t *testing.T) {
	st := newTestStore(t)
	for _, slug := range []string{"b", "a"} {
		_, err := SavePage(adminCtx(), st, SavePageInput{Category: "games", Slug: slug})
		require.NoError(t, err)
	}
	_, err := SavePage(adminCtx(), st, SavePageInput{Category: "games-extra", Slug: "z"})
	require.NoError(t, err)

	pages, err := ListPages(context.Background(), st, "games")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "a", pages[0].Slug)
	assert.Equal(t, "b", pages[1].Slug)

	empty, err := ListPages(context.Background(), st, "nothing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSavePage_ConcurrentSavesKeepEverySlug(t *testing.T) {
	st := newTestStore(t)
	slugs := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for _, slug := range slugs {
		wg.Add(1)
		go func(slug string) {
			defer wg.Done()
			_, err := SavePage(adminCtx(), st, SavePageInput{Category: "games", Slug: slug})
			assert.NoError(t, err)
		}(slug)
	}
	wg.Wait()

	entry, err := GetCategory(context.Background(), st, "games")
	require.NoError(t, err)
	assert.ElementsMatch(t, slugs, entry.Pages)
}

// failingBatch fails every Apply without writing anything.
type failingBatch struct {
	*storage.Memory
}

func (failingBatch) Apply(context.Context, []storage.Op) error {
	return assert.AnError
}

func TestSavePage_BatchFailureWritesNothing(t *testing.T) {
	st := NewStore(failingBatch{storage.NewMemory()})

	_, err := SavePage(adminCtx(), st, SavePageInput{Category: "games", Slug: "arcade"})
	assert.True(t, errors.Is(err, errors.ErrInternal))

	keys, err := st.Backend().ListKeys(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
