package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/errors"
)

// TestWorkflow runs a full admin session against every backend.
func TestWorkflow(t *testing.T) {
	for name, factory := range backendFactories() {
		t.Run(name, func(t *testing.T) {
			st := factory(t)
			ctx := context.Background()
			admin := adminCtx()

			mustUpsertSection(t, st, "about", "About", "# Me")
			mustUpsertSection(t, st, "contact", "Contact", "mail me")

			p := mustCreateProject(t, st, content.Project{
				Title:        "Space Game",
				Technologies: content.Technologies{"Go", "WebGL"},
				Categories:   []string{"games"},
			})
			require.Equal(t, "space-game", p.ID)

			_, err := AddCaseStudySection(admin, st, p.ID, content.CaseStudySection{Title: "Physics", Description: "verlet"})
			require.NoError(t, err)

			_, err = SavePage(admin, st, SavePageInput{
				Category: "games",
				Slug:     "space-game",
				Title:    "Space Game",
				Sections: []string{"about", "contact"},
			})
			require.NoError(t, err)

			page, err := GetPage(ctx, st, "games", "space-game")
			require.NoError(t, err)
			require.Len(t, page.Sections, 2)
			assert.Equal(t, "about", page.Sections[0].ID)

			_, err = DeleteSection(admin, st, "contact")
			require.NoError(t, err)
			page, err = GetPage(ctx, st, "games", "space-game")
			require.NoError(t, err)
			assert.Len(t, page.Sections, 1)

			got, err := GetProject(ctx, st, "space-game")
			require.NoError(t, err)
			require.Len(t, got.CaseStudySections, 1)

			counts, err := CategoryCounts(ctx, st)
			require.NoError(t, err)
			assert.Equal(t, 1, counts["games"])
			assert.Equal(t, 1, counts["all"])

			_, err = DeletePage(admin, st, "games", "space-game")
			require.NoError(t, err)
			s, err := GetStructure(ctx, st)
			require.NoError(t, err)
			require.Len(t, s.Categories, 1)
			assert.Empty(t, s.Categories[0].Pages)

			_, err = DeleteProject(admin, st, p.ID)
			require.NoError(t, err)
			_, err = GetProject(ctx, st, p.ID)
			assert.True(t, errors.Is(err, errors.ErrNotFound))
		})
	}
}
