package ops

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/errors"
)

func seedSite(t *testing.T, st *Store) {
	t.Helper()
	mustUpsertSection(t, st, "intro", "Intro", "hello\nworld")
	mustCreateProject(t, st, content.Project{Title: "Site", Categories: []string{"websites"}})
	_, err := SavePage(adminCtx(), st, SavePageInput{Category: "games", Slug: "arcade", Sections: []string{"intro"}})
	require.NoError(t, err)
	_, err = SetAvailability(adminCtx(), st, content.Availability{Status: "busy", Color: "#123456"})
	require.NoError(t, err)
}

func TestExport_Format(t *testing.T) {
	st := newTestStore(t)
	seedSite(t, st)

	var buf bytes.Buffer
	out, err := Export(context.Background(), st, &buf)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Count, "section, project, page, structure, availability")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)

	var header ExportHeader
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &header))
	assert.True(t, header.FolioExport)
	assert.Equal(t, ExportSchemaVersion, header.SchemaVersion)

	var rec ExportRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "availability.json", rec.Key)
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := newTestStore(t)
	seedSite(t, src)

	var buf bytes.Buffer
	_, err := Export(context.Background(), src, &buf)
	require.NoError(t, err)

	dst := newTestStore(t)
	out, err := Import(adminCtx(), dst, &buf, ImportModeError)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Imported)
	assert.Empty(t, out.Errors)

	page, err := GetPage(context.Background(), dst, "games", "arcade")
	require.NoError(t, err)
	require.Len(t, page.Sections, 1)
	assert.Equal(t, "hello\nworld", page.Sections[0].Content)

	a, err := GetAvailability(context.Background(), dst)
	require.NoError(t, err)
	assert.Equal(t, "busy", a.Status)
}

func TestImport_ModeErrorConflicts(t *testing.T) {
	st := newTestStore(t)
	mustUpsertSection(t, st, "intro", "Existing", "")

	input := strings.Join([]string{
		`{"_folio_export":true,"schema_version":"1.0","exported_at":1}`,
		`{"key":"sections/new.json","doc":{"id":"new","title":"New","content":""}}`,
		`{"key":"sections/intro.json","doc":{"id":"intro","title":"Imported","content":""}}`,
	}, "\n")

	_, err := Import(adminCtx(), st, strings.NewReader(input), ImportModeError)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	_, err = GetSection(context.Background(), st, "new")
	assert.True(t, errors.Is(err, errors.ErrNotFound), "nothing written")

	out, err := Import(adminCtx(), st, strings.NewReader(input), ImportModeReplace)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Imported)

	got, err := GetSection(context.Background(), st, "intro")
	require.NoError(t, err)
	assert.Equal(t, "Imported", got.Title)
}

func TestImport_BadLines(t *testing.T) {
	input := strings.Join([]string{
		`{not json}`,
		`{"key":"../etc/passwd","doc":{}}`,
		`{"key":"sections/nodoc.json"}`,
		`{"key":"sections/ok.json","doc":{"id":"ok","title":"OK","content":""}}`,
	}, "\n")

	st := newTestStore(t)
	out, err := Import(adminCtx(), st, strings.NewReader(input), ImportModeError)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Imported)
	assert.Len(t, out.Errors, 3)
	_, err = GetSection(context.Background(), st, "ok")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	out, err = Import(adminCtx(), st, strings.NewReader(input), ImportModeReplace)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Imported)
	assert.Equal(t, 3, out.Skipped)
	assert.Equal(t, 1, out.Errors[0].Line)
	assert.Equal(t, "PARSE_ERROR", out.Errors[0].Code)
}

func TestImport_RequiresAdminAndValidMode(t *testing.T) {
	st := newTestStore(t)

	_, err := Import(context.Background(), st, strings.NewReader(""), ImportModeError)
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	_, err = Import(adminCtx(), st, strings.NewReader(""), "rename")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestCopy(t *testing.T) {
	factories := backendFactories()
	src := factories["file"](t)
	seedSite(t, src)

	dst := factories["sqlite"](t)
	out, err := Copy(adminCtx(), src, dst, ImportModeError)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Copied)

	p, err := GetProject(context.Background(), dst, "site")
	require.NoError(t, err)
	assert.Equal(t, []string{"websites"}, p.Categories)

	_, err = Copy(adminCtx(), src, dst, ImportModeError)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	out, err = Copy(adminCtx(), src, dst, ImportModeReplace)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Copied)
}

func TestImport_RejectsRecordsThatDisagreeWithKey(t *testing.T) {
	input := strings.Join([]string{
		`{"key":"projects/a.json","doc":{"id":"b","slug":"a","title":"A"}}`,
		`{"key":"sections/s.json","doc":["not","a","section"]}`,
		`{"key":"pages/games/arcade.json","doc":{"slug":"other","category":"games","title":"x","sections":[]}}`,
		`{"key":"projects/c.json","doc":{"title":"No slug"}}`,
		`{"key":"projects/ok.json","doc":{"slug":"ok","title":"OK"}}`,
	}, "\n")

	st := newTestStore(t)
	out, err := Import(adminCtx(), st, strings.NewReader(input), ImportModeReplace)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Imported)
	require.Len(t, out.Errors, 4)
	for _, e := range out.Errors {
		assert.Equal(t, "INVALID_RECORD", e.Code, e.Message)
	}

	p, err := GetProject(context.Background(), st, "ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", p.ID)
}

func TestImport_ReplaceRejectsDuplicateSlugs(t *testing.T) {
	st := newTestStore(t)
	mustCreateProject(t, st, content.Project{ID: "a", Slug: "shared", Title: "A"})

	input := `{"key":"projects/b.json","doc":{"id":"b","slug":"shared","title":"B"}}`
	_, err := Import(adminCtx(), st, strings.NewReader(input), ImportModeReplace)
	assert.True(t, errors.Is(err, errors.ErrConflict))

	_, err = GetProject(context.Background(), st, "b")
	assert.True(t, errors.Is(err, errors.ErrNotFound), "nothing written")

	// Replacing the owner of the slug is fine
	input = `{"key":"projects/a.json","doc":{"id":"a","slug":"shared","title":"A2"}}`
	out, err := Import(adminCtx(), st, strings.NewReader(input), ImportModeReplace)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Imported)
}

func TestCopy_RejectsDuplicateSlugs(t *testing.T) {
	src := newTestStore(t)
	mustCreateProject(t, src, content.Project{ID: "b", Slug: "shared", Title: "B"})

	dst := newTestStore(t)
	mustCreateProject(t, dst, content.Project{ID: "a", Slug: "shared", Title: "A"})

	_, err := Copy(adminCtx(), src, dst, ImportModeReplace)
	assert.True(t, errors.Is(err, errors.ErrConflict))
}
