package ops

import (
	"context"
	"slices"
	"strings"

	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/errors"
	"github.com/maaackz/folio/internal/storage"
)

// GetPage loads a page and resolves its section references in order.
// References to sections that no longer exist are dropped.
func GetPage(ctx context.Context, st *Store, category, slug string) (*content.ResolvedPage, error) {
	category, slug, err := pageAddress(category, slug)
	if err != nil {
		return nil, err
	}

	page, err := readDoc[content.Page](ctx, st.backend, pageKey(category, slug), "page", category+"/"+slug)
	if err != nil {
		return nil, err
	}

	resolved := &content.ResolvedPage{
		Slug:     slug,
		Title:    page.Title,
		Category: category,
		Sections: make([]content.Section, 0, len(page.Sections)),
		Tags:     page.Tags,
	}
	for _, id := range page.Sections {
		if content.ValidateKeySegment("id", id) != nil {
			continue
		}
		section, err := readDoc[content.Section](ctx, st.backend, sectionKey(id), "section", id)
		if errors.Is(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		resolved.Sections = append(resolved.Sections, *section)
	}
	return resolved, nil
}

// SavePageInput contains parameters for the SavePage operation.
type SavePageInput struct {
	Category string
	Slug     string
	Title    string   // default: the slug
	Sections []string // section ids, in display order
	Tags     []string
}

// SavePage upserts a page and lists its slug under the category in the
// structure index, creating the category entry if needed. Both documents
// are written in one batch.
func SavePage(ctx context.Context, st *Store, input SavePageInput) (*content.Page, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	category, slug, err := pageAddress(input.Category, input.Slug)
	if err != nil {
		return nil, err
	}

	page := content.Page{
		Slug:     slug,
		Title:    input.Title,
		Category: category,
		Sections: make([]string, 0, len(input.Sections)),
		Tags:     input.Tags,
	}
	for _, id := range input.Sections {
		if id = strings.TrimSpace(id); id != "" {
			page.Sections = append(page.Sections, id)
		}
	}
	page.Normalize()
	if page.Title == "" {
		page.Title = slug
	}

	pageOp, err := writeOp(pageKey(category, slug), page)
	if err != nil {
		return nil, err
	}

	st.structureMu.Lock()
	defer st.structureMu.Unlock()

	structure, err := loadStructure(ctx, st)
	if err != nil {
		return nil, err
	}
	batch := []storage.Op{pageOp}
	if structure.AddPage(category, slug) {
		op, err := writeOp(structureKey, structure)
		if err != nil {
			return nil, err
		}
		batch = append(batch, op)
	}

	if err := apply(ctx, st.backend, batch); err != nil {
		return nil, err
	}
	return &page, nil
}

// DeletePage removes a page and its structure index entry in one batch.
func DeletePage(ctx context.Context, st *Store, category, slug string) (*DeleteOutput, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	category, slug, err := pageAddress(category, slug)
	if err != nil {
		return nil, err
	}

	key := pageKey(category, slug)
	found, err := exists(ctx, st.backend, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewNotFound("page", category+"/"+slug)
	}

	st.structureMu.Lock()
	defer st.structureMu.Unlock()

	structure, err := loadStructure(ctx, st)
	if err != nil {
		return nil, err
	}
	batch := []storage.Op{storage.DeleteOp(key)}
	if structure.RemovePage(category, slug) {
		op, err := writeOp(structureKey, structure)
		if err != nil {
			return nil, err
		}
		batch = append(batch, op)
	}

	if err := apply(ctx, st.backend, batch); err != nil {
		return nil, err
	}
	return &DeleteOutput{ID: category + "/" + slug, Deleted: true}, nil
}

// ListPages returns the stored pages of a category sorted by slug, with
// section references unresolved.
func ListPages(ctx context.Context, st *Store, category string) ([]content.Page, error) {
	category = strings.TrimSpace(category)
	if err := content.ValidateKeySegment("category", category); err != nil {
		return nil, err
	}

	dir := pageDir(category)
	keys, err := st.backend.ListKeys(ctx, dir)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	pages := make([]content.Page, 0, len(keys))
	for _, key := range keys {
		slug := leafName(dir, key)
		if slug == "" {
			continue
		}
		page, err := readDoc[content.Page](ctx, st.backend, key, "page", category+"/"+slug)
		if errors.Is(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		// Stored pages may predate the category field; the key is authoritative.
		page.Slug = slug
		page.Category = category
		if page.Sections == nil {
			page.Sections = []string{}
		}
		pages = append(pages, *page)
	}
	slices.SortFunc(pages, func(a, b content.Page) int {
		return strings.Compare(a.Slug, b.Slug)
	})
	return pages, nil
}

func pageAddress(category, slug string) (string, string, error) {
	category = strings.TrimSpace(category)
	slug = strings.TrimSpace(slug)
	if err := content.ValidateKeySegment("category", category); err != nil {
		return "", "", err
	}
	if err := content.ValidateKeySegment("slug", slug); err != nil {
		return "", "", err
	}
	return category, slug, nil
}
