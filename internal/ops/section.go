package ops

import (
	"context"
	"slices"
	"strings"

	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/errors"
)

// ListSections returns every section sorted by id.
func ListSections(ctx context.Context, st *Store) ([]content.Section, error) {
	sections, err := listDocs[content.Section](ctx, st.backend, sectionsPrefix, nil)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(sections, func(a, b content.Section) int {
		return strings.Compare(a.ID, b.ID)
	})
	return sections, nil
}

// GetSection returns the section with the given id.
func GetSection(ctx context.Context, st *Store, id string) (*content.Section, error) {
	id = strings.TrimSpace(id)
	if err := content.ValidateKeySegment("id", id); err != nil {
		return nil, err
	}
	return readDoc[content.Section](ctx, st.backend, sectionKey(id), "section", id)
}

// UpsertSection creates or fully replaces a section keyed on its id.
func UpsertSection(ctx context.Context, st *Store, section content.Section) (*content.Section, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	section.ID = strings.TrimSpace(section.ID)
	section.Title = strings.TrimSpace(section.Title)
	if err := content.ValidateKeySegment("id", section.ID); err != nil {
		return nil, err
	}
	if section.Title == "" {
		return nil, errors.NewInvalidField("title", "is required")
	}

	if err := writeDoc(ctx, st.backend, sectionKey(section.ID), section); err != nil {
		return nil, err
	}
	return &section, nil
}

// DeleteSection removes a section. Deleting an absent section succeeds.
// Pages referencing the section keep the reference; reads drop it.
func DeleteSection(ctx context.Context, st *Store, id string) (*DeleteOutput, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	id = strings.TrimSpace(id)
	if err := content.ValidateKeySegment("id", id); err != nil {
		return nil, err
	}

	key := sectionKey(id)
	found, err := exists(ctx, st.backend, key)
	if err != nil {
		return nil, err
	}
	if found {
		if err := st.backend.Delete(ctx, key); err != nil {
			return nil, errors.NewInternal(err)
		}
	}
	return &DeleteOutput{ID: id, Deleted: found}, nil
}
