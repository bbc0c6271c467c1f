package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/errors"
)

// GetStructure returns the structure index; {categories: []} when never written.
func GetStructure(ctx context.Context, st *Store) (*content.Structure, error) {
	return loadStructure(ctx, st)
}

// SaveStructure replaces the whole structure index.
func SaveStructure(ctx context.Context, st *Store, structure content.Structure) (*content.Structure, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(structure.Categories))
	for i := range structure.Categories {
		entry := &structure.Categories[i]
		entry.Slug = strings.TrimSpace(entry.Slug)
		field := fmt.Sprintf("categories[%d].slug", i)
		if err := content.ValidateKeySegment(field, entry.Slug); err != nil {
			return nil, err
		}
		if seen[entry.Slug] {
			return nil, errors.NewInvalidField(field, fmt.Sprintf("duplicate category %q", entry.Slug))
		}
		seen[entry.Slug] = true
		for j, p := range entry.Pages {
			entry.Pages[j] = strings.TrimSpace(p)
			if err := content.ValidateKeySegment(fmt.Sprintf("categories[%d].pages[%d]", i, j), entry.Pages[j]); err != nil {
				return nil, err
			}
		}
	}
	structure.Normalize()

	st.structureMu.Lock()
	defer st.structureMu.Unlock()

	if err := writeDoc(ctx, st.backend, structureKey, structure); err != nil {
		return nil, err
	}
	return &structure, nil
}

// GetCategory returns one structure entry.
func GetCategory(ctx context.Context, st *Store, slug string) (*content.StructureCategory, error) {
	slug = strings.TrimSpace(slug)
	structure, err := loadStructure(ctx, st)
	if err != nil {
		return nil, err
	}
	entry := structure.Find(slug)
	if entry == nil {
		return nil, errors.NewNotFound("category", slug)
	}
	return entry, nil
}

// PageRef addresses one page.
type PageRef struct {
	Category string `json:"category"`
	Slug     string `json:"slug"`
}

// SweepStructureOutput contains the result of the SweepStructure operation.
type SweepStructureOutput struct {
	Removed   []PageRef          `json:"removed"`
	Structure *content.Structure `json:"structure"`
}

// SweepStructure drops index entries whose page record is missing.
// Category entries are kept even when left empty.
func SweepStructure(ctx context.Context, st *Store) (*SweepStructureOutput, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	st.structureMu.Lock()
	defer st.structureMu.Unlock()

	structure, err := loadStructure(ctx, st)
	if err != nil {
		return nil, err
	}

	removed := make([]PageRef, 0)
	for i := range structure.Categories {
		entry := &structure.Categories[i]
		kept := make([]string, 0, len(entry.Pages))
		for _, slug := range entry.Pages {
			found := false
			if content.ValidateKeySegment("slug", slug) == nil && content.ValidateKeySegment("category", entry.Slug) == nil {
				found, err = exists(ctx, st.backend, pageKey(entry.Slug, slug))
				if err != nil {
					return nil, err
				}
			}
			if found {
				kept = append(kept, slug)
			} else {
				removed = append(removed, PageRef{Category: entry.Slug, Slug: slug})
			}
		}
		entry.Pages = kept
	}

	if len(removed) > 0 {
		if err := writeDoc(ctx, st.backend, structureKey, structure); err != nil {
			return nil, err
		}
	}
	return &SweepStructureOutput{Removed: removed, Structure: structure}, nil
}

func loadStructure(ctx context.Context, st *Store) (*content.Structure, error) {
	structure, err := readDocOr(ctx, st.backend, structureKey, content.Structure{})
	if err != nil {
		return nil, err
	}
	structure.Normalize()
	return &structure, nil
}
