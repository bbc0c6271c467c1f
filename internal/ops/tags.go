package ops

import (
	"context"

	"github.com/maaackz/folio/internal/content"
)

// GetTags returns the page tag vocabulary; empty when never written.
func GetTags(ctx context.Context, st *Store) ([]string, error) {
	tags, err := readDocOr(ctx, st.backend, tagsKey, []string{})
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// SetTags replaces the tag vocabulary after trimming and de-duplicating.
func SetTags(ctx context.Context, st *Store, tags []string) ([]string, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	cleaned := content.CleanTags(tags)
	if cleaned == nil {
		cleaned = []string{}
	}
	if err := writeDoc(ctx, st.backend, tagsKey, cleaned); err != nil {
		return nil, err
	}
	return cleaned, nil
}
