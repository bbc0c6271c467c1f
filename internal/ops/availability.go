package ops

import (
	"context"

	"github.com/maaackz/folio/internal/content"
)

// GetAvailability returns the availability record, or the default one when
// it has never been set.
func GetAvailability(ctx context.Context, st *Store) (*content.Availability, error) {
	a, err := readDocOr(ctx, st.backend, availabilityKey, content.DefaultAvailability())
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SetAvailability replaces the availability record.
func SetAvailability(ctx context.Context, st *Store, a content.Availability) (*content.Availability, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := writeDoc(ctx, st.backend, availabilityKey, a); err != nil {
		return nil, err
	}
	return &a, nil
}
