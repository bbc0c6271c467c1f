package content

import (
	"regexp"
	"strings"

	"github.com/maaackz/folio/internal/errors"
)

// Default availability shown before the admin has ever set one.
const (
	DefaultAvailabilityStatus = "i am available for work."
	DefaultAvailabilityColor  = "#00ff00"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// DefaultAvailability returns the availability used when none is stored.
func DefaultAvailability() Availability {
	return Availability{
		Status: DefaultAvailabilityStatus,
		Color:  DefaultAvailabilityColor,
	}
}

// Validate requires a status and a #rgb or #rrggbb color.
func (a *Availability) Validate() error {
	a.Status = strings.TrimSpace(a.Status)
	a.Color = strings.TrimSpace(a.Color)
	if a.Status == "" {
		return errors.NewInvalidField("status", "is required")
	}
	if a.Color == "" {
		return errors.NewInvalidField("color", "is required")
	}
	if !hexColorRegex.MatchString(a.Color) {
		return errors.NewInvalidField("color", "must be a hex color like #00ff00")
	}
	return nil
}
