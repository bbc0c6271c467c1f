package content

import (
	"regexp"
	"strings"

	"github.com/maaackz/folio/internal/errors"
)

// nonAlnumRegex matches runs of characters outside [a-z0-9]
var nonAlnumRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe token from free text:
// 1. Lowercase
// 2. Replace each run of characters outside [a-z0-9] with a single hyphen
// 3. Strip leading/trailing hyphens
//
// The result is empty when s has no ASCII alphanumerics.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = nonAlnumRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsURLSafe reports whether s is already in Slugify form.
func IsURLSafe(s string) bool {
	return s != "" && Slugify(s) == s
}

// ResolveProjectIdentity fills in a missing id and slug for a new project.
// A missing id comes from the slug when one was given, else from the title.
// A missing slug comes from the title. Explicit values are only trimmed;
// Project.Validate rejects an explicit slug that is not URL-safe.
func ResolveProjectIdentity(id, slug, title string) (string, string) {
	id = strings.TrimSpace(id)
	slug = strings.TrimSpace(slug)

	if id == "" {
		if slug != "" {
			id = Slugify(slug)
		} else {
			id = Slugify(title)
		}
	}
	if slug == "" {
		slug = Slugify(title)
	}
	return id, slug
}

// ValidateKeySegment checks that s can be used as one segment of a storage key.
func ValidateKeySegment(field, s string) error {
	switch {
	case s == "":
		return errors.NewInvalidField(field, "must not be empty")
	case s == "." || s == "..":
		return errors.NewInvalidField(field, "must not be a relative path element")
	case strings.HasPrefix(s, "."):
		return errors.NewInvalidField(field, "must not start with '.'")
	case strings.ContainsAny(s, "/\\"):
		return errors.NewInvalidField(field, "must not contain path separators")
	case strings.ContainsRune(s, 0):
		return errors.NewInvalidField(field, "must not contain NUL")
	}
	return nil
}
