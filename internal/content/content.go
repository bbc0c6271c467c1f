// Package content defines the portfolio entity model and the pure rules
// (identity derivation, legacy field normalization) applied to it.
package content

// Section is a named, reusable block of content that pages reference by ID.
type Section struct {
	// ID is chosen by the admin and never changes; pages embed it as a reference
	ID string `json:"id"`

	Title string `json:"title"`

	// Content is markdown
	Content string `json:"content"`
}

// CaseStudySection is a sub-entry owned by exactly one Project.
// It has no identity of its own and is addressed by position.
type CaseStudySection struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// Project is a portfolio entry.
type Project struct {
	// ID is unique across the store and is the storage key
	ID string `json:"id"`

	// Slug is unique across the store and URL-safe
	Slug string `json:"slug"`

	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Image        string       `json:"image,omitempty"`
	Technologies Technologies `json:"technologies"`
	Link         string       `json:"link,omitempty"`

	// Categories is drawn from ProjectCategories
	Categories []string `json:"categories"`

	// CaseStudySections decodes from either "caseStudySections" or the
	// lowercase "casestudysections" key (JSON keys match case-insensitively).
	CaseStudySections []CaseStudySection `json:"caseStudySections"`

	// Legacy single-valued classification, kept readable for old records.
	Category string `json:"category,omitempty"`
	Section  string `json:"section,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Page is a composition of section references under a category.
type Page struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Sections []string `json:"sections"`
	Tags     []string `json:"tags,omitempty"`
}

// ResolvedPage is a Page whose section references have been looked up.
type ResolvedPage struct {
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Sections []Section `json:"sections"`
	Tags     []string  `json:"tags,omitempty"`
}

// StructureCategory is one entry of the structure index.
type StructureCategory struct {
	Title string   `json:"title"`
	Slug  string   `json:"slug"`
	Pages []string `json:"pages"`
}

// Structure maps categories to their ordered page slugs.
type Structure struct {
	Categories []StructureCategory `json:"categories"`
}

// Availability is the singleton status indicator shown on the home page.
type Availability struct {
	Status string `json:"status"`
	Color  string `json:"color"`
}
