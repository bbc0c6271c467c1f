package content

import (
	"fmt"
	"slices"
	"strings"

	"github.com/maaackz/folio/internal/errors"
)

// ProjectCategories is the fixed set of values allowed in Project.Categories.
var ProjectCategories = []string{
	"websites", "games", "software", "design", "videos", "tools",
	"illustration", "photography", "writing", "research", "other",
}

// IsProjectCategory reports whether c is one of ProjectCategories.
func IsProjectCategory(c string) bool {
	return slices.Contains(ProjectCategories, c)
}

// CategorySet returns the canonical categories of p: the explicit
// Categories first, then the legacy Category and Section values, without
// duplicates. Type is not a category and is not included.
func (p *Project) CategorySet() []string {
	set := make([]string, 0, len(p.Categories)+2)
	add := func(c string) {
		c = strings.TrimSpace(c)
		if c != "" && !slices.Contains(set, c) {
			set = append(set, c)
		}
	}
	for _, c := range p.Categories {
		add(c)
	}
	add(p.Category)
	add(p.Section)
	return set
}

// InCategory reports whether p matches a category filter.
func (p *Project) InCategory(category string) bool {
	return slices.Contains(p.CategorySet(), category)
}

// Normalize trims scalar fields, de-duplicates categories, and replaces nil
// lists with empty ones so stored and re-read projects compare equal.
func (p *Project) Normalize() {
	p.ID = strings.TrimSpace(p.ID)
	p.Slug = strings.TrimSpace(p.Slug)
	p.Title = strings.TrimSpace(p.Title)
	p.Link = strings.TrimSpace(p.Link)
	p.Image = strings.TrimSpace(p.Image)

	p.Technologies = cleanTechnologies(p.Technologies)

	cats := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		c = strings.TrimSpace(c)
		if c != "" && !slices.Contains(cats, c) {
			cats = append(cats, c)
		}
	}
	p.Categories = cats

	if p.CaseStudySections == nil {
		p.CaseStudySections = []CaseStudySection{}
	}
}

// Validate checks the invariants a project must satisfy before it is written.
// Legacy category fields are not checked against the enumeration.
func (p *Project) Validate() error {
	return p.validate(nil)
}

// ValidateEdit is Validate for an edit of prev. A slug or category already
// stored on prev is accepted as is, so records written before these rules
// stay editable; anything new must satisfy them.
func (p *Project) ValidateEdit(prev *Project) error {
	return p.validate(prev)
}

func (p *Project) validate(prev *Project) error {
	if err := ValidateKeySegment("id", p.ID); err != nil {
		return err
	}
	if err := ValidateKeySegment("slug", p.Slug); err != nil {
		return err
	}
	if (prev == nil || p.Slug != prev.Slug) && !IsURLSafe(p.Slug) {
		return errors.NewInvalidField("slug", "must be URL-safe (lowercase a-z, 0-9 and single hyphens)")
	}
	if p.Title == "" {
		return errors.NewInvalidField("title", "is required")
	}
	for _, c := range p.Categories {
		if prev != nil && slices.Contains(prev.Categories, c) {
			continue
		}
		if !IsProjectCategory(c) {
			return errors.NewInvalidField("categories", fmt.Sprintf("unknown category %q", c))
		}
	}
	for i, cs := range p.CaseStudySections {
		if err := cs.Validate(); err != nil {
			return fmt.Errorf("caseStudySections[%d]: %w", i, err)
		}
	}
	return nil
}

// IsEmpty reports whether the case study has no title, description or image.
func (cs CaseStudySection) IsEmpty() bool {
	return strings.TrimSpace(cs.Title) == "" &&
		strings.TrimSpace(cs.Description) == "" &&
		strings.TrimSpace(cs.Image) == ""
}

// Validate rejects a case study with nothing in it.
func (cs CaseStudySection) Validate() error {
	if cs.IsEmpty() {
		return errors.NewInvalidRequest("case study section needs a title, description or image")
	}
	return nil
}
