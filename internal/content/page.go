package content

import (
	"slices"
	"strings"
)

// Normalize trims the title and replaces a nil section list with an empty one.
func (p *Page) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	if p.Sections == nil {
		p.Sections = []string{}
	}
	p.Tags = CleanTags(p.Tags)
}

// CleanTags trims tags, drops empties and duplicates, keeping first-seen order.
// Returns nil for an empty result.
func CleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the entry for a category slug, or nil.
func (s *Structure) Find(category string) *StructureCategory {
	for i := range s.Categories {
		if s.Categories[i].Slug == category {
			return &s.Categories[i]
		}
	}
	return nil
}

// AddPage appends slug to the category's page list, creating the category
// (titled with its slug) when missing. Returns false if nothing changed.
func (s *Structure) AddPage(category, slug string) bool {
	entry := s.Find(category)
	if entry == nil {
		s.Categories = append(s.Categories, StructureCategory{
			Title: category,
			Slug:  category,
			Pages: []string{slug},
		})
		return true
	}
	if slices.Contains(entry.Pages, slug) {
		return false
	}
	entry.Pages = append(entry.Pages, slug)
	return true
}

// RemovePage drops slug from the category's page list.
// Returns false if the slug was not listed.
func (s *Structure) RemovePage(category, slug string) bool {
	entry := s.Find(category)
	if entry == nil {
		return false
	}
	i := slices.Index(entry.Pages, slug)
	if i < 0 {
		return false
	}
	entry.Pages = slices.Delete(entry.Pages, i, i+1)
	return true
}

// Normalize collapses duplicate page slugs within each entry and replaces
// nil lists with empty ones.
func (s *Structure) Normalize() {
	if s.Categories == nil {
		s.Categories = []StructureCategory{}
	}
	for i := range s.Categories {
		entry := &s.Categories[i]
		entry.Title = strings.TrimSpace(entry.Title)
		pages := make([]string, 0, len(entry.Pages))
		for _, p := range entry.Pages {
			if !slices.Contains(pages, p) {
				pages = append(pages, p)
			}
		}
		entry.Pages = pages
	}
}
