package ops

import (
	"context"
	"slices"
	"strings"

	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/errors"
)

// CreateMode controls identity collision behavior for CreateProject.
type CreateMode string

const (
	CreateModeError   CreateMode = "error"   // default: fail when the id or slug is taken
	CreateModeReplace CreateMode = "replace" // overwrite the project with the same id
)

// ListProjectsInput contains parameters for the ListProjects operation.
type ListProjectsInput struct {
	Category string // optional; matches categories, then legacy category, then legacy section
}

// ListProjects returns projects sorted by id, optionally filtered by category.
func ListProjects(ctx context.Context, st *Store, input ListProjectsInput) ([]content.Project, error) {
	projects, err := loadProjects(ctx, st)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		return projects, nil
	}
	filtered := make([]content.Project, 0, len(projects))
	for _, p := range projects {
		if p.InCategory(category) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// GetProject looks a project up by id, then by slug. An id match wins over
// a different project whose slug equals the same string.
func GetProject(ctx context.Context, st *Store, idOrSlug string) (*content.Project, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, errors.NewInvalidRequest("id or slug is required")
	}

	if content.ValidateKeySegment("id", idOrSlug) == nil {
		p, err := readProject(ctx, st, idOrSlug)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
	}

	p, err := findProjectBySlug(ctx, st, idOrSlug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NewNotFound("project", idOrSlug)
	}
	return p, nil
}

// CreateProjectInput contains parameters for the CreateProject operation.
type CreateProjectInput struct {
	Project content.Project // id and slug are derived from the title when empty
	Mode    CreateMode      // default: CreateModeError
}

// CreateProject stores a new project after resolving its identity.
func CreateProject(ctx context.Context, st *Store, input CreateProjectInput) (*content.Project, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	if input.Mode == "" {
		input.Mode = CreateModeError
	}
	if input.Mode != CreateModeError && input.Mode != CreateModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	p := input.Project
	p.ID, p.Slug = content.ResolveProjectIdentity(p.ID, p.Slug, p.Title)
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if input.Mode == CreateModeError {
		taken, err := exists(ctx, st.backend, projectKey(p.ID))
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errors.NewConflict("project", "id", p.ID)
		}
	}
	if err := checkSlugFree(ctx, st, p.Slug, p.ID); err != nil {
		return nil, err
	}

	if err := writeDoc(ctx, st.backend, projectKey(p.ID), p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProjectInput contains parameters for the UpdateProject operation.
// Nil fields are left unchanged. The id cannot change.
type UpdateProjectInput struct {
	ID                string
	Slug              *string
	Title             *string
	Description       *string
	Image             *string
	Link              *string
	Technologies      *content.Technologies
	Categories        *[]string
	CaseStudySections *[]content.CaseStudySection
	Category          *string
	Section           *string
	Type              *string
}

// UpdateProject applies a partial update to an existing project.
func UpdateProject(ctx context.Context, st *Store, input UpdateProjectInput) (*content.Project, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(input.ID)
	if err := content.ValidateKeySegment("id", id); err != nil {
		return nil, err
	}
	p, err := readProject(ctx, st, id)
	if err != nil {
		return nil, err
	}
	prev := *p
	prev.Normalize()

	setString(&p.Slug, input.Slug)
	setString(&p.Title, input.Title)
	setString(&p.Description, input.Description)
	setString(&p.Image, input.Image)
	setString(&p.Link, input.Link)
	setString(&p.Category, input.Category)
	setString(&p.Section, input.Section)
	setString(&p.Type, input.Type)
	if input.Technologies != nil {
		p.Technologies = *input.Technologies
	}
	if input.Categories != nil {
		p.Categories = *input.Categories
	}
	if input.CaseStudySections != nil {
		p.CaseStudySections = *input.CaseStudySections
	}

	p.Normalize()
	if err := p.ValidateEdit(&prev); err != nil {
		return nil, err
	}
	if p.Slug != prev.Slug {
		if err := checkSlugFree(ctx, st, p.Slug, p.ID); err != nil {
			return nil, err
		}
	}

	if err := writeDoc(ctx, st.backend, projectKey(p.ID), p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProject removes a project. Unlike DeleteSection, deleting an
// absent project is NOT_FOUND so a mistyped id is reported.
func DeleteProject(ctx context.Context, st *Store, id string) (*DeleteOutput, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	id = strings.TrimSpace(id)
	if err := content.ValidateKeySegment("id", id); err != nil {
		return nil, err
	}

	key := projectKey(id)
	found, err := exists(ctx, st.backend, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewNotFound("project", id)
	}
	if err := st.backend.Delete(ctx, key); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &DeleteOutput{ID: id, Deleted: true}, nil
}

// CategoryCounts returns the number of projects in each category of
// content.ProjectCategories, plus "all" for the total.
func CategoryCounts(ctx context.Context, st *Store) (map[string]int, error) {
	projects, err := loadProjects(ctx, st)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(content.ProjectCategories)+1)
	for _, c := range content.ProjectCategories {
		counts[c] = 0
	}
	for _, p := range projects {
		for _, c := range p.CategorySet() {
			if content.IsProjectCategory(c) {
				counts[c]++
			}
		}
	}
	counts["all"] = len(projects)
	return counts, nil
}

// readProject reads the project stored under id. The key is authoritative
// for the id, since older records may lack the field.
func readProject(ctx context.Context, st *Store, id string) (*content.Project, error) {
	p, err := readDoc[content.Project](ctx, st.backend, projectKey(id), "project", id)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return p, nil
}

func setProjectID(p *content.Project, id string) {
	p.ID = id
}

// loadProjects reads every project, sorted by id.
func loadProjects(ctx context.Context, st *Store) ([]content.Project, error) {
	projects, err := listDocs(ctx, st.backend, projectsPrefix, setProjectID)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(projects, func(a, b content.Project) int {
		return strings.Compare(a.ID, b.ID)
	})
	return projects, nil
}

func findProjectBySlug(ctx context.Context, st *Store, slug string) (*content.Project, error) {
	projects, err := loadProjects(ctx, st)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].Slug == slug {
			return &projects[i], nil
		}
	}
	return nil, nil
}

// checkSlugFree fails with CONFLICT when a project other than ownerID
// already uses slug.
func checkSlugFree(ctx context.Context, st *Store, slug, ownerID string) error {
	other, err := findProjectBySlug(ctx, st, slug)
	if err != nil {
		return err
	}
	if other != nil && other.ID != ownerID {
		return errors.NewConflict("project", "slug", slug)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
