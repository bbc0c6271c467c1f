package ops

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/errors"
)

// AddCaseStudySection appends a case study to a project.
func AddCaseStudySection(ctx context.Context, st *Store, projectID string, cs content.CaseStudySection) (*content.Project, error) {
	return mutateProject(ctx, st, projectID, func(p *content.Project) error {
		if err := cs.Validate(); err != nil {
			return err
		}
		p.CaseStudySections = append(p.CaseStudySections, cs)
		return nil
	})
}

// UpdateCaseStudySection replaces the case study at index.
func UpdateCaseStudySection(ctx context.Context, st *Store, projectID string, index int, cs content.CaseStudySection) (*content.Project, error) {
	return mutateProject(ctx, st, projectID, func(p *content.Project) error {
		if err := checkIndex("index", index, len(p.CaseStudySections)); err != nil {
			return err
		}
		if err := cs.Validate(); err != nil {
			return err
		}
		p.CaseStudySections[index] = cs
		return nil
	})
}

// DeleteCaseStudySection removes the case study at index.
func DeleteCaseStudySection(ctx context.Context, st *Store, projectID string, index int) (*content.Project, error) {
	return mutateProject(ctx, st, projectID, func(p *content.Project) error {
		if err := checkIndex("index", index, len(p.CaseStudySections)); err != nil {
			return err
		}
		p.CaseStudySections = slices.Delete(p.CaseStudySections, index, index+1)
		return nil
	})
}

// MoveCaseStudySection moves the case study at from so it ends up at to,
// shifting the ones in between.
func MoveCaseStudySection(ctx context.Context, st *Store, projectID string, from, to int) (*content.Project, error) {
	return mutateProject(ctx, st, projectID, func(p *content.Project) error {
		n := len(p.CaseStudySections)
		if err := checkIndex("from", from, n); err != nil {
			return err
		}
		if err := checkIndex("to", to, n); err != nil {
			return err
		}
		cs := p.CaseStudySections[from]
		p.CaseStudySections = slices.Delete(p.CaseStudySections, from, from+1)
		p.CaseStudySections = slices.Insert(p.CaseStudySections, to, cs)
		return nil
	})
}

// mutateProject loads a project, applies fn, re-validates and writes the
// whole project back. Nothing is written if fn or validation fails.
func mutateProject(ctx context.Context, st *Store, projectID string, fn func(p *content.Project) error) (*content.Project, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(projectID)
	if err := content.ValidateKeySegment("id", id); err != nil {
		return nil, err
	}
	p, err := readProject(ctx, st, id)
	if err != nil {
		return nil, err
	}

	p.Normalize()
	prev := *p
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := p.ValidateEdit(&prev); err != nil {
		return nil, err
	}

	if err := writeDoc(ctx, st.backend, projectKey(id), p); err != nil {
		return nil, err
	}
	return p, nil
}

func checkIndex(field string, index, n int) error {
	if index < 0 || index >= n {
		return errors.NewInvalidField(field, fmt.Sprintf("%d is out of range (project has %d case study sections)", index, n))
	}
	return nil
}
