package web

import (
	"html/template"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/maaackz/folio/internal/auth"
	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/errors"
	"github.com/maaackz/folio/internal/events"
	"github.com/maaackz/folio/internal/ops"
)

// Handlers contains HTTP route handlers for the API.
type Handlers struct {
	store *ops.Store
	auth  *auth.Authenticator
	hub   *events.Hub
	log   logrus.FieldLogger
}

// publish announces a successful mutation on the change feed.
func (h *Handlers) publish(t events.Type, kind, id string) {
	if h.hub != nil {
		h.hub.Publish(events.Event{Type: t, Kind: kind, ID: id})
	}
}

func (h *Handlers) fail(w http.ResponseWriter, err error) {
	renderError(w, h.log, err)
}

// HandleHealth handles GET /api/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// --- sections ---

// renderedSection is a section with its markdown converted to HTML.
type renderedSection struct {
	content.Section
	HTML template.HTML `json:"html"`
}

func renderSection(s content.Section) renderedSection {
	return renderedSection{Section: s, HTML: renderMarkdown(s.Content)}
}

// HandleListSections handles GET /api/sections.
func (h *Handlers) HandleListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := ops.ListSections(r.Context(), h.store)
	if err != nil {
		h.fail(w, err)
		return
	}
	renderJSON(w, http.StatusOK, sections)
}

// HandleGetSection handles GET /api/sections/{id}.
func (h *Handlers) HandleGetSection(w http.ResponseWriter, r *http.Request) {
	section, err := ops.GetSection(r.Context(), h.store, r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if wantsHTML(r) {
		renderJSON(w, http.StatusOK, renderSection(*section))
		return
	}
	renderJSON(w, http.StatusOK, section)
}

// HandleUpsertSection handles POST and PUT /api/sections/{id}. The id in
// the path wins over any id in the body.
func (h *Handlers) HandleUpsertSection(w http.ResponseWriter, r *http.Request) {
	var section content.Section
	if err := decodeJSON(r, w, &section); err != nil {
		h.fail(w, err)
		return
	}
	section.ID = r.PathValue("id")

	out, err := ops.UpsertSection(r.Context(), h.store, section)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.publish(events.Saved, "section", out.ID)
	renderJSON(w, http.StatusOK, out)
}

// HandleDeleteSection handles DELETE /api/sections/{id}.
func (h *Handlers) HandleDeleteSection(w http.ResponseWriter, r *http.Request) {
	out, err := ops.DeleteSection(r.Context(), h.store, r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if out.Deleted {
		h.publish(events.Deleted, "section", out.ID)
	}
	renderJSON(w, http.StatusOK, out)
}

// --- projects ---

// HandleListProjects handles GET /api/projects and
// GET /api/projects/category/{category}.
func (h *Handlers) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	if category == "" {
		category = r.URL.Query().Get("category")
	}
	projects, err := ops.ListProjects(r.Context(), h.store, ops.ListProjectsInput{Category: category})
	if err != nil {
		h.fail(w, err)
		return
	}
	renderJSON(w, http.StatusOK, projects)
}

// HandleCategoryCounts handles GET /api/projects/counts.
func (h *Handlers) HandleCategoryCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := ops.CategoryCounts(r.Context(), h.store)
	if err != nil {
		h.fail(w, err)
		return
	}
	renderJSON(w, http.StatusOK, counts)
}

// HandleGetProject handles GET /api/projects/{id}; {id} may also be a slug.
func (h *Handlers) HandleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := ops.GetProject(r.Context(), h.store, r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	renderJSON(w, http.StatusOK, p)
}

// HandleCreateProject handles POST /api/projects[?mode=replace].
func (h *Handlers) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	var p content.Project
	if err := decodeJSON(r, w, &p); err != nil {
		h.fail(w, err)
		return
	}
	out, err := ops.CreateProject(r.Context(), h.store, ops.CreateProjectInput{
		Project: p,
		Mode:    ops.CreateMode(r.URL.Query().Get("mode")),
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.publish(events.Saved, "project", out.ID)
	renderJSON(w, http.StatusCreated, out)
}

// updateProjectBody is the partial-update payload; absent fields stay unchanged.
type updateProjectBody struct {
	Slug              *string                     `json:"slug"`
	Title             *string                     `json:"title"`
	Description       *string                     `json:"description"`
	Image             *string                     `json:"image"`
	Link              *string                     `json:"link"`
	Technologies      *content.Technologies       `json:"technologies"`
	Categories        *[]string                   `json:"categories"`
	CaseStudySections *[]content.CaseStudySection `json:"caseStudySections"`
	Category          *string                     `json:"category"`
	Section           *string                     `json:"section"`
	Type              *string                     `json:"type"`
}

// HandleUpdateProject handles PUT /api/projects/{id}.
func (h *Handlers) HandleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var body updateProjectBody
	if err := decodeJSON(r, w, &body); err != nil {
		h.fail(w, err)
		return
	}
	out, err := ops.UpdateProject(r.Context(), h.store, ops.UpdateProjectInput{
		ID:                r.PathValue("id"),
		Slug:              body.Slug,
		Title:             body.Title,
		Description:       body.Description,
		Image:             body.Image,
		Link:              body.Link,
		Technologies:      body.Technologies,
		Categories:        body.Categories,
		CaseStudySections: body.CaseStudySections,
		Category:          body.Category,
		Section:           body.Section,
		Type:              body.Type,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.publish(events.Saved, "project", out.ID)
	renderJSON(w, http.StatusOK, out)
}

// HandleDeleteProject handles DELETE /api/projects/{id}.
func (h *Handlers) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	out, err := ops.DeleteProject(r.Context(), h.store, r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.publish(events.Deleted, "project", out.ID)
	renderJSON(w, http.StatusOK, out)
}

// HandleAddCaseStudy handles POST /api/projects/{id}/case-studies.
func (h *Handlers) HandleAddCaseStudy(w http.ResponseWriter, r *http.Request) {
	var cs content.CaseStudySection
	if err := decodeJSON(r, w, &cs); err != nil {
		h.fail(w, err)
		return
	}
	out, err := ops.AddCaseStudySection(r.Context(), h.store, r.PathValue("id"), cs)
	h.projectChanged(w, out, err)
}

// HandleUpdateCaseStudy handles PUT /api/projects/{id}/case-studies/{index}.
func (h *Handlers) HandleUpdateCaseStudy(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		h.fail(w, err)
		return
	}
	var cs content.CaseStudySection
	if err := decodeJSON(r, w, &cs); err != nil {
		h.fail(w, err)
		return
	}
	out, err := ops.UpdateCaseStudySection(r.Context(), h.store, r.PathValue("id"), index, cs)
	h.projectChanged(w, out, err)
}

// HandleDeleteCaseStudy handles DELETE /api/projects/{id}/case-studies/{index}.
func (h *Handlers) HandleDeleteCaseStudy(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		h.fail(w, err)
		return
	}
	out, err := ops.DeleteCaseStudySection(r.Context(), h.store, r.PathValue("id"), index)
	h.projectChanged(w, out, err)
}

// HandleMoveCaseStudy handles POST /api/projects/{id}/case-studies/{index}/move
// with body {"to": n}.
func (h *Handlers) HandleMoveCaseStudy(w http.ResponseWriter, r *http.Request) {
	from, err := pathIndex(r, "index")
	if err != nil {
		h.fail(w, err)
		return
	}
	var body struct {
		To *int `json:"to"`
	}
	if err := decodeJSON(r, w, &body); err != nil {
		h.fail(w, err)
		return
	}
	if body.To == nil {
		h.fail(w, errors.NewInvalidField("to", "is required"))
		return
	}
	out, err := ops.MoveCaseStudySection(r.Context(), h.store, r.PathValue("id"), from, *body.To)
	h.projectChanged(w, out, err)
}

func (h *Handlers) projectChanged(w http.ResponseWriter, p *content.Project, err error) {
	if err != nil {
		h.fail(w, err)
		return
	}
	h.publish(events.Saved, "project", p.ID)
	renderJSON(w, http.StatusOK, p)
}

// --- pages ---

// renderedPage is a resolved page whose sections carry rendered HTML.
type renderedPage struct {
	Slug     string            `json:"slug"`
	Title    string            `json:"title"`
	Category string            `json:"category"`
	Sections []renderedSection `json:"sections"`
	Tags     []string          `json:"tags,omitempty"`
}

// HandleListPages handles GET /api/pages/{category}.
func (h *Handlers) HandleListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := ops.ListPages(r.Context(), h.store, r.PathValue("category"))
	if err != nil {
		h.fail(w, err)
		return
	}
	renderJSON(w, http.StatusOK, pages)
}

// HandleGetPage handles GET /api/pages/{category}/{slug}[?format=html].
func (h *Handlers) HandleGetPage(w http.ResponseWriter, r *http.Request) {
	page, err := ops.GetPage(r.Context(), h.store, r.PathValue("category"), r.PathValue("slug"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if !wantsHTML(r) {
		renderJSON(w, http.StatusOK, page)
		return
	}

	out := renderedPage{
		Slug:     page.Slug,
		Title:    page.Title,
		Category: page.Category,
		Sections: make([]renderedSection, 0, len(page.Sections)),
		Tags:     page.Tags,
	}
	for _, s := range page.Sections {
		out.Sections = append(out.Sections, renderSection(s))
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleSavePage handles POST /api/pages/{category}/{slug}.
func (h *Handlers) HandleSavePage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title    string   `json:"title"`
		Sections []string `json:"sections"`
		Tags     []string `json:"tags"`
	}
	if err := decodeJSON(r, w, &body); err != nil {
		h.fail(w, err)
		return
	}
	page, err := ops.SavePage(r.Context(), h.store, ops.SavePageInput{
		Category: r.PathValue("category"),
		Slug:     r.PathValue("slug"),
		Title:    body.Title,
		Sections: body.Sections,
		Tags:     body.Tags,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	h.publish(events.Saved, "page", page.Category+"/"+page.Slug)
	renderJSON(w, http.StatusOK, page)
}

// HandleDeletePage handles DELETE /api/pages/{category}/{slug}.
func (h *Handlers) HandleDeletePage(w http.ResponseWriter, r *http.Request) {
	out, err := ops.DeletePage(r.Context(), h.store, r.PathValue("category"), r.PathValue("slug"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.publish(events.Deleted, "page", out.ID)
	renderJSON(w, http.StatusOK, out)
}

// --- structure, tags, availability ---

// HandleGetStructure handles GET /api/structure.
func (h *Handlers) HandleGetStructure(w http.ResponseWriter, r *http.Request) {
	s, err := ops.GetStructure(r.Context(), h.store)
	if err != nil {
		h.fail(w, err)
		return
	}
	renderJSON(w, http.StatusOK, s)
}

// HandleSaveStructure handles POST /api/structure.
func (h *Handlers) HandleSaveStructure(w http.ResponseWriter, r *http.Request) {
	var s content.Structure
	if err := decodeJSON(r, w, &s); err != nil {
		h.fail(w, err)
		return
	}
	out, err := ops.SaveStructure(r.Context(), h.store, s)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.publish(events.Saved, "structure", "")
	renderJSON(w, http.StatusOK, out)
}

// HandleGetCategory handles GET /api/structure/{slug}.
func (h *Handlers) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	entry, err := ops.GetCategory(r.Context(), h.store, r.PathValue("slug"))
	if err != nil {
		h.fail(w, err)
		return
	}
	renderJSON(w, http.StatusOK, entry)
}

// HandleSweepStructure handles POST /api/structure/sweep.
func (h *Handlers) HandleSweepStructure(w http.ResponseWriter, r *http.Request) {
	out, err := ops.SweepStructure(r.Context(), h.store)
	if err != nil {
		h.fail(w, err)
		return
	}
	if len(out.Removed) > 0 {
		h.publish(events.Saved, "structure", "")
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleGetTags handles GET /api/tags.
func (h *Handlers) HandleGetTags(w http.ResponseWriter, r *http.Request) {
	tags, err := ops.GetTags(r.Context(), h.store)
	if err != nil {
		h.fail(w, err)
		return
	}
	renderJSON(w, http.StatusOK, tags)
}

// HandleSetTags handles POST /api/tags with a JSON array of strings.
func (h *Handlers) HandleSetTags(w http.ResponseWriter, r *http.Request) {
	var tags []string
	if err := decodeJSON(r, w, &tags); err != nil {
		h.fail(w, err)
		return
	}
	out, err := ops.SetTags(r.Context(), h.store, tags)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.publish(events.Saved, "tags", "")
	renderJSON(w, http.StatusOK, out)
}

// HandleGetAvailability handles GET /api/availability.
func (h *Handlers) HandleGetAvailability(w http.ResponseWriter, r *http.Request) {
	a, err := ops.GetAvailability(r.Context(), h.store)
	if err != nil {
		h.fail(w, err)
		return
	}
	renderJSON(w, http.StatusOK, a)
}

// HandleSetAvailability handles POST /api/availability.
func (h *Handlers) HandleSetAvailability(w http.ResponseWriter, r *http.Request) {
	var a content.Availability
	if err := decodeJSON(r, w, &a); err != nil {
		h.fail(w, err)
		return
	}
	out, err := ops.SetAvailability(r.Context(), h.store, a)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.publish(events.Saved, "availability", "")
	renderJSON(w, http.StatusOK, out)
}

// pathIndex parses an integer path parameter.
func pathIndex(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, errors.NewInvalidField(name, "must be an integer")
	}
	return v, nil
}
