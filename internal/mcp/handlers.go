package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/errors"
	"github.com/maaackz/folio/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store *ops.Store
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st *ops.Store) *Handlers {
	return &Handlers{store: st}
}

// Request types for each tool

// IDRequest addresses a section or project.
type IDRequest struct {
	ID string `json:"id"`
}

// SectionUpsertRequest represents the arguments for section_upsert.
type SectionUpsertRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

// ProjectListRequest represents the arguments for project_list.
type ProjectListRequest struct {
	Category string `json:"category,omitempty"`
}

// ProjectCreateRequest represents the arguments for project_create.
type ProjectCreateRequest struct {
	ID                string                     `json:"id,omitempty"`
	Slug              string                     `json:"slug,omitempty"`
	Title             string                     `json:"title"`
	Description       string                     `json:"description,omitempty"`
	Image             string                     `json:"image,omitempty"`
	Link              string                     `json:"link,omitempty"`
	Technologies      content.Technologies       `json:"technologies,omitempty"`
	Categories        []string                   `json:"categories,omitempty"`
	CaseStudySections []content.CaseStudySection `json:"caseStudySections,omitempty"`
	Mode              string                     `json:"mode,omitempty"`
}

// ProjectUpdateRequest represents the arguments for project_update.
type ProjectUpdateRequest struct {
	ID                string                      `json:"id"`
	Slug              *string                     `json:"slug,omitempty"`
	Title             *string                     `json:"title,omitempty"`
	Description       *string                     `json:"description,omitempty"`
	Image             *string                     `json:"image,omitempty"`
	Link              *string                     `json:"link,omitempty"`
	Technologies      *content.Technologies       `json:"technologies,omitempty"`
	Categories        *[]string                   `json:"categories,omitempty"`
	CaseStudySections *[]content.CaseStudySection `json:"caseStudySections,omitempty"`
	Category          *string                     `json:"category,omitempty"`
	Section           *string                     `json:"section,omitempty"`
	Type              *string                     `json:"type,omitempty"`
}

// PageRequest addresses a page.
type PageRequest struct {
	Category string `json:"category"`
	Slug     string `json:"slug"`
}

// PageSaveRequest represents the arguments for page_save.
type PageSaveRequest struct {
	Category string   `json:"category"`
	Slug     string   `json:"slug"`
	Title    string   `json:"title,omitempty"`
	Sections []string `json:"sections,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// AvailabilitySetRequest represents the arguments for availability_set.
type AvailabilitySetRequest struct {
	Status string `json:"status"`
	Color  string `json:"color"`
}

// Handler implementations

// HandleSectionList handles the section_list tool call.
func (h *Handlers) HandleSectionList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sections, err := ops.ListSections(ctx, h.store)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"sections": sections})
}

// HandleSectionGet handles the section_get tool call.
func (h *Handlers) HandleSectionGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	section, err := ops.GetSection(ctx, h.store, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(section)
}

// HandleSectionUpsert handles the section_upsert tool call.
func (h *Handlers) HandleSectionUpsert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SectionUpsertRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	section, err := ops.UpsertSection(ctx, h.store, content.Section{
		ID:      input.ID,
		Title:   input.Title,
		Content: input.Content,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(section)
}

// HandleSectionDelete handles the section_delete tool call.
func (h *Handlers) HandleSectionDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.DeleteSection(ctx, h.store, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleProjectList handles the project_list tool call.
func (h *Handlers) HandleProjectList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	projects, err := ops.ListProjects(ctx, h.store, ops.ListProjectsInput{Category: input.Category})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"projects": projects})
}

// HandleProjectGet handles the project_get tool call.
func (h *Handlers) HandleProjectGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	p, err := ops.GetProject(ctx, h.store, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(p)
}

// HandleProjectCreate handles the project_create tool call.
func (h *Handlers) HandleProjectCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	p, err := ops.CreateProject(ctx, h.store, ops.CreateProjectInput{
		Project: content.Project{
			ID:                input.ID,
			Slug:              input.Slug,
			Title:             input.Title,
			Description:       input.Description,
			Image:             input.Image,
			Link:              input.Link,
			Technologies:      input.Technologies,
			Categories:        input.Categories,
			CaseStudySections: input.CaseStudySections,
		},
		Mode: ops.CreateMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(p)
}

// HandleProjectUpdate handles the project_update tool call.
func (h *Handlers) HandleProjectUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProjectUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	p, err := ops.UpdateProject(ctx, h.store, ops.UpdateProjectInput{
		ID:                input.ID,
		Slug:              input.Slug,
		Title:             input.Title,
		Description:       input.Description,
		Image:             input.Image,
		Link:              input.Link,
		Technologies:      input.Technologies,
		Categories:        input.Categories,
		CaseStudySections: input.CaseStudySections,
		Category:          input.Category,
		Section:           input.Section,
		Type:              input.Type,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(p)
}

// HandleProjectDelete handles the project_delete tool call.
func (h *Handlers) HandleProjectDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.DeleteProject(ctx, h.store, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePageGet handles the page_get tool call.
func (h *Handlers) HandlePageGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PageRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	page, err := ops.GetPage(ctx, h.store, input.Category, input.Slug)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(page)
}

// HandlePageSave handles the page_save tool call.
func (h *Handlers) HandlePageSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PageSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	page, err := ops.SavePage(ctx, h.store, ops.SavePageInput{
		Category: input.Category,
		Slug:     input.Slug,
		Title:    input.Title,
		Sections: input.Sections,
		Tags:     input.Tags,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(page)
}

// HandlePageDelete handles the page_delete tool call.
func (h *Handlers) HandlePageDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PageRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.DeletePage(ctx, h.store, input.Category, input.Slug)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleStructureGet handles the structure_get tool call.
func (h *Handlers) HandleStructureGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := ops.GetStructure(ctx, h.store)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(s)
}

// HandleStructureSweep handles the structure_sweep tool call.
func (h *Handlers) HandleStructureSweep(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.SweepStructure(ctx, h.store)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleAvailabilityGet handles the availability_get tool call.
func (h *Handlers) HandleAvailabilityGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := ops.GetAvailability(ctx, h.store)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(a)
}

// HandleAvailabilitySet handles the availability_set tool call.
func (h *Handlers) HandleAvailabilitySet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AvailabilitySetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	a, err := ops.SetAvailability(ctx, h.store, content.Availability{
		Status: input.Status,
		Color:  input.Color,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(a)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var fErr *errors.FolioError
	if stderrors.As(err, &fErr) && fErr.Code != errors.ErrInternal {
		errorObj := map[string]any{
			"code":    fErr.Code,
			"message": fErr.Message,
			"status":  fErr.Status,
		}
		if fErr.Details != nil {
			errorObj["details"] = fErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	text, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(text)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
