package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/maaackz/folio/internal/content"
)

var caseStudyItemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":       map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"image":       map[string]any{"type": "string"},
	},
}

// Sections

var sectionListToolDef = mcp.NewTool("section_list",
	mcp.WithDescription("List every content section, sorted by id."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var sectionGetToolDef = mcp.NewTool("section_get",
	mcp.WithDescription("Get one content section by id."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Section id")),
)

var sectionUpsertToolDef = mcp.NewTool("section_upsert",
	mcp.WithDescription("Create or fully replace a content section. Pages reference sections by id."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Section id; one path segment, no '/'")),
	mcp.WithString("title", mcp.Required(), mcp.Description("Section title")),
	mcp.WithString("content", mcp.Description("Markdown body")),
)

var sectionDeleteToolDef = mcp.NewTool("section_delete",
	mcp.WithDescription("Delete a content section. Deleting a missing section succeeds with deleted=false."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Section id")),
)

// Projects

var projectListToolDef = mcp.NewTool("project_list",
	mcp.WithDescription("List projects sorted by id, optionally filtered by category."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("category", mcp.Description("Category filter; also matches legacy category and section fields")),
)

var projectGetToolDef = mcp.NewTool("project_get",
	mcp.WithDescription("Get a project by id, falling back to slug."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Project id or slug")),
)

var projectCreateToolDef = mcp.NewTool("project_create",
	mcp.WithDescription("Create a project. Missing id and slug are derived from the title."),
	mcp.WithString("title", mcp.Required(), mcp.Description("Project title")),
	mcp.WithString("id", mcp.Description("Project id (default: derived)")),
	mcp.WithString("slug", mcp.Description("URL slug (default: derived from title)")),
	mcp.WithString("description", mcp.Description("Short description")),
	mcp.WithString("image", mcp.Description("Cover image URL")),
	mcp.WithString("link", mcp.Description("External link")),
	mcp.WithArray("technologies", mcp.Description("Technology names"), mcp.WithStringItems()),
	mcp.WithArray("categories", mcp.Description("Categories"), mcp.WithStringItems(mcp.Enum(content.ProjectCategories...))),
	mcp.WithArray("caseStudySections", mcp.Description("Case study sections in display order"), mcp.Items(caseStudyItemSchema)),
	mcp.WithString("mode", mcp.Description("Collision behavior when the id exists"), mcp.Enum("error", "replace")),
)

var projectUpdateToolDef = mcp.NewTool("project_update",
	mcp.WithDescription("Partially update a project. Omitted fields are left unchanged; the id cannot change."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Project id")),
	mcp.WithString("slug", mcp.Description("New slug")),
	mcp.WithString("title", mcp.Description("New title")),
	mcp.WithString("description", mcp.Description("New description")),
	mcp.WithString("image", mcp.Description("New cover image URL")),
	mcp.WithString("link", mcp.Description("New external link")),
	mcp.WithArray("technologies", mcp.Description("Replacement technology list"), mcp.WithStringItems()),
	mcp.WithArray("categories", mcp.Description("Replacement category list"), mcp.WithStringItems(mcp.Enum(content.ProjectCategories...))),
	mcp.WithArray("caseStudySections", mcp.Description("Replacement case study list"), mcp.Items(caseStudyItemSchema)),
	mcp.WithString("category", mcp.Description("Legacy single category (not checked against the category list)")),
	mcp.WithString("section", mcp.Description("Legacy section name, also used by the category filter")),
	mcp.WithString("type", mcp.Description("Legacy project type")),
)

var projectDeleteToolDef = mcp.NewTool("project_delete",
	mcp.WithDescription("Delete a project. Fails with NOT_FOUND when it does not exist."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Project id")),
)

// Pages

var pageGetToolDef = mcp.NewTool("page_get",
	mcp.WithDescription("Get a page with its sections resolved in order. Missing sections are skipped."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("category", mcp.Required(), mcp.Description("Category slug")),
	mcp.WithString("slug", mcp.Required(), mcp.Description("Page slug")),
)

var pageSaveToolDef = mcp.NewTool("page_save",
	mcp.WithDescription("Create or replace a page and list it under its category in the structure index."),
	mcp.WithString("category", mcp.Required(), mcp.Description("Category slug")),
	mcp.WithString("slug", mcp.Required(), mcp.Description("Page slug")),
	mcp.WithString("title", mcp.Description("Page title (default: slug)")),
	mcp.WithArray("sections", mcp.Description("Section ids in display order"), mcp.WithStringItems()),
	mcp.WithArray("tags", mcp.Description("Page tags"), mcp.WithStringItems()),
)

var pageDeleteToolDef = mcp.NewTool("page_delete",
	mcp.WithDescription("Delete a page and remove it from the structure index."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("category", mcp.Required(), mcp.Description("Category slug")),
	mcp.WithString("slug", mcp.Required(), mcp.Description("Page slug")),
)

// Structure

var structureGetToolDef = mcp.NewTool("structure_get",
	mcp.WithDescription("Get the structure index: categories and their ordered page slugs."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var structureSweepToolDef = mcp.NewTool("structure_sweep",
	mcp.WithDescription("Remove structure entries whose page no longer exists."),
)

// Availability

var availabilityGetToolDef = mcp.NewTool("availability_get",
	mcp.WithDescription("Get the availability status shown on the home page."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var availabilitySetToolDef = mcp.NewTool("availability_set",
	mcp.WithDescription("Set the availability status and indicator color."),
	mcp.WithString("status", mcp.Required(), mcp.Description("Status text")),
	mcp.WithString("color", mcp.Required(), mcp.Description("Hex color like #00ff00")),
)
