// Package mcp exposes the content operations as MCP tools over stdio so
// local agents can edit the portfolio.
package mcp

import (
	"context"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/maaackz/folio/internal/auth"
	"github.com/maaackz/folio/internal/config"
	"github.com/maaackz/folio/internal/ops"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"section", "project", "page", "structure", "availability"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"section_list": {
		def:     sectionListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSectionList },
	},
	"section_get": {
		def:     sectionGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSectionGet },
	},
	"section_upsert": {
		def:     sectionUpsertToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSectionUpsert },
	},
	"section_delete": {
		def:     sectionDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSectionDelete },
	},
	"project_list": {
		def:     projectListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectList },
	},
	"project_get": {
		def:     projectGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectGet },
	},
	"project_create": {
		def:     projectCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectCreate },
	},
	"project_update": {
		def:     projectUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectUpdate },
	},
	"project_delete": {
		def:     projectDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProjectDelete },
	},
	"page_get": {
		def:     pageGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePageGet },
	},
	"page_save": {
		def:     pageSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePageSave },
	},
	"page_delete": {
		def:     pageDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePageDelete },
	},
	"structure_get": {
		def:     structureGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStructureGet },
	},
	"structure_sweep": {
		def:     structureSweepToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStructureSweep },
	},
	"availability_get": {
		def:     availabilityGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAvailabilityGet },
	},
	"availability_set": {
		def:     availabilitySetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAvailabilitySet },
	},
}

// AllToolNames returns all valid tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if !slices.Contains(KnownTypes, name) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "page_save" → "page").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if slices.Contains(types, GetTypeForTool(name)) {
			tools = append(tools, name)
		}
	}
	slices.Sort(tools)
	return tools
}

// NewServer creates a new MCP server with the content tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(st *ops.Store, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"folio",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(st)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, asAdmin(entry.handler(h)))
	}

	return s
}

// asAdmin runs a tool as the admin. The stdio transport is only reachable
// by the local operator who started the process.
func asAdmin(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return next(auth.WithAdmin(ctx), req)
	}
}

// Run starts the MCP server using stdio transport.
func Run(st *ops.Store, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(st, cfg, version))
}
