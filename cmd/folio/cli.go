package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/maaackz/folio/internal/auth"
	"github.com/maaackz/folio/internal/config"
	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/errors"
	"github.com/maaackz/folio/internal/events"
	"github.com/maaackz/folio/internal/mcp"
	"github.com/maaackz/folio/internal/ops"
	"github.com/maaackz/folio/internal/web"
)

// maxStdinBytes bounds documents piped into the CLI.
const maxStdinBytes = 16 << 20

// newCLIApp creates the CLI application with all commands.
// CLI callers are the local operator and act as admin.
func newCLIApp(st *ops.Store, cfg *config.Config, baseDir string, log *logrus.Logger) *cli.App {
	app := &cli.App{
		Name:    "folio",
		Usage:   "Portfolio content store",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(st, cfg, log),
			mcpCmd(st, cfg, log),
			sectionCmd(st),
			projectCmd(st),
			pageCmd(st),
			structureCmd(st),
			availabilityCmd(st),
			exportCmd(st, baseDir),
			importCmd(st),
			copyCmd(st, cfg, baseDir),
			hashPasswordCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(st *ops.Store, cfg *config.Config, log *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Aliases: []string{"a"}, Usage: "Listen address (default: listen_addr from config)"},
		},
		Action: func(c *cli.Context) error {
			if addr := c.String("addr"); addr != "" {
				cfg.ListenAddr = addr
			}

			secret := []byte(cfg.SessionSecret)
			if len(secret) == 0 {
				var err error
				if secret, err = auth.RandomSecret(); err != nil {
					return outputError(errors.NewInternal(err))
				}
				log.Warn("session_secret is not set; sessions end when the server restarts")
			}
			if cfg.AdminPasswordHash == "" {
				log.Warn("admin_password_hash is not set; admin login is disabled")
			}

			authn := auth.NewAuthenticator(cfg.AdminUser, cfg.AdminPasswordHash, secret,
				time.Duration(cfg.SessionTTLSeconds)*time.Second)
			hub := events.NewHub()
			srv := web.NewServer(st, authn, hub, cfg, log)
			return web.Run(srv, hub, log)
		},
	}
}

// mcpCmd creates the mcp command; running folio with piped stdin and no
// arguments does the same.
func mcpCmd(st *ops.Store, cfg *config.Config, log *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve MCP tools over stdio",
		Action: func(c *cli.Context) error {
			warnUnknownTools(cfg, log)
			return mcp.Run(st, cfg, Version)
		},
	}
}

// warnUnknownTools logs disabled tool and type names that match nothing.
func warnUnknownTools(cfg *config.Config, log logrus.FieldLogger) {
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.WithField("tools", unknown).Warn("unknown tool names in disabled_tools")
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		log.WithField("types", unknown).Warn("unknown type names in disabled_types")
	}
}

// sectionCmd creates the section command group.
func sectionCmd(st *ops.Store) *cli.Command {
	return &cli.Command{
		Name:  "section",
		Usage: "Manage content sections",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List sections",
				Action: func(c *cli.Context) error {
					out, err := ops.ListSections(c.Context, st)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "get",
				Usage:     "Get a section",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					out, err := ops.GetSection(c.Context, st, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "put",
				Usage:     "Create or replace a section (reads markdown content from stdin)",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Section title"},
				},
				Action: func(c *cli.Context) error {
					body, err := readStdin(c.App.Reader, maxStdinBytes)
					if err != nil {
						return outputError(err)
					}
					out, err := ops.UpsertSection(auth.WithAdmin(c.Context), st, content.Section{
						ID:      c.Args().First(),
						Title:   c.String("title"),
						Content: body,
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a section",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					out, err := ops.DeleteSection(auth.WithAdmin(c.Context), st, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// projectCmd creates the project command group.
func projectCmd(st *ops.Store) *cli.Command {
	return &cli.Command{
		Name:  "project",
		Usage: "Manage projects",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List projects",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Filter by category"},
				},
				Action: func(c *cli.Context) error {
					out, err := ops.ListProjects(c.Context, st, ops.ListProjectsInput{Category: c.String("category")})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "get",
				Usage:     "Get a project by id or slug",
				ArgsUsage: "<id|slug>",
				Action: func(c *cli.Context) error {
					out, err := ops.GetProject(c.Context, st, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:  "create",
				Usage: "Create a project (reads project JSON from stdin)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
				},
				Action: func(c *cli.Context) error {
					var p content.Project
					if err := readStdinJSON(c.App.Reader, &p); err != nil {
						return outputError(err)
					}
					out, err := ops.CreateProject(auth.WithAdmin(c.Context), st, ops.CreateProjectInput{
						Project: p,
						Mode:    ops.CreateMode(c.String("mode")),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "update",
				Usage:     "Update a project (reads a partial project JSON from stdin)",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					var patch struct {
						Slug              *string                     `json:"slug"`
						Title             *string                     `json:"title"`
						Description       *string                     `json:"description"`
						Image             *string                     `json:"image"`
						Link              *string                     `json:"link"`
						Technologies      *content.Technologies       `json:"technologies"`
						Categories        *[]string                   `json:"categories"`
						CaseStudySections *[]content.CaseStudySection `json:"caseStudySections"`
					}
					if err := readStdinJSON(c.App.Reader, &patch); err != nil {
						return outputError(err)
					}
					out, err := ops.UpdateProject(auth.WithAdmin(c.Context), st, ops.UpdateProjectInput{
						ID:                c.Args().First(),
						Slug:              patch.Slug,
						Title:             patch.Title,
						Description:       patch.Description,
						Image:             patch.Image,
						Link:              patch.Link,
						Technologies:      patch.Technologies,
						Categories:        patch.Categories,
						CaseStudySections: patch.CaseStudySections,
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a project",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					out, err := ops.DeleteProject(auth.WithAdmin(c.Context), st, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// pageCmd creates the page command group.
func pageCmd(st *ops.Store) *cli.Command {
	return &cli.Command{
		Name:  "page",
		Usage: "Manage pages",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Get a page with its sections resolved",
				ArgsUsage: "<category> <slug>",
				Action: func(c *cli.Context) error {
					out, err := ops.GetPage(c.Context, st, c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "list",
				Usage:     "List the pages of a category",
				ArgsUsage: "<category>",
				Action: func(c *cli.Context) error {
					out, err := ops.ListPages(c.Context, st, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "save",
				Usage:     "Create or replace a page",
				ArgsUsage: "<category> <slug>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Page title (default: slug)"},
					&cli.StringFlag{Name: "sections", Aliases: []string{"s"}, Usage: "Comma-separated section ids, in order"},
					&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
				},
				Action: func(c *cli.Context) error {
					out, err := ops.SavePage(auth.WithAdmin(c.Context), st, ops.SavePageInput{
						Category: c.Args().Get(0),
						Slug:     c.Args().Get(1),
						Title:    c.String("title"),
						Sections: parseList(c.String("sections")),
						Tags:     parseList(c.String("tags")),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a page",
				ArgsUsage: "<category> <slug>",
				Action: func(c *cli.Context) error {
					out, err := ops.DeletePage(auth.WithAdmin(c.Context), st, c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// structureCmd creates the structure command group.
func structureCmd(st *ops.Store) *cli.Command {
	return &cli.Command{
		Name:  "structure",
		Usage: "Inspect and repair the structure index",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Print the structure index",
				Action: func(c *cli.Context) error {
					out, err := ops.GetStructure(c.Context, st)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:  "sweep",
				Usage: "Remove entries whose page no longer exists",
				Action: func(c *cli.Context) error {
					out, err := ops.SweepStructure(auth.WithAdmin(c.Context), st)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// availabilityCmd creates the availability command group.
func availabilityCmd(st *ops.Store) *cli.Command {
	return &cli.Command{
		Name:  "availability",
		Usage: "Show or set the availability status",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Print the availability status",
				Action: func(c *cli.Context) error {
					out, err := ops.GetAvailability(c.Context, st)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:  "set",
				Usage: "Set the availability status",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Required: true, Usage: "Status text"},
					&cli.StringFlag{Name: "color", Value: content.DefaultAvailabilityColor, Usage: "Hex color"},
				},
				Action: func(c *cli.Context) error {
					out, err := ops.SetAvailability(auth.WithAdmin(c.Context), st, content.Availability{
						Status: c.String("status"),
						Color:  c.String("color"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// exportResult adds the file path to ops.ExportOutput.
type exportResult struct {
	*ops.ExportOutput
	Path string `json:"path"`
}

// exportCmd creates the export command.
func exportCmd(st *ops.Store, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all content to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: <base>/exports/folio-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("path")
			if path == "" {
				path = filepath.Join(baseDir, "exports", fmt.Sprintf("folio-%s.jsonl", time.Now().UTC().Format("20060102-150405")))
			}
			if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
				return outputError(errors.NewInternal(err))
			}

			f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
			if err != nil {
				if stderrors.Is(err, os.ErrExist) {
					return outputError(errors.NewConflict("file", "path", path))
				}
				return outputError(errors.NewInternal(err))
			}

			out, err := ops.Export(c.Context, st, f)
			if cerr := f.Close(); err == nil && cerr != nil {
				err = errors.NewInternal(cerr)
			}
			if err != nil {
				_ = os.Remove(path)
				return outputError(err)
			}
			return outputJSON(c, exportResult{ExportOutput: out, Path: path})
		},
	}
}

// importCmd creates the import command.
func importCmd(st *ops.Store) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import content from a JSONL export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
		},
		Action: func(c *cli.Context) error {
			f, err := os.Open(c.String("path"))
			if err != nil {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("cannot open import file: %v", err)))
			}
			defer f.Close()

			out, err := ops.Import(auth.WithAdmin(c.Context), st, f, ops.ImportMode(c.String("mode")))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

// copyCmd creates the copy command, which moves content between backends.
func copyCmd(st *ops.Store, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "copy",
		Usage: "Copy all content from the configured backend into another one",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Required: true, Usage: "Destination backend: " + strings.Join(config.StorageKinds, "|")},
			&cli.StringFlag{Name: "data-dir", Usage: "Destination data directory (file, sqlite)"},
			&cli.StringFlag{Name: "database-url", Usage: "Destination PostgreSQL URL"},
			&cli.StringFlag{Name: "redis-url", Usage: "Destination redis URL"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace"},
		},
		Action: func(c *cli.Context) error {
			dstCfg := *cfg
			dstCfg.Storage = c.String("to")
			if v := c.String("data-dir"); v != "" {
				dstCfg.DataDir = v
			}
			if v := c.String("database-url"); v != "" {
				dstCfg.DatabaseURL = v
			}
			if v := c.String("redis-url"); v != "" {
				dstCfg.RedisURL = v
			}
			if err := dstCfg.Validate(); err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			dst, err := openStore(c.Context, &dstCfg, baseDir)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			defer dst.Close()

			out, err := ops.Copy(auth.WithAdmin(c.Context), st, dst, ops.ImportMode(c.String("mode")))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

// hashPasswordCmd creates the hash-password command.
func hashPasswordCmd() *cli.Command {
	return &cli.Command{
		Name:  "hash-password",
		Usage: "Print a bcrypt hash for admin_password_hash (reads the password from stdin)",
		Action: func(c *cli.Context) error {
			password, err := readStdin(c.App.Reader, 1024)
			if err != nil {
				return outputError(err)
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			_, err = fmt.Fprintln(c.App.Writer, hash)
			return err
		},
	}
}

// Helper functions

// outputJSON writes v to the app's stdout as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if fErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", fErr.Code, fErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// readStdin reads at most limit bytes from r, trimmed.
func readStdin(r io.Reader, limit int64) (string, error) {
	if r == nil {
		r = os.Stdin
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	if int64(len(data)) > limit {
		return "", errors.NewInvalidRequest(fmt.Sprintf("input exceeds %d bytes", limit))
	}
	return strings.TrimSpace(string(data)), nil
}

// readStdinJSON decodes a JSON document from r into v.
func readStdinJSON(r io.Reader, v any) error {
	text, err := readStdin(r, maxStdinBytes)
	if err != nil {
		return err
	}
	if text == "" {
		return errors.NewInvalidRequest("a JSON document must be piped via stdin")
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

// parseList splits a comma-separated string, dropping empty items.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			items = append(items, t)
		}
	}
	return items
}
