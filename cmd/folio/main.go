package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maaackz/folio/internal/config"
	"github.com/maaackz/folio/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"serve": true, "mcp": true,
	"section": true, "project": true, "page": true,
	"structure": true, "availability": true,
	"export": true, "import": true, "copy": true,
	"hash-password": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode(args []string) bool {
	if len(args) < 2 {
		return false // No args → MCP server
	}
	arg := args[1]
	if cliCommands[arg] {
		return true
	}
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v"
}

// needsStore reports whether the command reads or writes content.
func needsStore(args []string) bool {
	if len(args) < 2 {
		return true
	}
	switch args[1] {
	case "--help", "-h", "--version", "-v", "help", "hash-password":
		return false
	}
	for _, a := range args[2:] {
		if a == "--help" || a == "-h" {
			return false
		}
	}
	return true
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   __       _ _
  / _| ___ | (_) ___
 | |_ / _ \| | |/ _ \
 |  _| (_) | | | (_) |
 |_|  \___/|_|_|\___/

  Portfolio content store

  Usage: folio <command> [options]
         folio --help

  MCP server mode requires piped input.`)
}

// baseDirectory returns $FOLIO_HOME, or ~/.folio.
func baseDirectory() (string, error) {
	if dir := os.Getenv("FOLIO_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".folio"), nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && !isCLIMode(os.Args) && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'folio --help' for usage.\n")
		os.Exit(1)
	}

	baseDir, err := baseDirectory()
	if err != nil {
		fatal("%v", err)
	}

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fatal("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal("invalid config: %v", err)
	}

	serving := len(os.Args) >= 2 && os.Args[1] == "serve"
	log := newLogger(cfg, os.Stderr, serving)

	// Help, version and hash-password need no backend
	if !needsStore(os.Args) {
		app := newCLIApp(nil, cfg, baseDir, log)
		if err := app.Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	st, err := openStore(context.Background(), cfg, baseDir)
	if err != nil {
		fatal("failed to open %s storage: %v", cfg.Storage, err)
	}
	defer st.Close()

	if isCLIMode(os.Args) {
		app := newCLIApp(st, cfg, baseDir, log)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			st.Close()
			os.Exit(1)
		}
		return
	}

	// MCP server mode (default)
	warnUnknownTools(cfg, log)
	if err := mcp.Run(st, cfg, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		st.Close()
		os.Exit(1)
	}
}
