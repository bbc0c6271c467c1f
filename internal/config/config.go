// Package config loads folio's configuration from config.json, an optional
// config.toml, and FOLIO_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Storage backend names.
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

// StorageKinds lists the accepted values of Config.Storage.
var StorageKinds = []string{StorageFile, StorageSQLite, StoragePostgres, StorageRedis, StorageMemory}

// Config holds application configuration.
type Config struct {
	// Storage selects the document backend: file, sqlite, postgres, redis or memory
	Storage string `json:"storage,omitempty" toml:"storage"`

	// DataDir is the root of the file backend. Relative paths resolve
	// against the base directory. Empty means <base>/data.
	DataDir string `json:"data_dir,omitempty" toml:"data_dir"`

	// DatabaseURL is the PostgreSQL connection URL (storage = "postgres").
	DatabaseURL string `json:"database_url,omitempty" toml:"database_url"`

	// RedisURL is the redis connection URL (storage = "redis").
	RedisURL string `json:"redis_url,omitempty" toml:"redis_url"`

	// ListenAddr is the HTTP listen address for `folio serve`.
	ListenAddr string `json:"listen_addr,omitempty" toml:"listen_addr"`

	// AdminUser is the only username accepted by the login endpoint.
	AdminUser string `json:"admin_user,omitempty" toml:"admin_user"`

	// AdminPasswordHash is a bcrypt hash (see `folio hash-password`).
	// Login is disabled while it is empty.
	AdminPasswordHash string `json:"admin_password_hash,omitempty" toml:"admin_password_hash"`

	// SessionSecret signs session tokens. When empty, serve generates a
	// random secret and sessions do not survive a restart.
	SessionSecret string `json:"session_secret,omitempty" toml:"session_secret"`

	// SessionTTLSeconds is the admin session lifetime.
	SessionTTLSeconds int `json:"session_ttl_seconds,omitempty" toml:"session_ttl_seconds"`

	// LogLevel is a logrus level name.
	LogLevel string `json:"log_level,omitempty" toml:"log_level"`

	// CORSOrigin, when set, is sent as Access-Control-Allow-Origin.
	CORSOrigin string `json:"cors_origin,omitempty" toml:"cors_origin"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited). Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" toml:"db_max_open_conns"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" toml:"db_max_idle_conns"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" toml:"disabled_tools"`

	// DisabledTypes is a list of type names to disable entirely.
	// All tools belonging to disabled types are excluded from registration.
	// Known types: "section", "project", "page", "structure", "availability".
	DisabledTypes []string `json:"disabled_types,omitempty" toml:"disabled_types"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage:           StorageFile,
		ListenAddr:        ":8080",
		AdminUser:         "admin",
		SessionTTLSeconds: 24 * 60 * 60,
		LogLevel:          "info",
	}
}

// Load loads configuration from baseDir/config.json and baseDir/config.toml,
// then applies environment overrides.
// Returns default config if neither file exists.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.folio.
func Load(baseDir string) (*Config, error) {
	fileCfg, err := loadDir(baseDir)
	if err != nil {
		return nil, err
	}
	cfg := Merge(DefaultConfig(), fileCfg)
	applyEnv(cfg)
	return cfg, nil
}

// LoadWithRepo loads configuration from both global (~/.folio) and repo (.folio) directories.
// Repo config is found by walking upward from startDir to find the nearest .folio directory.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Environment variables override both.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadDir(globalDir)
	if err != nil {
		return nil, err
	}

	repo := &Config{}
	if repoDir := FindRepoConfig(startDir); repoDir != "" {
		repo, err = loadDir(repoDir)
		if err != nil {
			return nil, err
		}
	}

	cfg := Merge(Merge(DefaultConfig(), global), repo)
	applyEnv(cfg)
	return cfg, nil
}

// FindRepoConfig walks upward from startDir to find the nearest .folio
// directory holding a config.json or config.toml.
// Returns the directory if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, ".folio")
		for _, name := range []string{"config.json", "config.toml"} {
			if _, err := os.Stat(filepath.Join(candidate, name)); err == nil {
				return candidate
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadDir reads config.json and config.toml from dir; TOML wins on scalars.
// Missing files yield a zero config, not defaults.
func loadDir(dir string) (*Config, error) {
	jsonCfg, err := loadFileRaw(filepath.Join(dir, "config.json"))
	if err != nil {
		return nil, err
	}
	tomlCfg, err := loadTOMLRaw(filepath.Join(dir, "config.toml"))
	if err != nil {
		return nil, err
	}
	return Merge(jsonCfg, tomlCfg), nil
}

// loadFileRaw loads configuration from a JSON file.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}
	return cfg, nil
}

// loadTOMLRaw loads configuration from a TOML file.
// Returns zero-valued config if the file doesn't exist.
func loadTOMLRaw(configPath string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}
	return cfg, nil
}

// applyEnv overrides cfg with FOLIO_* environment variables.
// ADMIN_PASSWORD_HASH is honored for existing deployments.
func applyEnv(cfg *Config) {
	setString := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v := strings.TrimSpace(os.Getenv(key)); v != "" {
				*dst = v
				return
			}
		}
	}
	setInt := func(dst *int, key string) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString(&cfg.Storage, "FOLIO_STORAGE")
	setString(&cfg.DataDir, "FOLIO_DATA_DIR")
	setString(&cfg.DatabaseURL, "FOLIO_DATABASE_URL", "DATABASE_URL")
	setString(&cfg.RedisURL, "FOLIO_REDIS_URL", "REDIS_URL")
	setString(&cfg.ListenAddr, "FOLIO_LISTEN_ADDR")
	setString(&cfg.AdminUser, "FOLIO_ADMIN_USER")
	setString(&cfg.AdminPasswordHash, "FOLIO_ADMIN_PASSWORD_HASH", "ADMIN_PASSWORD_HASH")
	setString(&cfg.SessionSecret, "FOLIO_SESSION_SECRET")
	setString(&cfg.LogLevel, "FOLIO_LOG_LEVEL")
	setString(&cfg.CORSOrigin, "FOLIO_CORS_ORIGIN")
	setInt(&cfg.SessionTTLSeconds, "FOLIO_SESSION_TTL_SECONDS")
	setInt(&cfg.DBMaxOpenConns, "FOLIO_DB_MAX_OPEN_CONNS")
	setInt(&cfg.DBMaxIdleConns, "FOLIO_DB_MAX_IDLE_CONNS")
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	if !slices.Contains(StorageKinds, c.Storage) {
		return fmt.Errorf("storage: unknown backend %q (want one of %s)", c.Storage, strings.Join(StorageKinds, ", "))
	}
	if c.Storage == StoragePostgres && c.DatabaseURL == "" {
		return errors.New("storage postgres requires database_url")
	}
	if c.Storage == StorageRedis && c.RedisURL == "" {
		return errors.New("storage redis requires redis_url")
	}
	if c.SessionTTLSeconds < 0 {
		return errors.New("session_ttl_seconds must not be negative")
	}
	return nil
}

// DataPath resolves DataDir against baseDir.
func (c *Config) DataPath(baseDir string) string {
	switch {
	case c.DataDir == "":
		return filepath.Join(baseDir, "data")
	case filepath.IsAbs(c.DataDir):
		return c.DataDir
	default:
		return filepath.Join(baseDir, c.DataDir)
	}
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		Storage:           pickString(base.Storage, overlay.Storage),
		DataDir:           pickString(base.DataDir, overlay.DataDir),
		DatabaseURL:       pickString(base.DatabaseURL, overlay.DatabaseURL),
		RedisURL:          pickString(base.RedisURL, overlay.RedisURL),
		ListenAddr:        pickString(base.ListenAddr, overlay.ListenAddr),
		AdminUser:         pickString(base.AdminUser, overlay.AdminUser),
		AdminPasswordHash: pickString(base.AdminPasswordHash, overlay.AdminPasswordHash),
		SessionSecret:     pickString(base.SessionSecret, overlay.SessionSecret),
		LogLevel:          pickString(base.LogLevel, overlay.LogLevel),
		CORSOrigin:        pickString(base.CORSOrigin, overlay.CORSOrigin),
		SessionTTLSeconds: pickInt(base.SessionTTLSeconds, overlay.SessionTTLSeconds),
		DBMaxOpenConns:    pickInt(base.DBMaxOpenConns, overlay.DBMaxOpenConns),
		DBMaxIdleConns:    pickInt(base.DBMaxIdleConns, overlay.DBMaxIdleConns),
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func pickString(base, overlay string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func pickInt(base, overlay int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range slices.Concat(a, b) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
