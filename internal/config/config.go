// Package config resolves where state lives and how the text generator is
// reached. Flags are parsed by kong; this package fills in what flags leave
// open from .env files and the OS keyring.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/julianstephens/threethings/internal/constants"
	"github.com/julianstephens/threethings/internal/keyring"
)

// BackendKind selects the persistence backend
type BackendKind string

const (
	BackendSQLite   BackendKind = "sqlite"
	BackendPostgres BackendKind = "postgres"
	BackendLocal    BackendKind = "local"
	BackendMemory   BackendKind = "memory"
)

// LocalPrefix marks a local (key/value directory) store location
const LocalPrefix = "local:"

// Backend is a parsed --config value
type Backend struct {
	Kind     BackendKind
	Location string
	// FromSecret is set when Location came from the environment or keyring
	// rather than the command line.
	FromSecret bool
}

// ResolveBackend picks the backend for a --config value. A stored PostgreSQL
// connection string (envConn, then the keyring) is used when value is empty
// or names a PostgreSQL server; an empty value without one falls back to the
// default SQLite path.
func ResolveBackend(value, envConn string) (Backend, error) {
	value = strings.TrimSpace(value)
	stored := func() string {
		if envConn != "" {
			return envConn
		}
		return keyring.Lookup(keyring.SecretConnectionString)
	}

	if value == "" {
		if conn := stored(); conn != "" {
			return Backend{Kind: BackendPostgres, Location: conn, FromSecret: true}, nil
		}
		value = constants.DefaultConfigPath
	}
	b, err := ParseBackend(value)
	if err != nil {
		return Backend{}, err
	}
	if b.Kind == BackendPostgres {
		if conn := stored(); conn != "" {
			b.Location = conn
			b.FromSecret = true
		}
	}
	return b, nil
}

// ParseBackend interprets a --config value: a PostgreSQL connection string,
// "local:<dir>" for the local-only store, ":memory:", or a SQLite file path.
func ParseBackend(value string) (Backend, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return Backend{}, errors.New("config location cannot be empty")
	case value == ":memory:":
		return Backend{Kind: BackendMemory, Location: value}, nil
	case strings.HasPrefix(value, "postgres://") || strings.HasPrefix(value, "postgresql://"):
		return Backend{Kind: BackendPostgres, Location: value}, nil
	case strings.HasPrefix(value, LocalPrefix):
		dir, err := ExpandPath(strings.TrimPrefix(value, LocalPrefix))
		if err != nil {
			return Backend{}, err
		}
		return Backend{Kind: BackendLocal, Location: dir}, nil
	}
	path, err := ExpandPath(value)
	if err != nil {
		return Backend{}, err
	}
	return Backend{Kind: BackendSQLite, Location: path}, nil
}

// Dir returns the directory holding logs, backups and .env for this backend.
func (b Backend) Dir() string {
	switch b.Kind {
	case BackendSQLite:
		return filepath.Dir(b.Location)
	case BackendLocal:
		return b.Location
	}
	return DefaultDir()
}

// DefaultDir is the per-user directory for logs, backups and .env.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + constants.AppName
	}
	return filepath.Join(dir, constants.AppName)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// LoadEnv loads .env from the working directory and then from dir. Variables
// already set in the environment win; missing files are ignored.
func LoadEnv(dir string) error {
	for _, path := range []string{constants.EnvFileName, filepath.Join(dir, constants.EnvFileName)} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Generator holds the text generation endpoint settings
type Generator struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ResolveGenerator fills a missing API key from the OS keyring and applies defaults.
func ResolveGenerator(g Generator) Generator {
	if g.APIKey == "" {
		g.APIKey = keyring.Lookup(keyring.SecretGeneratorKey)
	}
	if g.BaseURL == "" {
		g.BaseURL = constants.DefaultGenBase
	}
	if g.Model == "" {
		g.Model = constants.DefaultGenModel
	}
	return g
}
