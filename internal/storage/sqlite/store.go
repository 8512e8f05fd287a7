// Package sqlite stores the state document in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/threethings/internal/constants"
	"github.com/julianstephens/threethings/internal/migration"
	"github.com/julianstephens/threethings/internal/storage"
	"github.com/julianstephens/threethings/migrations"
)

type Store struct {
	path         string
	db           *sql.DB
	pollInterval time.Duration
}

func NewStore(path string) *Store {
	return &Store{
		path:         path,
		pollInterval: constants.PollInterval,
	}
}

// SetPollInterval changes how often Watch checks for a new revision
func (s *Store) SetPollInterval(d time.Duration) {
	s.pollInterval = d
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", "file:"+s.path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

// Init creates the database file and applies every migration.
func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}
	if _, err := s.Migrate(nil); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens an initialized database and checks its schema version.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}
	if err := s.open(); err != nil {
		return err
	}
	return migration.NewRunner(s.db, migrations.SQLite()).ValidateVersion()
}

func (s *Store) Migrate(logFn func(string)) (int, error) {
	return migration.NewRunner(s.db, migrations.SQLite()).ApplyMigrations(logFn)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the connection for backups
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Location() string {
	return s.path
}

func (s *Store) Read(ctx context.Context) (storage.Document, error) {
	var doc storage.Document
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data, revision FROM app_documents WHERE id = ?", constants.DocumentID,
	).Scan(&data, &doc.Revision)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Document{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Document{}, err
	}
	doc.Data = []byte(data)
	return doc, nil
}

func (s *Store) Write(ctx context.Context, data []byte, expected int64) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	var res sql.Result
	var err error
	if expected == 0 {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO app_documents (id, data, revision, updated_at)
			VALUES (?, ?, 1, ?)
			ON CONFLICT(id) DO NOTHING`,
			constants.DocumentID, string(data), now)
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE app_documents SET data = ?, revision = revision + 1, updated_at = ?
			WHERE id = ? AND revision = ?`,
			string(data), now, constants.DocumentID, expected)
	}
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, storage.ErrConflict
	}
	return expected + 1, nil
}

// Watch polls the stored revision. SQLite has no change feed that reaches
// other processes.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	last, err := s.revision(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			rev, err := s.revision(ctx)
			if err != nil || rev == last {
				continue
			}
			last = rev
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}()
	return ch, nil
}

func (s *Store) revision(ctx context.Context) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx, "SELECT revision FROM app_documents WHERE id = ?", constants.DocumentID).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return rev, err
}
