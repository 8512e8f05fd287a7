package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/threethings/internal/constants"
	"github.com/julianstephens/threethings/internal/logger"
	"github.com/julianstephens/threethings/internal/storage"
)

func (s *Store) Read(ctx context.Context) (storage.Document, error) {
	var doc storage.Document
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data::text, revision FROM app_documents WHERE id = $1", constants.DocumentID,
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
	var res sql.Result
	var err error
	if expected == 0 {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO app_documents (id, data, revision, updated_at)
			VALUES ($1, $2, 1, now())
			ON CONFLICT (id) DO NOTHING`,
			constants.DocumentID, string(data))
	} else {
		res, err = s.db.ExecContext(ctx, `
			UPDATE app_documents SET data = $1, revision = revision + 1, updated_at = now()
			WHERE id = $2 AND revision = $3`,
			string(data), constants.DocumentID, expected)
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

// Watch listens on the document channel. A reconnect is reported as a
// change because notifications may have been missed while disconnected.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	listener := pq.NewListener(s.connStr, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("Postgres listener event", "event", ev, "error", err)
		}
	})
	if err := listener.Listen(constants.NotifyChannel); err != nil {
		listener.Close()
		return nil, err
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		defer listener.Close()
		keepalive := time.NewTicker(90 * time.Second)
		defer keepalive.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-listener.Notify:
				select {
				case ch <- struct{}{}:
				default:
				}
			case <-keepalive.C:
				if err := listener.Ping(); err != nil {
					logger.Debug("Postgres listener ping failed", "error", err)
				}
			}
		}
	}()
	return ch, nil
}
