// Package store is the client's local persistence: the single-slot bearer
// token that survives restarts, and the scan history. Backed by sqlite so
// the client works without any server-side state of its own.
package store

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/libradesk/libradesk/internal/config"
	"github.com/libradesk/libradesk/internal/store/migrations"
)

const (
	tokenTableName = `session_token`
	scanTableName  = `scan_history`
)

var qb = sq.StatementBuilder

type Store struct {
	db  *sql.DB
	log *zap.Logger
}

func New(ctx context.Context, cfg config.Store, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, errors.Wrap(err, "open store")
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "ping store")
	}

	goose.SetBaseFS(migrations.MigrationFiles)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, err
	}
	if err := goose.Up(db, "."); err != nil {
		return nil, errors.Wrap(err, "migrate store")
	}

	return NewWithDB(db, log), nil
}

// NewWithDB wraps an already opened and migrated database.
func NewWithDB(db *sql.DB, log *zap.Logger) *Store {
	return &Store{
		db:  db,
		log: log.Named("store"),
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ReadToken returns the persisted bearer token, empty when none is stored.
func (s *Store) ReadToken(ctx context.Context) (string, error) {
	q, args, err := qb.Select("token").
		From(tokenTableName).
		Where(sq.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return "", err
	}
	var token string
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

func (s *Store) WriteToken(ctx context.Context, token string) error {
	q, args, err := qb.Insert(tokenTableName).
		Options("OR REPLACE").
		Columns("id", "token", "updated_at").
		Values(1, token, time.Now().UTC()).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}

func (s *Store) ClearToken(ctx context.Context) error {
	q, args, err := qb.Delete(tokenTableName).
		Where(sq.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}

type ScanEntry struct {
	ID         string
	Identifier string
	Title      string
	ScannedAt  time.Time
}

// AddScan records an accepted decode, with the resolved title when the
// bibliographic lookup produced one.
func (s *Store) AddScan(ctx context.Context, identifier, title string) error {
	q, args, err := qb.Insert(scanTableName).
		Columns("id", "identifier", "title", "scanned_at").
		Values(uuid.NewString(), identifier, title, time.Now().UTC()).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		s.log.Error("AddScan", zap.String("q", q), zap.Any("args", args))
		return err
	}
	return nil
}

func (s *Store) RecentScans(ctx context.Context, limit int) ([]ScanEntry, error) {
	q, args, err := qb.Select("id", "identifier", "title", "scanned_at").
		From(scanTableName).
		OrderBy("scanned_at desc").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ScanEntry
	for rows.Next() {
		var e ScanEntry
		if err := rows.Scan(&e.ID, &e.Identifier, &e.Title, &e.ScannedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
