package assetstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"SignalSG/internal/model"
)

// SQLiteStore keeps the latest coin list in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite asset store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS assets (
			seq    INTEGER PRIMARY KEY,
			id     TEXT NOT NULL,
			symbol TEXT NOT NULL,
			name   TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// SaveAssets replaces the stored list in one transaction.
func (s *SQLiteStore) SaveAssets(ctx context.Context, assets []model.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assets`); err != nil {
		return fmt.Errorf("clear assets: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO assets (seq, id, symbol, name) VALUES (?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range assets {
		if _, err := stmt.ExecContext(ctx, i, a.ID, a.Symbol, a.Name); err != nil {
			return fmt.Errorf("insert %s: %w", a.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('refreshed_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("update meta: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadAssets(ctx context.Context) ([]model.Asset, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var refreshed int64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'refreshed_at'`).Scan(&refreshed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read meta: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, symbol, name FROM assets ORDER BY seq`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		var a model.Asset
		if err := rows.Scan(&a.ID, &a.Symbol, &a.Name); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, err
	}
	return assets, time.Unix(refreshed, 0), nil
}

func (s *SQLiteStore) Close() error {
	log.Info().Msg("closing sqlite asset store")
	return s.db.Close()
}
