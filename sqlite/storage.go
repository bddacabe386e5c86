// Package sqlite implements tasks.Storage on a SQLite database, one row per slot.
package sqlite

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nicolagi/tasks"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

type Storage struct {
	db *sql.DB
}

var _ tasks.Storage = (*Storage)(nil)

// Open opens (creating if needed) the database at pathname. The special name ":memory:" gives a private
// in-memory database.
func Open(pathname string) (*Storage, error) {
	if pathname != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(pathname), 0700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", pathname)
	if err != nil {
		return nil, err
	}
	// Writes are whole-slot and rare; one connection also keeps ":memory:" to a single database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Get implements tasks.Storage.
func (s *Storage) Get(slot string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM slots WHERE name = ?", slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", slot, tasks.ErrSlotEmpty)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", slot, err)
	}
	return data, nil
}

// Put implements tasks.Storage. The row is replaced in a single statement.
func (s *Storage) Put(slot string, data []byte) error {
	query := `INSERT INTO slots (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	if _, err := s.db.Exec(query, slot, data, time.Now().Unix()); err != nil {
		return fmt.Errorf("put %s: %w", slot, err)
	}
	return nil
}

// UpdatedAt returns when the slot was last written.
func (s *Storage) UpdatedAt(slot string) (time.Time, error) {
	var unix int64
	err := s.db.QueryRow("SELECT updated_at FROM slots WHERE name = ?", slot).Scan(&unix)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%s: %w", slot, tasks.ErrSlotEmpty)
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(unix, 0).Local(), nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
