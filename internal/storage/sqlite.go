package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vmihailenco/msgpack/v5"

	"typegen/internal/typespec"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ SpecStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}
	// module workers save concurrently; sqlite allows one writer
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS typespecs (
			module TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveSpec(ctx context.Context, module string, spec typespec.TypeSpec) error {
	payload, err := encodeSpec(spec)
	if err != nil {
		return fmt.Errorf("failed to encode typespec of %s: %w", module, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO typespecs (module, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(module) DO UPDATE SET
			payload=excluded.payload,
			updated_at=excluded.updated_at
	`, module, payload, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save typespec of %s: %w", module, err)
	}
	return nil
}

func (s *SQLiteStore) LoadSpec(ctx context.Context, module string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT module, payload, updated_at FROM typespecs WHERE module = ?`, module)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, module)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load typespec of %s: %w", module, err)
	}
	return entry, nil
}

func (s *SQLiteStore) LoadAll(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT module, payload, updated_at FROM typespecs ORDER BY module`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) DeleteSpec(ctx context.Context, module string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM typespecs WHERE module = ?`, module)
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		entry   Entry
		payload []byte
		updated string
	)
	if err := row.Scan(&entry.Module, &payload, &updated); err != nil {
		return nil, err
	}

	spec, err := decodeSpec(payload)
	if err != nil {
		return nil, fmt.Errorf("corrupt payload for %s: %w", entry.Module, err)
	}
	entry.Spec = spec

	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		entry.UpdatedAt = t
	}
	return &entry, nil
}

// payloads reuse the json field names so stored specs read like spec files.
func encodeSpec(spec typespec.TypeSpec) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(spec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSpec(payload []byte) (typespec.TypeSpec, error) {
	var spec typespec.TypeSpec
	dec := msgpack.NewDecoder(bytes.NewReader(payload))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&spec); err != nil {
		return typespec.TypeSpec{}, err
	}
	return spec, nil
}
