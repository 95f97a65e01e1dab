// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite history of conversions. Each attempt is
// recorded with content hashes of its input and options so unchanged inputs
// can be skipped on the next batch run.
package ledger

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/blake3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is one recorded conversion attempt.
type Entry struct {
	ID          string
	InputPath   string
	InputHash   string
	OptionsHash string
	OutputPath  string
	Format      types.Format
	Status      types.ConversionStatus
	Message     string
	ConvertedAt time.Time
}

// Ledger is the conversion history database. It is safe for concurrent use.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating its parent
// directory and schema as needed.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection serialises writers from concurrent conversions.
	db.SetMaxOpenConns(1)

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id TEXT PRIMARY KEY,
			input_path TEXT NOT NULL,
			input_hash TEXT NOT NULL,
			options_hash TEXT NOT NULL,
			output_path TEXT NOT NULL,
			format TEXT NOT NULL,
			status TEXT NOT NULL,
			message TEXT,
			converted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_input ON conversions(input_path, converted_at)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores e. A missing ID is filled with a new UUID and a zero
// ConvertedAt with the current time. The stored entry is returned.
func (l *Ledger) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ConvertedAt.IsZero() {
		e.ConvertedAt = time.Now()
	}
	e.ConvertedAt = e.ConvertedAt.UTC()

	_, err := l.db.ExecContext(ctx,
		`INSERT INTO conversions
			(id, input_path, input_hash, options_hash, output_path, format, status, message, converted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.InputPath, e.InputHash, e.OptionsHash, e.OutputPath,
		string(e.Format), string(e.Status), e.Message, e.ConvertedAt.Format(timeLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("recording conversion of %s: %w", e.InputPath, err)
	}
	return e, nil
}

// Unchanged returns the most recent successful conversion of inputPath to
// outputPath made from the same input content and options.
func (l *Ledger) Unchanged(ctx context.Context, inputPath, outputPath, inputHash, optionsHash string) (Entry, bool, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT id, input_path, input_hash, options_hash, output_path, format, status, message, converted_at
		FROM conversions
		WHERE input_path = ? AND output_path = ? AND input_hash = ? AND options_hash = ? AND status = ?
		ORDER BY converted_at DESC
		LIMIT 1`,
		inputPath, outputPath, inputHash, optionsHash, string(types.ConversionDone),
	)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("querying history for %s: %w", inputPath, err)
	}
	return e, true, nil
}

// Recent returns up to limit entries, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, input_path, input_hash, options_hash, output_path, format, status, message, converted_at
		FROM conversions
		ORDER BY converted_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var (
		e               Entry
		format, status  string
		message         sql.NullString
		convertedAtText string
	)
	if err := s.Scan(&e.ID, &e.InputPath, &e.InputHash, &e.OptionsHash, &e.OutputPath,
		&format, &status, &message, &convertedAtText); err != nil {
		return Entry{}, err
	}
	e.Format = types.Format(format)
	e.Status = types.ConversionStatus(status)
	e.Message = message.String
	t, err := time.Parse(timeLayout, convertedAtText)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", convertedAtText, err)
	}
	e.ConvertedAt = t
	return e, nil
}

// HashFile returns the hex BLAKE3 digest of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashOptions returns the hex BLAKE3 digest of the converter version and
// the options after defaults are applied, so an empty field and its default
// hash the same.
func HashOptions(opts types.PreambleOptions, version string) (string, error) {
	data, err := yaml.Marshal(struct {
		Version string                `yaml:"version"`
		Options types.PreambleOptions `yaml:"options"`
	}{version, opts.WithDefaults()})
	if err != nil {
		return "", fmt.Errorf("encoding options: %w", err)
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
