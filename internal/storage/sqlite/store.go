// Package sqlite provides the SQLite-backed sheet store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	_ "modernc.org/sqlite"

	"github.com/rollkeeper/rollkeeper/internal/storage"
	"github.com/rollkeeper/rollkeeper/internal/storage/sqlite/migrations"
)

// Store persists character sheets in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.SheetStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the sheet store at path and applies embedded migrations.
// The first ping retries briefly to ride out a database file still locked
// by a previous process shutting down.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	err = retry.Do(
		sqlDB.Ping,
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// UpsertSheet inserts or fully replaces the sheet for (characterID, level).
func (s *Store) UpsertSheet(ctx context.Context, sheet storage.CharacterSheet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	characterID := strings.TrimSpace(sheet.CharacterID)
	if characterID == "" {
		return fmt.Errorf("character id is required")
	}
	if sheet.Level < 1 {
		return fmt.Errorf("level must be greater than zero")
	}
	if strings.TrimSpace(sheet.SheetKey) == "" {
		return fmt.Errorf("sheet key is required")
	}
	extracted := sheet.Extracted
	if len(extracted) == 0 {
		extracted = json.RawMessage("{}")
	}
	now := time.Now().UTC()
	createdAt := sheet.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := sheet.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = now
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO character_sheets (
		   character_id,
		   level,
		   sheet_key,
		   extracted_data,
		   race,
		   background,
		   class,
		   created_at,
		   updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (character_id, level) DO UPDATE SET
		   sheet_key = excluded.sheet_key,
		   extracted_data = excluded.extracted_data,
		   race = excluded.race,
		   background = excluded.background,
		   class = excluded.class,
		   updated_at = excluded.updated_at`,
		characterID,
		sheet.Level,
		sheet.SheetKey,
		string(extracted),
		sheet.Race,
		sheet.Background,
		sheet.Class,
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert sheet: %w", err)
	}
	return nil
}

// GetSheet loads the sheet for (characterID, level).
func (s *Store) GetSheet(ctx context.Context, characterID string, level int) (storage.CharacterSheet, error) {
	if err := ctx.Err(); err != nil {
		return storage.CharacterSheet{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.CharacterSheet{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT character_id, level, sheet_key, extracted_data, race, background, class,
		        created_at, updated_at
		   FROM character_sheets
		  WHERE character_id = ? AND level = ?`,
		strings.TrimSpace(characterID),
		level,
	)
	sheet, err := scanSheet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CharacterSheet{}, storage.ErrNotFound
		}
		return storage.CharacterSheet{}, fmt.Errorf("get sheet: %w", err)
	}
	return sheet, nil
}

// ListSheets returns all stored sheets for a character ordered by level.
func (s *Store) ListSheets(ctx context.Context, characterID string) ([]storage.CharacterSheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT character_id, level, sheet_key, extracted_data, race, background, class,
		        created_at, updated_at
		   FROM character_sheets
		  WHERE character_id = ?
		  ORDER BY level ASC`,
		strings.TrimSpace(characterID),
	)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	defer rows.Close()

	var sheets []storage.CharacterSheet
	for rows.Next() {
		sheet, err := scanSheet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sheet: %w", err)
		}
		sheets = append(sheets, sheet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	return sheets, nil
}

// DeleteSheet removes the sheet for (characterID, level).
func (s *Store) DeleteSheet(ctx context.Context, characterID string, level int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	res, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM character_sheets WHERE character_id = ? AND level = ?`,
		strings.TrimSpace(characterID),
		level,
	)
	if err != nil {
		return fmt.Errorf("delete sheet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete sheet: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSheet(row rowScanner) (storage.CharacterSheet, error) {
	var (
		sheet     storage.CharacterSheet
		extracted string
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&sheet.CharacterID,
		&sheet.Level,
		&sheet.SheetKey,
		&extracted,
		&sheet.Race,
		&sheet.Background,
		&sheet.Class,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.CharacterSheet{}, err
	}
	sheet.Extracted = json.RawMessage(extracted)
	sheet.CreatedAt = fromMillis(createdAt)
	sheet.UpdatedAt = fromMillis(updatedAt)
	return sheet, nil
}
