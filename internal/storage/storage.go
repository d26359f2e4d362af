// Package storage defines persistence for character sheets.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when no sheet exists for a character/level pair.
var ErrNotFound = errors.New("storage: sheet not found")

// CharacterSheet is one stored sheet upload: the blob key of the raw PDF
// plus the extracted record as a JSON document, keyed by character and level.
type CharacterSheet struct {
	CharacterID string          `json:"characterId"`
	Level       int             `json:"level"`
	SheetKey    string          `json:"sheetKey"`
	Extracted   json.RawMessage `json:"extractedData"`

	// Identity backfill derived from the extracted record.
	Race       string `json:"race,omitempty"`
	Background string `json:"background,omitempty"`
	Class      string `json:"class,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SheetStore persists character sheets. Upsert overwrites on conflict: a new
// upload for the same (characterID, level) fully replaces the old record.
type SheetStore interface {
	UpsertSheet(ctx context.Context, s CharacterSheet) error
	GetSheet(ctx context.Context, characterID string, level int) (CharacterSheet, error)
	ListSheets(ctx context.Context, characterID string) ([]CharacterSheet, error)
	DeleteSheet(ctx context.Context, characterID string, level int) error
	Close() error
}
