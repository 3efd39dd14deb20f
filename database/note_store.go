// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/blinklabs-io/inscribe/database/models"
)

var (
	// ErrNoteNotFound is returned when no note matches the given key
	ErrNoteNotFound = errors.New("note not found")
	// ErrNoteExists is returned when inserting a note whose correlation key
	// is already present
	ErrNoteExists = errors.New("note already exists")
)

// InsertNote adds a new note row. The note's correlation key must not
// already be present
func (d *Store) InsertNote(note *models.Note) error {
	var count int64
	result := d.db.Model(&models.Note{}).
		Where("note_id = ?", note.NoteId).
		Count(&count)
	if result.Error != nil {
		return result.Error
	}
	if count > 0 {
		return ErrNoteExists
	}
	return d.db.Create(note).Error
}

// GetNote returns the note with the given correlation key
func (d *Store) GetNote(noteId string) (*models.Note, error) {
	var note models.Note
	result := d.db.Where("note_id = ?", noteId).First(&note)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, result.Error
	}
	return &note, nil
}

// UpdateContent replaces a note's title and content after a new write has
// been submitted for it
func (d *Store) UpdateContent(
	noteId string,
	title string,
	content string,
	txHash string,
) error {
	result := d.db.Model(&models.Note{}).
		Where("note_id = ?", noteId).
		Updates(map[string]any{
			"title":              title,
			"content":            content,
			"last_event_tx_hash": txHash,
			"status":             "pending",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// MarkDeleted tombstones a note. The deletion transaction hash is recorded
// and later writes cannot revive the note
func (d *Store) MarkDeleted(noteId string, txHash string) error {
	result := d.db.Model(&models.Note{}).
		Where("note_id = ?", noteId).
		Updates(map[string]any{
			"deleted":            true,
			"deletion_tx_hash":   txHash,
			"last_event_tx_hash": txHash,
			"status":             "pending",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// RestoreNote clears a note's deleted flag in the local view only. The
// ledger tombstone is permanent, so a recovery rebuild will tombstone the
// note again
func (d *Store) RestoreNote(noteId string) error {
	result := d.db.Model(&models.Note{}).
		Where("note_id = ?", noteId).
		Update("deleted", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// SetStatus updates the confirmation status of the note whose latest write
// is the given transaction
func (d *Store) SetStatus(txHash string, status string) error {
	result := d.db.Model(&models.Note{}).
		Where("last_event_tx_hash = ? OR tx_hash = ?", txHash, txHash).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// SetPinned toggles the local-only pinned flag
func (d *Store) SetPinned(noteId string, pinned bool) error {
	result := d.db.Model(&models.Note{}).
		Where("note_id = ?", noteId).
		Update("is_pinned", pinned)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// SetFavorite toggles the local-only favorite flag
func (d *Store) SetFavorite(noteId string, favorite bool) error {
	result := d.db.Model(&models.Note{}).
		Where("note_id = ?", noteId).
		Update("is_favorite", favorite)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

// ListNotes returns an address's notes, pinned first then newest first.
// Tombstoned notes are excluded unless includeDeleted is set
func (d *Store) ListNotes(
	address string,
	includeDeleted bool,
) ([]models.Note, error) {
	query := d.db.Where("address = ?", address)
	if !includeDeleted {
		query = query.Where("deleted = ?", false)
	}
	var ret []models.Note
	result := query.
		Order("is_pinned DESC").
		Order("created_at DESC").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SearchNotes returns an address's live notes whose title or content
// contains the search term
func (d *Store) SearchNotes(
	address string,
	term string,
) ([]models.Note, error) {
	pattern := "%" + term + "%"
	var ret []models.Note
	result := d.db.
		Where("address = ?", address).
		Where("deleted = ?", false).
		Where("title LIKE ? OR content LIKE ?", pattern, pattern).
		Order("created_at DESC").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
