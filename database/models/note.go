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

package models

import (
	"time"
)

// MigrateModels is the list of model objects that should have DB migrations applied
var MigrateModels = []any{
	&Note{},
}

// Note is the local projection of a note's ledger history. The ledger
// remains the source of truth; this row is rebuilt from it on recovery
type Note struct {
	ID uint `gorm:"primarykey"`
	// Address is the owning wallet's bech32 address
	Address string `gorm:"index;not null"`
	// NoteId is the correlation key linking a note's event chain. Notes
	// written before correlation keys existed fall back to their creating
	// transaction's hash
	NoteId  string `gorm:"uniqueIndex;not null"`
	Title   string
	Content string
	// TxHash is the transaction that created the note
	TxHash string
	// LastEventTxHash is the transaction that last touched the note
	LastEventTxHash string
	// DeletionTxHash is set once a delete event lands; the note is then a
	// tombstone and later events cannot revive it
	DeletionTxHash string
	Deleted        bool `gorm:"index"`
	// Status tracks confirmation of the latest write (pending/confirmed/failed)
	Status     string
	IsPinned   bool
	IsFavorite bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Note) TableName() string {
	return "note"
}
