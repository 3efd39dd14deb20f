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

package notes

import (
	"time"
)

// Status describes where a note's latest write sits relative to ledger
// confirmation
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Valid returns true if the Status is a known value
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusFailed:
		return true
	default:
		return false
	}
}

// Note is the projected state of a logical note, derived by folding its
// event history. It's a cache of the ledger, never the source of truth
type Note struct {
	// NoteId is the correlation key grouping events for this note. For
	// notes created without an explicit note_id this is the creating
	// transaction's hash
	NoteId string
	// Title and Content reflect the latest create/update event
	Title   string
	Content string
	// CreatedAt is the embedded payload timestamp of the latest event
	CreatedAt time.Time
	// TxHash is the transaction that created the note
	TxHash string
	// LastEventTxHash is the transaction that last mutated the note
	LastEventTxHash string
	// DeletionTxHash is set when the note has been tombstoned
	DeletionTxHash string
	// Deleted marks the note as tombstoned. Tombstones are retained so a
	// reordered create/update can't resurrect a deleted note
	Deleted bool
	// Status tracks ledger confirmation of the latest write
	Status Status
}
