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

	"github.com/blinklabs-io/inscribe/metadata"
)

// Action is the kind of note mutation carried by a ledger transaction
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Valid returns true if the Action is a known value
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	default:
		return false
	}
}

// NoteEvent is one note mutation as recorded on the ledger. Events are
// immutable once confirmed; only their interpretation via Fold changes
type NoteEvent struct {
	Action  Action
	Title   string
	Content string
	// NoteId correlates events for the same logical note. Empty on a
	// note's very first create event, in which case TxHash stands in
	NoteId string
	// TxHash is the ledger-assigned transaction identifier
	TxHash string
	// Timestamp is the event creation instant embedded in the payload,
	// not the ledger block time. It's the canonical ordering signal
	Timestamp time.Time
}

// Key returns the correlation key used to group this event with others for
// the same logical note
func (e *NoteEvent) Key() string {
	if e.NoteId != "" {
		return e.NoteId
	}
	return e.TxHash
}

// ParseEvent maps a decoded metadata payload into a NoteEvent. Returns nil
// for payloads that don't carry the minimum required fields, rather than
// failing a whole scan over one malformed transaction. An absent action
// defaults to create, matching historical payloads written before the
// action field was mandatory
func ParseEvent(payload *metadata.NotePayload, txHash string) *NoteEvent {
	if payload == nil || txHash == "" {
		return nil
	}
	action := Action(payload.Action)
	if action == "" {
		action = ActionCreate
	}
	if !action.Valid() {
		return nil
	}
	// A payload with no text at all isn't reconcilable as a note unless
	// it's a tombstone
	if action != ActionDelete && payload.Title == "" && payload.Content == "" {
		return nil
	}
	evt := &NoteEvent{
		Action:  action,
		Title:   payload.Title,
		Content: payload.Content,
		NoteId:  payload.NoteId,
		TxHash:  txHash,
	}
	if payload.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, payload.CreatedAt); err == nil {
			evt.Timestamp = ts
		}
		// An unparseable timestamp leaves the zero value, which sorts
		// before all real timestamps
	}
	return evt
}
