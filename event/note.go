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

package event

import "time"

// TransactionSubmittedEventType is emitted after a note write has been
// accepted by the ledger provider
const TransactionSubmittedEventType = EventType("submit.tx_submitted")

// TransactionSubmittedEvent carries the receipt data for a freshly
// submitted note transaction
type TransactionSubmittedEvent struct {
	// TxHash is the ledger-assigned transaction hash
	TxHash string
	// NoteId is the correlation key, empty for a brand new note
	NoteId string
	// Action is the note mutation kind (create/update/delete)
	Action string
	// SubmittedAt is when the submission was accepted
	SubmittedAt time.Time
}

// StatusChangeEventType is emitted when confirmation polling observes a
// receipt's status transition
const StatusChangeEventType = EventType("monitor.status_change")

// StatusChangeEvent records a single confirmation state transition
type StatusChangeEvent struct {
	// TxHash is the transaction whose inclusion state changed
	TxHash string
	// NoteId is the correlation key for the affected note
	NoteId string
	// NewStatus is the status the note transitioned to
	NewStatus string
}

// RecoveryProgressEventType is emitted once per transaction processed
// during a ledger recovery scan
const RecoveryProgressEventType = EventType("recovery.progress")

// RecoveryProgressEvent reports scan progress
type RecoveryProgressEvent struct {
	Processed int
	Total     int
}

// RecoveryCompletedEventType is emitted when a recovery pass finishes
const RecoveryCompletedEventType = EventType("recovery.completed")

// RecoveryCompletedEvent summarizes a finished recovery pass
type RecoveryCompletedEvent struct {
	// Address is the identity that was recovered
	Address string
	// RecoveredCount is the number of live notes reconstructed
	RecoveredCount int
}
