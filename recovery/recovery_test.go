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

package recovery_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/blinklabs-io/inscribe/blockfrost"
	"github.com/blinklabs-io/inscribe/database"
	"github.com/blinklabs-io/inscribe/database/models"
	"github.com/blinklabs-io/inscribe/metadata"
	"github.com/blinklabs-io/inscribe/recovery"
)

func testRecoverer(
	t *testing.T,
	ledger recovery.LedgerClient,
	store recovery.ProjectionStore,
) *recovery.Recoverer {
	t.Helper()
	return recovery.NewRecoverer(recovery.RecovererConfig{
		Scanner: testScanner(ledger),
		Store:   store,
	})
}

func TestRecoverCreatedNote(t *testing.T) {
	ledger := &fakeLedger{
		txs: []blockfrost.AddressTransaction{
			{TxHash: "tx1"},
			{TxHash: "tx2"},
		},
		metadata: map[string][]blockfrost.TxMetadataLabel{
			"tx1": noteLabel(metadata.NotePayload{
				Action:    "create",
				Title:     "Groceries",
				Content:   "milk, eggs",
				CreatedAt: "2025-06-01T12:00:00Z",
			}),
			// tx2 carries no note metadata and is skipped silently
		},
	}
	recoverer := testRecoverer(t, ledger, nil)
	var progress [][2]int
	result, err := recoverer.Recover(
		context.Background(),
		"addr_test123",
		func(processed, total int) {
			progress = append(progress, [2]int{processed, total})
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if result.RecoveredCount != 1 {
		t.Fatalf("unexpected note count: got %d, wanted 1", result.RecoveredCount)
	}
	note := result.Notes[0]
	if note.Title != "Groceries" || note.Content != "milk, eggs" {
		t.Fatalf("unexpected note: %#v", note)
	}
	if note.TxHash != "tx1" {
		t.Fatalf("unexpected creating tx: %q", note.TxHash)
	}
	// Progress covers every transaction, note-bearing or not
	if len(progress) != 2 {
		t.Fatalf("unexpected progress count: got %d, wanted 2", len(progress))
	}
	if progress[0] != [2]int{1, 2} || progress[1] != [2]int{2, 2} {
		t.Fatalf("unexpected progress: %v", progress)
	}
}

func TestRecoverLongContent(t *testing.T) {
	// 200 characters, which chunks into multiple 64-byte units on the wire
	content := strings.Repeat("abcdefghij", 20)
	ledger := &fakeLedger{
		txs: []blockfrost.AddressTransaction{
			{TxHash: "tx1"},
		},
		metadata: map[string][]blockfrost.TxMetadataLabel{
			"tx1": noteLabel(metadata.NotePayload{
				Action:    "create",
				Title:     "Long note",
				Content:   content,
				CreatedAt: "2025-06-01T12:00:00Z",
			}),
		},
	}
	recoverer := testRecoverer(t, ledger, nil)
	result, err := recoverer.Recover(context.Background(), "addr_test123", nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if result.RecoveredCount != 1 {
		t.Fatalf("unexpected note count: got %d", result.RecoveredCount)
	}
	if result.Notes[0].Content != content {
		t.Fatalf(
			"content must survive the round trip: got %d chars, wanted %d",
			len(result.Notes[0].Content),
			len(content),
		)
	}
}

func TestRecoverTombstonedNote(t *testing.T) {
	ledger := &fakeLedger{
		txs: []blockfrost.AddressTransaction{
			{TxHash: "tx2"},
			{TxHash: "tx1"},
		},
		metadata: map[string][]blockfrost.TxMetadataLabel{
			"tx1": noteLabel(metadata.NotePayload{
				Action:    "create",
				Title:     "Groceries",
				Content:   "milk, eggs",
				CreatedAt: "2025-06-01T12:00:00Z",
				NoteId:    "note-1",
			}),
			"tx2": noteLabel(metadata.NotePayload{
				Action:      "delete",
				Title:       "Groceries",
				CreatedAt:   "2025-06-02T12:00:00Z",
				NoteId:      "note-1",
				Description: "Deleted Groceries",
			}),
		},
	}
	recoverer := testRecoverer(t, ledger, nil)
	result, err := recoverer.Recover(context.Background(), "addr_test123", nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if result.RecoveredCount != 0 {
		t.Fatalf(
			"tombstoned note must not be recovered, got %#v",
			result.Notes,
		)
	}
}

func TestRecoverSkipsUnreadableTransaction(t *testing.T) {
	ledger := &fakeLedger{
		txs: []blockfrost.AddressTransaction{
			{TxHash: "tx1"},
			{TxHash: "tx2"},
		},
		metadata: map[string][]blockfrost.TxMetadataLabel{
			"tx2": noteLabel(metadata.NotePayload{
				Action:    "create",
				Title:     "Survivor",
				Content:   "still here",
				CreatedAt: "2025-06-01T12:00:00Z",
			}),
		},
		failTxs: map[string]error{
			"tx1": errors.New("provider hiccup"),
		},
	}
	recoverer := testRecoverer(t, ledger, nil)
	result, err := recoverer.Recover(context.Background(), "addr_test123", nil)
	if err != nil {
		t.Fatalf("one unreadable transaction must not abort recovery: %s", err)
	}
	if result.RecoveredCount != 1 || result.Notes[0].Title != "Survivor" {
		t.Fatalf("unexpected recovery result: %#v", result.Notes)
	}
}

func TestRecoverCancellation(t *testing.T) {
	ledger := &fakeLedger{
		txs: []blockfrost.AddressTransaction{
			{TxHash: "tx1"},
			{TxHash: "tx2"},
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	recoverer := testRecoverer(t, ledger, nil)
	_, err := recoverer.Recover(
		ctx,
		"addr_test123",
		func(processed, total int) {
			// Cancel mid-scan
			cancel()
		},
	)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPersistSkipsExistingNote(t *testing.T) {
	store, err := database.New(t.TempDir(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error creating store: %s", err)
	}
	defer store.Close()
	// A locally edited note already present under the same correlation key
	err = store.InsertNote(&models.Note{
		Address: "addr_test123",
		NoteId:  "note-1",
		Title:   "Groceries",
		Content: "local edits",
		TxHash:  "tx1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	ledger := &fakeLedger{
		txs: []blockfrost.AddressTransaction{
			{TxHash: "tx2"},
			{TxHash: "tx1"},
		},
		metadata: map[string][]blockfrost.TxMetadataLabel{
			"tx1": noteLabel(metadata.NotePayload{
				Action:    "create",
				Title:     "Groceries",
				Content:   "milk, eggs",
				CreatedAt: "2025-06-01T12:00:00Z",
				NoteId:    "note-1",
			}),
			"tx2": noteLabel(metadata.NotePayload{
				Action:    "create",
				Title:     "Travel",
				Content:   "book flights",
				CreatedAt: "2025-06-02T12:00:00Z",
				NoteId:    "note-2",
			}),
		},
	}
	recoverer := testRecoverer(t, ledger, store)
	result, err := recoverer.Recover(context.Background(), "addr_test123", nil)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	persisted, err := recoverer.Persist("addr_test123", result.Notes)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if persisted.SavedCount != 1 || persisted.SkippedCount != 1 {
		t.Fatalf(
			"unexpected persist result: saved %d, skipped %d",
			persisted.SavedCount,
			persisted.SkippedCount,
		)
	}
	// Local edits survive
	note, err := store.GetNote("note-1")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if note.Content != "local edits" {
		t.Fatalf("recovery must not clobber local edits, got %q", note.Content)
	}
	// The new note landed as confirmed
	note, err = store.GetNote("note-2")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if note.Status != "confirmed" {
		t.Fatalf("unexpected status: %q", note.Status)
	}
}
