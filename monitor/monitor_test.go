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

package monitor_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/blinklabs-io/inscribe/blockfrost"
	"github.com/blinklabs-io/inscribe/event"
	"github.com/blinklabs-io/inscribe/monitor"
	"github.com/blinklabs-io/inscribe/notes"
	"github.com/blinklabs-io/inscribe/submit"
)

type fakeChecker struct {
	mu        sync.Mutex
	confirmed map[string]bool
	failWith  error
	calls     int
}

func (f *fakeChecker) Transaction(
	ctx context.Context,
	txHash string,
) (*blockfrost.TransactionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.confirmed[txHash] {
		return &blockfrost.TransactionInfo{
			Hash:        txHash,
			Block:       "blockhash123",
			BlockHeight: 100,
		}, nil
	}
	// Unknown to the ledger, still in flight
	return nil, nil
}

func (f *fakeChecker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type statusRecord struct {
	txHash string
	noteId string
	status notes.Status
}

func TestPollOnceConfirms(t *testing.T) {
	journal := testJournal(t)
	for _, txHash := range []string{"tx1", "tx2"} {
		err := journal.Put(&submit.Receipt{
			TxHash: txHash,
			NoteId: "note-" + txHash,
			Action: "create",
		})
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	}
	var mu sync.Mutex
	var transitions []statusRecord
	m := monitor.NewMonitor(monitor.MonitorConfig{
		Checker: &fakeChecker{confirmed: map[string]bool{"tx1": true}},
		Journal: journal,
		OnStatusChange: func(txHash, noteId string, newStatus notes.Status) {
			mu.Lock()
			defer mu.Unlock()
			transitions = append(transitions, statusRecord{
				txHash: txHash,
				noteId: noteId,
				status: newStatus,
			})
		},
	})
	confirmed, err := m.PollOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if confirmed != 1 {
		t.Fatalf("unexpected confirmed count: got %d, wanted 1", confirmed)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(transitions) != 1 {
		t.Fatalf("unexpected transition count: got %d", len(transitions))
	}
	if transitions[0].txHash != "tx1" ||
		transitions[0].noteId != "note-tx1" ||
		transitions[0].status != notes.StatusConfirmed {
		t.Fatalf("unexpected transition: %#v", transitions[0])
	}
	// The confirmed receipt is retired, the pending one remains
	pending, err := m.Pending()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(pending) != 1 || pending[0].TxHash != "tx2" {
		t.Fatalf("unexpected pending receipts: %#v", pending)
	}
}

func TestPollOnceProviderFailure(t *testing.T) {
	journal := testJournal(t)
	err := journal.Put(&submit.Receipt{TxHash: "tx1", Action: "create"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	m := monitor.NewMonitor(monitor.MonitorConfig{
		Checker: &fakeChecker{failWith: errors.New("provider down")},
		Journal: journal,
		OnStatusChange: func(txHash, noteId string, newStatus notes.Status) {
			t.Errorf("unexpected status change for %s", txHash)
		},
	})
	confirmed, err := m.PollOnce(context.Background())
	if err != nil {
		t.Fatalf("a per-receipt provider failure must not fail the cycle: %s", err)
	}
	if confirmed != 0 {
		t.Fatalf("unexpected confirmed count: got %d", confirmed)
	}
	// Receipt survives for the next cycle
	pending, err := m.Pending()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(pending) != 1 {
		t.Fatalf("unexpected pending receipts: %#v", pending)
	}
}

func TestPollOnceUnknownStaysPending(t *testing.T) {
	journal := testJournal(t)
	err := journal.Put(&submit.Receipt{TxHash: "tx1", Action: "create"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	m := monitor.NewMonitor(monitor.MonitorConfig{
		Checker: &fakeChecker{},
		Journal: journal,
	})
	confirmed, err := m.PollOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if confirmed != 0 {
		t.Fatalf("a transaction absent from the ledger must stay pending")
	}
	pending, err := m.Pending()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(pending) != 1 {
		t.Fatalf("unexpected pending receipts: %#v", pending)
	}
}

func TestPollOncePublishesStatusEvent(t *testing.T) {
	journal := testJournal(t)
	err := journal.Put(&submit.Receipt{
		TxHash: "tx1",
		NoteId: "note-1",
		Action: "update",
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	eventBus := event.NewEventBus(nil)
	subId, evtCh := eventBus.Subscribe(event.StatusChangeEventType)
	defer eventBus.Unsubscribe(event.StatusChangeEventType, subId)
	m := monitor.NewMonitor(monitor.MonitorConfig{
		EventBus: eventBus,
		Checker:  &fakeChecker{confirmed: map[string]bool{"tx1": true}},
		Journal:  journal,
	})
	if _, err := m.PollOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	select {
	case evt := <-evtCh:
		data, ok := evt.Data.(event.StatusChangeEvent)
		if !ok {
			t.Fatalf("unexpected event payload: %T", evt.Data)
		}
		if data.TxHash != "tx1" || data.NoteId != "note-1" ||
			data.NewStatus != string(notes.StatusConfirmed) {
			t.Fatalf("unexpected event: %#v", data)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for status change event")
	}
}

func TestStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	journal, err := monitor.NewJournal("", nil)
	if err != nil {
		t.Fatalf("unexpected error creating journal: %s", err)
	}
	if err := journal.Put(&submit.Receipt{TxHash: "tx1", Action: "create"}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	checker := &fakeChecker{}
	m := monitor.NewMonitor(monitor.MonitorConfig{
		Checker:      checker,
		Journal:      journal,
		PollInterval: 10 * time.Millisecond,
	})
	stop := m.Start(context.Background())
	// Wait for at least a couple of poll cycles
	deadline := time.Now().Add(2 * time.Second)
	for checker.callCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for poll cycles")
		}
		time.Sleep(5 * time.Millisecond)
	}
	// Stopping twice must be safe
	stop()
	stop()
	if err := journal.Close(); err != nil {
		t.Fatalf("unexpected error closing journal: %s", err)
	}
}
