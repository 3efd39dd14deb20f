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

package recovery

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blinklabs-io/inscribe/database"
	"github.com/blinklabs-io/inscribe/database/models"
	"github.com/blinklabs-io/inscribe/event"
	"github.com/blinklabs-io/inscribe/notes"
)

// ProgressFunc reports recovery progress after each scanned transaction
type ProgressFunc func(processed int, total int)

// ProjectionStore is the local storage capability recovery persists into
type ProjectionStore interface {
	InsertNote(note *models.Note) error
}

// Result summarizes a recovery pass
type Result struct {
	// Notes is the reconstructed live note set
	Notes []notes.Note
	// RecoveredCount is len(Notes)
	RecoveredCount int
}

// PersistResult summarizes writing recovered notes into local storage
type PersistResult struct {
	SavedCount   int
	SkippedCount int
}

// RecovererConfig contains the recovery orchestrator's dependencies
type RecovererConfig struct {
	Logger       *slog.Logger
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	Scanner      *Scanner
	Store        ProjectionStore
}

// Recoverer rebuilds an address's full note set from its on-chain event
// history. It exists because local storage is only a cache: wiping it loses
// nothing that a scan of the ledger can't reconstruct
type Recoverer struct {
	config  RecovererConfig
	logger  *slog.Logger
	scanner *Scanner

	metrics struct {
		txsScanned prometheus.Counter
		recovered  prometheus.Counter
	}
}

func NewRecoverer(config RecovererConfig) *Recoverer {
	r := &Recoverer{
		config:  config,
		scanner: config.Scanner,
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		r.logger = config.Logger
	}
	promRegistry := config.PromRegistry
	if promRegistry == nil {
		promRegistry = prometheus.NewRegistry()
	}
	promautoFactory := promauto.With(promRegistry)
	r.metrics.txsScanned = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "inscribe_recovery_txs_scanned_total",
		Help: "total transactions examined during recovery scans",
	})
	r.metrics.recovered = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "inscribe_recovery_notes_total",
		Help: "total notes reconstructed by recovery passes",
	})
	return r
}

// Recover scans the address's transaction history, parses every note
// payload into an event, and folds the events into the current note set. A
// metadata failure on one transaction is skipped, not fatal; cancellation
// aborts the scan between transactions
func (r *Recoverer) Recover(
	ctx context.Context,
	address string,
	onProgress ProgressFunc,
) (*Result, error) {
	txs, err := r.scanner.ListTransactions(ctx, address)
	if err != nil {
		return nil, err
	}
	total := len(txs)
	var events []notes.NoteEvent
	for i, tx := range txs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.metrics.txsScanned.Inc()
		payload, err := r.scanner.FetchPayload(ctx, tx.TxHash)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// One unreadable transaction doesn't abort the recovery
			r.logger.Warn(
				"skipping transaction with unreadable metadata",
				"component", "recovery",
				"tx_hash", tx.TxHash,
				"error", err,
			)
		} else if payload != nil {
			if evt := notes.ParseEvent(payload, tx.TxHash); evt != nil {
				events = append(events, *evt)
			}
		}
		r.reportProgress(onProgress, i+1, total)
	}
	recovered := notes.Fold(events)
	r.metrics.recovered.Add(float64(len(recovered)))
	r.logger.Info(
		"recovery scan complete",
		"component", "recovery",
		"address", address,
		"tx_count", total,
		"event_count", len(events),
		"note_count", len(recovered),
	)
	if r.config.EventBus != nil {
		r.config.EventBus.Publish(
			event.RecoveryCompletedEventType,
			event.NewEvent(
				event.RecoveryCompletedEventType,
				event.RecoveryCompletedEvent{
					Address:        address,
					RecoveredCount: len(recovered),
				},
			),
		)
	}
	return &Result{
		Notes:          recovered,
		RecoveredCount: len(recovered),
	}, nil
}

// Persist writes recovered notes into local storage. A note whose
// correlation key already exists locally is skipped, never overwritten, so
// recovery can't clobber local edits and re-running it is idempotent
func (r *Recoverer) Persist(
	address string,
	recovered []notes.Note,
) (*PersistResult, error) {
	ret := &PersistResult{}
	for _, note := range recovered {
		row := &models.Note{
			Address:         address,
			NoteId:          note.NoteId,
			Title:           note.Title,
			Content:         note.Content,
			TxHash:          note.TxHash,
			LastEventTxHash: note.LastEventTxHash,
			DeletionTxHash:  note.DeletionTxHash,
			Deleted:         note.Deleted,
			// Anything read back from the ledger is confirmed by definition
			Status: string(notes.StatusConfirmed),
		}
		err := r.config.Store.InsertNote(row)
		if err != nil {
			if errors.Is(err, database.ErrNoteExists) {
				ret.SkippedCount++
				continue
			}
			return ret, err
		}
		ret.SavedCount++
	}
	return ret, nil
}

func (r *Recoverer) reportProgress(
	onProgress ProgressFunc,
	processed int,
	total int,
) {
	if onProgress != nil {
		onProgress(processed, total)
	}
	if r.config.EventBus != nil {
		r.config.EventBus.Publish(
			event.RecoveryProgressEventType,
			event.NewEvent(
				event.RecoveryProgressEventType,
				event.RecoveryProgressEvent{
					Processed: processed,
					Total:     total,
				},
			),
		)
	}
}
