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

package inscribe

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/inscribe/blockfrost"
	"github.com/blinklabs-io/inscribe/database"
	"github.com/blinklabs-io/inscribe/database/models"
	"github.com/blinklabs-io/inscribe/event"
	"github.com/blinklabs-io/inscribe/monitor"
	"github.com/blinklabs-io/inscribe/notes"
	"github.com/blinklabs-io/inscribe/recovery"
	"github.com/blinklabs-io/inscribe/submit"
	"github.com/blinklabs-io/inscribe/wallet"
)

// LedgerProvider bundles the ledger capabilities the engine consumes:
// history scanning, metadata fetch, inclusion lookup, and broadcast
type LedgerProvider interface {
	recovery.LedgerClient
	monitor.InclusionChecker
	submit.Broadcaster
}

// RecoveryResult summarizes a full recover-and-persist pass
type RecoveryResult struct {
	// Notes is the live note set reconstructed from the ledger
	Notes []notes.Note
	// RecoveredCount is len(Notes)
	RecoveredCount int
	// SavedCount is the number of recovered notes newly persisted locally
	SavedCount int
	// SkippedCount is the number of recovered notes already present locally
	SkippedCount int
}

// Engine is the ledger reconciliation engine for one wallet's notes. The
// ledger is the source of truth; the engine writes note mutations as
// metadata transactions, watches them confirm, and can rebuild the local
// projection from chain history at any time
type Engine struct {
	config        Config
	eventBus      *event.EventBus
	store         *database.Store
	journal       *monitor.Journal
	ledger        LedgerProvider
	submitter     *submit.Submitter
	monitor       *monitor.Monitor
	recoverer     *recovery.Recoverer
	blockfrost    *blockfrost.Client
	wallet        *wallet.Client
	monitorStop   func()
	shutdownFuncs []func(context.Context) error
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Engine, error) {
	eventBus := event.NewEventBus(cfg.promRegistry)
	e := &Engine{
		config:   cfg,
		eventBus: eventBus,
	}
	if err := e.configPopulateNetworkMagic(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	e.configPopulateBlockfrostURL()
	if err := e.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	// Configure tracing
	if cfg.tracing {
		if err := e.setupTracing(); err != nil {
			return nil, err
		}
	}
	// Ledger provider
	e.ledger = cfg.ledgerProvider
	if e.ledger == nil {
		e.blockfrost = blockfrost.NewClient(blockfrost.ClientConfig{
			Logger:    cfg.logger,
			BaseURL:   cfg.blockfrostURL,
			ProjectId: cfg.blockfrostProjectId,
		})
		e.ledger = e.blockfrost
	}
	// Transaction signer
	signer := cfg.signer
	if signer == nil {
		e.wallet = wallet.NewClient(wallet.ClientConfig{
			Logger:  cfg.logger,
			BaseURL: cfg.walletURL,
			ApiKey:  cfg.walletApiKey,
		})
		signer = e.wallet
	}
	// Local projection store
	store, err := database.New(cfg.dataDir, cfg.logger, cfg.promRegistry)
	if err != nil {
		e.closeClients()
		return nil, fmt.Errorf("failed to open projection store: %w", err)
	}
	e.store = store
	// Receipt journal
	journal, err := monitor.NewJournal(cfg.dataDir, cfg.logger)
	if err != nil {
		e.closeClients()
		_ = store.Close()
		return nil, fmt.Errorf("failed to open receipt journal: %w", err)
	}
	e.journal = journal
	// Submitter behind the shared write cooldown
	e.submitter = submit.NewSubmitter(submit.SubmitterConfig{
		Logger:        cfg.logger,
		EventBus:      eventBus,
		Cooldown:      submit.NewCooldown(cfg.cooldownWindow),
		Signer:        signer,
		Broadcaster:   e.ledger,
		MetadataLabel: cfg.metadataLabel,
		Lovelace:      cfg.paymentLovelace,
	})
	// Confirmation monitor feeding status back into the projection
	e.monitor = monitor.NewMonitor(monitor.MonitorConfig{
		Logger:       cfg.logger,
		EventBus:     eventBus,
		PromRegistry: cfg.promRegistry,
		Checker:      e.ledger,
		Journal:      journal,
		PollInterval: cfg.pollInterval,
		OnStatusChange: func(txHash, noteId string, newStatus notes.Status) {
			err := e.store.SetStatus(txHash, string(newStatus))
			if err != nil && !errors.Is(err, database.ErrNoteNotFound) {
				cfg.logger.Warn(
					"failed to update note status",
					"component", "engine",
					"tx_hash", txHash,
					"error", err,
				)
			}
		},
	})
	// Recovery orchestrator
	e.recoverer = recovery.NewRecoverer(recovery.RecovererConfig{
		Logger:       cfg.logger,
		EventBus:     eventBus,
		PromRegistry: cfg.promRegistry,
		Scanner: recovery.NewScanner(recovery.ScannerConfig{
			Logger:        cfg.logger,
			Client:        e.ledger,
			MetadataLabel: cfg.metadataLabel,
			FetchDelay:    cfg.fetchDelay,
		}),
		Store: store,
	})
	return e, nil
}

// EventBus returns the engine's event bus for subscribing to submission,
// confirmation, and recovery events
func (e *Engine) EventBus() *event.EventBus {
	return e.eventBus
}

// SubmitNote writes a note mutation to the ledger and tracks the resulting
// transaction until it confirms. The local projection is updated
// optimistically with status pending; if that local write fails the note is
// still durable on-chain and the next recovery pass will surface it
func (e *Engine) SubmitNote(
	ctx context.Context,
	action notes.Action,
	title string,
	content string,
	noteId string,
) (*submit.Receipt, error) {
	receipt, err := e.submitter.Submit(ctx, submit.Request{
		Action:  action,
		Title:   title,
		Content: content,
		NoteId:  noteId,
		Address: e.config.address,
	})
	if err != nil {
		return nil, err
	}
	if err := e.monitor.Track(receipt); err != nil {
		e.config.logger.Warn(
			"failed to journal receipt",
			"component", "engine",
			"tx_hash", receipt.TxHash,
			"error", err,
		)
	}
	e.projectReceipt(receipt, title, content)
	return receipt, nil
}

// projectReceipt applies an accepted write to the local projection
func (e *Engine) projectReceipt(
	receipt *submit.Receipt,
	title string,
	content string,
) {
	var err error
	switch notes.Action(receipt.Action) {
	case notes.ActionCreate:
		// A create with no explicit note id is correlated by its tx hash
		noteId := receipt.NoteId
		if noteId == "" {
			noteId = receipt.TxHash
		}
		err = e.store.InsertNote(&models.Note{
			Address:         e.config.address,
			NoteId:          noteId,
			Title:           title,
			Content:         content,
			TxHash:          receipt.TxHash,
			LastEventTxHash: receipt.TxHash,
			Status:          string(notes.StatusPending),
		})
	case notes.ActionUpdate:
		err = e.store.UpdateContent(
			receipt.NoteId,
			title,
			content,
			receipt.TxHash,
		)
	case notes.ActionDelete:
		err = e.store.MarkDeleted(receipt.NoteId, receipt.TxHash)
	}
	if err != nil {
		// The chain write already succeeded; the projection heals on the
		// next recovery pass
		e.config.logger.Warn(
			"failed to update local projection",
			"component", "engine",
			"tx_hash", receipt.TxHash,
			"error", err,
		)
	}
}

// RecoverAll rebuilds the wallet's full note set from chain history and
// persists any notes missing from the local projection. Existing local rows
// are never overwritten
func (e *Engine) RecoverAll(
	ctx context.Context,
	onProgress recovery.ProgressFunc,
) (*RecoveryResult, error) {
	result, err := e.recoverer.Recover(ctx, e.config.address, onProgress)
	if err != nil {
		return nil, err
	}
	persisted, err := e.recoverer.Persist(e.config.address, result.Notes)
	if err != nil {
		return nil, err
	}
	return &RecoveryResult{
		Notes:          result.Notes,
		RecoveredCount: result.RecoveredCount,
		SavedCount:     persisted.SavedCount,
		SkippedCount:   persisted.SkippedCount,
	}, nil
}

// Monitor starts background confirmation polling and returns a stop
// function. Polling halts between cycles; an in-flight poll always
// completes
func (e *Engine) Monitor(ctx context.Context) func() {
	e.monitorStop = e.monitor.Start(ctx)
	return e.monitorStop
}

// PollOnce runs a single confirmation poll cycle
func (e *Engine) PollOnce(ctx context.Context) (int, error) {
	return e.monitor.PollOnce(ctx)
}

// CooldownStatus reports whether the write gate is open and, if not, how
// long until it opens
func (e *Engine) CooldownStatus() submit.CooldownStatus {
	return e.submitter.Cooldown().Status()
}

// Notes lists the wallet's notes from the local projection, pinned first.
// Set includeDeleted for the trash view
func (e *Engine) Notes(includeDeleted bool) ([]models.Note, error) {
	return e.store.ListNotes(e.config.address, includeDeleted)
}

// SearchNotes lists the wallet's live notes matching a search term
func (e *Engine) SearchNotes(term string) ([]models.Note, error) {
	return e.store.SearchNotes(e.config.address, term)
}

// RestoreNote clears a note's deleted flag in the local view only; the
// on-chain tombstone is permanent
func (e *Engine) RestoreNote(noteId string) error {
	return e.store.RestoreNote(noteId)
}

// SetPinned toggles a note's local-only pinned flag
func (e *Engine) SetPinned(noteId string, pinned bool) error {
	return e.store.SetPinned(noteId, pinned)
}

// SetFavorite toggles a note's local-only favorite flag
func (e *Engine) SetFavorite(noteId string, favorite bool) error {
	return e.store.SetFavorite(noteId, favorite)
}

func (e *Engine) closeClients() {
	if e.blockfrost != nil {
		_ = e.blockfrost.Close()
	}
	if e.wallet != nil {
		_ = e.wallet.Close()
	}
}

// Stop shuts the engine down: polling halts, the journal and projection
// store close, and any tracing exporters flush
func (e *Engine) Stop() error {
	var err error
	e.shutdownOnce.Do(func() {
		err = e.shutdown()
	})
	return err
}

func (e *Engine) shutdown() error {
	ctx := context.Background()
	var err error
	if e.monitorStop != nil {
		e.monitorStop()
	}
	if e.journal != nil {
		if closeErr := e.journal.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("receipt journal close: %w", closeErr),
			)
		}
	}
	if e.store != nil {
		if closeErr := e.store.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("projection store close: %w", closeErr),
			)
		}
	}
	if e.blockfrost != nil {
		if closeErr := e.blockfrost.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}
	if e.wallet != nil {
		if closeErr := e.wallet.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}
	// Call registered shutdown functions
	for _, fn := range e.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	e.shutdownFuncs = nil
	if e.eventBus != nil {
		e.eventBus.Stop()
	}
	return err
}
