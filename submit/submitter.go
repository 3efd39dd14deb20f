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

package submit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	gledger "github.com/blinklabs-io/gouroboros/ledger"

	"github.com/blinklabs-io/inscribe/event"
	"github.com/blinklabs-io/inscribe/metadata"
	"github.com/blinklabs-io/inscribe/notes"
)

// DefaultPaymentLovelace is the amount sent back to the funding address in
// the self-payment that carries the note metadata
const DefaultPaymentLovelace uint64 = 1_000_000

// PaymentRequest describes the minimal self-payment transaction the
// external signing provider is asked to build and sign
type PaymentRequest struct {
	// Address is the funding address, also the payment destination
	Address string
	// Lovelace is the self-payment amount
	Lovelace uint64
	// MetadataLabel is the label the metadata is tagged under
	MetadataLabel uint
	// Metadata is the label's payload
	Metadata map[string]any
}

// Signer builds and signs the requested transaction, returning the signed
// transaction CBOR. Key management lives entirely behind this interface
type Signer interface {
	SignTransaction(ctx context.Context, req PaymentRequest) ([]byte, error)
}

// Broadcaster submits a signed transaction to the ledger and returns the
// assigned transaction hash
type Broadcaster interface {
	SubmitTransaction(ctx context.Context, txCbor []byte) (string, error)
}

// Receipt is the locally held record of a submitted write awaiting
// confirmation. It's retired once the note's status resolves
type Receipt struct {
	TxHash      string    `json:"tx_hash"`
	NoteId      string    `json:"note_id,omitempty"`
	Action      string    `json:"action"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Request is a note mutation to be written to the ledger
type Request struct {
	Action  notes.Action
	Title   string
	Content string
	// NoteId is required for update/delete, empty for a new note
	NoteId string
	// Address is the bech32 funding address identifying the wallet
	Address string
}

// SubmitterConfig contains the submitter's dependencies
type SubmitterConfig struct {
	Logger        *slog.Logger
	EventBus      *event.EventBus
	Cooldown      *Cooldown
	Signer        Signer
	Broadcaster   Broadcaster
	MetadataLabel uint
	Lovelace      uint64
}

// Submitter encodes note mutations into metadata payloads and writes them
// to the ledger through the external signing provider, gated by the write
// cooldown
type Submitter struct {
	config   SubmitterConfig
	logger   *slog.Logger
	cooldown *Cooldown
	// now is replaceable for tests
	now func() time.Time
}

func NewSubmitter(config SubmitterConfig) *Submitter {
	s := &Submitter{
		config:   config,
		cooldown: config.Cooldown,
		now:      time.Now,
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		s.logger = config.Logger
	}
	if s.cooldown == nil {
		s.cooldown = NewCooldown(DefaultCooldownWindow)
	}
	if s.config.MetadataLabel == 0 {
		s.config.MetadataLabel = metadata.DefaultLabel
	}
	if s.config.Lovelace == 0 {
		s.config.Lovelace = DefaultPaymentLovelace
	}
	return s
}

// Cooldown returns the submitter's write gate
func (s *Submitter) Cooldown() *Cooldown {
	return s.cooldown
}

// Submit validates the request, consults the write cooldown, encodes the
// note payload under the configured metadata label, and hands the
// transaction to the signing provider. The cooldown baseline only advances
// on a successful submission
func (s *Submitter) Submit(ctx context.Context, req Request) (*Receipt, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" && content == "" {
		return nil, ErrEmptyNote
	}
	if !req.Action.Valid() {
		return nil, fmt.Errorf("invalid action: %q", req.Action)
	}
	if _, err := gledger.NewAddress(req.Address); err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	if err := s.cooldown.Check(); err != nil {
		return nil, err
	}
	payload := metadata.NotePayload{
		Action:    string(req.Action),
		Title:     title,
		Content:   content,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
		NoteId:    req.NoteId,
	}
	if req.Action == notes.ActionDelete {
		payload.Description = "Deleted " + title
	}
	signedTx, err := s.config.Signer.SignTransaction(
		ctx,
		PaymentRequest{
			Address:       req.Address,
			Lovelace:      s.config.Lovelace,
			MetadataLabel: s.config.MetadataLabel,
			Metadata:      payload.Encode(),
		},
	)
	if err != nil {
		return nil, &SigningRejectedError{Err: err}
	}
	txHash, err := s.config.Broadcaster.SubmitTransaction(ctx, signedTx)
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}
	s.cooldown.Accept()
	receipt := &Receipt{
		TxHash:      txHash,
		NoteId:      req.NoteId,
		Action:      string(req.Action),
		SubmittedAt: s.now(),
	}
	s.logger.Info(
		"note transaction submitted",
		"component", "submit",
		"tx_hash", txHash,
		"action", req.Action,
	)
	if s.config.EventBus != nil {
		s.config.EventBus.Publish(
			event.TransactionSubmittedEventType,
			event.NewEvent(
				event.TransactionSubmittedEventType,
				event.TransactionSubmittedEvent{
					TxHash:      receipt.TxHash,
					NoteId:      receipt.NoteId,
					Action:      receipt.Action,
					SubmittedAt: receipt.SubmittedAt,
				},
			),
		)
	}
	return receipt, nil
}
