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
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/blinklabs-io/inscribe/blockfrost"
	"github.com/blinklabs-io/inscribe/metadata"
)

// DefaultFetchDelay spaces consecutive metadata fetches to stay under the
// ledger provider's rate limiting threshold
const DefaultFetchDelay = 100 * time.Millisecond

// LedgerClient is the read capability the scanner needs from the ledger
// provider
type LedgerClient interface {
	AddressTransactions(
		ctx context.Context,
		address string,
		params blockfrost.PaginationParams,
	) ([]blockfrost.AddressTransaction, error)
	TransactionMetadata(
		ctx context.Context,
		txHash string,
	) ([]blockfrost.TxMetadataLabel, error)
}

// ScannerConfig contains the ledger scanner's dependencies
type ScannerConfig struct {
	Logger *slog.Logger
	Client LedgerClient
	// MetadataLabel selects which labeled payloads belong to this
	// application
	MetadataLabel uint
	// FetchDelay is the minimum spacing between metadata fetches
	FetchDelay time.Duration
}

// Scanner walks an address's transaction history and extracts the note
// payloads attached under the application's metadata label
type Scanner struct {
	config ScannerConfig
	logger *slog.Logger
	label  string

	fetchMutex sync.Mutex
	lastFetch  time.Time
}

func NewScanner(config ScannerConfig) *Scanner {
	s := &Scanner{
		config: config,
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		s.logger = config.Logger
	}
	if s.config.MetadataLabel == 0 {
		s.config.MetadataLabel = metadata.DefaultLabel
	}
	if s.config.FetchDelay <= 0 {
		s.config.FetchDelay = DefaultFetchDelay
	}
	s.label = strconv.FormatUint(uint64(s.config.MetadataLabel), 10)
	return s
}

// ListTransactions pages through the address's full transaction history. A
// short page signals the end. An address the ledger has never seen yields
// an empty history, not an error
func (s *Scanner) ListTransactions(
	ctx context.Context,
	address string,
) ([]blockfrost.AddressTransaction, error) {
	var ret []blockfrost.AddressTransaction
	params := blockfrost.DefaultPagination()
	for {
		page, err := s.config.Client.AddressTransactions(ctx, address, params)
		if err != nil {
			return nil, fmt.Errorf("scan transaction history: %w", err)
		}
		ret = append(ret, page...)
		if len(page) < params.Count {
			break
		}
		params = params.Next()
	}
	s.logger.Debug(
		"scanned transaction history",
		"component", "recovery",
		"address", address,
		"tx_count", len(ret),
	)
	return ret, nil
}

// FetchPayload returns the note payload attached to a transaction, or nil
// when the transaction carries none under the application's label. Provider
// failures are returned as errors, distinct from absence
func (s *Scanner) FetchPayload(
	ctx context.Context,
	txHash string,
) (*metadata.NotePayload, error) {
	if err := s.throttle(ctx); err != nil {
		return nil, err
	}
	labels, err := s.config.Client.TransactionMetadata(ctx, txHash)
	if err != nil {
		return nil, err
	}
	for _, entry := range labels {
		if entry.Label != s.label {
			continue
		}
		return metadata.DecodePayload(entry.JSONMetadata), nil
	}
	return nil, nil
}

// throttle enforces the fetch spacing, yielding early on cancellation
func (s *Scanner) throttle(ctx context.Context) error {
	s.fetchMutex.Lock()
	wait := s.config.FetchDelay - time.Since(s.lastFetch)
	s.lastFetch = time.Now().Add(max(wait, 0))
	s.fetchMutex.Unlock()
	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
