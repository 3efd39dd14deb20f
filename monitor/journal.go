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

package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/blinklabs-io/inscribe/submit"
)

var receiptKeyPrefix = []byte("receipt/")

// ErrReceiptNotFound is returned when the journal holds no receipt for the
// requested transaction hash
var ErrReceiptNotFound = errors.New("receipt not found")

// Journal persists submission receipts until their transactions resolve,
// so confirmation polling survives a process restart
type Journal struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewJournal opens the receipt journal. An empty dataDir uses an in-memory
// store
func NewJournal(dataDir string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var db *badger.DB
	var err error
	if dataDir == "" {
		badgerOpts := badger.DefaultOptions("").
			WithLogger(NewBadgerLogger(logger)).
			// The default INFO logging is a bit verbose
			WithLoggingLevel(badger.WARNING).
			WithInMemory(true)
		db, err = badger.Open(badgerOpts)
		if err != nil {
			return nil, err
		}
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		journalDir := filepath.Join(dataDir, "journal")
		badgerOpts := badger.DefaultOptions(journalDir).
			WithLogger(NewBadgerLogger(logger)).
			WithLoggingLevel(badger.WARNING)
		db, err = badger.Open(badgerOpts)
		if err != nil {
			return nil, err
		}
	}
	return &Journal{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the underlying store
func (j *Journal) Close() error {
	return j.db.Close()
}

func receiptKey(txHash string) []byte {
	return []byte(string(receiptKeyPrefix) + txHash)
}

// Put records a receipt for an outstanding submission
func (j *Journal) Put(receipt *submit.Receipt) error {
	if receipt == nil || receipt.TxHash == "" {
		return errors.New("receipt requires a transaction hash")
	}
	val, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(receiptKey(receipt.TxHash), val)
	})
}

// Get returns the receipt for a transaction hash
func (j *Journal) Get(txHash string) (*submit.Receipt, error) {
	var receipt submit.Receipt
	err := j.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(receiptKey(txHash))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrReceiptNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &receipt)
		})
	})
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// List returns all outstanding receipts
func (j *Journal) List() ([]submit.Receipt, error) {
	receipts := []submit.Receipt{}
	err := j.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = receiptKeyPrefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var receipt submit.Receipt
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &receipt)
			})
			if err != nil {
				return err
			}
			receipts = append(receipts, receipt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

// Delete retires a receipt once its transaction has resolved
func (j *Journal) Delete(txHash string) error {
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(receiptKey(txHash))
	})
}
