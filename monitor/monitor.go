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
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blinklabs-io/inscribe/blockfrost"
	"github.com/blinklabs-io/inscribe/event"
	"github.com/blinklabs-io/inscribe/notes"
	"github.com/blinklabs-io/inscribe/submit"
)

// DefaultPollInterval is how often outstanding receipts are re-checked
const DefaultPollInterval = 20 * time.Second

// InclusionChecker looks up a transaction's inclusion state. A transaction
// the ledger hasn't seen yet yields (nil, nil)
type InclusionChecker interface {
	Transaction(
		ctx context.Context,
		txHash string,
	) (*blockfrost.TransactionInfo, error)
}

// StatusCallback is invoked when a tracked transaction's status resolves
type StatusCallback func(txHash string, noteId string, newStatus notes.Status)

// MonitorConfig contains the confirmation monitor's dependencies
type MonitorConfig struct {
	Logger       *slog.Logger
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	Checker      InclusionChecker
	Journal      *Journal
	// OnStatusChange is called for each resolved transaction, in addition
	// to the event bus publication
	OnStatusChange StatusCallback
	PollInterval   time.Duration
}

// Monitor watches outstanding submission receipts until their transactions
// land in a block. A transaction that hasn't appeared yet stays pending; the
// monitor never marks a transaction failed on its own
type Monitor struct {
	config  MonitorConfig
	logger  *slog.Logger
	journal *Journal

	startMutex sync.Mutex
	stop       func()

	metrics struct {
		pollCycles prometheus.Counter
		confirmed  prometheus.Counter
		pending    prometheus.Gauge
	}
}

func NewMonitor(config MonitorConfig) *Monitor {
	m := &Monitor{
		config:  config,
		journal: config.Journal,
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		m.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		m.logger = config.Logger
	}
	if m.config.PollInterval <= 0 {
		m.config.PollInterval = DefaultPollInterval
	}
	promRegistry := config.PromRegistry
	if promRegistry == nil {
		promRegistry = prometheus.NewRegistry()
	}
	promautoFactory := promauto.With(promRegistry)
	m.metrics.pollCycles = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "inscribe_monitor_poll_cycles_total",
		Help: "total number of confirmation poll cycles",
	})
	m.metrics.confirmed = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "inscribe_monitor_confirmed_total",
		Help: "total number of transactions confirmed",
	})
	m.metrics.pending = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "inscribe_monitor_pending_receipts",
		Help: "number of submission receipts awaiting confirmation",
	})
	return m
}

// Track journals a new receipt for confirmation polling
func (m *Monitor) Track(receipt *submit.Receipt) error {
	if err := m.journal.Put(receipt); err != nil {
		return err
	}
	m.updatePendingGauge()
	m.logger.Debug(
		"tracking submitted transaction",
		"component", "monitor",
		"tx_hash", receipt.TxHash,
	)
	return nil
}

// Pending returns the receipts still awaiting confirmation
func (m *Monitor) Pending() ([]submit.Receipt, error) {
	return m.journal.List()
}

// PollOnce checks every outstanding receipt against the ledger once and
// returns the number of transactions confirmed this cycle. A provider
// failure for one receipt doesn't block the rest
func (m *Monitor) PollOnce(ctx context.Context) (int, error) {
	m.metrics.pollCycles.Inc()
	receipts, err := m.journal.List()
	if err != nil {
		return 0, err
	}
	var confirmed int
	for _, receipt := range receipts {
		if ctx.Err() != nil {
			return confirmed, ctx.Err()
		}
		info, err := m.config.Checker.Transaction(ctx, receipt.TxHash)
		if err != nil {
			m.logger.Warn(
				"inclusion check failed",
				"component", "monitor",
				"tx_hash", receipt.TxHash,
				"error", err,
			)
			continue
		}
		if !info.Confirmed() {
			// Not in a block yet, keep waiting
			continue
		}
		if err := m.journal.Delete(receipt.TxHash); err != nil {
			m.logger.Warn(
				"failed to retire receipt",
				"component", "monitor",
				"tx_hash", receipt.TxHash,
				"error", err,
			)
			continue
		}
		confirmed++
		m.metrics.confirmed.Inc()
		m.logger.Info(
			"transaction confirmed",
			"component", "monitor",
			"tx_hash", receipt.TxHash,
			"block_height", info.BlockHeight,
		)
		m.notifyStatus(receipt, notes.StatusConfirmed)
	}
	m.updatePendingGauge()
	return confirmed, nil
}

// Start begins background confirmation polling: one immediate cycle, then
// one per interval. The returned stop function halts polling between
// cycles and blocks until the poll goroutine exits. Calling it more than
// once is safe
func (m *Monitor) Start(ctx context.Context) func() {
	m.startMutex.Lock()
	defer m.startMutex.Unlock()
	if m.stop != nil {
		// Already running
		return m.stop
	}
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		ticker := time.NewTicker(m.config.PollInterval)
		defer ticker.Stop()
		for {
			if _, err := m.PollOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				m.logger.Warn(
					"confirmation poll failed",
					"component", "monitor",
					"error", err,
				)
			}
			select {
			case <-ticker.C:
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	var once sync.Once
	m.stop = func() {
		once.Do(func() {
			close(stopCh)
		})
		<-doneCh
	}
	return m.stop
}

func (m *Monitor) notifyStatus(receipt submit.Receipt, status notes.Status) {
	if m.config.OnStatusChange != nil {
		m.config.OnStatusChange(receipt.TxHash, receipt.NoteId, status)
	}
	if m.config.EventBus != nil {
		m.config.EventBus.Publish(
			event.StatusChangeEventType,
			event.NewEvent(
				event.StatusChangeEventType,
				event.StatusChangeEvent{
					TxHash:    receipt.TxHash,
					NoteId:    receipt.NoteId,
					NewStatus: string(status),
				},
			),
		)
	}
}

func (m *Monitor) updatePendingGauge() {
	receipts, err := m.journal.List()
	if err != nil {
		return
	}
	m.metrics.pending.Set(float64(len(receipts)))
}
