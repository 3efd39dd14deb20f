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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/blinklabs-io/inscribe"
	"github.com/blinklabs-io/inscribe/internal/config"
	"github.com/prometheus/client_golang/prometheus"
)

// cmdContext returns a context cancelled by interrupt/termination signals
func cmdContext() context.Context {
	ctx, _ := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	return ctx
}

// newEngine builds a reconciliation engine from the loaded config
func newEngine(
	logger *slog.Logger,
	cfg *config.Config,
	promRegistry prometheus.Registerer,
) (*inscribe.Engine, error) {
	cooldownWindow, err := config.ParseDuration(cfg.CooldownWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid cooldown window: %w", err)
	}
	pollInterval, err := config.ParseDuration(cfg.PollInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}
	fetchDelay, err := config.ParseDuration(cfg.FetchDelay)
	if err != nil {
		return nil, fmt.Errorf("invalid fetch delay: %w", err)
	}
	opts := []inscribe.ConfigOptionFunc{
		inscribe.WithLogger(logger),
		inscribe.WithNetwork(cfg.Network),
		inscribe.WithAddress(cfg.Address),
		inscribe.WithDataDir(cfg.DatabasePath),
		inscribe.WithBlockfrostProjectId(cfg.BlockfrostProjectId),
		inscribe.WithWalletEndpoint(cfg.WalletURL, cfg.WalletApiKey),
		inscribe.WithCooldownWindow(cooldownWindow),
		inscribe.WithPollInterval(pollInterval),
		inscribe.WithFetchDelay(fetchDelay),
		inscribe.WithTracing(cfg.Tracing),
		inscribe.WithTracingStdout(cfg.TracingStdout),
	}
	if cfg.BlockfrostURL != "" {
		opts = append(opts, inscribe.WithBlockfrostURL(cfg.BlockfrostURL))
	}
	if cfg.MetadataLabel != 0 {
		opts = append(opts, inscribe.WithMetadataLabel(cfg.MetadataLabel))
	}
	if cfg.PaymentLovelace != 0 {
		opts = append(opts, inscribe.WithPaymentLovelace(cfg.PaymentLovelace))
	}
	if promRegistry != nil {
		opts = append(opts, inscribe.WithPrometheusRegistry(promRegistry))
	}
	return inscribe.New(inscribe.NewConfig(opts...))
}
