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
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/blinklabs-io/inscribe/event"
	"github.com/blinklabs-io/inscribe/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// watchRun keeps confirmation polling alive until interrupted, logging
// status transitions and serving prometheus metrics
func watchRun(_ *cobra.Command, _ []string, cfg *config.Config) {
	logger := commonRun()
	promRegistry := prometheus.NewRegistry()
	engine, err := newEngine(logger, cfg, promRegistry)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := engine.Stop(); err != nil {
			slog.Error(err.Error())
		}
	}()
	// Log status transitions as they happen
	engine.EventBus().SubscribeFunc(
		event.StatusChangeEventType,
		func(evt event.Event) {
			if data, ok := evt.Data.(event.StatusChangeEvent); ok {
				logger.Info(
					"note status changed",
					"component", programName,
					"tx_hash", data.TxHash,
					"note_id", data.NoteId,
					"status", data.NewStatus,
				)
			}
		},
	)
	// Metrics listener
	http.Handle(
		"/metrics",
		promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
	)
	logger.Info(
		fmt.Sprintf(
			"serving prometheus metrics on 0.0.0.0:%d",
			cfg.MetricsPort,
		),
		"component", programName,
	)
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.MetricsPort),
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			logger.Error(
				fmt.Sprintf("failed to start metrics listener: %s", err),
				"component", programName,
			)
			os.Exit(1)
		}
	}()
	// Poll until interrupt/termination signal
	ctx := cmdContext()
	stop := engine.Monitor(ctx)
	<-ctx.Done()
	stop()
	_ = metricsServer.Close()
}

func watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Poll outstanding transactions until they confirm",
		Run: func(cmd *cobra.Command, args []string) {
			watchRun(cmd, args, config.FromContext(cmd.Context()))
		},
	}
}
