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
	"os"

	"github.com/blinklabs-io/inscribe/internal/config"
	"github.com/spf13/cobra"
)

func recoverRun(cfg *config.Config) {
	logger := commonRun()
	engine, err := newEngine(logger, cfg, nil)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := engine.Stop(); err != nil {
			slog.Error(err.Error())
		}
	}()
	result, err := engine.RecoverAll(
		cmdContext(),
		func(processed, total int) {
			fmt.Printf("\rscanning transactions: %d/%d", processed, total)
		},
	)
	if err != nil {
		fmt.Println()
		slog.Error(err.Error())
		os.Exit(1)
	}
	fmt.Println()
	fmt.Printf(
		"recovered %d notes (%d saved, %d already present)\n",
		result.RecoveredCount,
		result.SavedCount,
		result.SkippedCount,
	)
}

func recoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Rebuild the local note projection from chain history",
		Run: func(cmd *cobra.Command, args []string) {
			recoverRun(config.FromContext(cmd.Context()))
		},
	}
}
