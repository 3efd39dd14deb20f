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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/blinklabs-io/inscribe/internal/config"
	"github.com/blinklabs-io/inscribe/notes"
	"github.com/blinklabs-io/inscribe/submit"
	"github.com/spf13/cobra"
)

var noteFlags = struct {
	title   string
	content string
	noteId  string
}{}

func submitRun(action notes.Action, cfg *config.Config) {
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
	receipt, err := engine.SubmitNote(
		cmdContext(),
		action,
		noteFlags.title,
		noteFlags.content,
		noteFlags.noteId,
	)
	if err != nil {
		var cooldownErr *submit.CooldownActiveError
		if errors.As(err, &cooldownErr) {
			fmt.Printf(
				"write cooldown active, retry in %s\n",
				cooldownErr.Remaining.Round(time.Second),
			)
			os.Exit(1)
		}
		slog.Error(err.Error())
		os.Exit(1)
	}
	fmt.Printf("submitted %s as tx %s\n", action, receipt.TxHash)
}

func createCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a new note to the ledger",
		Run: func(cmd *cobra.Command, args []string) {
			submitRun(notes.ActionCreate, config.FromContext(cmd.Context()))
		},
	}
	cmd.Flags().
		StringVar(&noteFlags.title, "title", "", "note title")
	cmd.Flags().
		StringVar(&noteFlags.content, "content", "", "note content")
	return cmd
}

func updateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Write a new revision of an existing note",
		Run: func(cmd *cobra.Command, args []string) {
			submitRun(notes.ActionUpdate, config.FromContext(cmd.Context()))
		},
	}
	cmd.Flags().
		StringVar(&noteFlags.noteId, "note-id", "", "correlation key of the note to update")
	cmd.Flags().
		StringVar(&noteFlags.title, "title", "", "note title")
	cmd.Flags().
		StringVar(&noteFlags.content, "content", "", "note content")
	_ = cmd.MarkFlagRequired("note-id")
	return cmd
}

func deleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Write a deletion tombstone for an existing note",
		Run: func(cmd *cobra.Command, args []string) {
			submitRun(notes.ActionDelete, config.FromContext(cmd.Context()))
		},
	}
	cmd.Flags().
		StringVar(&noteFlags.noteId, "note-id", "", "correlation key of the note to delete")
	cmd.Flags().
		StringVar(&noteFlags.title, "title", "", "title of the note being deleted")
	_ = cmd.MarkFlagRequired("note-id")
	return cmd
}
