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

	"github.com/blinklabs-io/inscribe/database/models"
	"github.com/blinklabs-io/inscribe/internal/config"
	"github.com/spf13/cobra"
)

var listFlags = struct {
	deleted bool
	search  string
}{}

func listRun(cfg *config.Config) {
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
	var noteRows []models.Note
	if listFlags.search != "" {
		noteRows, err = engine.SearchNotes(listFlags.search)
	} else {
		noteRows, err = engine.Notes(listFlags.deleted)
	}
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	if len(noteRows) == 0 {
		fmt.Println("no notes")
		return
	}
	for _, note := range noteRows {
		marker := " "
		if note.Deleted {
			marker = "D"
		} else if note.IsPinned {
			marker = "*"
		}
		fmt.Printf(
			"%s [%s] %s  %s\n",
			marker,
			note.Status,
			note.NoteId,
			note.Title,
		)
	}
}

func listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes from the local projection",
		Run: func(cmd *cobra.Command, args []string) {
			listRun(config.FromContext(cmd.Context()))
		},
	}
	cmd.Flags().
		BoolVar(&listFlags.deleted, "deleted", false, "include tombstoned notes (trash view)")
	cmd.Flags().
		StringVar(&listFlags.search, "search", "", "filter notes by a search term")
	return cmd
}
