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

package notes

import (
	"sort"
)

// FoldOptionFunc configures a Fold call
type FoldOptionFunc func(*foldOptions)

type foldOptions struct {
	includeDeleted bool
}

// WithDeleted includes tombstoned notes in the fold output. This is the
// trash view; tombstones are never garbage collected from the event set
func WithDeleted(includeDeleted bool) FoldOptionFunc {
	return func(o *foldOptions) {
		o.includeDeleted = includeDeleted
	}
}

// Fold reduces a set of note events into current note state. Events are
// sorted by embedded payload timestamp (ledger order is not chronological
// when scans retrieve pages concurrently), grouped by correlation key, and
// walked chronologically with last-writer-wins semantics. A delete event
// tombstones its key permanently: later create/update events for the same
// key are ignored. The result is deterministic for any input ordering of
// the same event set
func Fold(events []NoteEvent, opts ...FoldOptionFunc) []Note {
	options := foldOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	sorted := make([]NoteEvent, len(events))
	copy(sorted, events)
	// Timestamps can collide, so tie-break on transaction hash to keep the
	// fold deterministic under permutation
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.TxHash < b.TxHash
	})
	noteMap := map[string]*Note{}
	keyOrder := []string{}
	for i := range sorted {
		evt := sorted[i]
		key := evt.Key()
		existing, ok := noteMap[key]
		if !ok {
			existing = &Note{
				NoteId: key,
				Status: StatusConfirmed,
			}
			noteMap[key] = existing
			keyOrder = append(keyOrder, key)
		}
		switch evt.Action {
		case ActionDelete:
			// One-way tombstone
			existing.Deleted = true
			existing.DeletionTxHash = evt.TxHash
		case ActionCreate, ActionUpdate:
			if existing.Deleted {
				// No resurrection
				continue
			}
			// Full replace, not merge
			existing.Title = evt.Title
			existing.Content = evt.Content
			existing.CreatedAt = evt.Timestamp
			existing.LastEventTxHash = evt.TxHash
			if existing.TxHash == "" {
				existing.TxHash = evt.TxHash
			}
		}
	}
	ret := []Note{}
	for _, key := range keyOrder {
		note := noteMap[key]
		if note.Deleted && !options.includeDeleted {
			continue
		}
		if note.TxHash == "" && !note.Deleted {
			// Key only ever saw ignored events
			continue
		}
		ret = append(ret, *note)
	}
	return ret
}
