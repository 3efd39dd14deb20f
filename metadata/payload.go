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

package metadata

// DefaultLabel is the transaction metadata label used to tag note payloads
// on-chain
const DefaultLabel uint = 42819

// Payload field keys as they appear in the on-chain metadata map
const (
	KeyAction      = "action"
	KeyTitle       = "title"
	KeyContent     = "content"
	KeyCreatedAt   = "created_at"
	KeyNoteId      = "note_id"
	KeyDescription = "description"
)

// NotePayload is the application-level structure carried in a transaction's
// metadata under the note label. Title, Content, and Description are stored
// chunked on-chain and reassembled on decode
type NotePayload struct {
	Action      string
	Title       string
	Content     string
	CreatedAt   string
	NoteId      string
	Description string
}

// Encode converts the payload into the generic map shape submitted as
// transaction metadata. Long text fields are chunked via EncodeText.
// Optional fields are omitted when empty
func (p *NotePayload) Encode() map[string]any {
	ret := map[string]any{
		KeyAction:    p.Action,
		KeyTitle:     EncodeText(p.Title),
		KeyContent:   EncodeText(p.Content),
		KeyCreatedAt: p.CreatedAt,
	}
	if p.NoteId != "" {
		ret[KeyNoteId] = p.NoteId
	}
	if p.Description != "" {
		ret[KeyDescription] = EncodeText(p.Description)
	}
	return ret
}

// DecodePayload converts a decoded metadata map back into a NotePayload,
// reassembling any chunked text fields. Returns nil when given a nil map
// or a value that isn't a map
func DecodePayload(value any) *NotePayload {
	m, ok := value.(map[string]any)
	if !ok || m == nil {
		return nil
	}
	ret := &NotePayload{
		Title:       DecodeText(m[KeyTitle]),
		Content:     DecodeText(m[KeyContent]),
		Description: DecodeText(m[KeyDescription]),
	}
	if action, ok := m[KeyAction].(string); ok {
		ret.Action = action
	}
	if createdAt, ok := m[KeyCreatedAt].(string); ok {
		ret.CreatedAt = createdAt
	}
	if noteId, ok := m[KeyNoteId].(string); ok {
		ret.NoteId = noteId
	}
	return ret
}
