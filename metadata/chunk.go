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

import (
	"unicode/utf8"
)

// MaxChunkBytes is the maximum size of a single metadata string value
// allowed by the Cardano ledger
const MaxChunkBytes = 64

// EncodeText converts a string into a metadata value that fits the ledger's
// per-string size limit. Strings of MaxChunkBytes bytes or less are returned
// as-is. Longer strings are split into an ordered list of chunks, each no
// larger than MaxChunkBytes bytes. Chunk boundaries are backed up to the
// nearest UTF-8 rune start so a multi-byte character is never split across
// chunks.
func EncodeText(text string) any {
	if len(text) <= MaxChunkBytes {
		return text
	}
	chunks := []string{}
	for len(text) > 0 {
		if len(text) <= MaxChunkBytes {
			chunks = append(chunks, text)
			break
		}
		end := MaxChunkBytes
		// Back up to a rune boundary. A rune is at most 4 bytes, so this
		// always terminates with a non-empty chunk
		for end > 0 && !utf8.RuneStart(text[end]) {
			end--
		}
		if end == 0 {
			// Invalid UTF-8 with no rune start in the window, split at the
			// byte limit
			end = MaxChunkBytes
		}
		chunks = append(chunks, text[:end])
		text = text[end:]
	}
	return chunks
}

// DecodeText reassembles a metadata value produced by EncodeText. A single
// string is returned unchanged, an ordered list is concatenated in order.
// Values of any other shape decode to the empty string. This is the exact
// inverse of EncodeText for all inputs
func DecodeText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		var out string
		for _, chunk := range v {
			out += chunk
		}
		return out
	case []any:
		// JSON decoding gives us []any for chunk lists
		var out string
		for _, chunk := range v {
			s, ok := chunk.(string)
			if !ok {
				return ""
			}
			out += s
		}
		return out
	default:
		return ""
	}
}
