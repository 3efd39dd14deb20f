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

package metadata_test

import (
	"strings"
	"testing"

	"github.com/blinklabs-io/inscribe/metadata"
)

func TestEncodeTextShort(t *testing.T) {
	testDefs := []string{
		"",
		"hello",
		strings.Repeat("a", 64),
	}
	for _, testDef := range testDefs {
		ret := metadata.EncodeText(testDef)
		s, ok := ret.(string)
		if !ok {
			t.Fatalf("expected single string for %q, got %T", testDef, ret)
		}
		if s != testDef {
			t.Fatalf("unexpected value: got %q, wanted %q", s, testDef)
		}
	}
}

func TestEncodeTextChunked(t *testing.T) {
	testDefs := []struct {
		input          string
		expectedChunks int
	}{
		{strings.Repeat("a", 65), 2},
		{strings.Repeat("a", 128), 2},
		{strings.Repeat("a", 129), 3},
		{strings.Repeat("x", 200), 4},
	}
	for _, testDef := range testDefs {
		ret := metadata.EncodeText(testDef.input)
		chunks, ok := ret.([]string)
		if !ok {
			t.Fatalf("expected chunk list, got %T", ret)
		}
		if len(chunks) != testDef.expectedChunks {
			t.Fatalf(
				"unexpected chunk count for %d bytes: got %d, wanted %d",
				len(testDef.input),
				len(chunks),
				testDef.expectedChunks,
			)
		}
		for _, chunk := range chunks {
			if len(chunk) > metadata.MaxChunkBytes {
				t.Fatalf(
					"chunk exceeds size limit: %d > %d",
					len(chunk),
					metadata.MaxChunkBytes,
				)
			}
		}
	}
}

func TestTextRoundTrip(t *testing.T) {
	testDefs := []string{
		"",
		"short note",
		strings.Repeat("a", 64),
		strings.Repeat("b", 65),
		strings.Repeat("milk, eggs, bread. ", 20),
		// Multi-byte characters spanning the chunk boundary
		strings.Repeat("é", 100),
		strings.Repeat("日本語", 50),
		strings.Repeat("café \U0001f4dd ", 30),
	}
	for _, testDef := range testDefs {
		ret := metadata.DecodeText(metadata.EncodeText(testDef))
		if ret != testDef {
			t.Fatalf(
				"round trip mismatch: got %q, wanted %q",
				ret,
				testDef,
			)
		}
	}
}

func TestEncodeTextRuneBoundary(t *testing.T) {
	// 63 ASCII bytes followed by a 2-byte rune. A naive byte split would
	// cut the rune in half at offset 64
	input := strings.Repeat("a", 63) + "éé"
	ret := metadata.EncodeText(input)
	chunks, ok := ret.([]string)
	if !ok {
		t.Fatalf("expected chunk list, got %T", ret)
	}
	for _, chunk := range chunks {
		if !strings.Contains(chunk, "é") && chunk != strings.Repeat("a", 63) {
			t.Fatalf("unexpected chunk content: %q", chunk)
		}
		for _, r := range chunk {
			if r == '�' {
				t.Fatalf("chunk contains replacement character: %q", chunk)
			}
		}
	}
	if metadata.DecodeText(ret) != input {
		t.Fatalf("round trip mismatch for rune boundary input")
	}
}

func TestDecodeTextJsonShape(t *testing.T) {
	// JSON decoding yields []any rather than []string
	input := []any{"foo", "bar", "baz"}
	ret := metadata.DecodeText(input)
	if ret != "foobarbaz" {
		t.Fatalf("unexpected value: got %q, wanted %q", ret, "foobarbaz")
	}
}
