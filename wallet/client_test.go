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

package wallet_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/blinklabs-io/inscribe/submit"
	"github.com/blinklabs-io/inscribe/wallet"
)

// Client must satisfy the submitter's signing interface
var _ submit.Signer = &wallet.Client{}

func TestSignTransaction(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/sign" {
				t.Fatalf("unexpected path: %s", r.URL.Path)
			}
			gotAuth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Fatalf("decode request body: %s", err)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"tx_cbor": "84a400"}`))
		}),
	)
	defer server.Close()
	client := wallet.NewClient(wallet.ClientConfig{
		BaseURL: server.URL,
		ApiKey:  "secret",
	})
	defer client.Close()
	txCbor, err := client.SignTransaction(
		context.Background(),
		submit.PaymentRequest{
			Address:       "addr_test123",
			Lovelace:      1_000_000,
			MetadataLabel: 42819,
			Metadata: map[string]any{
				"action": "create",
				"title":  "Groceries",
			},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !bytes.Equal(txCbor, []byte{0x84, 0xa4, 0x00}) {
		t.Fatalf("unexpected signed tx: %x", txCbor)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotBody["address"] != "addr_test123" {
		t.Fatalf("unexpected address: %v", gotBody["address"])
	}
	if gotBody["lovelace"] != float64(1_000_000) {
		t.Fatalf("unexpected lovelace: %v", gotBody["lovelace"])
	}
	if gotBody["metadata_label"] != float64(42819) {
		t.Fatalf("unexpected metadata label: %v", gotBody["metadata_label"])
	}
	metadata, ok := gotBody["metadata"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected metadata shape: %T", gotBody["metadata"])
	}
	if metadata["title"] != "Groceries" {
		t.Fatalf("unexpected metadata title: %v", metadata["title"])
	}
}

func TestSignTransactionRefused(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error": "user declined to sign"}`))
		}),
	)
	defer server.Close()
	client := wallet.NewClient(wallet.ClientConfig{BaseURL: server.URL})
	defer client.Close()
	_, err := client.SignTransaction(
		context.Background(),
		submit.PaymentRequest{Address: "addr_test123"},
	)
	if err == nil {
		t.Fatalf("expected error for refused signing")
	}
	if !strings.Contains(err.Error(), "user declined to sign") {
		t.Fatalf("expected refusal reason in error, got: %s", err)
	}
}

func TestSignTransactionBadHex(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"tx_cbor": "not-hex"}`))
		}),
	)
	defer server.Close()
	client := wallet.NewClient(wallet.ClientConfig{BaseURL: server.URL})
	defer client.Close()
	_, err := client.SignTransaction(
		context.Background(),
		submit.PaymentRequest{Address: "addr_test123"},
	)
	if err == nil {
		t.Fatalf("expected error for malformed response")
	}
}

func TestSignTransactionEmptyResponse(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}),
	)
	defer server.Close()
	client := wallet.NewClient(wallet.ClientConfig{BaseURL: server.URL})
	defer client.Close()
	_, err := client.SignTransaction(
		context.Background(),
		submit.PaymentRequest{Address: "addr_test123"},
	)
	if err == nil {
		t.Fatalf("expected error for empty signing response")
	}
}
