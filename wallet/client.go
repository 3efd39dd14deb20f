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

package wallet

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"resty.dev/v3"

	"github.com/blinklabs-io/inscribe/submit"
)

const DefaultTimeout = 60 * time.Second

// ClientConfig contains the wallet service client configuration
type ClientConfig struct {
	Logger *slog.Logger
	// BaseURL is the wallet signing service endpoint
	BaseURL string
	// ApiKey is sent as a bearer token when set
	ApiKey string
	// Timeout bounds each signing request. Signing may involve operator
	// approval, so the default is generous
	Timeout time.Duration
}

// Client asks an external wallet service to build and sign note
// transactions. Keys never pass through this process; the service holds
// them and may refuse any request
type Client struct {
	config     ClientConfig
	httpClient *resty.Client
	logger     *slog.Logger
}

// signRequest is the wallet service wire format for a signing request
type signRequest struct {
	Address       string         `json:"address"`
	Lovelace      uint64         `json:"lovelace"`
	MetadataLabel uint           `json:"metadata_label"`
	Metadata      map[string]any `json:"metadata"`
}

// signResponse carries the signed transaction as hex-encoded CBOR
type signResponse struct {
	TxCbor string `json:"tx_cbor"`
}

// errorResponse is the wallet service wire format for a refusal
type errorResponse struct {
	Error string `json:"error"`
}

// NewClient creates a wallet service client
func NewClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	httpClient := resty.New()
	httpClient.SetBaseURL(config.BaseURL)
	httpClient.SetTimeout(config.Timeout)
	if config.ApiKey != "" {
		httpClient.SetAuthToken(config.ApiKey)
	}
	c := &Client{
		config:     config,
		httpClient: httpClient,
	}
	if config.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		c.logger = config.Logger
	}
	return c
}

// Close releases the underlying HTTP client resources
func (c *Client) Close() error {
	return c.httpClient.Close()
}

// SignTransaction asks the wallet service to build and sign the requested
// self-payment. Refusals are not retried; the caller surfaces them to the
// user
func (c *Client) SignTransaction(
	ctx context.Context,
	req submit.PaymentRequest,
) ([]byte, error) {
	var result signResponse
	var svcErr errorResponse
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(signRequest{
			Address:       req.Address,
			Lovelace:      req.Lovelace,
			MetadataLabel: req.MetadataLabel,
			Metadata:      req.Metadata,
		}).
		SetResult(&result).
		SetError(&svcErr).
		Post("/sign")
	if err != nil {
		return nil, fmt.Errorf("wallet service request: %w", err)
	}
	if response.IsError() {
		if svcErr.Error != "" {
			return nil, fmt.Errorf("wallet service: %s", svcErr.Error)
		}
		return nil, fmt.Errorf(
			"wallet service: HTTP %d",
			response.StatusCode(),
		)
	}
	if response.StatusCode() != http.StatusOK || result.TxCbor == "" {
		return nil, fmt.Errorf("wallet service: empty signing response")
	}
	txCbor, err := hex.DecodeString(result.TxCbor)
	if err != nil {
		return nil, fmt.Errorf("decode signed transaction: %w", err)
	}
	c.logger.Debug(
		"transaction signed",
		"component", "wallet",
		"tx_bytes", len(txCbor),
	)
	return txCbor, nil
}
