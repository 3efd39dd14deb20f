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

package blockfrost

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"resty.dev/v3"
)

const (
	// MainnetURL is the Blockfrost API endpoint for the Cardano mainnet
	MainnetURL = "https://cardano-mainnet.blockfrost.io/api/v0"
	// PreviewURL is the Blockfrost API endpoint for the preview testnet
	PreviewURL = "https://cardano-preview.blockfrost.io/api/v0"
	// PreprodURL is the Blockfrost API endpoint for the preprod testnet
	PreprodURL = "https://cardano-preprod.blockfrost.io/api/v0"

	DefaultTimeout       = 30 * time.Second
	DefaultRetryAttempts = 3
)

// ClientConfig contains the Blockfrost client configuration
type ClientConfig struct {
	Logger *slog.Logger
	// BaseURL selects the network endpoint
	BaseURL string
	// ProjectId is the Blockfrost API key, sent as the project_id header
	ProjectId string
	// Timeout bounds each HTTP request
	Timeout time.Duration
	// RetryAttempts is the number of tries for transient failures
	RetryAttempts uint
}

// Client is a read/broadcast client for the Blockfrost REST API. It covers
// only the narrow capability the reconciliation engine needs: transaction
// history by address, per-transaction metadata, inclusion lookup, and
// transaction broadcast
type Client struct {
	config     ClientConfig
	httpClient *resty.Client
	logger     *slog.Logger
}

// NewClient creates a Blockfrost API client
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = PreviewURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.RetryAttempts == 0 {
		config.RetryAttempts = DefaultRetryAttempts
	}
	httpClient := resty.New()
	httpClient.SetBaseURL(config.BaseURL)
	httpClient.SetTimeout(config.Timeout)
	if config.ProjectId != "" {
		httpClient.SetHeader("project_id", config.ProjectId)
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

// get performs a GET with retry on transient failures. Returns
// (notFound=true, nil) on HTTP 404 so callers can distinguish absence from
// provider failure
func (c *Client) get(
	ctx context.Context,
	path string,
	query map[string]string,
	result any,
) (notFound bool, err error) {
	err = retry.Do(
		func() error {
			response, reqErr := c.httpClient.R().
				SetContext(ctx).
				SetQueryParams(query).
				SetResult(result).
				Get(path)
			if reqErr != nil {
				return reqErr
			}
			if response.StatusCode() == http.StatusNotFound {
				notFound = true
				return nil
			}
			if response.IsError() {
				apiErr := &APIError{
					StatusCode: response.StatusCode(),
					Message:    response.String(),
				}
				if !apiErr.Transient() {
					return retry.Unrecoverable(apiErr)
				}
				return apiErr
			}
			notFound = false
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.config.RetryAttempts),
	)
	return notFound, err
}

// AddressTransactions returns one page of an address's transaction history.
// An address the ledger has never seen yields an empty page, not an error
func (c *Client) AddressTransactions(
	ctx context.Context,
	address string,
	params PaginationParams,
) ([]AddressTransaction, error) {
	txs := []AddressTransaction{}
	notFound, err := c.get(
		ctx,
		fmt.Sprintf("/addresses/%s/transactions", address),
		params.queryParams(),
		&txs,
	)
	if err != nil {
		return nil, fmt.Errorf("list address transactions: %w", err)
	}
	if notFound {
		return []AddressTransaction{}, nil
	}
	return txs, nil
}

// TransactionMetadata returns the labeled metadata attached to a
// transaction. A transaction with no metadata yields (nil, nil)
func (c *Client) TransactionMetadata(
	ctx context.Context,
	txHash string,
) ([]TxMetadataLabel, error) {
	labels := []TxMetadataLabel{}
	notFound, err := c.get(
		ctx,
		fmt.Sprintf("/txs/%s/metadata", txHash),
		nil,
		&labels,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction metadata: %w", err)
	}
	if notFound {
		return nil, nil
	}
	return labels, nil
}

// Transaction returns a transaction's inclusion info. A transaction the
// ledger hasn't seen yet yields (nil, nil), it may simply still be in
// flight
func (c *Client) Transaction(
	ctx context.Context,
	txHash string,
) (*TransactionInfo, error) {
	info := TransactionInfo{}
	notFound, err := c.get(
		ctx,
		fmt.Sprintf("/txs/%s", txHash),
		nil,
		&info,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction: %w", err)
	}
	if notFound {
		return nil, nil
	}
	return &info, nil
}

// SubmitTransaction broadcasts a signed transaction and returns the
// ledger-assigned transaction hash
func (c *Client) SubmitTransaction(
	ctx context.Context,
	txCbor []byte,
) (string, error) {
	var txHash string
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/cbor").
		SetBody(txCbor).
		SetResult(&txHash).
		Post("/tx/submit")
	if err != nil {
		return "", fmt.Errorf("submit transaction: %w", err)
	}
	if response.IsError() {
		return "", &APIError{
			StatusCode: response.StatusCode(),
			Message:    response.String(),
		}
	}
	return txHash, nil
}
