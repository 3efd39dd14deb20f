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

package inscribe

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	ouroboros "github.com/blinklabs-io/gouroboros"
	gledger "github.com/blinklabs-io/gouroboros/ledger"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/inscribe/blockfrost"
	"github.com/blinklabs-io/inscribe/submit"
)

type Config struct {
	promRegistry prometheus.Registerer
	logger       *slog.Logger
	// ledgerProvider overrides the Blockfrost client, mostly for tests
	ledgerProvider LedgerProvider
	// signer overrides the wallet service client, mostly for tests
	signer              submit.Signer
	network             string
	networkMagic        uint32
	address             string
	dataDir             string
	blockfrostURL       string
	blockfrostProjectId string
	walletURL           string
	walletApiKey        string
	metadataLabel       uint
	paymentLovelace     uint64
	cooldownWindow      time.Duration
	pollInterval        time.Duration
	fetchDelay          time.Duration
	tracing             bool
	tracingStdout       bool
}

// configPopulateNetworkMagic uses the named network (if specified) to determine the network magic value (if not specified)
func (e *Engine) configPopulateNetworkMagic() error {
	if e.config.networkMagic == 0 && e.config.network != "" {
		tmpCfg := e.config
		tmpNetwork, ok := ouroboros.NetworkByName(e.config.network)
		if !ok {
			return fmt.Errorf("unknown network name: %s", e.config.network)
		}
		tmpCfg.networkMagic = tmpNetwork.NetworkMagic
		e.config = tmpCfg
	}
	return nil
}

// configPopulateBlockfrostURL maps the named network onto the matching
// Blockfrost endpoint unless one was given explicitly
func (e *Engine) configPopulateBlockfrostURL() {
	if e.config.blockfrostURL != "" {
		return
	}
	switch e.config.network {
	case "mainnet":
		e.config.blockfrostURL = blockfrost.MainnetURL
	case "preprod":
		e.config.blockfrostURL = blockfrost.PreprodURL
	default:
		e.config.blockfrostURL = blockfrost.PreviewURL
	}
}

func (e *Engine) configValidate() error {
	if e.config.networkMagic == 0 {
		return fmt.Errorf(
			"invalid network magic value: %d",
			e.config.networkMagic,
		)
	}
	if e.config.address == "" {
		return errors.New("no wallet address defined")
	}
	if _, err := gledger.NewAddress(e.config.address); err != nil {
		return fmt.Errorf("invalid wallet address: %w", err)
	}
	if e.config.ledgerProvider == nil && e.config.blockfrostProjectId == "" {
		return errors.New("no Blockfrost project id defined")
	}
	if e.config.signer == nil && e.config.walletURL == "" {
		return errors.New("no wallet service endpoint defined")
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the engine config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new inscribe config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithNetwork specifies the named network to operate on. This will automatically set the appropriate network magic value
// and Blockfrost endpoint
func WithNetwork(network string) ConfigOptionFunc {
	return func(c *Config) {
		c.network = network
	}
}

// WithNetworkMagic specifies the network magic value to use. This will override any named network specified
func WithNetworkMagic(networkMagic uint32) ConfigOptionFunc {
	return func(c *Config) {
		c.networkMagic = networkMagic
	}
}

// WithAddress specifies the bech32 wallet address whose notes the engine
// manages. All writes are self-payments from and to this address
func WithAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.address = address
	}
}

// WithDataDir specifies the persistent data directory to use. The default is to store everything in memory
func WithDataDir(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlockfrostProjectId specifies the Blockfrost API key
func WithBlockfrostProjectId(projectId string) ConfigOptionFunc {
	return func(c *Config) {
		c.blockfrostProjectId = projectId
	}
}

// WithBlockfrostURL overrides the Blockfrost endpoint derived from the named network
func WithBlockfrostURL(url string) ConfigOptionFunc {
	return func(c *Config) {
		c.blockfrostURL = url
	}
}

// WithWalletEndpoint specifies the external wallet signing service
func WithWalletEndpoint(url string, apiKey string) ConfigOptionFunc {
	return func(c *Config) {
		c.walletURL = url
		c.walletApiKey = apiKey
	}
}

// WithLedgerProvider overrides the Blockfrost-backed ledger provider. This is mostly useful for testing
func WithLedgerProvider(provider LedgerProvider) ConfigOptionFunc {
	return func(c *Config) {
		c.ledgerProvider = provider
	}
}

// WithSigner overrides the wallet-service-backed transaction signer. This is mostly useful for testing
func WithSigner(signer submit.Signer) ConfigOptionFunc {
	return func(c *Config) {
		c.signer = signer
	}
}

// WithMetadataLabel specifies the transaction metadata label notes are written under. The default is 42819
func WithMetadataLabel(label uint) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataLabel = label
	}
}

// WithPaymentLovelace specifies the self-payment amount carried by note transactions. The default is 1000000 (1 ADA)
func WithPaymentLovelace(lovelace uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.paymentLovelace = lovelace
	}
}

// WithCooldownWindow specifies the minimum interval between accepted ledger writes. The default is 90 seconds
func WithCooldownWindow(window time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.cooldownWindow = window
	}
}

// WithPollInterval specifies the confirmation polling interval. The default is 20 seconds
func WithPollInterval(interval time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.pollInterval = interval
	}
}

// WithFetchDelay specifies the spacing between metadata fetches during recovery scans. The default is 100ms
func WithFetchDelay(delay time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.fetchDelay = delay
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}
