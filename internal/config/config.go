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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "inscribe.config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	Network             string        `yaml:"network"`
	Address             string        `yaml:"address"`
	DatabasePath        string        `yaml:"databasePath"        split_words:"true"`
	BlockfrostProjectId string        `yaml:"blockfrostProjectId" envconfig:"BLOCKFROST_PROJECT_ID"`
	BlockfrostURL       string        `yaml:"blockfrostUrl"       envconfig:"BLOCKFROST_URL"`
	WalletURL           string        `yaml:"walletUrl"           envconfig:"WALLET_URL"`
	WalletApiKey        string        `yaml:"walletApiKey"        envconfig:"WALLET_API_KEY"`
	MetadataLabel       uint   `yaml:"metadataLabel"       split_words:"true"`
	PaymentLovelace     uint64 `yaml:"paymentLovelace"     split_words:"true"`
	CooldownWindow      string `yaml:"cooldownWindow"      split_words:"true"`
	PollInterval        string `yaml:"pollInterval"        split_words:"true"`
	FetchDelay          string `yaml:"fetchDelay"          split_words:"true"`
	MetricsPort         uint   `yaml:"metricsPort"         split_words:"true"`
	Tracing             bool   `yaml:"tracing"`
	TracingStdout       bool   `yaml:"tracingStdout"       split_words:"true"`
}

// ParseDuration parses a duration config value, returning zero for an empty
// string so callers fall back to their defaults
func ParseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	return time.ParseDuration(value)
}

var globalConfig = &Config{
	Network:      "preview",
	DatabasePath: ".inscribe",
	MetricsPort:  12798,
}

// LoadConfig loads the YAML config file (if any) and overlays environment
// variables prefixed with INSCRIBE_
func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.inscribe/inscribe.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".inscribe", "inscribe.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/inscribe/inscribe.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/inscribe/inscribe.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	err := envconfig.Process("inscribe", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
