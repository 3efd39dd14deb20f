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
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Network != "preview" {
		t.Fatalf("unexpected default network: %q", cfg.Network)
	}
	if cfg.DatabasePath != ".inscribe" {
		t.Fatalf("unexpected default database path: %q", cfg.DatabasePath)
	}
}

func TestLoadConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "inscribe.yaml")
	configData := `network: preprod
address: addr_test123
cooldownWindow: 2m
metadataLabel: 1234
`
	if err := os.WriteFile(configPath, []byte(configData), 0o644); err != nil {
		t.Fatalf("unexpected error writing config: %s", err)
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Network != "preprod" {
		t.Fatalf("unexpected network: %q", cfg.Network)
	}
	if cfg.Address != "addr_test123" {
		t.Fatalf("unexpected address: %q", cfg.Address)
	}
	window, err := ParseDuration(cfg.CooldownWindow)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if window != 2*time.Minute {
		t.Fatalf("unexpected cooldown window: %s", window)
	}
	if cfg.MetadataLabel != 1234 {
		t.Fatalf("unexpected metadata label: %d", cfg.MetadataLabel)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BLOCKFROST_PROJECT_ID", "previewXYZ")
	t.Setenv("INSCRIBE_NETWORK", "mainnet")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.BlockfrostProjectId != "previewXYZ" {
		t.Fatalf("unexpected project id: %q", cfg.BlockfrostProjectId)
	}
	if cfg.Network != "mainnet" {
		t.Fatalf("unexpected network: %q", cfg.Network)
	}
}
