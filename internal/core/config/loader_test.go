package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
chain:
  rpc_url: "https://rpc.example.com"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Chain.ContractAddress != DefaultContractAddress {
		t.Errorf("expected default contract address, got %s", cfg.Chain.ContractAddress)
	}
	if cfg.Chain.Confirmations != 12 {
		t.Errorf("expected default confirmations 12, got %d", cfg.Chain.Confirmations)
	}
	if cfg.Chain.LogRangeCap != 10 {
		t.Errorf("expected default log range cap 10, got %d", cfg.Chain.LogRangeCap)
	}
	if cfg.Chain.SuperChunkSize != 500 {
		t.Errorf("expected default super chunk size 500, got %d", cfg.Chain.SuperChunkSize)
	}
	if cfg.Chain.ScanInterval != Duration(60*time.Second) {
		t.Errorf("expected default scan interval 60s, got %s", cfg.Chain.ScanInterval)
	}
	if cfg.Chain.RPCTimeout != Duration(30*time.Second) {
		t.Errorf("expected default rpc timeout 30s, got %s", cfg.Chain.RPCTimeout)
	}
}

func TestLoadDurations(t *testing.T) {
	path := writeConfig(t, `
chain:
  scan_interval: 90s
  rpc_timeout: 5s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Chain.ScanInterval != Duration(90*time.Second) {
		t.Errorf("expected scan interval 90s, got %s", cfg.Chain.ScanInterval)
	}
	if cfg.Chain.RPCTimeout != Duration(5*time.Second) {
		t.Errorf("expected rpc timeout 5s, got %s", cfg.Chain.RPCTimeout)
	}

	if _, err := Load(writeConfig(t, "chain:\n  scan_interval: sixty\n")); err == nil {
		t.Error("expected error for malformed duration")
	}
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("TEST_RPC_URL", "https://rpc.gensyn.example")
	t.Setenv("TEST_CONTRACT", "0xabc123")

	path := writeConfig(t, `
chain:
  rpc_url: "${TEST_RPC_URL}"
  contract_address: "${TEST_CONTRACT}"
  confirmations: 6
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Chain.RPCURL != "https://rpc.gensyn.example" {
		t.Errorf("env expansion failed for rpc_url: %s", cfg.Chain.RPCURL)
	}
	if cfg.Chain.ContractAddress != "0xabc123" {
		t.Errorf("env expansion failed for contract_address: %s", cfg.Chain.ContractAddress)
	}
	if cfg.Chain.Confirmations != 6 {
		t.Errorf("explicit confirmations overridden: %d", cfg.Chain.Confirmations)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "chain: [not: valid")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"single", "JobCompleted", []string{"JobCompleted"}},
		{"multiple", "JobCompleted,PayoutProcessed", []string{"JobCompleted", "PayoutProcessed"}},
		{"whitespace", " JobCompleted , PayoutProcessed ", []string{"JobCompleted", "PayoutProcessed"}},
		{"empty entries", "JobCompleted,,PayoutProcessed,", []string{"JobCompleted", "PayoutProcessed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitCSV(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SplitCSV(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
