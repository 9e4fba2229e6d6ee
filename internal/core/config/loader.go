package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Chain.ContractAddress == "" {
		cfg.Chain.ContractAddress = DefaultContractAddress
	}
	if cfg.Chain.Confirmations == 0 {
		cfg.Chain.Confirmations = 12
	}
	if cfg.Chain.LogRangeCap == 0 {
		cfg.Chain.LogRangeCap = 10
	}
	if cfg.Chain.SuperChunkSize == 0 {
		cfg.Chain.SuperChunkSize = 500
	}
	if cfg.Chain.ScanInterval == 0 {
		cfg.Chain.ScanInterval = Duration(60 * time.Second)
	}
	if cfg.Chain.RPCTimeout == 0 {
		cfg.Chain.RPCTimeout = Duration(30 * time.Second)
	}
}

// SplitCSV parses a comma-separated config value, dropping empty entries.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
