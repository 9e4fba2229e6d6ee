package config

import (
	"fmt"
	"time"

	redisclient "github.com/Ojukwu12/Nodepulse/internal/infra/redis"
	"github.com/Ojukwu12/Nodepulse/internal/infra/storage/postgres"
)

// Duration is a time.Duration that unmarshals from YAML strings such as
// "60s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// DefaultContractAddress is the Gensyn coordinator contract watched when
// no address is configured. Not a secret; override per deployment.
const DefaultContractAddress = "0x69C6e1D608ec64885E7b185d39b04B491a71768C"

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Chain    ChainConfig        `yaml:"chain"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
	Redis    redisclient.Config `yaml:"redis"`
}

// ServerConfig holds the health/metrics HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// ChainConfig holds ledger connection and sync parameters.
type ChainConfig struct {
	// RPCURL is the ledger JSON-RPC endpoint. Empty disables chain sync
	// (the loop still runs and logs a warning each tick).
	RPCURL string `yaml:"rpc_url"`

	// ContractAddress restricts log queries to one contract.
	ContractAddress string `yaml:"contract_address"`

	// Confirmations excluded from processing to guard against reorgs.
	Confirmations uint64 `yaml:"confirmations"`

	// LogRangeCap is the provider's per-call block span limit for
	// eth_getLogs (e.g. Alchemy free tier = 10).
	LogRangeCap uint64 `yaml:"log_range_cap"`

	// SuperChunkSize is the block-range unit after which sync progress
	// is checkpointed.
	SuperChunkSize uint64 `yaml:"super_chunk_size"`

	// ScanInterval between sync ticks.
	ScanInterval Duration `yaml:"scan_interval"`

	// ABIPath points to the contract event schema; empty probes the
	// conventional config/gensyn.abi.json.
	ABIPath string `yaml:"abi_path"`

	// EventNames is a comma-separated list of event names to filter by
	// topic. Requires a loaded schema.
	EventNames string `yaml:"event_names"`

	// EventTopics is a comma-separated list of raw topic hashes, used
	// only when no schema+names filter is available.
	EventTopics string `yaml:"event_topics"`

	// RPCTimeout for a single ledger call.
	RPCTimeout Duration `yaml:"rpc_timeout"`
}
