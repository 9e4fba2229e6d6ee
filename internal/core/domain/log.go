package domain

// RawLog is a single event log as returned by the ledger RPC. Hex fields
// keep the provider's encoding; decoding happens downstream.
type RawLog struct {
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"` // 0x-prefixed hex
	BlockNumber uint64   `json:"block_number"`
	TxHash      string   `json:"tx_hash"`
}

// DecodedEvent is the result of decoding a RawLog against a loaded event
// schema. Transient, per-log; a failed decode produces no DecodedEvent at
// all rather than an error.
type DecodedEvent struct {
	Name      string         `json:"name"`
	Signature string         `json:"signature"`
	Args      map[string]any `json:"args"`
}
