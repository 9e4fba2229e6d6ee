package domain

import "time"

// PayoutRecord is a durable projection of an on-chain payout event.
// Undecoded logs also land here as placeholder records so every observed
// log leaves an auditable trace.
type PayoutRecord struct {
	PayoutID    string     `json:"payout_id"`
	Recipient   string     `json:"recipient"` // lowercased address
	Amount      string     `json:"amount"`    // canonical decimal string
	BlockNumber uint64     `json:"block_number"`
	TxHash      string     `json:"tx_hash"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	Jobs        []string   `json:"jobs,omitempty"` // linked job identity keys
	ProcessedAt time.Time  `json:"processed_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UnknownRecipient is used for placeholder payouts projected from logs
// that could not be decoded (no schema loaded, or schema mismatch).
const UnknownRecipient = "0xunknown"
