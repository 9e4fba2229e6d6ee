package domain

// NodeRef is a read-only view of a registered compute node. The sync
// pipeline looks nodes up by wallet to back-reference job records; node
// registration itself happens elsewhere.
type NodeRef struct {
	ID            string `json:"id"`
	WalletAddress string `json:"wallet_address"` // lowercased
	Name          string `json:"name,omitempty"`
}
