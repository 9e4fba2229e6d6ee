package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ojukwu12/Nodepulse/internal/core/domain"
	"github.com/Ojukwu12/Nodepulse/internal/infra/storage"
)

// NodeRepo implements storage.NodeRepository using PostgreSQL. Read-only:
// node registration is handled by the application layer, not the pipeline.
type NodeRepo struct {
	db *DB
}

// NewNodeRepo creates a new PostgreSQL node repository.
func NewNodeRepo(db *DB) *NodeRepo {
	return &NodeRepo{db: db}
}

// GetByWallet retrieves a node by its lowercased wallet address.
func (r *NodeRepo) GetByWallet(ctx context.Context, wallet string) (*domain.NodeRef, error) {
	var row struct {
		ID     string         `db:"id"`
		Wallet sql.NullString `db:"wallet_address"`
		Name   sql.NullString `db:"name"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT id, wallet_address, name FROM nodes WHERE wallet_address = $1`, wallet)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node by wallet: %w", err)
	}

	return &domain.NodeRef{
		ID:            row.ID,
		WalletAddress: row.Wallet.String,
		Name:          row.Name.String,
	}, nil
}
