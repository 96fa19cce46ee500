package domain

import (
	"context"

	"github.com/google/uuid"
)

// HoldingRepository defines the interface for holding read operations.
// The store is an external collaborator; the engine only reads from it.
type HoldingRepository interface {
	// GetByID retrieves a holding by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*Holding, error)

	// List retrieves all holdings, optionally filtered by category
	// If categoryFilter is empty, returns all holdings
	List(ctx context.Context, categoryFilter Category) ([]*Holding, error)
}

// TransactionRepository defines the interface for transaction read operations
type TransactionRepository interface {
	// ListByHolding retrieves all transactions for a holding, ordered by date ascending
	ListByHolding(ctx context.Context, holdingID uuid.UUID) ([]*Transaction, error)

	// List retrieves all transactions ordered by date ascending
	List(ctx context.Context) ([]*Transaction, error)
}
