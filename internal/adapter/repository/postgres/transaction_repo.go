package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundsight/analytics/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{db: db}
}

// ListByHolding retrieves all transactions for a holding, ordered by date ascending
func (r *transactionRepository) ListByHolding(ctx context.Context, holdingID uuid.UUID) ([]*domain.Transaction, error) {
	query := `
		SELECT id, date, amount, currency
		FROM transactions
		WHERE holding_id = $1
		ORDER BY date ASC
	`
	return r.queryTransactions(ctx, query, holdingID)
}

// List retrieves all transactions ordered by date ascending
func (r *transactionRepository) List(ctx context.Context) ([]*domain.Transaction, error) {
	query := `
		SELECT id, date, amount, currency
		FROM transactions
		ORDER BY date ASC
	`
	return r.queryTransactions(ctx, query)
}

func (r *transactionRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var amountStr string

		if err := rows.Scan(&tx.ID, &tx.Date, &amountStr, &tx.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		// Parse amount (DECIMAL, signed)
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount: %w", err)
		}
		tx.Amount = amount

		transactions = append(transactions, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}
