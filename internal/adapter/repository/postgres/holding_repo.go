package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundsight/analytics/internal/domain"
)

// holdingRepository implements domain.HoldingRepository
type holdingRepository struct {
	db *DB
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *DB) domain.HoldingRepository {
	return &holdingRepository{db: db}
}

// GetByID retrieves a holding by its ID
func (r *holdingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Holding, error) {
	query := `
		SELECT id, name, symbol, exchange, category, quantity
		FROM holdings
		WHERE id = $1
	`

	holding, err := scanHolding(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("holding not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get holding by ID: %w", err)
	}
	return holding, nil
}

// List retrieves all holdings, optionally filtered by category
func (r *holdingRepository) List(ctx context.Context, categoryFilter domain.Category) ([]*domain.Holding, error) {
	query := `
		SELECT id, name, symbol, exchange, category, quantity
		FROM holdings
	`
	args := []any{}
	if categoryFilter != "" {
		query += ` WHERE category = $1`
		args = append(args, string(categoryFilter))
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*domain.Holding
	for rows.Next() {
		holding, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, holding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}

// rowScanner abstracts sql.Row and sql.Rows so scanning is shared
type rowScanner interface {
	Scan(dest ...any) error
}

func scanHolding(row rowScanner) (*domain.Holding, error) {
	var holding domain.Holding
	var quantityStr string

	err := row.Scan(
		&holding.ID,
		&holding.Name,
		&holding.Symbol,
		&holding.Exchange,
		&holding.Category,
		&quantityStr,
	)
	if err != nil {
		return nil, err
	}

	// Parse quantity (DECIMAL)
	quantity, err := decimal.NewFromString(quantityStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse quantity: %w", err)
	}
	holding.Quantity = quantity

	return &holding, nil
}
