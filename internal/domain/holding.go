package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category represents the asset class of a holding
type Category string

const (
	CategoryEquity Category = "Equity"
	CategoryDebt   Category = "Debt"
	CategoryHybrid Category = "Hybrid"
	CategoryOther  Category = "Other"
)

// Holding represents a position as recorded by the external store.
// Price and value are NOT part of the stored record; they are resolved per
// computation by the pricing layer.
type Holding struct {
	ID       uuid.UUID
	Name     string
	Symbol   string
	Exchange string // generic tag, e.g. "US", "NSE", "BSE"
	Category Category
	Quantity decimal.Decimal
}

// Validate ensures the holding adheres to domain rules
// Returns an error if validation fails
func (h *Holding) Validate() error {
	if h.Symbol == "" {
		return errors.New("holding symbol cannot be empty")
	}
	if h.Quantity.IsNegative() {
		return errors.New("holding quantity cannot be negative")
	}
	switch h.Category {
	case CategoryEquity, CategoryDebt, CategoryHybrid, CategoryOther:
		return nil
	default:
		return errors.New("holding category must be Equity, Debt, Hybrid or Other")
	}
}

// ValuedHolding is a holding with its market price resolved and its value
// expressed in the home currency. Value is derived (quantity x price) and a
// nil price always yields a nil value: "price unknown" is a different
// economic outcome than "worth zero".
type ValuedHolding struct {
	Category Category
	Quantity decimal.Decimal
	Price    *decimal.Decimal
	Currency string // home currency the value is expressed in
	Value    *decimal.Decimal
}
