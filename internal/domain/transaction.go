package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction represents a single dated cash movement recorded by the ledger.
// Sign convention: an investment (outflow) carries a negative amount, a
// redemption (inflow) a positive one. Transactions are immutable once
// recorded; the engine only reads them.
type Transaction struct {
	ID       uuid.UUID
	Date     time.Time
	Amount   decimal.Decimal // signed; outflow negative, inflow positive
	Currency string          // ISO 4217 code, e.g. "INR"
}

// CashFlow is a single point of a cash-flow series: a dated, signed amount.
// It is either a recorded transaction or a synthetic valuation point.
type CashFlow struct {
	Date   time.Time
	Amount decimal.Decimal
}

// NewValuationPoint builds the synthetic terminal cash flow that closes a
// series for return calculation: the portfolio's current value, as a positive
// inflow on the "as of" date. It is constructed per calculation and never
// persisted.
func NewValuationPoint(asOf time.Time, currentValue decimal.Decimal) CashFlow {
	return CashFlow{Date: asOf, Amount: currentValue}
}
