package domain

import "github.com/shopspring/decimal"

// AllocationBucket aggregates the valued holdings of one asset category.
// Percentage is computed at full precision against the total portfolio
// value; whenever the total is positive the percentages of all buckets sum
// to 100 within rounding tolerance.
type AllocationBucket struct {
	Category     Category
	TotalValue   decimal.Decimal
	Percentage   decimal.Decimal // of total portfolio value
	HoldingCount int
}

// Sentinel strings returned by the classifier when there is nothing to
// classify. Degenerate input is a documented outcome, not a division error.
const (
	RiskNotAvailable = "Not available"
	NoPortfolioData  = "No portfolio data"
)
