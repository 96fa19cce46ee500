package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is an ephemeral market quote fetched per request. It is never the
// source of truth for holdings.
type Quote struct {
	Symbol    string
	Exchange  string
	Price     decimal.Decimal
	Currency  string
	FetchedAt time.Time
}

// RateSource identifies which provider of the fallback chain produced a rate
type RateSource string

const (
	RateSourcePrimary   RateSource = "primary"
	RateSourceSecondary RateSource = "secondary"
)

// FXRate is a conversion rate for a currency pair, fetched on demand.
// The engine does not cache rates; caching, if any, belongs to the caller.
type FXRate struct {
	Pair   string // e.g. "USD/INR"
	Rate   decimal.Decimal
	Source RateSource
}

// QuoteProvider resolves the latest market quote for a symbol. The symbol is
// already in provider notation (exchange suffix applied).
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

// RateProvider resolves a conversion rate for a currency pair. Providers are
// tried in order by the pricing layer; Source tags results so callers can
// tell degraded operation from nominal operation.
type RateProvider interface {
	Source() RateSource
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}
