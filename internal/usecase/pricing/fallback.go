package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fundsight/analytics/internal/domain"
)

// firstSuccess walks an ordered provider list and returns the first rate a
// provider resolves, tagged with that provider's source. The chain is
// sequential by design: the secondary provider costs quota and is only worth
// calling once the primary has definitively failed. Each call is bounded by
// its own timeout so a hung provider cannot block the chain.
func firstSuccess(ctx context.Context, providers []domain.RateProvider, from, to string, timeout time.Duration) (decimal.Decimal, domain.RateSource, error) {
	if len(providers) == 0 {
		return decimal.Zero, "", fmt.Errorf("no rate providers configured")
	}

	var failures []string
	for _, provider := range providers {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		rate, err := provider.Rate(callCtx, from, to)
		cancel()
		if err == nil {
			return rate, provider.Source(), nil
		}
		failures = append(failures, fmt.Sprintf("%s: %v", provider.Source(), err))

		// The caller going away ends the chain; trying the next provider
		// with a dead context would only mint misleading failures.
		if ctx.Err() != nil {
			break
		}
	}

	return decimal.Zero, "", fmt.Errorf("all rate providers failed for %s/%s: %s", from, to, strings.Join(failures, "; "))
}
