package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fundsight/analytics/internal/domain"
)

// Policy constants for risk and diversification banding. All comparisons are
// documented with their boundary side: dominance and the rebalancing guard
// are inclusive of the threshold, concentration is exclusive.
var (
	// A category holding >= 60% of the portfolio dominates it.
	dominanceThreshold = decimal.NewFromInt(60)
	// A single bucket above 70% marks the portfolio as concentrated.
	concentrationThreshold = decimal.NewFromInt(70)
	// Above 75% in equity (or debt) triggers a rebalancing hint.
	rebalanceThreshold = decimal.NewFromInt(75)

	hundred = decimal.NewFromInt(100)
)

const minDiversifiedBuckets = 3

// Profile is the classifier's result: allocation buckets ordered for
// presentation plus qualitative risk and diversification signals.
// RebalancingSuggestion is nil when the portfolio is within the guard band.
type Profile struct {
	Buckets               []domain.AllocationBucket
	RiskProfile           string
	DiversificationScore  string
	RebalancingSuggestion *string
}

// Classify aggregates valued holdings into allocation buckets and derives
// the portfolio's risk and diversification signals
// Logic:
//  1. Group holdings by category, summing values and counting holdings;
//     holdings without a resolved value are skipped, not counted as zero
//  2. Compute each bucket's percentage of the total at full precision
//  3. Order buckets by descending value, tie-break on category name
//  4. Band risk, diversification and the optional rebalancing hint from
//     the bucket percentages
//
// An empty or zero-valued portfolio returns no buckets and the documented
// sentinel strings; this path is explicit, never a division by zero.
func Classify(holdings []domain.ValuedHolding) Profile {
	type aggregate struct {
		total decimal.Decimal
		count int
	}
	byCategory := make(map[domain.Category]*aggregate)
	total := decimal.Zero

	for _, h := range holdings {
		if h.Value == nil {
			continue
		}
		agg, ok := byCategory[h.Category]
		if !ok {
			agg = &aggregate{total: decimal.Zero}
			byCategory[h.Category] = agg
		}
		agg.total = agg.total.Add(*h.Value)
		agg.count++
		total = total.Add(*h.Value)
	}

	if total.LessThanOrEqual(decimal.Zero) {
		return Profile{
			Buckets:              []domain.AllocationBucket{},
			RiskProfile:          domain.RiskNotAvailable,
			DiversificationScore: domain.NoPortfolioData,
		}
	}

	buckets := make([]domain.AllocationBucket, 0, len(byCategory))
	for category, agg := range byCategory {
		buckets = append(buckets, domain.AllocationBucket{
			Category:     category,
			TotalValue:   agg.total,
			Percentage:   agg.total.Mul(hundred).Div(total),
			HoldingCount: agg.count,
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		if !buckets[i].TotalValue.Equal(buckets[j].TotalValue) {
			return buckets[i].TotalValue.GreaterThan(buckets[j].TotalValue)
		}
		return buckets[i].Category < buckets[j].Category
	})

	return Profile{
		Buckets:               buckets,
		RiskProfile:           riskProfile(buckets),
		DiversificationScore:  diversificationScore(buckets),
		RebalancingSuggestion: rebalancingSuggestion(buckets),
	}
}

func percentageOf(buckets []domain.AllocationBucket, category domain.Category) decimal.Decimal {
	for _, b := range buckets {
		if b.Category == category {
			return b.Percentage
		}
	}
	return decimal.Zero
}

// riskProfile bands the portfolio by category dominance: equity-heavy is
// high risk, debt-heavy low, anything without a dominant category medium.
// Exactly 60% counts as dominant.
func riskProfile(buckets []domain.AllocationBucket) string {
	switch {
	case percentageOf(buckets, domain.CategoryEquity).GreaterThanOrEqual(dominanceThreshold):
		return "High"
	case percentageOf(buckets, domain.CategoryDebt).GreaterThanOrEqual(dominanceThreshold):
		return "Low"
	default:
		return "Medium"
	}
}

// diversificationScore bands concentration: at least three categories with
// no single bucket above 70% reads as well diversified.
func diversificationScore(buckets []domain.AllocationBucket) string {
	if len(buckets) == 0 {
		return domain.NoPortfolioData
	}
	// buckets are sorted descending, so the first one carries the maximum
	if len(buckets) >= minDiversifiedBuckets && buckets[0].Percentage.LessThanOrEqual(concentrationThreshold) {
		return "Well diversified"
	}
	return "Concentrated"
}

// rebalancingSuggestion returns a single optional hint. The equity and debt
// conditions cannot fire together: both thresholds sit above 50%.
func rebalancingSuggestion(buckets []domain.AllocationBucket) *string {
	if percentageOf(buckets, domain.CategoryEquity).GreaterThan(rebalanceThreshold) {
		s := "Equity allocation is high; consider trimming equity positions"
		return &s
	}
	if percentageOf(buckets, domain.CategoryDebt).GreaterThan(rebalanceThreshold) {
		s := "Debt allocation is high; consider adding equity exposure"
		return &s
	}
	return nil
}
