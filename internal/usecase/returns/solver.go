package returns

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fundsight/analytics/internal/domain"
)

// Solver policy constants. Newton-Raphson is bounded on every axis so a
// pathological series can never produce NaN, Inf or an endless loop.
const (
	initialGuess    = 0.1
	tolerance       = 1e-6
	maxIterations   = 100
	derivativeFloor = 1e-12
	minRate         = -0.999999 // discount factor must stay positive
	maxRate         = 1e6
	daysPerYear     = 365.0
)

// Result is the outcome of an XIRR computation.
// Rate is non-nil only when Converged is true; an ambiguous search is never
// presented as a converged rate. Non-convergence is a normal outcome for the
// caller, not an error.
type Result struct {
	Rate      *float64
	Converged bool
	Err       string
}

func solved(rate float64) Result {
	return Result{Rate: &rate, Converged: true}
}

func notConverged(reason string) Result {
	return Result{Converged: false, Err: reason}
}

// BuildSeries turns recorded transactions plus the portfolio's current value
// into a closed cash-flow series for return calculation
// Logic:
//  1. Copy the signed amounts out of the transactions
//  2. Append the synthetic valuation point (+currentValue at asOf)
//  3. Sort ascending by date
//  4. Merge same-day flows by summing, so dates are strictly increasing
func BuildSeries(transactions []*domain.Transaction, asOf time.Time, currentValue decimal.Decimal) []domain.CashFlow {
	flows := make([]domain.CashFlow, 0, len(transactions)+1)
	for _, tx := range transactions {
		flows = append(flows, domain.CashFlow{Date: tx.Date, Amount: tx.Amount})
	}
	flows = append(flows, domain.NewValuationPoint(asOf, currentValue))

	sort.Slice(flows, func(i, j int) bool {
		return flows[i].Date.Before(flows[j].Date)
	})

	merged := flows[:0]
	for _, f := range flows {
		if n := len(merged); n > 0 && sameDay(merged[n-1].Date, f.Date) {
			merged[n-1].Amount = merged[n-1].Amount.Add(f.Amount)
			continue
		}
		merged = append(merged, f)
	}
	return merged
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Solve finds the extended internal rate of return of a cash-flow series:
// the rate r for which f(r) = sum(amount_i / (1+r)^(t_i/365)) is zero, with
// t_i the day count from the first flow.
//
// Newton-Raphson from a fixed initial guess; convergence when |f(r)| drops
// below tolerance or successive iterates differ by less than tolerance,
// capped at maxIterations. A vanishing derivative or an iterate escaping
// [minRate, maxRate] aborts the search and reports non-convergence.
//
// Malformed input (too few flows, non-increasing dates, all amounts on one
// side of zero) yields a non-converged result with a descriptive reason
// rather than an error.
func Solve(series []domain.CashFlow) Result {
	if reason := validate(series); reason != "" {
		return notConverged(reason)
	}

	flows := toPoints(series)

	r := initialGuess
	for i := 0; i < maxIterations; i++ {
		f, fp := evaluate(flows, r)
		if math.Abs(f) < tolerance {
			return solved(r)
		}
		if math.Abs(fp) < derivativeFloor {
			return notConverged("derivative vanished, no unique rate found")
		}

		next := r - f/fp
		if math.IsNaN(next) || math.IsInf(next, 0) || next < minRate || next > maxRate {
			return notConverged("rate diverged outside solvable range")
		}
		if math.Abs(next-r) < tolerance {
			return solved(next)
		}
		r = next
	}

	return notConverged(fmt.Sprintf("no convergence within %d iterations", maxIterations))
}

func validate(series []domain.CashFlow) string {
	if len(series) < 2 {
		return "cash-flow series needs at least two entries"
	}

	var hasNegative, hasPositive bool
	total := decimal.Zero
	for i, f := range series {
		if i > 0 && !series[i-1].Date.Before(f.Date) {
			return "cash-flow dates must be strictly increasing"
		}
		if f.Amount.IsNegative() {
			hasNegative = true
		}
		if f.Amount.IsPositive() {
			hasPositive = true
		}
		total = total.Add(f.Amount.Abs())
	}

	if total.IsZero() {
		return "cash-flow series has no non-zero amounts"
	}
	if !hasNegative || !hasPositive {
		return "cash-flow series needs both an investment (negative) and an inflow (positive)"
	}
	return ""
}

// flowPoint is a cash flow reduced to solver coordinates: float amount and
// years elapsed since the first flow.
type flowPoint struct {
	amount float64
	years  float64
}

func toPoints(series []domain.CashFlow) []flowPoint {
	t0 := series[0].Date
	points := make([]flowPoint, len(series))
	for i, f := range series {
		days := f.Date.Sub(t0).Hours() / 24
		points[i] = flowPoint{
			amount: f.Amount.InexactFloat64(),
			years:  days / daysPerYear,
		}
	}
	return points
}

// evaluate computes f(r) and f'(r) in one pass over the series.
func evaluate(points []flowPoint, r float64) (f, fp float64) {
	for _, p := range points {
		discount := math.Pow(1+r, p.years)
		f += p.amount / discount
		fp += -p.amount * p.years / ((1 + r) * discount)
	}
	return f, fp
}
