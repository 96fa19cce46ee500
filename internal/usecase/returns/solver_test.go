package returns

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/analytics/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func flow(t time.Time, amount int64) domain.CashFlow {
	return domain.CashFlow{Date: t, Amount: decimal.NewFromInt(amount)}
}

func TestSolve_OneYearGain(t *testing.T) {
	// Invest 100000, redeem 115000 exactly one year later: XIRR = 15%
	series := []domain.CashFlow{
		flow(date(2023, 1, 1), -100000),
		flow(date(2024, 1, 1), 115000),
	}

	result := Solve(series)

	require.True(t, result.Converged)
	require.NotNil(t, result.Rate)
	assert.InDelta(t, 0.15, *result.Rate, 1e-4)
	assert.Empty(t, result.Err)
}

func TestSolve_TwoOutflows(t *testing.T) {
	series := []domain.CashFlow{
		flow(date(2023, 1, 1), -100000),
		flow(date(2023, 6, 1), -50000),
		flow(date(2024, 1, 1), 170000),
	}

	result := Solve(series)

	require.True(t, result.Converged)
	require.NotNil(t, result.Rate)
	assert.Greater(t, *result.Rate, 0.0)

	// The recovered rate must actually be a root: discounting every flow
	// back to the first date should net out to ~0.
	r := *result.Rate
	npv := 0.0
	t0 := series[0].Date
	for _, f := range series {
		years := f.Date.Sub(t0).Hours() / 24 / 365
		npv += f.Amount.InexactFloat64() / math.Pow(1+r, years)
	}
	assert.InDelta(t, 0, npv, 0.5)
}

func TestSolve_RoundTripLaw(t *testing.T) {
	// Single investment, single larger redemption: discounting the
	// redemption at the recovered rate reproduces the investment.
	invested := 250000.0
	redeemed := 310000.0
	start := date(2022, 3, 15)
	end := date(2024, 9, 20)

	series := []domain.CashFlow{
		{Date: start, Amount: decimal.NewFromFloat(-invested)},
		{Date: end, Amount: decimal.NewFromFloat(redeemed)},
	}

	result := Solve(series)

	require.True(t, result.Converged)
	years := end.Sub(start).Hours() / 24 / 365
	discounted := redeemed / math.Pow(1+*result.Rate, years)
	assert.InDelta(t, invested, discounted, 1.0)
}

func TestSolve_NegativeReturn(t *testing.T) {
	series := []domain.CashFlow{
		flow(date(2023, 1, 1), -100000),
		flow(date(2024, 1, 1), 80000),
	}

	result := Solve(series)

	require.True(t, result.Converged)
	assert.InDelta(t, -0.20, *result.Rate, 1e-4)
}

func TestSolve_AllNegative(t *testing.T) {
	series := []domain.CashFlow{
		flow(date(2023, 1, 1), -100000),
		flow(date(2023, 6, 1), -50000),
	}

	result := Solve(series)

	assert.False(t, result.Converged)
	assert.Nil(t, result.Rate)
	assert.NotEmpty(t, result.Err)
}

func TestSolve_AllPositive(t *testing.T) {
	series := []domain.CashFlow{
		flow(date(2023, 1, 1), 50000),
		flow(date(2023, 6, 1), 25000),
	}

	result := Solve(series)

	assert.False(t, result.Converged)
	assert.Nil(t, result.Rate)
}

func TestSolve_TotalLoss(t *testing.T) {
	// Investment followed by a zero terminal valuation: the series has no
	// positive flow, so the search is reported as non-converged rather than
	// producing a NaN or a bogus rate.
	series := []domain.CashFlow{
		flow(date(2023, 1, 1), -100000),
		flow(date(2024, 1, 1), 0),
	}

	result := Solve(series)

	assert.False(t, result.Converged)
	assert.Nil(t, result.Rate)
	assert.NotEmpty(t, result.Err)
}

func TestSolve_TooFewEntries(t *testing.T) {
	result := Solve([]domain.CashFlow{flow(date(2023, 1, 1), -100000)})

	assert.False(t, result.Converged)
	assert.Contains(t, result.Err, "at least two")
}

func TestSolve_NonIncreasingDates(t *testing.T) {
	series := []domain.CashFlow{
		flow(date(2024, 1, 1), -100000),
		flow(date(2023, 1, 1), 115000),
	}

	result := Solve(series)

	assert.False(t, result.Converged)
	assert.Contains(t, result.Err, "strictly increasing")
}

func TestSolve_AllZeroAmounts(t *testing.T) {
	series := []domain.CashFlow{
		flow(date(2023, 1, 1), 0),
		flow(date(2024, 1, 1), 0),
	}

	result := Solve(series)

	assert.False(t, result.Converged)
	assert.Contains(t, result.Err, "non-zero")
}

func TestBuildSeries_SortsAndAppendsValuationPoint(t *testing.T) {
	transactions := []*domain.Transaction{
		{Date: date(2023, 6, 1), Amount: decimal.NewFromInt(-50000)},
		{Date: date(2023, 1, 1), Amount: decimal.NewFromInt(-100000)},
	}

	series := BuildSeries(transactions, date(2024, 1, 1), decimal.NewFromInt(170000))

	require.Len(t, series, 3)
	assert.Equal(t, date(2023, 1, 1), series[0].Date)
	assert.Equal(t, date(2023, 6, 1), series[1].Date)
	assert.Equal(t, date(2024, 1, 1), series[2].Date)
	assert.True(t, series[2].Amount.Equal(decimal.NewFromInt(170000)))
}

func TestBuildSeries_MergesSameDayFlows(t *testing.T) {
	transactions := []*domain.Transaction{
		{Date: date(2023, 1, 1), Amount: decimal.NewFromInt(-60000)},
		{Date: date(2023, 1, 1), Amount: decimal.NewFromInt(-40000)},
	}

	series := BuildSeries(transactions, date(2024, 1, 1), decimal.NewFromInt(115000))

	require.Len(t, series, 2)
	assert.True(t, series[0].Amount.Equal(decimal.NewFromInt(-100000)))

	result := Solve(series)
	require.True(t, result.Converged)
	assert.InDelta(t, 0.15, *result.Rate, 1e-4)
}
