package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fundsight/analytics/internal/adapter/marketdata"
	"github.com/fundsight/analytics/internal/adapter/repository/postgres"
	"github.com/fundsight/analytics/internal/domain"
	"github.com/fundsight/analytics/internal/usecase/allocation"
	"github.com/fundsight/analytics/internal/usecase/pricing"
	"github.com/fundsight/analytics/internal/usecase/returns"
	"github.com/fundsight/analytics/internal/usecase/valuation"
)

const runTimeout = 60 * time.Second

func main() {
	logger := logrus.New()

	// Load .env file if it exists, but don't fail if it's missing
	_ = godotenv.Load()

	// 1. Setup Database
	dbConnStr := os.Getenv("DB_CONN_STR")
	if dbConnStr == "" {
		host := getenv("DB_HOST", "localhost")
		port := getenv("DB_PORT", "5432")
		user := getenv("DB_USER", "postgres")
		password := getenv("DB_PASSWORD", "postgres")
		dbname := getenv("DB_NAME", "fundsight")

		dbConnStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	}

	db, err := postgres.NewDB(dbConnStr)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 2. Initialize Repositories (Postgres)
	holdingRepo := postgres.NewHoldingRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)

	// 3. Initialize Providers and Services (Use Cases)
	homeCurrency := getenv("HOME_CURRENCY", "INR")
	yahoo := marketdata.NewYahooClient(logger)
	openRates := marketdata.NewOpenRatesClient(logger)
	pricingService := pricing.NewService(
		yahoo,
		[]domain.RateProvider{yahoo, openRates}, // primary first, secondary on failure
		homeCurrency,
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := run(ctx, logger, holdingRepo, transactionRepo, pricingService, homeCurrency); err != nil {
		logger.Fatalf("Portfolio analysis failed: %v", err)
	}
}

func run(
	ctx context.Context,
	logger *logrus.Logger,
	holdingRepo domain.HoldingRepository,
	transactionRepo domain.TransactionRepository,
	pricingService *pricing.Service,
	homeCurrency string,
) error {
	// 4. Load holdings and transactions from the store
	holdings, err := holdingRepo.List(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to list holdings: %w", err)
	}
	transactions, err := transactionRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}

	// 5. Resolve prices and value the holdings
	symbols := make([]string, len(holdings))
	exchanges := make([]string, len(holdings))
	for i, h := range holdings {
		symbols[i] = h.Symbol
		exchanges[i] = h.Exchange
	}

	batch, err := pricingService.FetchPrices(ctx, symbols, exchanges)
	if err != nil {
		return fmt.Errorf("failed to fetch prices: %w", err)
	}
	if !batch.Success {
		logger.Warnf("Price batch degraded: %s", batch.Err)
	}

	valuedHoldings := make([]domain.ValuedHolding, len(holdings))
	totalValue := decimal.Zero
	for i, h := range holdings {
		detail := batch.Prices[h.Symbol]
		value := valuation.Value(h.Quantity, detail.Price)
		valuedHoldings[i] = domain.ValuedHolding{
			Category: h.Category,
			Quantity: h.Quantity,
			Price:    detail.Price,
			Currency: homeCurrency,
			Value:    value,
		}
		if value != nil {
			totalValue = totalValue.Add(*value)
		}
	}

	// 6. Annualized return over the full ledger
	series := returns.BuildSeries(transactions, time.Now(), totalValue)
	xirr := returns.Solve(series)

	// 7. Allocation, risk and diversification
	profile := allocation.Classify(valuedHoldings)

	printReport(totalValue, homeCurrency, xirr, profile)
	return nil
}

func printReport(totalValue decimal.Decimal, homeCurrency string, xirr returns.Result, profile allocation.Profile) {
	fmt.Printf("Portfolio value: %s\n", valuation.FormatCurrency(totalValue, homeCurrency))

	if xirr.Converged {
		fmt.Printf("Annualized return (XIRR): %.2f%%\n", *xirr.Rate*100)
	} else {
		fmt.Printf("Annualized return (XIRR): not available (%s)\n", xirr.Err)
	}

	fmt.Printf("Risk profile: %s\n", profile.RiskProfile)
	fmt.Printf("Diversification: %s\n", profile.DiversificationScore)
	for _, bucket := range profile.Buckets {
		fmt.Printf("  %-8s %10s  %6.2f%%  (%d holdings)\n",
			bucket.Category,
			valuation.FormatCurrency(bucket.TotalValue, homeCurrency),
			bucket.Percentage.InexactFloat64(),
			bucket.HoldingCount,
		)
	}
	if profile.RebalancingSuggestion != nil {
		fmt.Printf("Suggestion: %s\n", *profile.RebalancingSuggestion)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
