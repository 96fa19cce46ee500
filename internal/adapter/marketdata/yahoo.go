// Package marketdata implements the quote and FX rate providers consumed by
// the pricing layer. Prices fetched here are ephemeral; they are never the
// source of truth for holdings.
package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fundsight/analytics/internal/domain"
)

const (
	yahooBaseURL   = "https://query2.finance.yahoo.com"
	clientTimeout  = 8 * time.Second
	userAgentValue = "fundsight-analytics/1.0"
)

var (
	ErrQuoteNotFound = errors.New("yahoo: quote not found")
	ErrRateNotFound  = errors.New("yahoo: fx rate not found")
)

// YahooClient resolves quotes and FX rates from the Yahoo Finance v8 chart
// endpoint. It serves as the primary rate provider in the fallback chain.
type YahooClient struct {
	baseURL string
	http    *http.Client
	log     *logrus.Logger
}

// NewYahooClient creates a Yahoo client against the production endpoint.
func NewYahooClient(log *logrus.Logger) *YahooClient {
	return NewYahooClientWithBaseURL(yahooBaseURL, log)
}

// NewYahooClientWithBaseURL creates a Yahoo client against a custom base URL.
// Tests point this at a local server.
func NewYahooClientWithBaseURL(baseURL string, log *logrus.Logger) *YahooClient {
	return &YahooClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: clientTimeout},
		log:     log,
	}
}

// chartResponse mirrors the slice of the Yahoo v8 chart payload the engine
// reads: price, currency and quote time live under chart.result[0].meta.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

func (c *YahooClient) fetchMeta(ctx context.Context, symbol string) (*chartResponse, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgentValue)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Debugf("yahoo chart %s returned %d", symbol, resp.StatusCode)
		return nil, fmt.Errorf("yahoo http %d", resp.StatusCode)
	}

	var raw chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("yahoo: malformed chart body: %w", err)
	}
	return &raw, nil
}

// GetQuote resolves the latest quote for a symbol already in Yahoo notation
// (exchange suffix applied by the caller). The payload is validated here, at
// the provider boundary, so ambiguous shapes never propagate inward.
func (c *YahooClient) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	raw, err := c.fetchMeta(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(raw.Chart.Result) == 0 {
		return nil, ErrQuoteNotFound
	}

	meta := raw.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, ErrQuoteNotFound
	}
	if meta.Currency == "" {
		return nil, fmt.Errorf("yahoo: quote for %s has no currency", symbol)
	}

	fetchedAt := time.Now()
	if meta.RegularMarketTime > 0 {
		fetchedAt = time.Unix(meta.RegularMarketTime, 0)
	}

	return &domain.Quote{
		Symbol:    symbol,
		Price:     decimal.NewFromFloat(meta.RegularMarketPrice),
		Currency:  strings.ToUpper(meta.Currency),
		FetchedAt: fetchedAt,
	}, nil
}

// Source identifies this client as the primary rate provider.
func (c *YahooClient) Source() domain.RateSource {
	return domain.RateSourcePrimary
}

// Rate returns how many 'to' units one 'from' unit buys, via the FROMTO=X
// chart symbol.
func (c *YahooClient) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return decimal.Zero, errors.New("yahoo: invalid currency pair")
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	raw, err := c.fetchMeta(ctx, from+to+"=X")
	if err != nil {
		return decimal.Zero, err
	}
	if len(raw.Chart.Result) == 0 {
		return decimal.Zero, ErrRateNotFound
	}

	rate := raw.Chart.Result[0].Meta.RegularMarketPrice
	if rate <= 0 {
		return decimal.Zero, ErrRateNotFound
	}
	return decimal.NewFromFloat(rate), nil
}
