package pricing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fundsight/analytics/internal/domain"
)

// defaultCallTimeout bounds every outbound quote/rate call so a single
// unresponsive provider cannot stall the whole batch.
const defaultCallTimeout = 8 * time.Second

// rateBaseCurrency is the quoted side of the home-currency pair
// (e.g. USD/INR when the home currency is INR).
const rateBaseCurrency = "USD"

// exchangeSuffixes maps the generic exchange tags used by the store to the
// quote provider's symbol suffix conventions.
var exchangeSuffixes = map[string]string{
	"US":  "",
	"NSE": ".NS",
	"BSE": ".BO",
	"LSE": ".L",
}

// ErrSymbolExchangeMismatch signals a contract violation by the caller:
// the symbol and exchange slices must pair up element-wise. This is the one
// failure class treated as fatal to the call.
var ErrSymbolExchangeMismatch = errors.New("symbols and exchanges must have the same length")

// PriceDetail is the resolved price of one symbol, normalized to the home
// currency. When the quote came back in a foreign currency the original
// price, currency and applied rate are retained for traceability. A nil
// Price means this symbol failed to resolve; the rest of the batch is
// unaffected.
type PriceDetail struct {
	Price            *decimal.Decimal
	Currency         string
	OriginalPrice    *decimal.Decimal
	OriginalCurrency string
	ExchangeRate     *decimal.Decimal
}

// BatchResult is the outcome of a batch price fetch, keyed by the symbols
// the caller passed in.
type BatchResult struct {
	Success bool
	Prices  map[string]PriceDetail
	Err     string
}

// RateResult is the outcome of a home-currency rate fetch. Source tells the
// caller whether the rate came from the primary or the secondary provider,
// so degraded operation is distinguishable from nominal operation.
type RateResult struct {
	Success bool
	Rate    *decimal.Decimal
	Source  domain.RateSource
	Err     string
}

// Service resolves market prices and normalizes them to the home currency.
// Providers are injected so tests can substitute deterministic fakes; the
// service holds no state beyond its configuration.
type Service struct {
	quotes       domain.QuoteProvider
	rates        []domain.RateProvider // ordered: primary first
	homeCurrency string
	callTimeout  time.Duration
	log          *logrus.Logger
}

// NewService creates a new pricing Service instance. The rate providers are
// tried in the order given.
func NewService(quotes domain.QuoteProvider, rates []domain.RateProvider, homeCurrency string, log *logrus.Logger) *Service {
	return &Service{
		quotes:       quotes,
		rates:        rates,
		homeCurrency: strings.ToUpper(homeCurrency),
		callTimeout:  defaultCallTimeout,
		log:          log,
	}
}

// FetchPrices resolves a batch of symbol/exchange pairs to home-currency
// prices
// Logic:
//  1. Fan out one fetch per symbol; resolutions are independent
//  2. Map the exchange tag to the provider's suffix convention
//  3. Convert foreign-currency quotes via the rate fallback chain and keep
//     the original price/currency alongside
//  4. A failed symbol resolves to a nil price for its key; the batch only
//     fails as a whole when every symbol failed
//
// Mismatched slice lengths are a caller bug and return an error.
func (s *Service) FetchPrices(ctx context.Context, symbols, exchanges []string) (*BatchResult, error) {
	if len(symbols) != len(exchanges) {
		return nil, ErrSymbolExchangeMismatch
	}

	result := &BatchResult{
		Success: true,
		Prices:  make(map[string]PriceDetail, len(symbols)),
	}
	if len(symbols) == 0 {
		return result, nil
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i := range symbols {
		wg.Add(1)
		go func(symbol, exchange string) {
			defer wg.Done()
			detail := s.resolveSymbol(ctx, symbol, exchange)
			mu.Lock()
			result.Prices[symbol] = detail
			mu.Unlock()
		}(symbols[i], exchanges[i])
	}
	wg.Wait()

	resolved := 0
	for _, detail := range result.Prices {
		if detail.Price != nil {
			resolved++
		}
	}
	if resolved == 0 {
		result.Success = false
		result.Err = "no symbol in the batch could be priced"
	}
	return result, nil
}

// resolveSymbol fetches and normalizes a single quote. All failure modes
// collapse to a nil-price detail; the reason is logged, not propagated.
func (s *Service) resolveSymbol(ctx context.Context, symbol, exchange string) PriceDetail {
	suffix, ok := exchangeSuffixes[strings.ToUpper(strings.TrimSpace(exchange))]
	if !ok {
		s.log.Warnf("unmapped exchange %q for symbol %s", exchange, symbol)
		return PriceDetail{Currency: s.homeCurrency}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	quote, err := s.quotes.GetQuote(callCtx, strings.ToUpper(strings.TrimSpace(symbol))+suffix)
	if err != nil {
		s.log.Warnf("quote fetch failed for %s: %v", symbol, err)
		return PriceDetail{Currency: s.homeCurrency}
	}

	if strings.EqualFold(quote.Currency, s.homeCurrency) {
		price := quote.Price
		return PriceDetail{Price: &price, Currency: s.homeCurrency}
	}

	rate, source, err := firstSuccess(ctx, s.rates, quote.Currency, s.homeCurrency, s.callTimeout)
	if err != nil {
		s.log.Warnf("currency conversion failed for %s (%s): %v", symbol, quote.Currency, err)
		return PriceDetail{Currency: s.homeCurrency}
	}
	if source == domain.RateSourceSecondary {
		s.log.Infof("converted %s via secondary rate provider", symbol)
	}

	converted := quote.Price.Mul(rate)
	original := quote.Price
	return PriceDetail{
		Price:            &converted,
		Currency:         s.homeCurrency,
		OriginalPrice:    &original,
		OriginalCurrency: quote.Currency,
		ExchangeRate:     &rate,
	}
}

// HomeCurrencyRate fetches the USD/home-currency conversion rate through the
// fallback chain: primary first, secondary only after the primary
// definitively fails, no retries beyond that.
func (s *Service) HomeCurrencyRate(ctx context.Context) RateResult {
	rate, source, err := firstSuccess(ctx, s.rates, rateBaseCurrency, s.homeCurrency, s.callTimeout)
	if err != nil {
		return RateResult{Success: false, Err: err.Error()}
	}
	return RateResult{Success: true, Rate: &rate, Source: source}
}
