package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fundsight/analytics/internal/domain"
)

const openRatesBaseURL = "https://open.er-api.com/v6"

var ErrRateMissing = errors.New("open rates: pair not in rates map")

// OpenRatesClient is the secondary FX rate provider. Its response shape is a
// flat rates map keyed by currency code, deliberately different from the
// primary's nested chart payload, so the two are parsed independently.
type OpenRatesClient struct {
	baseURL string
	http    *http.Client
	log     *logrus.Logger
}

// NewOpenRatesClient creates a client against the production endpoint.
func NewOpenRatesClient(log *logrus.Logger) *OpenRatesClient {
	return NewOpenRatesClientWithBaseURL(openRatesBaseURL, log)
}

// NewOpenRatesClientWithBaseURL creates a client against a custom base URL.
// Tests point this at a local server.
func NewOpenRatesClientWithBaseURL(baseURL string, log *logrus.Logger) *OpenRatesClient {
	return &OpenRatesClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: clientTimeout},
		log:     log,
	}
}

// Source identifies this client as the secondary rate provider.
func (c *OpenRatesClient) Source() domain.RateSource {
	return domain.RateSourceSecondary
}

// Rate fetches the latest rates table for 'from' and picks out the 'to'
// entry. The body is decoded generically and queried by path, so extra
// fields or reordered keys in the provider payload are harmless.
func (c *OpenRatesClient) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return decimal.Zero, errors.New("open rates: invalid currency pair")
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	addr := fmt.Sprintf("%s/latest/%s", c.baseURL, url.PathEscape(from))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("User-Agent", userAgentValue)

	resp, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Debugf("open rates %s returned %d", from, resp.StatusCode)
		return decimal.Zero, fmt.Errorf("open rates http %d", resp.StatusCode)
	}

	var body any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("open rates: malformed body: %w", err)
	}

	jval, err := jsonpath.Get(fmt.Sprintf("$.rates.%s", to), body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s/%s", ErrRateMissing, from, to)
	}
	rate, ok := jval.(float64)
	if !ok || rate <= 0 {
		return decimal.Zero, fmt.Errorf("open rates: invalid rate for %s/%s", from, to)
	}
	return decimal.NewFromFloat(rate), nil
}
