package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func chartBody(price float64, currency string, ts int64) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"currency":%q,"regularMarketPrice":%v,"regularMarketTime":%d}}],"error":null}}`,
		currency, price, ts)
}

func TestYahooGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		fmt.Fprint(w, chartBody(189.5, "USD", 1700000000))
	}))
	defer server.Close()

	client := NewYahooClientWithBaseURL(server.URL, testLogger())

	quote, err := client.GetQuote(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.True(t, quote.Price.Equal(decimal.NewFromFloat(189.5)))
	assert.Equal(t, "USD", quote.Currency)
	assert.Equal(t, int64(1700000000), quote.FetchedAt.Unix())
}

func TestYahooGetQuote_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewYahooClientWithBaseURL(server.URL, testLogger())

	_, err := client.GetQuote(context.Background(), "AAPL")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestYahooGetQuote_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer server.Close()

	client := NewYahooClientWithBaseURL(server.URL, testLogger())

	_, err := client.GetQuote(context.Background(), "NOPE")

	assert.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestYahooGetQuote_MissingCurrency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody(100, "", 0))
	}))
	defer server.Close()

	client := NewYahooClientWithBaseURL(server.URL, testLogger())

	_, err := client.GetQuote(context.Background(), "AAPL")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "currency")
}

func TestYahooGetQuote_NonPositivePrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody(0, "USD", 0))
	}))
	defer server.Close()

	client := NewYahooClientWithBaseURL(server.URL, testLogger())

	_, err := client.GetQuote(context.Background(), "AAPL")

	assert.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestYahooRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/USDINR=X", r.URL.Path)
		fmt.Fprint(w, chartBody(83.12, "INR", 1700000000))
	}))
	defer server.Close()

	client := NewYahooClientWithBaseURL(server.URL, testLogger())

	rate, err := client.Rate(context.Background(), "usd", "inr")

	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromFloat(83.12)))
}

func TestYahooRate_SameCurrency(t *testing.T) {
	client := NewYahooClientWithBaseURL("http://127.0.0.1:0", testLogger())

	rate, err := client.Rate(context.Background(), "INR", "INR")

	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}

func TestOpenRatesRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/USD", r.URL.Path)
		fmt.Fprint(w, `{"result":"success","base_code":"USD","rates":{"EUR":0.92,"INR":83.4,"JPY":151.2}}`)
	}))
	defer server.Close()

	client := NewOpenRatesClientWithBaseURL(server.URL, testLogger())

	rate, err := client.Rate(context.Background(), "USD", "INR")

	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromFloat(83.4)))
}

func TestOpenRatesRate_PairMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":"success","rates":{"EUR":0.92}}`)
	}))
	defer server.Close()

	client := NewOpenRatesClientWithBaseURL(server.URL, testLogger())

	_, err := client.Rate(context.Background(), "USD", "XXX")

	assert.ErrorIs(t, err, ErrRateMissing)
}

func TestOpenRatesRate_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewOpenRatesClientWithBaseURL(server.URL, testLogger())

	_, err := client.Rate(context.Background(), "USD", "INR")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestOpenRatesRate_SameCurrency(t *testing.T) {
	client := NewOpenRatesClientWithBaseURL("http://127.0.0.1:0", testLogger())

	rate, err := client.Rate(context.Background(), "INR", "INR")

	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}
