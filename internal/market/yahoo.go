// Package market resolves instrument prices for projections. Every configured
// instrument always gets a quote: a failed lookup falls back to the catalogue default.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"assetguard/internal/core"

	"github.com/shopspring/decimal"
)

// Fetcher returns the latest close of symbol in its trading currency.
type Fetcher interface {
	LastClose(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// YahooClient reads the public chart endpoint.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

func NewYahooClient(baseURL string, timeout time.Duration) *YahooClient {
	return &YahooClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "assetguard/1.0",
	}
}

// WithHTTPClient swaps the transport, used by tests.
func (c *YahooClient) WithHTTPClient(hc *http.Client) *YahooClient {
	c.httpClient = hc
	return c
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string   `json:"currency"`
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

var errNoPrice = errors.New("no price in response")

func (c *YahooClient) LastClose(ctx context.Context, symbol string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", c.baseURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: build request: %w", core.ErrPriceSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %w", core.ErrPriceSourceUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return decimal.Zero, fmt.Errorf("%w: %s: status %d", core.ErrPriceSourceUnavailable, symbol, resp.StatusCode)
	}

	var body chartResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: decode: %w", core.ErrPriceSourceUnavailable, symbol, err)
	}
	price, err := body.lastClose()
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %w", core.ErrPriceSourceUnavailable, symbol, err)
	}
	return price, nil
}

// lastClose picks the most recent non-null close, then the regular market price.
func (r chartResponse) lastClose() (decimal.Decimal, error) {
	if r.Chart.Error != nil {
		return decimal.Zero, fmt.Errorf("%s: %s", r.Chart.Error.Code, r.Chart.Error.Description)
	}
	if len(r.Chart.Result) == 0 {
		return decimal.Zero, errNoPrice
	}
	res := r.Chart.Result[0]
	for _, q := range res.Indicators.Quote {
		for i := len(q.Close) - 1; i >= 0; i-- {
			if v := q.Close[i]; v != nil && *v > 0 {
				return decimal.NewFromFloat(*v), nil
			}
		}
	}
	if p := res.Meta.RegularMarketPrice; p != nil && *p > 0 {
		return decimal.NewFromFloat(*p), nil
	}
	return decimal.Zero, errNoPrice
}
