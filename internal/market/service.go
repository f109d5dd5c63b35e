package market

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"assetguard/internal/cache"
	"assetguard/internal/core"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Listing is one catalogue instrument with its fallback figures.
type Listing struct {
	Symbol string
	// DefaultPrice is in the trading currency, converted like a live price.
	DefaultPrice decimal.Decimal
	AnnualYield  decimal.Decimal
}

// Service turns catalogue listings into display-currency quotes.
type Service struct {
	fetcher      Fetcher
	listings     []Listing
	exchangeRate decimal.Decimal
	quotes       *cache.LRUCache[core.Quote]
	group        singleflight.Group
	concurrency  int
}

type Option func(*Service)

// WithCache replaces the quote cache, e.g. with one on a fake clock.
func WithCache(c *cache.LRUCache[core.Quote]) Option {
	return func(s *Service) { s.quotes = c }
}

func NewService(fetcher Fetcher, listings []Listing, exchangeRate decimal.Decimal, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		fetcher:      fetcher,
		listings:     listings,
		exchangeRate: exchangeRate,
		quotes:       cache.NewLRUCache[core.Quote](max(len(listings), 1)*2, ttl),
		concurrency:  4,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Prices returns a quote for every listing. Symbol lookup failures never fail the
// call; they produce a default-sourced quote carrying the lookup error.
// Only a cancelled context is returned as an error.
func (s *Service) Prices(ctx context.Context) (map[string]core.Quote, error) {
	quotes := make([]core.Quote, len(s.listings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, l := range s.listings {
		g.Go(func() error {
			quotes[i] = s.quote(gctx, l)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]core.Quote, len(quotes))
	for _, q := range quotes {
		out[q.Symbol] = q
	}
	return out, nil
}

// Listings returns the configured catalogue.
func (s *Service) Listings() []Listing {
	return append([]Listing(nil), s.listings...)
}

func (s *Service) quote(ctx context.Context, l Listing) core.Quote {
	if q, ok := s.quotes.Get(l.Symbol); ok {
		return q
	}
	v, _, _ := s.group.Do(l.Symbol, func() (any, error) {
		q := s.lookup(ctx, l)
		// a fallback caused by the caller giving up says nothing about the market
		if ctx.Err() == nil {
			s.quotes.Set(l.Symbol, q)
		}
		return q, nil
	})
	return v.(core.Quote)
}

func (s *Service) lookup(ctx context.Context, l Listing) core.Quote {
	q := core.Quote{Symbol: l.Symbol, AnnualYield: l.AnnualYield}
	price, err := s.fetcher.LastClose(ctx, l.Symbol)
	if err != nil {
		slog.WarnContext(ctx, "Price lookup failed, using default",
			"component", "market",
			"symbol", l.Symbol,
			"error", err)
		q.Price = l.DefaultPrice.Mul(s.exchangeRate)
		q.Source = core.SourceDefault
		q.Err = err
		return q
	}
	q.Price = price.Mul(s.exchangeRate)
	q.Source = core.SourceLive
	return q
}

// StaticFetcher always fails, so every quote uses its default. Used when no
// market endpoint is configured.
type StaticFetcher struct{}

func (StaticFetcher) LastClose(_ context.Context, symbol string) (decimal.Decimal, error) {
	return decimal.Zero, fmt.Errorf("%w: %s: market lookups disabled", core.ErrPriceSourceUnavailable, symbol)
}
