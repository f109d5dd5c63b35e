package engine

import (
	"fmt"

	"assetguard/internal/core"

	"github.com/shopspring/decimal"
)

// Instrument is a reference security named in projections.
type Instrument struct {
	Symbol string
	Name   string
}

// ProjectionConfig selects which instruments and growth scenarios a projection covers.
type ProjectionConfig struct {
	ShareLoss    []Instrument
	Income       Instrument
	Horizons     []int
	BaselineRate decimal.Decimal
	GrowthRate   decimal.Decimal
}

// DefaultProjectionConfig: three growth stocks, one dividend stock, S&P-like 8% vs 15% growth.
func DefaultProjectionConfig() ProjectionConfig {
	return ProjectionConfig{
		ShareLoss: []Instrument{
			{Symbol: "PLTR", Name: "Palantir"},
			{Symbol: "NVDA", Name: "NVIDIA"},
			{Symbol: "GOOGL", Name: "Alphabet"},
		},
		Income:       Instrument{Symbol: "O", Name: "Realty Income"},
		Horizons:     []int{5, 10, 20, 30},
		BaselineRate: decimal.RequireFromString("0.08"),
		GrowthRate:   decimal.RequireFromString("0.15"),
	}
}

type (
	ShareLoss struct {
		Instrument
		Price  decimal.Decimal
		Shares decimal.Decimal
		Source core.QuoteSource
	}

	// IncomeEquivalent is the monthly dividend the spent amount would have paid.
	IncomeEquivalent struct {
		Instrument
		Price       decimal.Decimal
		AnnualYield decimal.Decimal
		Shares      decimal.Decimal
		Monthly     decimal.Decimal
		Source      core.QuoteSource
	}

	FutureValueRow struct {
		Years    int
		Baseline decimal.Decimal
		Growth   decimal.Decimal
		// Multiple is Growth divided by the principal.
		Multiple decimal.Decimal
	}

	Projection struct {
		TotalSpent   int64
		ShareLosses  []ShareLoss
		Income       *IncomeEquivalent
		FutureValues []FutureValueRow
	}
)

// Empty reports the neutral result returned for a non-positive spend.
func (p Projection) Empty() bool {
	return p.TotalSpent <= 0
}

var (
	one    = decimal.NewFromInt(1)
	months = decimal.NewFromInt(12)
)

// ComputeProjections derives opportunity-cost figures from a month's spend.
// prices is read-only. A missing or non-positive price for a configured instrument
// returns core.ErrConfiguration rather than a substituted value.
func ComputeProjections(totalSpent int64, prices map[string]core.Quote, cfg ProjectionConfig) (Projection, error) {
	if totalSpent <= 0 {
		return Projection{TotalSpent: totalSpent}, nil
	}
	principal := decimal.NewFromInt(totalSpent)
	p := Projection{TotalSpent: totalSpent}

	for _, inst := range cfg.ShareLoss {
		q, err := priceFor(prices, inst.Symbol)
		if err != nil {
			return Projection{}, err
		}
		p.ShareLosses = append(p.ShareLosses, ShareLoss{
			Instrument: inst,
			Price:      q.Price,
			Shares:     principal.Div(q.Price),
			Source:     q.Source,
		})
	}

	if cfg.Income.Symbol != "" {
		q, err := priceFor(prices, cfg.Income.Symbol)
		if err != nil {
			return Projection{}, err
		}
		shares := principal.Div(q.Price)
		p.Income = &IncomeEquivalent{
			Instrument:  cfg.Income,
			Price:       q.Price,
			AnnualYield: q.AnnualYield,
			Shares:      shares,
			Monthly:     shares.Mul(q.Price).Mul(q.AnnualYield).Div(months),
			Source:      q.Source,
		}
	}

	for _, years := range cfg.Horizons {
		growth := FutureValue(principal, cfg.GrowthRate, years)
		p.FutureValues = append(p.FutureValues, FutureValueRow{
			Years:    years,
			Baseline: FutureValue(principal, cfg.BaselineRate, years),
			Growth:   growth,
			Multiple: growth.Div(principal),
		})
	}
	return p, nil
}

// FutureValue is principal * (1+rate)^years.
func FutureValue(principal, rate decimal.Decimal, years int) decimal.Decimal {
	return principal.Mul(one.Add(rate).Pow(decimal.NewFromInt(int64(years))))
}

func priceFor(prices map[string]core.Quote, symbol string) (core.Quote, error) {
	q, ok := prices[symbol]
	if !ok {
		return core.Quote{}, fmt.Errorf("%w: no price for %s", core.ErrConfiguration, symbol)
	}
	if !q.Price.IsPositive() {
		return core.Quote{}, fmt.Errorf("%w: price for %s is %s", core.ErrConfiguration, symbol, q.Price)
	}
	return q, nil
}
