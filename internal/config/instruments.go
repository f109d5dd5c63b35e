package config

import (
	"fmt"
	"os"
	"strings"

	"assetguard/internal/core"
	"assetguard/internal/engine"
	"assetguard/internal/market"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// InstrumentConfig is one [[instrument]] table of the catalogue file.
type InstrumentConfig struct {
	Symbol       string  `toml:"symbol"`
	Name         string  `toml:"name"`
	DefaultPrice float64 `toml:"default_price"`
	AnnualYield  float64 `toml:"annual_yield"`
	ShareLoss    bool    `toml:"share_loss"`
}

// Catalogue lists the reference instruments and the projection scenarios.
type Catalogue struct {
	ExchangeRate float64            `toml:"exchange_rate"`
	Income       string             `toml:"income"`
	Horizons     []int              `toml:"horizons"`
	BaselineRate float64            `toml:"baseline_rate"`
	GrowthRate   float64            `toml:"growth_rate"`
	Instruments  []InstrumentConfig `toml:"instrument"`
}

// DefaultCatalogue: USD prices at 150 yen per dollar.
func DefaultCatalogue() Catalogue {
	return Catalogue{
		ExchangeRate: 150,
		Income:       "O",
		Horizons:     []int{5, 10, 20, 30},
		BaselineRate: 0.08,
		GrowthRate:   0.15,
		Instruments: []InstrumentConfig{
			{Symbol: "PLTR", Name: "Palantir", DefaultPrice: 30, ShareLoss: true},
			{Symbol: "NVDA", Name: "NVIDIA", DefaultPrice: 135, AnnualYield: 0.0003, ShareLoss: true},
			{Symbol: "GOOGL", Name: "Alphabet", DefaultPrice: 175, ShareLoss: true},
			{Symbol: "O", Name: "Realty Income", DefaultPrice: 53, AnnualYield: 0.055},
		},
	}
}

// LoadCatalogue reads path, or returns the defaults when path is empty.
// Keys missing from the file keep their default values.
func LoadCatalogue(path string) (Catalogue, error) {
	cat := DefaultCatalogue()
	if strings.TrimSpace(path) == "" {
		return cat, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalogue{}, fmt.Errorf("read instruments file: %w", err)
	}
	var file Catalogue
	md, err := toml.Decode(string(raw), &file)
	if err != nil {
		return Catalogue{}, fmt.Errorf("parse instruments file %s: %w", path, err)
	}
	if md.IsDefined("exchange_rate") {
		cat.ExchangeRate = file.ExchangeRate
	}
	if md.IsDefined("income") {
		cat.Income = file.Income
	}
	if md.IsDefined("horizons") {
		cat.Horizons = file.Horizons
	}
	if md.IsDefined("baseline_rate") {
		cat.BaselineRate = file.BaselineRate
	}
	if md.IsDefined("growth_rate") {
		cat.GrowthRate = file.GrowthRate
	}
	if md.IsDefined("instrument") {
		cat.Instruments = file.Instruments
	}
	if err := cat.Validate(); err != nil {
		return Catalogue{}, err
	}
	return cat, nil
}

// Validate rejects catalogues that would make projections divide by zero.
func (c Catalogue) Validate() error {
	var errors []string
	if c.ExchangeRate <= 0 {
		errors = append(errors, fmt.Sprintf("invalid exchange rate %v: must be positive", c.ExchangeRate))
	}
	seen := map[string]bool{}
	for i, in := range c.Instruments {
		sym := strings.TrimSpace(in.Symbol)
		if sym == "" {
			errors = append(errors, fmt.Sprintf("instrument %d: symbol is required", i+1))
			continue
		}
		if seen[sym] {
			errors = append(errors, fmt.Sprintf("instrument %s: duplicate symbol", sym))
		}
		seen[sym] = true
		if in.DefaultPrice <= 0 {
			errors = append(errors, fmt.Sprintf("instrument %s: default price must be positive", sym))
		}
		if in.AnnualYield < 0 {
			errors = append(errors, fmt.Sprintf("instrument %s: annual yield must not be negative", sym))
		}
	}
	if c.Income != "" && !seen[c.Income] {
		errors = append(errors, fmt.Sprintf("income instrument %s is not in the catalogue", c.Income))
	}
	for _, h := range c.Horizons {
		if h <= 0 {
			errors = append(errors, fmt.Sprintf("invalid horizon %d: must be positive", h))
		}
	}
	if len(errors) > 0 {
		return fmt.Errorf("%w: instrument catalogue:\n- %s", core.ErrConfiguration, strings.Join(errors, "\n- "))
	}
	return nil
}

// Listings converts the catalogue into market lookups.
func (c Catalogue) Listings() []market.Listing {
	out := make([]market.Listing, 0, len(c.Instruments))
	for _, in := range c.Instruments {
		out = append(out, market.Listing{
			Symbol:       in.Symbol,
			DefaultPrice: decimal.NewFromFloat(in.DefaultPrice),
			AnnualYield:  decimal.NewFromFloat(in.AnnualYield),
		})
	}
	return out
}

func (c Catalogue) Rate() decimal.Decimal {
	return decimal.NewFromFloat(c.ExchangeRate)
}

// ProjectionConfig converts the catalogue into engine settings.
func (c Catalogue) ProjectionConfig() engine.ProjectionConfig {
	cfg := engine.ProjectionConfig{
		Horizons:     append([]int(nil), c.Horizons...),
		BaselineRate: decimal.NewFromFloat(c.BaselineRate),
		GrowthRate:   decimal.NewFromFloat(c.GrowthRate),
	}
	for _, in := range c.Instruments {
		inst := engine.Instrument{Symbol: in.Symbol, Name: in.Name}
		if in.ShareLoss {
			cfg.ShareLoss = append(cfg.ShareLoss, inst)
		}
		if in.Symbol == c.Income {
			cfg.Income = inst
		}
	}
	return cfg
}
