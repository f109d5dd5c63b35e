package core

import "github.com/shopspring/decimal"

// QuoteSource tells whether a price came from the market or from the catalogue default.
type QuoteSource string

const (
	SourceLive    QuoteSource = "live"
	SourceDefault QuoteSource = "default"
)

// Quote is the price of one instrument in display currency (yen).
type Quote struct {
	Symbol      string
	Price       decimal.Decimal
	AnnualYield decimal.Decimal
	Source      QuoteSource
	// Err is the lookup failure that caused a fallback. Nil for live quotes.
	Err error
}

// Live reports whether the quote used a market price.
func (q Quote) Live() bool {
	return q.Source == SourceLive
}
