package http

import (
	"context"
	"errors"
	"fmt"

	"assetguard/internal/core"
	"assetguard/internal/engine"
	applog "assetguard/internal/log"
)

const offlineWarning = "Ledger storage is unreachable. Showing an empty read-only view; changes will not be saved."

// ledgerView is everything the dashboard templates render for one month.
type ledgerView struct {
	Month      core.Month
	Prev       core.Month
	Next       core.Month
	Today      string
	Rollover   bool
	Summary    engine.Summary
	Projection engine.Projection
	// Warning is the offline banner. ReadOnly disables the forms.
	Warning  string
	ReadOnly bool
}

// summaryFor computes the month's summary. In local mode an unreachable store
// degrades to the empty fallback store and reports offline=true.
func (s *Server) summaryFor(ctx context.Context, p ViewParams) (engine.Summary, bool, error) {
	sum, err := s.opts.Engine.ComputeSummary(ctx, p.Month, p.Rollover)
	if err == nil {
		return sum, s.opts.Offline, nil
	}
	if s.fallback == nil || !errors.Is(err, core.ErrStorageUnavailable) {
		return engine.Summary{}, false, err
	}

	applog.FromContext(ctx).WarnContext(ctx, "Ledger storage unavailable, serving read-only fallback",
		applog.FieldMonth, p.Month.String(),
		applog.FieldError, err)
	sum, err = s.fallback.ComputeSummary(ctx, p.Month, p.Rollover)
	if err != nil {
		return engine.Summary{}, false, fmt.Errorf("fallback summary: %w", err)
	}
	return sum, true, nil
}

// projectionFor prices the spend. Quotes are only fetched for a positive total.
func (s *Server) projectionFor(ctx context.Context, totalSpent int64) (engine.Projection, error) {
	if totalSpent <= 0 {
		return engine.ComputeProjections(totalSpent, nil, s.opts.Projection)
	}
	prices, err := s.opts.Prices.Prices(ctx)
	if err != nil {
		return engine.Projection{}, err
	}
	for sym, q := range prices {
		if !q.Live() {
			applog.FromContext(ctx).DebugContext(ctx, "Using default price",
				applog.FieldSymbol, sym,
				applog.FieldError, q.Err)
		}
	}
	return engine.ComputeProjections(totalSpent, prices, s.opts.Projection)
}

func (s *Server) buildView(ctx context.Context, p ViewParams) (ledgerView, error) {
	sum, offline, err := s.summaryFor(ctx, p)
	if err != nil {
		return ledgerView{}, err
	}
	proj, err := s.projectionFor(ctx, sum.TotalSpent)
	if err != nil {
		return ledgerView{}, err
	}

	v := ledgerView{
		Month:      p.Month,
		Prev:       p.Month.Previous(),
		Next:       p.Month.Next(),
		Today:      core.DateOf(s.now()).String(),
		Rollover:   p.Rollover,
		Summary:    sum,
		Projection: proj,
		ReadOnly:   offline,
	}
	if offline {
		v.Warning = offlineWarning
	}
	return v, nil
}

// JSON payloads. Decimal figures are rounded for display before conversion.

type expenseJSON struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Item   string `json:"item"`
	Amount int64  `json:"amount"`
	Month  string `json:"month"`
}

type summaryJSON struct {
	Month       string        `json:"month"`
	Budget      int64         `json:"budget"`
	TotalSpent  int64         `json:"total_spent"`
	Rollover    int64         `json:"rollover"`
	FinalBudget int64         `json:"final_budget"`
	Remaining   int64         `json:"remaining"`
	Progress    float64       `json:"progress"`
	Overspent   bool          `json:"overspent"`
	Expenses    []expenseJSON `json:"expenses"`
	Offline     bool          `json:"offline"`
	Warning     string        `json:"warning,omitempty"`
}

func toSummaryJSON(sum engine.Summary, offline bool) summaryJSON {
	out := summaryJSON{
		Month:       sum.Month.String(),
		Budget:      sum.Budget,
		TotalSpent:  sum.TotalSpent,
		Rollover:    sum.Rollover,
		FinalBudget: sum.FinalBudget,
		Remaining:   sum.Remaining,
		Progress:    sum.Progress,
		Overspent:   sum.Overspent(),
		Expenses:    make([]expenseJSON, 0, len(sum.Expenses)),
		Offline:     offline,
	}
	for _, e := range sum.Expenses {
		out.Expenses = append(out.Expenses, expenseJSON{
			ID:     e.ID,
			Date:   e.Date.String(),
			Item:   e.Item,
			Amount: e.Amount,
			Month:  e.Month.String(),
		})
	}
	if offline {
		out.Warning = offlineWarning
	}
	return out
}

type shareLossJSON struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Shares float64 `json:"shares"`
	Source string  `json:"source"`
}

type incomeJSON struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	AnnualYield float64 `json:"annual_yield"`
	Shares      float64 `json:"shares"`
	Monthly     float64 `json:"monthly"`
	Source      string  `json:"source"`
}

type futureValueJSON struct {
	Years    int     `json:"years"`
	Baseline float64 `json:"baseline"`
	Growth   float64 `json:"growth"`
	Multiple float64 `json:"multiple"`
}

type projectionJSON struct {
	Month        string            `json:"month"`
	TotalSpent   int64             `json:"total_spent"`
	ShareLosses  []shareLossJSON   `json:"share_losses"`
	Income       *incomeJSON       `json:"income,omitempty"`
	FutureValues []futureValueJSON `json:"future_values"`
}

func toProjectionJSON(month core.Month, p engine.Projection) projectionJSON {
	out := projectionJSON{
		Month:        month.String(),
		TotalSpent:   p.TotalSpent,
		ShareLosses:  make([]shareLossJSON, 0, len(p.ShareLosses)),
		FutureValues: make([]futureValueJSON, 0, len(p.FutureValues)),
	}
	for _, sl := range p.ShareLosses {
		out.ShareLosses = append(out.ShareLosses, shareLossJSON{
			Symbol: sl.Symbol,
			Name:   sl.Name,
			Price:  sl.Price.Round(2).InexactFloat64(),
			Shares: sl.Shares.Round(2).InexactFloat64(),
			Source: string(sl.Source),
		})
	}
	if inc := p.Income; inc != nil {
		out.Income = &incomeJSON{
			Symbol:      inc.Symbol,
			Name:        inc.Name,
			Price:       inc.Price.Round(2).InexactFloat64(),
			AnnualYield: inc.AnnualYield.InexactFloat64(),
			Shares:      inc.Shares.Round(2).InexactFloat64(),
			Monthly:     inc.Monthly.Round(2).InexactFloat64(),
			Source:      string(inc.Source),
		}
	}
	for _, fv := range p.FutureValues {
		out.FutureValues = append(out.FutureValues, futureValueJSON{
			Years:    fv.Years,
			Baseline: fv.Baseline.Round(0).InexactFloat64(),
			Growth:   fv.Growth.Round(0).InexactFloat64(),
			Multiple: fv.Multiple.Round(1).InexactFloat64(),
		})
	}
	return out
}
