package http

import (
	"net/http"

	applog "assetguard/internal/log"
)

// GET /api/summary?month=YYYY-MM&rollover=0|1
func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	p, err := ParseViewParams(r, s.now(), s.opts.Rollover)
	if err != nil {
		fail(w, r, applog.OpSummary, err)
		return
	}
	sum, offline, err := s.summaryFor(r.Context(), p)
	if err != nil {
		fail(w, r, applog.OpSummary, err)
		return
	}
	respondJSON(w, http.StatusOK, toSummaryJSON(sum, offline))
}

// GET /api/projections?month=YYYY-MM
func (s *Server) handleAPIProjections(w http.ResponseWriter, r *http.Request) {
	p, err := ParseViewParams(r, s.now(), s.opts.Rollover)
	if err != nil {
		fail(w, r, applog.OpProjections, err)
		return
	}
	sum, _, err := s.summaryFor(r.Context(), p)
	if err != nil {
		fail(w, r, applog.OpProjections, err)
		return
	}
	proj, err := s.projectionFor(r.Context(), sum.TotalSpent)
	if err != nil {
		fail(w, r, applog.OpProjections, err)
		return
	}
	respondJSON(w, http.StatusOK, toProjectionJSON(p.Month, proj))
}

type createdJSON struct {
	ID    int64  `json:"id"`
	Month string `json:"month"`
}

// POST /api/expenses {"date":"2025-01-15","item":"taxi","amount":1200}
func (s *Server) handleAPICreateExpense(w http.ResponseWriter, r *http.Request) {
	in, err := DecodeExpenseJSON(r, s.now())
	if err != nil {
		fail(w, r, applog.OpCreate, err)
		return
	}
	id, err := s.opts.Ledger.AddExpense(r.Context(), in.Date, in.Item, in.Amount)
	if err != nil {
		fail(w, r, applog.OpCreate, err)
		return
	}
	respondJSON(w, http.StatusCreated, createdJSON{ID: id, Month: in.Date.Month().String()})
}

// DELETE /api/expenses {"ids":[1,2]}
func (s *Server) handleAPIDeleteExpenses(w http.ResponseWriter, r *http.Request) {
	ids, err := DecodeDeleteJSON(r)
	if err != nil {
		fail(w, r, applog.OpDelete, err)
		return
	}
	if err := s.opts.Ledger.DeleteExpenses(r.Context(), ids); err != nil {
		fail(w, r, applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type budgetJSON struct {
	Month  string `json:"month"`
	Amount int64  `json:"amount"`
}

// PUT /api/budget {"month":"2025-01","amount":60000}
func (s *Server) handleAPISetBudget(w http.ResponseWriter, r *http.Request) {
	in, err := DecodeBudgetJSON(r)
	if err != nil {
		fail(w, r, applog.OpSetBudget, err)
		return
	}
	if err := s.opts.Ledger.SetBudget(r.Context(), in.Month, in.Amount); err != nil {
		fail(w, r, applog.OpSetBudget, err)
		return
	}
	respondJSON(w, http.StatusOK, budgetJSON{Month: in.Month.String(), Amount: in.Amount})
}
