package http

import (
	"net/http"
	"net/url"
	"strconv"

	"assetguard/internal/core"
	applog "assetguard/internal/log"
)

// Form posts answer HTMX with the refreshed #ledger fragment and HX-Trigger
// events. Plain browser posts get a 303 back to the dashboard.

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	in, err := ParseExpenseForm(r, s.now())
	if err != nil {
		failHTMX(w, r, applog.OpCreate, err)
		return
	}
	if _, err := s.opts.Ledger.AddExpense(r.Context(), in.Date, in.Item, in.Amount); err != nil {
		failHTMX(w, r, applog.OpCreate, err)
		return
	}
	s.respondMutation(w, r, s.viewAfterMutation(r), "Expense saved", true)
}

func (s *Server) handleDeleteExpenses(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	ids, err := ParseDeleteForm(r)
	if err != nil {
		failHTMX(w, r, applog.OpDelete, err)
		return
	}
	if err := s.opts.Ledger.DeleteExpenses(r.Context(), ids); err != nil {
		failHTMX(w, r, applog.OpDelete, err)
		return
	}
	s.respondMutation(w, r, s.viewAfterMutation(r), "Deleted "+strconv.Itoa(len(ids))+" expense(s)", false)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	in, err := ParseBudgetForm(r)
	if err != nil {
		failHTMX(w, r, applog.OpSetBudget, err)
		return
	}
	if err := s.opts.Ledger.SetBudget(r.Context(), in.Month, in.Amount); err != nil {
		failHTMX(w, r, applog.OpSetBudget, err)
		return
	}
	p := s.viewAfterMutation(r)
	p.Month = in.Month
	s.respondMutation(w, r, p, "Budget for "+in.Month.String()+" set to "+core.FormatYen(in.Amount), false)
}

// viewAfterMutation reads month/rollover from the posted form, ignoring bad values
// since the mutation already succeeded.
func (s *Server) viewAfterMutation(r *http.Request) ViewParams {
	p, err := ParseViewParams(r, s.now(), s.opts.Rollover)
	if err != nil {
		return ViewParams{Month: core.MonthOf(s.now()), Rollover: s.opts.Rollover}
	}
	return p
}

func (s *Server) respondMutation(w http.ResponseWriter, r *http.Request, p ViewParams, message string, resetForm bool) {
	if !isHTMX(r) {
		http.Redirect(w, r, dashboardURL(p), http.StatusSeeOther)
		return
	}

	view, err := s.buildView(r.Context(), p)
	if err != nil {
		failHTMX(w, r, applog.OpRender, err)
		return
	}
	body, err := s.render("ledger", view)
	if err != nil {
		failHTMX(w, r, applog.OpRender, err)
		return
	}

	resp := NewHTMXResponse().
		TriggerLedgerChanged(p.Month.String()).
		TriggerSuccessNotification(message).
		BodyHTML(body)
	if resetForm {
		resp.TriggerFormReset()
	}
	resp.Write(w)
}

func dashboardURL(p ViewParams) string {
	q := url.Values{}
	q.Set("month", p.Month.String())
	q.Set("rollover", boolParam(p.Rollover))
	return "/?" + q.Encode()
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
