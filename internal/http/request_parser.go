package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"assetguard/internal/core"
)

// maxBodyBytes bounds form and JSON bodies.
const maxBodyBytes = 64 << 10

// ViewParams selects which month is shown and whether rollover applies.
type ViewParams struct {
	Month    core.Month
	Rollover bool
}

// ParseViewParams reads month=YYYY-MM and rollover=0|1 from query or form values.
// A missing month is the current one; a missing rollover flag is defaultRollover.
func ParseViewParams(r *http.Request, now time.Time, defaultRollover bool) (ViewParams, error) {
	p := ViewParams{Month: core.MonthOf(now), Rollover: defaultRollover}

	if v := strings.TrimSpace(r.FormValue("month")); v != "" {
		m, err := core.ParseMonth(v)
		if err != nil {
			return ViewParams{}, err
		}
		p.Month = m
	}
	if v := strings.TrimSpace(r.FormValue("rollover")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return ViewParams{}, core.Invalid("rollover", "rollover must be 0 or 1")
		}
		p.Rollover = b
	}
	return p, nil
}

// ExpenseInput is an add-expense request from the form or the JSON API.
type ExpenseInput struct {
	Date   core.Date
	Item   string
	Amount int64
}

// ParseExpenseForm reads item, amount and date. A blank date is today.
func ParseExpenseForm(r *http.Request, now time.Time) (ExpenseInput, error) {
	return parseExpense(
		r.PostFormValue("date"),
		r.PostFormValue("item"),
		r.PostFormValue("amount"),
		now)
}

type expenseRequest struct {
	Date   string          `json:"date"`
	Item   string          `json:"item"`
	Amount json.RawMessage `json:"amount"`
}

// DecodeExpenseJSON accepts amount as a JSON number or a string such as "1,200".
func DecodeExpenseJSON(r *http.Request, now time.Time) (ExpenseInput, error) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		return ExpenseInput{}, err
	}
	amount := strings.Trim(string(req.Amount), `"`)
	return parseExpense(req.Date, req.Item, amount, now)
}

func parseExpense(date, item, amount string, now time.Time) (ExpenseInput, error) {
	in := ExpenseInput{Date: core.DateOf(now), Item: sanitizeInput(item)}

	if d := strings.TrimSpace(date); d != "" {
		parsed, err := core.ParseDate(d)
		if err != nil {
			return ExpenseInput{}, err
		}
		in.Date = parsed
	}
	if err := core.ValidateItem(in.Item); err != nil {
		return ExpenseInput{}, err
	}
	v, err := core.ParseAmount(amount)
	if err != nil {
		return ExpenseInput{}, err
	}
	in.Amount = v
	return in, nil
}

// ParseDeleteForm reads repeated id fields from a form post.
func ParseDeleteForm(r *http.Request) ([]int64, error) {
	if err := r.ParseForm(); err != nil {
		return nil, core.Invalid("ids", "malformed form")
	}
	return parseIDs(r.PostForm["id"])
}

type deleteRequest struct {
	IDs []int64 `json:"ids"`
}

// DecodeDeleteJSON reads {"ids":[...]}.
func DecodeDeleteJSON(r *http.Request) ([]int64, error) {
	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	return req.IDs, nil
}

func parseIDs(raw []string) ([]int64, error) {
	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil || id <= 0 {
			return nil, core.Invalid("ids", fmt.Sprintf("%q is not an expense id", s))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// BudgetInput sets the budget of one month.
type BudgetInput struct {
	Month  core.Month
	Amount int64
}

// ParseBudgetForm reads month and budget. The month is required so a budget
// edit can only ever target the month being viewed.
func ParseBudgetForm(r *http.Request) (BudgetInput, error) {
	return parseBudget(r.PostFormValue("month"), r.PostFormValue("budget"))
}

type budgetRequest struct {
	Month  string          `json:"month"`
	Amount json.RawMessage `json:"amount"`
}

// DecodeBudgetJSON reads {"month":"2025-01","amount":50000}.
func DecodeBudgetJSON(r *http.Request) (BudgetInput, error) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		return BudgetInput{}, err
	}
	return parseBudget(req.Month, strings.Trim(string(req.Amount), `"`))
}

func parseBudget(month, amount string) (BudgetInput, error) {
	if strings.TrimSpace(month) == "" {
		return BudgetInput{}, core.Invalid("month", "month is required")
	}
	m, err := core.ParseMonth(month)
	if err != nil {
		return BudgetInput{}, err
	}
	v, err := core.ParseBudget(amount)
	if err != nil {
		return BudgetInput{}, err
	}
	return BudgetInput{Month: m, Amount: v}, nil
}

func decodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return core.Invalid("body", "invalid JSON body")
	}
	return nil
}

// sanitizeInput drops control characters other than tab and newlines, then trims.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}
