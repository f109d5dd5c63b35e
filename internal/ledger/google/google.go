package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"assetguard/internal/core"
	"assetguard/internal/ledger"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Options configure the spreadsheet-backed store.
type Options struct {
	SpreadsheetID   string
	ExpensesSheet   string
	BudgetsSheet    string
	DefaultBudget   int64
	CredentialsJSON []byte
}

// Store keeps expenses and budgets in two sheets of one spreadsheet.
//
// Expenses: header row, then `date | item | amount | month`. The id of a record is
// its 1-based sheet row number, so ids are only stable until the next deletion.
// Budgets: header row, then `month | amount`.
type Store struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesSheet string
	budgetsSheet  string
	defaultBudget int64

	// serialises read-modify-write sequences (row lookups before delete/upsert)
	mu       sync.Mutex
	sheetIDs map[string]int64
}

var _ ledger.Store = (*Store)(nil)

// New builds a Sheets service from service-account credentials. Extra client options
// (endpoint, HTTP client) are appended after the credentials.
func New(ctx context.Context, opts Options, clientOpts ...goption.ClientOption) (*Store, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	var all []goption.ClientOption
	if len(opts.CredentialsJSON) > 0 {
		all = append(all,
			goption.WithCredentialsJSON(opts.CredentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}
	all = append(all, clientOpts...)

	svc, err := gsheet.NewService(ctx, all...)
	if err != nil {
		return nil, core.Unavailable("create sheets service", err)
	}
	slog.InfoContext(ctx, "Google Sheets ledger initialised",
		"spreadsheet_id", opts.SpreadsheetID,
		"expenses_sheet", opts.ExpensesSheet,
		"budgets_sheet", opts.BudgetsSheet)
	return NewWithService(svc, opts), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, opts Options) *Store {
	s := &Store{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		expensesSheet: opts.ExpensesSheet,
		budgetsSheet:  opts.BudgetsSheet,
		defaultBudget: opts.DefaultBudget,
		sheetIDs:      map[string]int64{},
	}
	if s.expensesSheet == "" {
		s.expensesSheet = "Expenses"
	}
	if s.budgetsSheet == "" {
		s.budgetsSheet = "Budgets"
	}
	return s
}

func (s *Store) AppendExpense(ctx context.Context, date core.Date, item string, amount int64) (int64, error) {
	rec, err := core.NewExpenseRecord(date, item, amount)
	if err != nil {
		return 0, err
	}
	rng := fmt.Sprintf("%s!A:D", s.expensesSheet)
	vr := &gsheet.ValueRange{Values: [][]any{expenseRow(rec)}}
	resp, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, s.unavailable(ctx, "append expense", err)
	}
	if resp.Updates == nil {
		return 0, core.Unavailable("append expense", errors.New("response without update range"))
	}
	row, err := parseRowNumber(resp.Updates.UpdatedRange)
	if err != nil {
		return 0, core.Unavailable("append expense", err)
	}
	slog.InfoContext(ctx, "Expense appended to sheet",
		"row", row,
		"month", rec.Month.String(),
		"amount", rec.Amount)
	return row, nil
}

func (s *Store) QueryExpenses(ctx context.Context, month core.Month) ([]core.ExpenseRecord, error) {
	rows, err := s.readExpenseRows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.ExpenseRecord, 0)
	for i, row := range rows {
		id := int64(i + firstDataRow)
		if isBlankRow(row) {
			continue
		}
		rec, err := parseExpenseRow(id, row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed expense row",
				"sheet", s.expensesSheet, "row", id, "error", err)
			continue
		}
		if rec.Month == month {
			out = append(out, rec)
		}
	}
	return out, nil
}

// DeleteExpenses removes the given rows with one batchUpdate. Rows are deleted
// bottom-up so earlier deletions do not shift the indices of later ones.
func (s *Store) DeleteExpenses(ctx context.Context, ids []int64) error {
	ids = ledger.UniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readExpenseRows(ctx)
	if err != nil {
		return err
	}
	present := make([]int64, 0, len(ids))
	for _, id := range ids {
		idx := id - firstDataRow
		if idx < 0 || idx >= int64(len(rows)) || isBlankRow(rows[idx]) {
			continue
		}
		present = append(present, id)
	}
	if len(present) == 0 {
		return nil
	}

	sheetID, err := s.sheetID(ctx, s.expensesSheet)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: deleteRowRequests(sheetID, present)}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return s.unavailable(ctx, "delete expenses", err)
	}
	slog.InfoContext(ctx, "Expense rows deleted", "sheet", s.expensesSheet, "count", len(present))
	return nil
}

func (s *Store) GetBudget(ctx context.Context, month core.Month) (int64, error) {
	rows, err := s.readBudgetRows(ctx)
	if err != nil {
		return 0, err
	}
	if _, amount, ok := findBudget(ctx, rows, month); ok {
		return amount, nil
	}
	return s.defaultBudget, nil
}

func (s *Store) SetBudget(ctx context.Context, month core.Month, amount int64) error {
	if err := core.ValidateBudget(amount); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readBudgetRows(ctx)
	if err != nil {
		return err
	}
	vr := &gsheet.ValueRange{Values: [][]any{{month.String(), amount}}}
	if row, _, ok := findBudget(ctx, rows, month); ok {
		rng := fmt.Sprintf("%s!A%d:B%d", s.budgetsSheet, row, row)
		_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do()
	} else {
		rng := fmt.Sprintf("%s!A:B", s.budgetsSheet)
		_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, vr).
			ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	}
	if err != nil {
		return s.unavailable(ctx, "set budget", err)
	}
	return nil
}

func (s *Store) readExpenseRows(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%s!A%d:D", s.expensesSheet, firstDataRow)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, s.unavailable(ctx, "read expenses", err)
	}
	return resp.Values, nil
}

func (s *Store) readBudgetRows(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%s!A%d:B", s.budgetsSheet, firstDataRow)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, s.unavailable(ctx, "read budgets", err)
	}
	return resp.Values, nil
}

// sheetID resolves the numeric id of a tab, needed by DeleteDimension. Caller holds s.mu.
func (s *Store) sheetID(ctx context.Context, title string) (int64, error) {
	if id, ok := s.sheetIDs[title]; ok {
		return id, nil
	}
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, s.unavailable(ctx, "read spreadsheet metadata", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			s.sheetIDs[title] = sh.Properties.SheetId
			return sh.Properties.SheetId, nil
		}
	}
	return 0, core.Unavailable("read spreadsheet metadata", fmt.Errorf("sheet %q not found", title))
}

func (s *Store) unavailable(ctx context.Context, op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		slog.ErrorContext(ctx, "Google Sheets request failed",
			"operation", op, "status", gerr.Code, "message", gerr.Message)
	} else {
		slog.ErrorContext(ctx, "Google Sheets request failed", "operation", op, "error", err)
	}
	return core.Unavailable(op, err)
}

func deleteRowRequests(sheetID int64, rows []int64) []*gsheet.Request {
	sorted := slices.Clone(rows)
	slices.SortFunc(sorted, func(a, b int64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})
	reqs := make([]*gsheet.Request, 0, len(sorted))
	for _, row := range sorted {
		reqs = append(reqs, &gsheet.Request{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      row - 1,
					EndIndex:        row,
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		})
	}
	return reqs
}

func findBudget(ctx context.Context, rows [][]any, month core.Month) (row int64, amount int64, ok bool) {
	key := month.String()
	for i, r := range rows {
		if len(r) < 2 || cellString(r[0]) != key {
			continue
		}
		v, err := cellInt(r[1])
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed budget row", "row", i+firstDataRow, "error", err)
			continue
		}
		return int64(i + firstDataRow), v, true
	}
	return 0, 0, false
}
