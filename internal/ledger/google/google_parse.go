package google

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"assetguard/internal/core"
)

// Row 1 holds the headers.
const firstDataRow = 2

var sheetsEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

func expenseRow(rec core.ExpenseRecord) []any {
	return []any{rec.Date.String(), rec.Item, rec.Amount, rec.Month.String()}
}

// parseExpenseRow turns a raw `date | item | amount | month` row into a typed record.
// The month column is authoritative when present; otherwise it is derived from the date.
func parseExpenseRow(id int64, row []any) (core.ExpenseRecord, error) {
	if len(row) < 3 {
		return core.ExpenseRecord{}, fmt.Errorf("expected at least 3 columns, got %d", len(row))
	}
	date, err := cellDate(row[0])
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	amount, err := cellInt(row[2])
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("amount: %w", err)
	}
	rec := core.ExpenseRecord{
		ID:     id,
		Date:   date,
		Item:   cellString(row[1]),
		Amount: amount,
		Month:  date.Month(),
	}
	if len(row) >= 4 && cellString(row[3]) != "" {
		m, err := core.ParseMonth(cellString(row[3]))
		if err != nil {
			return core.ExpenseRecord{}, err
		}
		rec.Month = m
	}
	if err := core.ValidateAmount(rec.Amount); err != nil {
		return core.ExpenseRecord{}, err
	}
	return rec, nil
}

// parseRowNumber extracts the first row number of an A1 range such as "Expenses!A7:D7".
func parseRowNumber(a1 string) (int64, error) {
	ref := a1
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		ref = ref[i+1:]
	}
	if i := strings.Index(ref, ":"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.TrimLeft(ref, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz$")
	n, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unexpected range %q", a1)
	}
	return n, nil
}

// cellDate accepts the ISO string written by AppendExpense and, for rows typed in the
// sheet UI, the serial day number Sheets returns for date-formatted cells.
func cellDate(v any) (core.Date, error) {
	if serial, ok := v.(float64); ok {
		t := sheetsEpoch.AddDate(0, 0, int(serial))
		return core.DateOf(t), nil
	}
	return core.ParseDate(cellString(v))
}

func isBlankRow(row []any) bool {
	for _, c := range row {
		if cellString(c) != "" {
			return false
		}
	}
	return true
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// cellInt reads a whole-yen amount. Unformatted numbers arrive as float64,
// hand-typed cells may still be strings with separators.
func cellInt(v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		return int64(math.Round(x)), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		return int64(math.Round(f)), nil
	default:
		return 0, fmt.Errorf("unsupported cell type %T", v)
	}
}
