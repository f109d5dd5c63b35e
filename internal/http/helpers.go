package http

import (
	"fmt"
	"html/template"

	"assetguard/internal/core"

	"github.com/shopspring/decimal"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"yen":     core.FormatYen,
		"yenDec":  formatYenDecimal,
		"fixed":   func(d decimal.Decimal, places int32) string { return d.StringFixed(places) },
		"percent": formatPercent,
		"yield":   func(d decimal.Decimal) string { return d.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%" },
		"flag":    boolParam,
	}
}

// formatYenDecimal rounds to whole yen before formatting.
func formatYenDecimal(d decimal.Decimal) string {
	return core.FormatYen(d.Round(0).IntPart())
}

// formatPercent renders a [0,1] ratio as a whole percentage.
func formatPercent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}
