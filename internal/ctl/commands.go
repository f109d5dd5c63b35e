package ctl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"assetguard/internal/core"
	"assetguard/internal/engine"
	"assetguard/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newAddCmd(rt *runtime) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:     "add ITEM AMOUNT",
		Short:   "Record an expense",
		Example: "  ledgerctl add taxi 1,200 --date 2025-01-15",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := core.DateOf(rt.deps.Now())
			if date != "" {
				parsed, err := core.ParseDate(date)
				if err != nil {
					return err
				}
				d = parsed
			}
			amount, err := core.ParseAmount(args[1])
			if err != nil {
				return err
			}
			id, err := rt.deps.Ledger.AddExpense(cmd.Context(), d, args[0], amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added #%d %s %s on %s\n", id, args[0], core.FormatYen(amount), d)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Expense date as YYYY-MM-DD (default: today)")
	return cmd
}

func newListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the expenses of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			month, err := rt.viewMonth()
			if err != nil {
				return err
			}
			recs, err := rt.deps.Ledger.ListExpenses(cmd.Context(), month)
			if err != nil {
				return err
			}
			if rt.jsonOut {
				out := make([]expenseOutput, 0, len(recs))
				for _, r := range recs {
					out = append(out, expenseOutput{ID: r.ID, Date: r.Date.String(), Item: r.Item, Amount: r.Amount})
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}
			if len(recs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no expenses in %s\n", month)
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "ID\tDATE\tITEM\tAMOUNT\t")
			for _, r := range recs {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", r.ID, r.Date, r.Item, core.FormatYen(r.Amount))
			}
			fmt.Fprintf(tw, "\t\tTOTAL\t%s\t\n", core.FormatYen(ledger.TotalSpent(recs)))
			return tw.Flush()
		},
	}
}

func newDeleteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete expenses by id in one batch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDArgs(args)
			if err != nil {
				return err
			}
			if err := rt.deps.Ledger.DeleteExpenses(cmd.Context(), ids); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expense(s)\n", len(ids))
			return nil
		},
	}
}

func newBudgetCmd(rt *runtime) *cobra.Command {
	budget := &cobra.Command{
		Use:   "budget",
		Short: "Show or change a month's budget",
	}
	budget.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the budget of a month",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				month, err := rt.viewMonth()
				if err != nil {
					return err
				}
				amount, err := rt.deps.Ledger.GetBudget(cmd.Context(), month)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", month, core.FormatYen(amount))
				return nil
			},
		},
		&cobra.Command{
			Use:   "set AMOUNT",
			Short: "Set the budget of a month",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				month, err := rt.viewMonth()
				if err != nil {
					return err
				}
				amount, err := core.ParseBudget(args[0])
				if err != nil {
					return err
				}
				if err := rt.deps.Ledger.SetBudget(cmd.Context(), month, amount); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "budget for %s set to %s\n", month, core.FormatYen(amount))
				return nil
			},
		},
	)
	return budget
}

type expenseOutput struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Item   string `json:"item"`
	Amount int64  `json:"amount"`
}

type summaryOutput struct {
	Month       string  `json:"month"`
	Budget      int64   `json:"budget"`
	Rollover    int64   `json:"rollover"`
	FinalBudget int64   `json:"final_budget"`
	TotalSpent  int64   `json:"total_spent"`
	Remaining   int64   `json:"remaining"`
	Progress    float64 `json:"progress"`
	Overspent   bool    `json:"overspent"`
}

func newSummaryCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Budget, rollover and remaining balance of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			month, err := rt.viewMonth()
			if err != nil {
				return err
			}
			rollover, err := rt.useRollover()
			if err != nil {
				return err
			}
			sum, err := rt.deps.Engine.ComputeSummary(cmd.Context(), month, rollover)
			if err != nil {
				return err
			}
			if rt.jsonOut {
				return writeJSON(cmd.OutOrStdout(), summaryOutput{
					Month:       sum.Month.String(),
					Budget:      sum.Budget,
					Rollover:    sum.Rollover,
					FinalBudget: sum.FinalBudget,
					TotalSpent:  sum.TotalSpent,
					Remaining:   sum.Remaining,
					Progress:    sum.Progress,
					Overspent:   sum.Overspent(),
				})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Month\t%s\n", sum.Month)
			fmt.Fprintf(tw, "Budget\t%s\n", core.FormatYen(sum.Budget))
			if rollover {
				fmt.Fprintf(tw, "Rollover\t%s\n", core.FormatYen(sum.Rollover))
			}
			fmt.Fprintf(tw, "Final budget\t%s\n", core.FormatYen(sum.FinalBudget))
			fmt.Fprintf(tw, "Spent\t%s (%.0f%%)\n", core.FormatYen(sum.TotalSpent), sum.Progress*100)
			fmt.Fprintf(tw, "Remaining\t%s\n", core.FormatYen(sum.Remaining))
			if err := tw.Flush(); err != nil {
				return err
			}
			if sum.Overspent() {
				fmt.Fprintln(cmd.OutOrStdout(), "WARNING: over budget")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rt.rollover, "rollover", "", "Carry the previous month's balance (true/false, default from ROLLOVER_ENABLED)")
	return cmd
}

func newProjectionsCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projections",
		Short: "What this month's spending would have bought or become",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			month, err := rt.viewMonth()
			if err != nil {
				return err
			}
			recs, err := rt.deps.Ledger.ListExpenses(cmd.Context(), month)
			if err != nil {
				return err
			}
			total := ledger.TotalSpent(recs)
			if total <= 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no spending in %s, nothing to project\n", month)
				return nil
			}
			prices, err := rt.deps.Prices.Prices(cmd.Context())
			if err != nil {
				return err
			}
			proj, err := engine.ComputeProjections(total, prices, rt.deps.Projection)
			if err != nil {
				return err
			}
			if rt.jsonOut {
				return writeJSON(cmd.OutOrStdout(), toProjectionOutput(month, proj))
			}
			return writeProjection(cmd.OutOrStdout(), month, proj)
		},
	}
	return cmd
}

func writeProjection(w io.Writer, month core.Month, p engine.Projection) error {
	fmt.Fprintf(w, "Spent in %s: %s\n\n", month, core.FormatYen(p.TotalSpent))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tSHARES LOST\tPRICE\tSOURCE")
	for _, sl := range p.ShareLosses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", sl.Symbol, sl.Shares.StringFixed(2), yenOf(sl.Price), sl.Source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if inc := p.Income; inc != nil {
		fmt.Fprintf(w, "\n%s (%s) would pay %s a month at %s%% yield [%s]\n",
			inc.Name, inc.Symbol, yenOf(inc.Monthly), inc.AnnualYield.Shift(2).StringFixed(2), inc.Source)
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "YEARS\tBASELINE\tGROWTH\tMULTIPLE")
	for _, fv := range p.FutureValues {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%sx\n", fv.Years, yenOf(fv.Baseline), yenOf(fv.Growth), fv.Multiple.StringFixed(1))
	}
	return tw.Flush()
}

type (
	shareLossOutput struct {
		Symbol string  `json:"symbol"`
		Shares float64 `json:"shares"`
		Source string  `json:"source"`
	}

	futureValueOutput struct {
		Years    int     `json:"years"`
		Baseline int64   `json:"baseline"`
		Growth   int64   `json:"growth"`
		Multiple float64 `json:"multiple"`
	}

	projectionOutput struct {
		Month         string              `json:"month"`
		TotalSpent    int64               `json:"total_spent"`
		ShareLosses   []shareLossOutput   `json:"share_losses"`
		MonthlyIncome float64             `json:"monthly_income"`
		FutureValues  []futureValueOutput `json:"future_values"`
	}
)

func toProjectionOutput(month core.Month, p engine.Projection) projectionOutput {
	out := projectionOutput{Month: month.String(), TotalSpent: p.TotalSpent}
	for _, sl := range p.ShareLosses {
		out.ShareLosses = append(out.ShareLosses, shareLossOutput{
			Symbol: sl.Symbol,
			Shares: sl.Shares.Round(2).InexactFloat64(),
			Source: string(sl.Source),
		})
	}
	if p.Income != nil {
		out.MonthlyIncome = p.Income.Monthly.Round(2).InexactFloat64()
	}
	for _, fv := range p.FutureValues {
		out.FutureValues = append(out.FutureValues, futureValueOutput{
			Years:    fv.Years,
			Baseline: fv.Baseline.Round(0).IntPart(),
			Growth:   fv.Growth.Round(0).IntPart(),
			Multiple: fv.Multiple.Round(1).InexactFloat64(),
		})
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Exit codes distinguish rejected input from infrastructure failures in scripts.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitInput   = 2
	ExitStorage = 3
)

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, core.ErrInvalidInput):
		return ExitInput
	case errors.Is(err, core.ErrStorageUnavailable):
		return ExitStorage
	default:
		return ExitFailure
	}
}

func yenOf(d decimal.Decimal) string {
	return core.FormatYen(d.Round(0).IntPart())
}
