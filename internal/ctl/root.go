// Package ctl implements ledgerctl, the command-line twin of the dashboard.
package ctl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"assetguard/internal/core"
	"assetguard/internal/engine"

	"github.com/spf13/cobra"
)

// Ledger is the mutation and read surface the commands use. *services.LedgerService implements it.
type Ledger interface {
	AddExpense(ctx context.Context, date core.Date, item string, amount int64) (int64, error)
	DeleteExpenses(ctx context.Context, ids []int64) error
	ListExpenses(ctx context.Context, month core.Month) ([]core.ExpenseRecord, error)
	GetBudget(ctx context.Context, month core.Month) (int64, error)
	SetBudget(ctx context.Context, month core.Month, amount int64) error
}

type Summarizer interface {
	ComputeSummary(ctx context.Context, month core.Month, supportsRollover bool) (engine.Summary, error)
}

type PriceSource interface {
	Prices(ctx context.Context) (map[string]core.Quote, error)
}

// Deps are built lazily so --help works without a reachable store.
type Deps struct {
	Ledger     Ledger
	Engine     Summarizer
	Prices     PriceSource
	Projection engine.ProjectionConfig
	Rollover   bool
	Offline    bool
	Now        func() time.Time
}

// Loader builds Deps and returns a function releasing them.
type Loader func(ctx context.Context) (*Deps, func() error, error)

type runtime struct {
	load    Loader
	deps    *Deps
	closeFn func() error

	month    string
	jsonOut  bool
	rollover string
}

// NewRootCmd builds the ledgerctl command tree.
func NewRootCmd(load Loader) *cobra.Command {
	rt := &runtime{load: load}

	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Monthly expense ledger and opportunity-cost projections",
		Long:          "Record expenses, manage monthly budgets and see what the money would have become invested.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipsLedger(cmd) {
				return nil
			}
			deps, closeFn, err := rt.load(cmd.Context())
			if err != nil {
				return err
			}
			rt.deps, rt.closeFn = deps, closeFn
			if rt.deps.Now == nil {
				rt.deps.Now = time.Now
			}
			if deps.Offline {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: ledger storage is unreachable, showing an empty read-only ledger")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&rt.month, "month", "m", "", "Month as YYYY-MM (default: current month)")
	root.PersistentFlags().BoolVar(&rt.jsonOut, "json", false, "Print JSON instead of tables")

	root.AddCommand(
		newAddCmd(rt),
		newListCmd(rt),
		newDeleteCmd(rt),
		newBudgetCmd(rt),
		newSummaryCmd(rt),
		newProjectionsCmd(rt),
	)
	rt.releaseAfterRun(root)
	return root
}

// releaseAfterRun wraps every RunE so the loaded deps are closed whether the
// command succeeds or fails. A close error is reported only when the command succeeded.
func (rt *runtime) releaseAfterRun(cmd *cobra.Command) {
	for _, c := range cmd.Commands() {
		rt.releaseAfterRun(c)
	}
	if cmd.RunE == nil {
		return
	}
	run := cmd.RunE
	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if cerr := rt.release(); err == nil {
				err = cerr
			}
		}()
		return run(cmd, args)
	}
}

func (rt *runtime) release() error {
	closeFn := rt.closeFn
	rt.closeFn = nil
	if closeFn == nil {
		return nil
	}
	return closeFn()
}

func skipsLedger(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}

// viewMonth resolves --month, defaulting to the current month.
func (rt *runtime) viewMonth() (core.Month, error) {
	if strings.TrimSpace(rt.month) == "" {
		return core.MonthOf(rt.deps.Now()), nil
	}
	return core.ParseMonth(rt.month)
}

// useRollover resolves --rollover, defaulting to the configured value.
func (rt *runtime) useRollover() (bool, error) {
	if rt.rollover == "" {
		return rt.deps.Rollover, nil
	}
	b, err := strconv.ParseBool(rt.rollover)
	if err != nil {
		return false, core.Invalid("rollover", "rollover must be true or false")
	}
	return b, nil
}

func parseIDArgs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, core.Invalid("ids", fmt.Sprintf("%q is not an expense id", a))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
