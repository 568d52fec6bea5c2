package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"expenses/internal/services"
)

// NewInitCommand creates the init command.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the expense store if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, svc *services.ExpenseService) (any, error) {
				return MessageResult{Message: "Expense store ready."}, nil
			})
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME AMOUNT DATE",
		Short: "Record an expense",
		Long: `Record an expense and print the updated listing.

DATE is YYYY-MM-DD. Negative amounts record refunds; put "--" before the
arguments so the sign is not read as a flag.

Example:
  expenses add Coffee 4.50 2024-01-05
  expenses add -- Refund -19.99 2024-03-01`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, svc *services.ExpenseService) (any, error) {
				return addExpense(ctx, svc, args[0], args[1], args[2], false)
			})
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all expenses",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, svc *services.ExpenseService) (any, error) {
				return listExpenses(ctx, svc, false)
			})
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an expense by its id",
		Long:  "Delete an expense by the id shown in the listing. Unknown ids are ignored.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, svc *services.ExpenseService) (any, error) {
				id, err := parseID(args[0])
				if err != nil {
					return nil, err
				}
				return deleteExpense(ctx, svc, id, false)
			})
		},
	}
}

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	Yes bool
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, svc *services.ExpenseService) (any, error) {
				if !opts.Yes {
					return nil, newUsageError("refusing to clear expense history without --yes")
				}
				return clearExpenses(ctx, svc, false)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm deleting all expenses")

	return cmd
}

// TotalsOptions holds flags for the totals command.
type TotalsOptions struct {
	*RootOptions
	Sorted bool
}

// NewTotalsCommand creates the totals command.
func NewTotalsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TotalsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Show the total spent per month",
		Long: `Show the total spent per month.

Months appear in the order they first occur in the listing unless --sorted
is given. A single expense with a malformed date makes the report fail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, svc *services.ExpenseService) (any, error) {
				return monthlyTotals(ctx, svc, opts.Sorted)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Sorted, "sorted", false, "order months chronologically")

	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, newUsageError("invalid expense id %q", s)
	}
	return id, nil
}

func listExpenses(ctx context.Context, svc *services.ExpenseService, numbered bool) (ListResult, error) {
	expenses, err := svc.ListExpenses(ctx)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Expenses: newExpenseViews(expenses), Numbered: numbered}, nil
}

func addExpense(ctx context.Context, svc *services.ExpenseService, name, amount, date string, numbered bool) (MutationResult, error) {
	created, err := svc.AddExpense(ctx, name, amount, date)
	if err != nil {
		return MutationResult{}, err
	}
	listing, err := listExpenses(ctx, svc, numbered)
	if err != nil {
		return MutationResult{}, err
	}
	view := newExpenseView(created)
	return MutationResult{Action: "add", Added: &view, Expenses: listing.Expenses, Numbered: numbered}, nil
}

func deleteExpense(ctx context.Context, svc *services.ExpenseService, id int64, numbered bool) (MutationResult, error) {
	if err := svc.DeleteExpense(ctx, id); err != nil {
		return MutationResult{}, err
	}
	listing, err := listExpenses(ctx, svc, numbered)
	if err != nil {
		return MutationResult{}, err
	}
	return MutationResult{Action: "delete", Deleted: id, Expenses: listing.Expenses, Numbered: numbered}, nil
}

func clearExpenses(ctx context.Context, svc *services.ExpenseService, numbered bool) (MutationResult, error) {
	if err := svc.ClearExpenses(ctx); err != nil {
		return MutationResult{}, err
	}
	return MutationResult{Action: "clear", Expenses: []ExpenseView{}, Numbered: numbered}, nil
}

func monthlyTotals(ctx context.Context, svc *services.ExpenseService, sorted bool) (TotalsResult, error) {
	totals, err := svc.MonthlyTotals(ctx)
	if err != nil {
		return TotalsResult{}, err
	}
	if sorted {
		totals = totals.Sorted()
	}
	return newTotalsResult(totals), nil
}
