package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"expenses/internal/services"
)

const (
	shellPrompt   = "expenses> "
	shellGreeting = "Expense Tracker. Type 'help' for commands."
)

const shellHelp = `Commands:
  add NAME AMOUNT DATE   record an expense (NAME may contain spaces, DATE is YYYY-MM-DD)
  list                   show all expenses with their row numbers
  rm N                   delete the expense on row N of the last listing
  delete ID              delete the expense with id ID
  clear                  delete every expense
  totals [sorted]        show the total spent per month
  help                   show this help
  quit                   leave the shell`

// NewShellCommand creates the interactive shell command.
func NewShellCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Long: `Start an interactive session.

Every change prints the refreshed listing. Rows are numbered; "rm N" deletes
the expense shown on row N, whatever its id. Errors are reported as warnings
and the session continues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			f := opts.formatter(cmd)

			ctx, svc, err := opts.open(ctx)
			if err != nil {
				f.Error(CodeConfiguration, err.Error(), nil)
				return WrapExitError(ExitCommandError, "open expense store", err)
			}
			defer svc.Close()

			return NewShell(svc, f, cmd.InOrStdin()).Run(ctx)
		},
	}
}

// Shell is a line-oriented session over one expense service. It remembers
// the id shown on each row of the last listing so row numbers never stand
// in for ids.
type Shell struct {
	svc  *services.ExpenseService
	out  *OutputFormatter
	in   io.Reader
	rows []int64
}

func NewShell(svc *services.ExpenseService, out *OutputFormatter, in io.Reader) *Shell {
	return &Shell{svc: svc, out: out, in: in}
}

// Run greets, shows the current listing and processes lines until quit or
// end of input.
func (s *Shell) Run(ctx context.Context) error {
	w := s.out.Writer
	fmt.Fprintln(w, shellGreeting)
	s.report(s.list(ctx))

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(w, shellPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(w)
			return scanner.Err()
		}
		if s.Execute(ctx, scanner.Text()) {
			return nil
		}
	}
}

// Execute runs one input line and reports whether the session should end.
func (s *Shell) Execute(ctx context.Context, line string) (quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch verb {
	case "quit", "exit":
		return true
	case "help", "?":
		fmt.Fprintln(s.out.Writer, shellHelp)
	case "list", "ls":
		err = s.list(ctx)
	case "add":
		err = s.add(ctx, args)
	case "rm":
		err = s.removeRow(ctx, args)
	case "delete":
		err = s.deleteByID(ctx, args)
	case "clear":
		err = s.clear(ctx)
	case "totals":
		err = s.totals(ctx, args)
	default:
		err = newUsageError("unknown command %q, type 'help'", verb)
	}
	s.report(err)
	return false
}

func (s *Shell) report(err error) {
	if err == nil {
		return
	}
	code, _, msg := classify(err)
	s.out.Error(code, msg, nil)
}

// show prints a listing and remembers the id on each row.
func (s *Shell) show(result any, rows []ExpenseView) error {
	s.rows = s.rows[:0]
	for _, v := range rows {
		s.rows = append(s.rows, v.ID)
	}
	return s.out.Success(result)
}

func (s *Shell) list(ctx context.Context) error {
	listing, err := listExpenses(ctx, s.svc, true)
	if err != nil {
		return err
	}
	return s.show(listing, listing.Expenses)
}

// add takes the last two words as amount and date; everything before them
// is the name.
func (s *Shell) add(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return newUsageError("All fields are required.")
	}
	n := len(args)
	name := strings.Join(args[:n-2], " ")

	result, err := addExpense(ctx, s.svc, name, args[n-2], args[n-1], true)
	if err != nil {
		return err
	}
	return s.show(result, result.Expenses)
}

func (s *Shell) removeRow(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return newUsageError("Select an expense to delete.")
	}
	row, err := strconv.Atoi(args[0])
	if err != nil || row < 1 || row > len(s.rows) {
		return newUsageError("no row %s in the last listing", args[0])
	}
	return s.delete(ctx, s.rows[row-1])
}

func (s *Shell) deleteByID(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return newUsageError("Select an expense to delete.")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return s.delete(ctx, id)
}

func (s *Shell) delete(ctx context.Context, id int64) error {
	result, err := deleteExpense(ctx, s.svc, id, true)
	if err != nil {
		return err
	}
	return s.show(result, result.Expenses)
}

func (s *Shell) clear(ctx context.Context) error {
	result, err := clearExpenses(ctx, s.svc, true)
	if err != nil {
		return err
	}
	return s.show(result, result.Expenses)
}

func (s *Shell) totals(ctx context.Context, args []string) error {
	sorted := len(args) > 0 && strings.TrimLeft(strings.ToLower(args[0]), "-") == "sorted"
	result, err := monthlyTotals(ctx, s.svc, sorted)
	if err != nil {
		return err
	}
	return s.out.Success(result)
}
