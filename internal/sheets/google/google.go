package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"expenses/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var errNoService = errors.New("sheets service not initialized")

// Config selects the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	TotalsSheetName    string
	ServiceAccountFile string
	ServiceAccountJSON string
}

// Client mirrors the expense table and the monthly report into a
// spreadsheet. The store stays authoritative; the mirror is write-only.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesSheet string
	totalsSheet   string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	creds, err := loadCredentials(cfg.ServiceAccountJSON, cfg.ServiceAccountFile)
	if err != nil {
		return nil, err
	}

	opts = append([]goption.ClientOption{
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, opts...)

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", cfg.SpreadsheetID,
		"sheet", cfg.SheetName,
		"totals_sheet", cfg.TotalsSheetName)

	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName, cfg.TotalsSheetName), nil
}

// NewWithService wraps an already configured Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, expensesSheet, totalsSheet string) *Client {
	if expensesSheet == "" {
		expensesSheet = "Expenses"
	}
	if totalsSheet == "" {
		totalsSheet = "Monthly Totals"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		expensesSheet: expensesSheet,
		totalsSheet:   totalsSheet,
	}
}

func loadCredentials(inline, file string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	file = strings.TrimSpace(file)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendExpense adds one row at the end of the expenses tab.
func (c *Client) AppendExpense(ctx context.Context, e core.Expense) error {
	if c.svc == nil {
		return errNoService
	}

	rng := a1(c.expensesSheet, "A:D")
	vr := &gsheet.ValueRange{Values: [][]any{expenseRow(e)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append expense %d to %s: %w", e.ID, c.expensesSheet, err)
	}

	slog.DebugContext(ctx, "Expense appended to sheet", "id", e.ID, "sheet", c.expensesSheet)
	return nil
}

// DeleteExpense removes the row whose column A holds id, shifting the rows
// below it up so later appends land after the last expense. A missing row
// is not an error.
func (c *Client) DeleteExpense(ctx context.Context, id int64) error {
	if c.svc == nil {
		return errNoService
	}

	rng := a1(c.expensesSheet, "A:A")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}

	row, ok := findRowByID(resp.Values, id)
	if !ok {
		slog.DebugContext(ctx, "Expense not present in sheet", "id", id, "sheet", c.expensesSheet)
		return nil
	}

	sheetID, err := c.sheetID(ctx, c.expensesSheet)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{DeleteDimension: &gsheet.DeleteDimensionRequest{Range: rowRange(sheetID, row)}}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d of %s: %w", row, c.expensesSheet, err)
	}

	slog.DebugContext(ctx, "Expense removed from sheet", "id", id, "row", row)
	return nil
}

// sheetID resolves a tab title to the numeric id batch updates address.
func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet properties: %w", err)
	}
	id, ok := sheetIDByTitle(ss, title)
	if !ok {
		return 0, fmt.Errorf("sheet %q not found in spreadsheet %s", title, c.spreadsheetID)
	}
	return id, nil
}

// ClearExpenses leaves only the header row on the expenses tab.
func (c *Client) ClearExpenses(ctx context.Context) error {
	return c.ReplaceAll(ctx, nil)
}

// ReplaceAll rewrites the expenses tab from a full store snapshot.
func (c *Client) ReplaceAll(ctx context.Context, expenses []core.Expense) error {
	rows := make([][]any, 0, len(expenses)+1)
	rows = append(rows, expenseHeader())
	for _, e := range expenses {
		rows = append(rows, expenseRow(e))
	}
	if err := c.rewrite(ctx, c.expensesSheet, "A:D", rows); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expenses sheet rebuilt", "count", len(expenses))
	return nil
}

// WriteMonthlyTotals rewrites the totals tab.
func (c *Client) WriteMonthlyTotals(ctx context.Context, totals core.MonthlyTotals) error {
	return c.rewrite(ctx, c.totalsSheet, "A:B", totalsRows(totals))
}

func (c *Client) rewrite(ctx context.Context, sheet, cols string, rows [][]any) error {
	if c.svc == nil {
		return errNoService
	}

	clearRange := a1(sheet, cols)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	target := a1(sheet, "A1")
	vr := &gsheet.ValueRange{Values: rows}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, target, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}
