package google

import (
	"fmt"
	"strconv"
	"strings"

	"expenses/internal/core"

	gsheet "google.golang.org/api/sheets/v4"
)

func expenseHeader() []any {
	return []any{"ID", "Name", "Amount", "Date"}
}

// expenseRow lays out one expense as columns A:D.
func expenseRow(e core.Expense) []any {
	return []any{e.ID, e.Name, e.Amount.Float(), e.Date}
}

// totalsRows renders the monthly report including its header.
func totalsRows(t core.MonthlyTotals) [][]any {
	rows := make([][]any, 0, len(t)+1)
	rows = append(rows, []any{"Month", "Total"})
	for _, mt := range t {
		rows = append(rows, []any{mt.Month, mt.Total.Float()})
	}
	return rows
}

// findRowByID returns the 1-based sheet row whose first cell equals id.
// Header and blank rows never match.
func findRowByID(values [][]any, id int64) (int, bool) {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if v, ok := cellInt64(row[0]); ok && v == id {
			return i + 1, true
		}
	}
	return 0, false
}

// cellInt64 reads an id cell, which the API may return as a string or a
// number depending on the render option.
func cellInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		if x != float64(int64(x)) {
			return 0, false
		}
		return int64(x), true
	case int64:
		return x, true
	case int:
		return int64(x), true
	default:
		n, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(x)), 10, 64)
		return n, err == nil
	}
}

// sheetIDByTitle finds the tab called title.
func sheetIDByTitle(ss *gsheet.Spreadsheet, title string) (int64, bool) {
	if ss == nil {
		return 0, false
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return sh.Properties.SheetId, true
		}
	}
	return 0, false
}

// rowRange addresses the single 1-based sheet row. The first tab has id 0,
// so the zero values must be sent explicitly.
func rowRange(sheetID int64, row int) *gsheet.DimensionRange {
	return &gsheet.DimensionRange{
		SheetId:         sheetID,
		Dimension:       "ROWS",
		StartIndex:      int64(row - 1),
		EndIndex:        int64(row),
		ForceSendFields: []string{"SheetId", "StartIndex"},
	}
}

// a1 builds an A1 range, quoting the sheet name.
func a1(sheet, rng string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), rng)
}
