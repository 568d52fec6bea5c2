package google

import (
	"strings"
	"testing"

	"expenses/internal/core"

	gsheet "google.golang.org/api/sheets/v4"
)

func TestFindRowByID(t *testing.T) {
	values := [][]any{
		{"ID", "Name", "Amount", "Date"},
		{"3", "Coffee", 4.5, "2024-01-05"},
		{},
		{float64(7), "Rent", 1200, "2024-01-01"},
		{" 12 ", "Lunch", 9.9, "2024-02-01"},
	}

	tests := []struct {
		id      int64
		wantRow int
		wantOK  bool
	}{
		{3, 2, true},
		{7, 4, true},
		{12, 5, true},
		{99, 0, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		row, ok := findRowByID(values, tt.id)
		if row != tt.wantRow || ok != tt.wantOK {
			t.Errorf("findRowByID(%d) = (%d, %v), want (%d, %v)", tt.id, row, ok, tt.wantRow, tt.wantOK)
		}
	}
}

func TestCellInt64(t *testing.T) {
	if _, ok := cellInt64(7.5); ok {
		t.Error("fractional numbers are not ids")
	}
	if _, ok := cellInt64("ID"); ok {
		t.Error("header text is not an id")
	}
	if v, ok := cellInt64(int64(42)); !ok || v != 42 {
		t.Errorf("cellInt64(int64(42)) = (%d, %v)", v, ok)
	}
}

func TestExpenseRow(t *testing.T) {
	row := expenseRow(core.Expense{ID: 5, Name: "Refund", Amount: core.Money{Cents: -1999}, Date: "2024-03-01"})
	if len(row) != len(expenseHeader()) {
		t.Fatalf("row has %d cells, header has %d", len(row), len(expenseHeader()))
	}
	if row[0] != int64(5) || row[1] != "Refund" || row[2] != -19.99 || row[3] != "2024-03-01" {
		t.Errorf("expenseRow() = %v", row)
	}
}

func TestTotalsRows(t *testing.T) {
	rows := totalsRows(core.MonthlyTotals{
		{Month: "2024-01", Total: core.Money{Cents: 120450}},
		{Month: "2024-02", Total: core.Money{Cents: 475}},
	})
	if len(rows) != 3 {
		t.Fatalf("totalsRows() returned %d rows, want 3", len(rows))
	}
	if rows[0][0] != "Month" || rows[0][1] != "Total" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "2024-01" || rows[1][1] != 1204.5 {
		t.Errorf("first month = %v", rows[1])
	}
	if rows[2][0] != "2024-02" || rows[2][1] != 4.75 {
		t.Errorf("second month = %v", rows[2])
	}

	if got := totalsRows(nil); len(got) != 1 {
		t.Errorf("empty report should keep the header, got %v", got)
	}
}

func TestA1(t *testing.T) {
	tests := map[string]string{
		"Expenses":       "'Expenses'!A:D",
		"Monthly Totals": "'Monthly Totals'!A:D",
		"Bob's":          "'Bob''s'!A:D",
	}
	for sheet, want := range tests {
		if got := a1(sheet, "A:D"); got != want {
			t.Errorf("a1(%q) = %q, want %q", sheet, got, want)
		}
	}
}

func TestSheetIDByTitle(t *testing.T) {
	ss := &gsheet.Spreadsheet{Sheets: []*gsheet.Sheet{
		{Properties: &gsheet.SheetProperties{SheetId: 0, Title: "Expenses"}},
		{},
		{Properties: &gsheet.SheetProperties{SheetId: 918, Title: "Monthly Totals"}},
	}}

	if id, ok := sheetIDByTitle(ss, "Monthly Totals"); !ok || id != 918 {
		t.Errorf("sheetIDByTitle(Monthly Totals) = %d, %v", id, ok)
	}
	if id, ok := sheetIDByTitle(ss, "Expenses"); !ok || id != 0 {
		t.Errorf("sheetIDByTitle(Expenses) = %d, %v", id, ok)
	}
	if _, ok := sheetIDByTitle(ss, "Missing"); ok {
		t.Error("unknown tab should not match")
	}
	if _, ok := sheetIDByTitle(nil, "Expenses"); ok {
		t.Error("nil spreadsheet should not match")
	}
}

func TestRowRange(t *testing.T) {
	r := rowRange(0, 3)
	if r.StartIndex != 2 || r.EndIndex != 3 || r.Dimension != "ROWS" {
		t.Errorf("rowRange(0, 3) = %+v", r)
	}

	body, err := r.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if got := string(body); !strings.Contains(got, `"sheetId":0`) {
		t.Errorf("first tab id must be sent, got %s", got)
	}
}
