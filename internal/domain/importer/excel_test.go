package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, cells := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &cells))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseXLSX_FirstSheet(t *testing.T) {
	buf := buildWorkbook(t, "Sheet1", [][]any{
		{"Date", "Description", "Amount", "Category"},
		{"2025-06-01", "NETFLIX.COM", "-15.99", "Subscriptions"},
		{"2025-06-02", "Payroll Deposit", "2000.00", "Income"},
	})

	records, errs, err := ParseXLSX(buf)
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, records, 2)

	assert.Equal(t, int64(-1599), records[0].AmountMinor)
	assert.Equal(t, "Subscriptions", records[0].Category)
	assert.Equal(t, int64(200000), records[1].AmountMinor)
}

func TestParseXLSX_PrefersTransactionsSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	// Decoy data on the default sheet, real data on "Transactions".
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Notes"}))
	_, err := f.NewSheet("Transactions")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Transactions", "A1", &[]any{"Date", "Description", "Amount"}))
	require.NoError(t, f.SetSheetRow("Transactions", "A2", &[]any{"2025-06-01", "Coffee", "-4.50"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	records, errs, parseErr := ParseXLSX(buf)
	require.NoError(t, parseErr)
	assert.Empty(t, errs)
	require.Len(t, records, 1)
	assert.Equal(t, "Coffee", records[0].Description)
}

func TestParseXLSX_DebitCreditAndRowErrors(t *testing.T) {
	buf := buildWorkbook(t, "Sheet1", [][]any{
		{"Date", "Description", "Debit", "Credit"},
		{"2025-06-01", "Coffee Shop", "4.50", ""},
		{"2025-06-02", "Refund", "", "12.00"},
		{"2025-06-03", "Broken", "oops", ""},
	})

	records, errs, err := ParseXLSX(buf)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, int64(-450), records[0].AmountMinor)
	assert.Equal(t, int64(1200), records[1].AmountMinor)

	require.Len(t, errs, 1)
	assert.Equal(t, 4, errs[0].Row)
	assert.Equal(t, "debit", errs[0].Column)
}

func TestParseXLSX_NoDateColumnIsFileError(t *testing.T) {
	buf := buildWorkbook(t, "Sheet1", [][]any{
		{"Foo", "Bar"},
		{"a", "b"},
	})

	_, _, err := ParseXLSX(buf)
	require.Error(t, err)
}
