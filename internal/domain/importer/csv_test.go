package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finpulse/finpulse/internal/domain/transactions"
)

func TestParseCSV_SignedAmountColumn(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Amount,Category",
		"2025-06-01,NETFLIX.COM,-15.99,Subscriptions",
		"2025-06-02,Payroll Deposit,2000.00,Income",
	}, "\n")

	records, errs, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, records, 2)

	assert.Equal(t, int64(-1599), records[0].AmountMinor)
	assert.Equal(t, "NETFLIX.COM", records[0].Description)
	assert.Equal(t, "Subscriptions", records[0].Category)
	assert.Equal(t, transactions.SourceImport, records[0].Source)
	assert.Equal(t, int64(200000), records[1].AmountMinor)
}

func TestParseCSV_DebitCreditColumns(t *testing.T) {
	input := strings.Join([]string{
		"date,description,debit,credit",
		"06/01/2025,Coffee Shop,4.50,",
		"06/02/2025,Refund,,12.00",
	}, "\n")

	records, errs, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, records, 2)

	assert.Equal(t, int64(-450), records[0].AmountMinor, "debit column is money out")
	assert.Equal(t, int64(1200), records[1].AmountMinor, "credit column is money in")
}

func TestParseCSV_RowErrorsAreCollectedNotFatal(t *testing.T) {
	input := strings.Join([]string{
		"date,description,amount",
		"2025-06-01,Groceries,82.10",
		"2025-06-02,Broken Row,not-a-number",
		",Missing Date,10.00",
		"2025-06-04,Coffee,4.50",
	}, "\n")

	records, errs, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "Groceries", records[0].Description)
	assert.Equal(t, "Coffee", records[1].Description)

	require.Len(t, errs, 2)
	assert.Equal(t, 3, errs[0].Row)
	assert.Equal(t, "amount", errs[0].Column)
	assert.Equal(t, 4, errs[1].Row)
	assert.Equal(t, "date", errs[1].Column)
}

func TestParseCSV_OptionalColumns(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Merchant,Amount,Type,Currency,Reference",
		"2025-06-01,POS NETFLIX 4512,Netflix,15.99,expense,usd,ext-001",
	}, "\n")

	records, errs, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Netflix", rec.MerchantName)
	assert.Equal(t, "expense", rec.Type)
	assert.Equal(t, "USD", rec.CurrencyCode)
	assert.Equal(t, "ext-001", rec.ExternalID)
}

func TestParseCSV_BlankRowsSkippedSilently(t *testing.T) {
	input := strings.Join([]string{
		"date,description,amount",
		"2025-06-01,Groceries,82.10",
		",,",
	}, "\n")

	records, errs, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Len(t, records, 1)
}

func TestParseAmountMinor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain", input: "12.34", want: 1234},
		{name: "negative", input: "-12.34", want: -1234},
		{name: "parentheses negative", input: "(12.34)", want: -1234},
		{name: "thousands separator", input: "1,234.56", want: 123456},
		{name: "currency symbol", input: "$99.00", want: 9900},
		{name: "whole number", input: "15", want: 1500},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmountMinor(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
