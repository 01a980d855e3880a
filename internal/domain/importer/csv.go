// Package importer turns bank-export files (CSV, XLSX) into raw records the
// transaction normalizer accepts. Row-level problems are collected per row
// instead of aborting the file.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/finpulse/finpulse/internal/domain/transactions"
)

func init() {
	// Banks capitalize headers inconsistently; fold before tag matching.
	gocsv.SetHeaderNormalizer(func(h string) string {
		return strings.ToLower(strings.TrimSpace(h))
	})
}

// row is one CSV line. gocsv matches tags against the header row, so the
// same struct absorbs the common column-name variants banks use.
type row struct {
	Date     string `csv:"date"`
	PostDate string `csv:"posting date"`
	TxnDate  string `csv:"transaction date"`

	Description string `csv:"description"`
	Merchant    string `csv:"merchant"`
	Payee       string `csv:"payee"`
	Memo        string `csv:"memo"`
	Details     string `csv:"details"`

	Amount string `csv:"amount"`
	Value  string `csv:"value"`

	Debit  string `csv:"debit"`
	Credit string `csv:"credit"`

	Category string `csv:"category"`
	Type     string `csv:"type"`

	Currency    string `csv:"currency"`
	ReferenceID string `csv:"reference"`
	ID          string `csv:"id"`
}

// ParseError is one unusable row. The rest of the file still imports.
type ParseError struct {
	Row     int
	Column  string
	Message string
	RawData string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("row %d, column %s: %s", e.Row, e.Column, e.Message)
}

// ParseCSV reads the whole file and returns the importable records plus the
// per-row errors. A file-level failure (unreadable input, no header) is the
// returned error; row failures are not.
func ParseCSV(r io.Reader) ([]transactions.RawRecord, []ParseError, error) {
	var rows []row
	if err := gocsv.UnmarshalCSV(lazyCSVReader(r), &rows); err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	records := make([]transactions.RawRecord, 0, len(rows))
	var errs []ParseError
	for i, rw := range rows {
		rowNum := i + 2 // header is row 1

		rec, perr := convertRow(rw, rowNum)
		if perr != nil {
			errs = append(errs, *perr)
			continue
		}
		if rec == nil {
			continue // blank filler row
		}
		records = append(records, *rec)
	}
	return records, errs, nil
}

func lazyCSVReader(r io.Reader) gocsv.CSVReader {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	return cr
}

func convertRow(rw row, rowNum int) (*transactions.RawRecord, *ParseError) {
	rawDate := coalesce(rw.Date, rw.PostDate, rw.TxnDate)
	desc := coalesce(rw.Description, rw.Payee, rw.Memo, rw.Details, rw.Merchant)
	if rawDate == "" && desc == "" {
		return nil, nil
	}
	if rawDate == "" {
		return nil, &ParseError{Row: rowNum, Column: "date", Message: "missing date"}
	}
	if desc == "" {
		return nil, &ParseError{Row: rowNum, Column: "description", Message: "missing description"}
	}

	amountMinor, perr := resolveAmount(rw, rowNum)
	if perr != nil {
		return nil, perr
	}

	return &transactions.RawRecord{
		ExternalID:   coalesce(rw.ReferenceID, rw.ID),
		AmountMinor:  amountMinor,
		CurrencyCode: strings.ToUpper(strings.TrimSpace(rw.Currency)),
		RawDate:      rawDate,
		Description:  desc,
		MerchantName: strings.TrimSpace(rw.Merchant),
		Category:     strings.TrimSpace(rw.Category),
		Type:         strings.ToLower(strings.TrimSpace(rw.Type)),
		Source:       transactions.SourceImport,
	}, nil
}

// resolveAmount prefers a single signed amount column and falls back to
// debit/credit double-entry columns.
func resolveAmount(rw row, rowNum int) (int64, *ParseError) {
	if s := coalesce(rw.Amount, rw.Value); s != "" {
		minor, err := parseAmountMinor(s)
		if err != nil {
			return 0, &ParseError{Row: rowNum, Column: "amount", Message: err.Error(), RawData: s}
		}
		return minor, nil
	}

	debit := strings.TrimSpace(rw.Debit)
	credit := strings.TrimSpace(rw.Credit)
	if debit == "" && credit == "" {
		return 0, &ParseError{Row: rowNum, Column: "amount", Message: "no amount found"}
	}

	if debit != "" {
		minor, err := parseAmountMinor(debit)
		if err != nil {
			return 0, &ParseError{Row: rowNum, Column: "debit", Message: err.Error(), RawData: debit}
		}
		if minor > 0 {
			minor = -minor // debit column means money out
		}
		if minor != 0 {
			return minor, nil
		}
	}

	minor, err := parseAmountMinor(credit)
	if err != nil {
		return 0, &ParseError{Row: rowNum, Column: "credit", Message: err.Error(), RawData: credit}
	}
	if minor < 0 {
		minor = -minor
	}
	return minor, nil
}

// parseAmountMinor converts "1,234.56", "($12.00)" or "-12" to signed minor
// units. Decimal arithmetic keeps cents exact.
func parseAmountMinor(s string) (int64, error) {
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.Trim(s, "()")
	}
	for _, sym := range []string{"$", "€", "£", "USD", "EUR", "GBP"} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if negative {
		d = d.Neg()
	}
	return d.Shift(2).IntPart(), nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
