package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/finpulse/finpulse/internal/domain/transactions"
)

// columnMap holds resolved header indices for one sheet, -1 when absent.
type columnMap struct {
	date, desc, merchant, amount, debit, credit, category, txType, currency, external int
}

// ParseXLSX reads transactions out of a workbook. The sheet is picked by
// name ("Transactions", "Statement", ...) with the first sheet as fallback;
// the first row of the sheet is the header.
func ParseXLSX(r io.Reader) ([]transactions.RawRecord, []ParseError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := pickSheet(f)
	if sheet == "" {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	cm := mapColumns(rows[0])
	if cm.date < 0 {
		return nil, nil, fmt.Errorf("sheet %s has no recognizable date column", sheet)
	}

	var records []transactions.RawRecord
	var errs []ParseError
	for i, cells := range rows[1:] {
		rowNum := i + 2

		rec, perr := convertRow(rowFromCells(cells, cm), rowNum)
		if perr != nil {
			errs = append(errs, *perr)
			continue
		}
		if rec == nil {
			continue
		}
		records = append(records, *rec)
	}
	return records, errs, nil
}

var preferredSheets = []string{"transactions", "statement", "activity", "data", "sheet1"}

func pickSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	for _, want := range preferredSheets {
		for _, s := range sheets {
			if strings.EqualFold(s, want) {
				return s
			}
		}
	}
	return sheets[0]
}

func mapColumns(headers []string) columnMap {
	cm := columnMap{date: -1, desc: -1, merchant: -1, amount: -1, debit: -1, credit: -1, category: -1, txType: -1, currency: -1, external: -1}

	match := func(h string, keywords ...string) bool {
		for _, kw := range keywords {
			if strings.Contains(h, kw) {
				return true
			}
		}
		return false
	}

	for i, header := range headers {
		h := strings.ToLower(strings.TrimSpace(header))
		switch {
		case cm.date < 0 && match(h, "date"):
			cm.date = i
		case cm.merchant < 0 && match(h, "merchant", "payee"):
			cm.merchant = i
		case cm.desc < 0 && match(h, "description", "memo", "details"):
			cm.desc = i
		case cm.debit < 0 && match(h, "debit"):
			cm.debit = i
		case cm.credit < 0 && match(h, "credit"):
			cm.credit = i
		case cm.amount < 0 && match(h, "amount", "value"):
			cm.amount = i
		case cm.category < 0 && match(h, "category"):
			cm.category = i
		case cm.txType < 0 && match(h, "type"):
			cm.txType = i
		case cm.currency < 0 && match(h, "currency"):
			cm.currency = i
		case cm.external < 0 && match(h, "reference", "id"):
			cm.external = i
		}
	}
	return cm
}

// rowFromCells reuses the CSV row conversion by projecting sheet cells into
// the same shape.
func rowFromCells(cells []string, cm columnMap) row {
	get := func(idx int) string {
		if idx < 0 || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}
	return row{
		Date:        get(cm.date),
		Description: get(cm.desc),
		Merchant:    get(cm.merchant),
		Amount:      get(cm.amount),
		Debit:       get(cm.debit),
		Credit:      get(cm.credit),
		Category:    get(cm.category),
		Type:        get(cm.txType),
		Currency:    get(cm.currency),
		ReferenceID: get(cm.external),
	}
}
