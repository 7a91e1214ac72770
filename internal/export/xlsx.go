package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"orvann/backend/internal/domain"
)

const (
	SalesSheet    = "Sales"
	ExpensesSheet = "Expenses"
)

var (
	salesHeader    = []any{"ID", "Date", "Time", "SKU", "Product", "Quantity", "Unit price", "Discount %", "Total", "Payment", "Customer", "Seller", "Notes"}
	expensesHeader = []any{"ID", "Date", "Category", "Amount", "Paid by", "Payment", "Investment", "Description", "Notes"}
)

// WriteLedger writes sales and expenses as two sheets of one workbook.
func WriteLedger(w io.Writer, sales []domain.SaleLine, expenses []domain.Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SalesSheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ExpensesSheet); err != nil {
		return fmt.Errorf("xlsx: add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: style: %w", err)
	}

	salesRows := make([][]any, 0, len(sales))
	for _, s := range sales {
		salesRows = append(salesRows, []any{
			s.ID, s.Date.String(), s.Time, s.SKU, s.ProductName, s.Quantity,
			s.UnitPrice.InexactFloat64(), s.DiscountPct.InexactFloat64(), s.Total.InexactFloat64(),
			string(s.PaymentMethod), s.Customer, s.Seller, s.Notes,
		})
	}
	if err := writeSheet(f, SalesSheet, bold, salesHeader, salesRows); err != nil {
		return err
	}

	expenseRows := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		expenseRows = append(expenseRows, []any{
			e.ID, e.Date.String(), e.Category, e.Amount.InexactFloat64(), e.PaidBy,
			string(e.PaymentMethod), e.IsInvestment, e.Description, e.Notes,
		})
	}
	if err := writeSheet(f, ExpensesSheet, bold, expensesHeader, expenseRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("xlsx: %s header style: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: %s row %d: %w", sheet, i+2, err)
		}
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 14)
}

var ErrNoProductSheet = errors.New("workbook has no product rows")

// ReadProducts parses a catalog workbook. The first sheet must start with a
// header row naming at least the sku and name columns; column order is free.
// Rows that cannot be parsed are returned in rowErrors keyed by "row N".
func ReadProducts(r io.Reader) (products []domain.ProductCreateRequest, rowErrors map[string]string, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx: open: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrNoProductSheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("xlsx: read %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, nil, ErrNoProductSheet
	}

	columns := map[string]int{}
	for i, name := range rows[0] {
		columns[headerKey(name)] = i
	}
	for _, required := range []string{"sku", "name"} {
		if _, ok := columns[required]; !ok {
			return nil, nil, fmt.Errorf("xlsx: missing %q column", required)
		}
	}

	rowErrors = map[string]string{}
	for i, row := range rows[1:] {
		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		if cell("sku") == "" && cell("name") == "" {
			continue
		}

		p, err := parseProductRow(cell)
		if err != nil {
			rowErrors[fmt.Sprintf("row %d", i+2)] = err.Error()
			continue
		}
		products = append(products, p)
	}
	return products, rowErrors, nil
}

func parseProductRow(cell func(string) string) (domain.ProductCreateRequest, error) {
	p := domain.ProductCreateRequest{
		SKU:      cell("sku"),
		Name:     cell("name"),
		Category: cell("category"),
		Size:     cell("size"),
		Color:    cell("color"),
		Supplier: cell("supplier"),
		Notes:    cell("notes"),
	}

	var err error
	if p.Cost, err = parseAmount("cost", cell("cost")); err != nil {
		return p, err
	}
	if p.SalePrice, err = parseAmount("sale_price", cell("sale_price")); err != nil {
		return p, err
	}
	if v := cell("stock"); v != "" {
		if p.Stock, err = strconv.Atoi(v); err != nil {
			return p, fmt.Errorf("stock: %q is not a whole number", v)
		}
	}
	if v := cell("reorder_threshold"); v != "" {
		threshold, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("reorder_threshold: %q is not a whole number", v)
		}
		p.ReorderThreshold = &threshold
	}
	return p, nil
}

func parseAmount(field string, v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %q is not a number", field, v)
	}
	return d, nil
}

// headerKey maps a header cell such as "Sale Price" to "sale_price".
func headerKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	switch key {
	case "price":
		return "sale_price"
	case "threshold", "reorder":
		return "reorder_threshold"
	}
	return key
}
