package export

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"orvann/backend/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWriteLedgerProducesTwoSheets(t *testing.T) {
	day := domain.NewDate(2025, 3, 14)
	sales := []domain.SaleLine{{
		Sale: domain.Sale{
			ID: 7, Date: day, Time: "10:30:00", SKU: "CAM-TEST-S", Quantity: 2,
			UnitPrice: dec("75000"), DiscountPct: dec("10"), Total: dec("135000"), PaymentMethod: domain.PaymentCash,
		},
		ProductName: "Camiseta Test",
	}}
	expenses := []domain.Expense{
		{ID: 1, Date: day, Category: "Arriendo", Amount: dec("1210000"), PaidBy: "JP", PaymentMethod: domain.PaymentTransfer},
		{ID: 2, Date: day, Category: "Servicios", Amount: dec("33333.50"), PaidBy: "KATHE"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, sales, expenses))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SalesSheet, ExpensesSheet}, f.GetSheetList())

	rows, err := f.GetRows(SalesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "SKU", rows[0][3])
	assert.Equal(t, "CAM-TEST-S", rows[1][3])
	assert.Equal(t, "Camiseta Test", rows[1][4])
	assert.Equal(t, "135000", rows[1][8])

	rows, err = f.GetRows(ExpensesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "33333.5", rows[2][3])
	assert.Equal(t, "KATHE", rows[2][4])
}

func writeCatalog(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestReadProductsMapsHeaders(t *testing.T) {
	buf := writeCatalog(t, [][]any{
		{"Name", "SKU", "Category", "Cost", "Sale Price", "Stock", "Reorder Threshold"},
		{"Camiseta Oversize", "CAM-OVR-M", "Camisetas", "37000", "75000", "12", "4"},
		{"Hoodie", "HOOD-L", "Hoodies", "120000", "abc", "3", ""},
		{"", "", "", "", "", "", ""},
		{"Gorra", "GOR-01", "Accesorios", "1,500", "35000", "", ""},
	})

	products, rowErrors, err := ReadProducts(buf)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "CAM-OVR-M", products[0].SKU)
	assert.Equal(t, "Camiseta Oversize", products[0].Name)
	assert.True(t, products[0].SalePrice.Equal(dec("75000")))
	assert.Equal(t, 12, products[0].Stock)
	require.NotNil(t, products[0].ReorderThreshold)
	assert.Equal(t, 4, *products[0].ReorderThreshold)

	assert.Equal(t, "GOR-01", products[1].SKU)
	assert.True(t, products[1].Cost.Equal(dec("1500")))
	assert.Nil(t, products[1].ReorderThreshold)

	require.Contains(t, rowErrors, "row 3")
	assert.Contains(t, rowErrors["row 3"], "sale_price")
}

func TestReadProductsRequiresSKUColumn(t *testing.T) {
	buf := writeCatalog(t, [][]any{
		{"Name", "Cost"},
		{"Camiseta", "1000"},
	})
	_, _, err := ReadProducts(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sku")

	_, _, err = ReadProducts(writeCatalog(t, [][]any{{"SKU", "Name"}}))
	assert.ErrorIs(t, err, ErrNoProductSheet)

	_, _, err = ReadProducts(bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)
}

func TestCloseSheetRendersPDF(t *testing.T) {
	day := domain.NewDate(2025, 3, 14)
	actual := dec("150000")
	state := domain.DrawerState{
		Date:         day,
		IsOpen:       true,
		IsClosed:     true,
		OpeningCash:  dec("100000"),
		CashSales:    dec("75000"),
		CashExpenses: dec("20000"),
		ExpectedCash: dec("155000"),
		ActualClose:  &actual,
		Notes:        "faltante de caja",
	}
	daily := domain.DailySales{
		Date: day,
		Sales: []domain.SaleLine{{
			Sale:        domain.Sale{Time: "10:30:00", SKU: "CAM-TEST-S", Quantity: 1, Total: dec("75000"), PaymentMethod: domain.PaymentCash},
			ProductName: "Camiseta Test",
		}},
		TotalsByMethod: map[domain.PaymentMethod]decimal.Decimal{domain.PaymentCash: dec("75000")},
		Total:          dec("75000"),
		Units:          1,
	}

	var buf bytes.Buffer
	require.NoError(t, CloseSheet(&buf, "ORVANN", state, daily))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, CloseSheet(&buf, "ORVANN", domain.DrawerState{Date: day}, domain.DailySales{Date: day}))
	assert.NotZero(t, buf.Len())
}
