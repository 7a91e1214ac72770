package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"orvann/backend/internal/domain"
)

// CloseSheet renders the end-of-day sheet for a cash drawer: the expected
// cash breakdown, the counted cash when the day is closed, and every sale of
// the day.
func CloseSheet(w io.Writer, shop string, state domain.DrawerState, day domain.DailySales) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(fmt.Sprintf("%s close %s", shop, state.Date), true)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr(shop), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Cash close "+state.Date.String(), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	label := contentW * 0.6
	value := contentW * 0.4
	line := func(name string, amount decimal.Decimal) {
		pdf.CellFormat(label, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(value, 6, amountText(amount), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Drawer", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	line("Opening cash", state.OpeningCash)
	line("Cash sales", state.CashSales)
	line("Cash expenses", state.CashExpenses.Neg())
	pdf.SetFont("Helvetica", "B", 10)
	line("Expected cash", state.ExpectedCash)

	pdf.SetFont("Helvetica", "", 10)
	if state.IsClosed && state.ActualClose != nil {
		line("Counted cash", *state.ActualClose)
		line("Difference", state.ActualClose.Sub(state.ExpectedCash))
	} else {
		pdf.CellFormat(contentW, 6, "Drawer not closed", "", 1, "L", false, 0, "")
	}
	if state.Notes != "" {
		pdf.MultiCell(contentW, 5, tr("Notes: "+state.Notes), "", "L", false)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "Totals by payment method", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, method := range domain.PaymentMethods {
		line(string(method), day.TotalsByMethod[method])
	}
	pdf.SetFont("Helvetica", "B", 10)
	line(fmt.Sprintf("Total (%d units)", day.Units), day.Total)
	pdf.Ln(3)

	cols := []float64{contentW * 0.12, contentW * 0.38, contentW * 0.1, contentW * 0.2, contentW * 0.2}
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range []string{"Time", "Product", "Qty", "Payment", "Total"} {
		align := "L"
		if i >= 2 {
			align = "R"
		}
		pdf.CellFormat(cols[i], 6, h, "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, s := range day.Sales {
		name := s.ProductName
		if name == "" {
			name = s.SKU
		}
		if len(name) > 40 {
			name = name[:39] + "..."
		}
		pdf.CellFormat(cols[0], 5, s.Time, "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 5, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[2], 5, fmt.Sprintf("%d", s.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 5, string(s.PaymentMethod), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[4], 5, amountText(s.Total), "", 1, "R", false, 0, "")
	}
	if len(day.Sales) == 0 {
		pdf.CellFormat(contentW, 5, "No sales", "", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}

func amountText(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
