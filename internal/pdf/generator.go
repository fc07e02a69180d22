package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/anupk/wpts-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a printable payment receipt: the envelope header, one
// table row per worker allocation, and signature lines.
func (g *Generator) Generate(payment model.Payment) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Work Order Payment Receipt", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Work Order: %s", payment.WorkOrder), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Contractor: %s", payment.Contractor), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Payment", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total amount: %s", formatAmount(payment.Amount)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Work status: %s", payment.WorkStatus), "", 1, "L", false, 0, "")
	if payment.CompletedAt != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Completed on: %s", formatDate(*payment.CompletedAt)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Worker allocations", "", 1, "L", false, 0, "")

	if len(payment.Workers) == 0 {
		pdf.SetFont(g.fontName, "", 11)
		pdf.CellFormat(0, 6, "Not allocated to workers yet.", "", 1, "L", false, 0, "")
	} else {
		headers := []string{"Worker", "Phone", "Promised", "Paid", "Received", "Status"}
		colWidths := []float64{75, 40, 35, 35, 35, 35}
		drawTableRow(pdf, g.fontName, headers, colWidths, true)

		for _, worker := range payment.Workers {
			row := []string{
				worker.Name,
				worker.Phone,
				formatAmount(worker.PromisedAmount),
				formatOptionalAmount(worker.ActualPaid),
				formatOptionalAmount(worker.ActualReceivedByWorker),
				string(worker.PaymentStatus),
			}
			drawTableRow(pdf, g.fontName, row, colWidths, false)
		}
	}

	pdf.Ln(4)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Signatures", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)

	signatureBlock(pdf, g.fontName, "Admin")
	signatureBlock(pdf, g.fontName, "Contractor: "+payment.Contractor)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i >= 2 && i <= 4 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, label string) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: ______________________", label), "", 1, "L", false, 0, "")
}

func formatAmount(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func formatOptionalAmount(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
