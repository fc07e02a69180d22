package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/anupk/wpts-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes the flattened worker-payment projection into a workbook:
// a few summary cells on top, one table row per allocation below.
func (g *Generator) Generate(rows []model.WorkerPaymentRow) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Worker Payments"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	pending, verified, disputed := countStatuses(rows)

	set("A1", "Worker payment records")
	set("B1", len(rows))
	set("A2", "Pending")
	set("B2", pending)
	set("A3", "Verified")
	set("B3", verified)
	set("A4", "Disputed")
	set("B4", disputed)

	tableRow := 6
	headers := []string{
		"Worker",
		"Phone",
		"Work Order",
		"Contractor",
		"Promised Amount",
		"Actual Paid",
		"Status",
		"Updated At",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, row := range rows {
		line := tableRow + 1 + i
		set(fmt.Sprintf("A%d", line), row.WorkerName)
		set(fmt.Sprintf("B%d", line), row.WorkerPhone)
		set(fmt.Sprintf("C%d", line), row.WorkOrder)
		set(fmt.Sprintf("D%d", line), row.Contractor)
		set(fmt.Sprintf("E%d", line), formatAmount(row.PromisedAmount))
		set(fmt.Sprintf("F%d", line), formatOptionalAmount(row.ActualPaid))
		set(fmt.Sprintf("G%d", line), string(row.PaymentStatus))
		set(fmt.Sprintf("H%d", line), formatDateTime(row.UpdatedAt))
	}

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "B", 16)
	_ = file.SetColWidth(sheet, "C", "D", 24)
	_ = file.SetColWidth(sheet, "E", "F", 16)
	_ = file.SetColWidth(sheet, "G", "G", 12)
	_ = file.SetColWidth(sheet, "H", "H", 20)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func countStatuses(rows []model.WorkerPaymentRow) (pending, verified, disputed int) {
	for _, row := range rows {
		switch row.PaymentStatus {
		case model.PaymentStatusVerified:
			verified++
		case model.PaymentStatusDisputed:
			disputed++
		default:
			pending++
		}
	}
	return pending, verified, disputed
}

func formatAmount(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func formatOptionalAmount(value *float64) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *value)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
