package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"

	"github.com/harentsoaR/clinic-api/internal/models"
)

const exportSheet = "Bills"

var exportHeaders = map[string]string{
	"A1": "Bill ID",
	"B1": "Patient",
	"C1": "Items",
	"D1": "Total",
	"E1": "Status",
	"F1": "Created By",
	"G1": "Created At",
	"H1": "Paid At",
}

// Export writes the bills matching q as an xlsx workbook, one row per bill.
func (s *BillingService) Export(ctx context.Context, q BillQuery, w io.Writer) error {
	bills, err := s.List(ctx, q)
	if err != nil {
		return err
	}
	file := buildBillWorkbook(bills)
	if err := file.Write(w); err != nil {
		return Internal("Failed to export bills", err)
	}
	return nil
}

func buildBillWorkbook(bills []models.Bill) *excelize.File {
	file := excelize.NewFile()
	file.SetSheetName("Sheet1", exportSheet)
	for k, v := range exportHeaders {
		file.SetCellValue(exportSheet, k, v)
	}
	for i := range bills {
		appendBillRow(file, i+2, &bills[i])
	}
	return file
}

func appendBillRow(file *excelize.File, row int, b *models.Bill) {
	items := make([]string, len(b.Items))
	for i, it := range b.Items {
		items[i] = fmt.Sprintf("%s (%.2f)", it.Description, it.Amount)
	}
	paidAt := ""
	if b.PaidAt != nil {
		paidAt = b.PaidAt.UTC().Format(time.RFC3339)
	}
	file.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), b.ID.Hex())
	file.SetCellValue(exportSheet, fmt.Sprintf("B%d", row), b.PatientName)
	file.SetCellValue(exportSheet, fmt.Sprintf("C%d", row), strings.Join(items, "; "))
	file.SetCellValue(exportSheet, fmt.Sprintf("D%d", row), b.TotalAmount)
	file.SetCellValue(exportSheet, fmt.Sprintf("E%d", row), b.Status)
	file.SetCellValue(exportSheet, fmt.Sprintf("F%d", row), b.CreatedByName)
	file.SetCellValue(exportSheet, fmt.Sprintf("G%d", row), b.CreatedAt.UTC().Format(time.RFC3339))
	file.SetCellValue(exportSheet, fmt.Sprintf("H%d", row), paidAt)
}
