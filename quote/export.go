package quote

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/princinho/climaquote/models"
	"github.com/princinho/climaquote/utils"
)

const exportSheet = "Quotes"

var exportHeader = []any{
	"ID", "Created", "Status", "Signed", "Brand", "Model", "Option", "Kit", "Extras",
	"Total", "Financed total", "Financing", "Client", "Email", "Phone", "Address", "Postal code",
	"Work order", "Language", "Deleted", "Email sent", "Document",
}

// ExportFilename names a history export after the company, e.g.
// "frio-y-calor-sl-quotes-20240603.xlsx".
func ExportFilename(company string, now time.Time) string {
	slug := utils.GenerateSlug(company)
	if slug == "" {
		slug = "climaquote"
	}
	return fmt.Sprintf("%s-quotes-%s.xlsx", slug, now.Format("20060102"))
}

// ExportXLSX writes one row per quote, in the given order.
func ExportXLSX(w io.Writer, quotes []models.Quote) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return fmt.Errorf("open sheet writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, q := range quotes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, exportRow(q)); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func exportRow(q models.Quote) []any {
	var extras string
	for i, e := range q.Extras {
		if i > 0 {
			extras += "; "
		}
		extras += fmt.Sprintf("%d × %s", e.Quantity, e.Name)
	}
	signed := ""
	if q.SignedAt != nil {
		signed = q.SignedAt.UTC().Format(time.RFC3339)
	}
	return []any{
		q.ID.Hex(),
		q.CreatedAt.UTC().Format(time.RFC3339),
		string(q.Status),
		signed,
		q.Brand,
		q.Model,
		q.Option.Name,
		q.Kit.Name,
		extras,
		q.Price,
		q.FinancedTotal,
		q.FinancingText,
		q.Client.FullName(),
		q.Client.Email,
		q.Client.Phone,
		q.Client.Address,
		q.Client.PostalCode,
		q.Client.WorkOrder,
		q.Language,
		q.IsDeleted,
		q.NotificationSent,
		q.DocumentURL,
	}
}
