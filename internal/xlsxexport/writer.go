package xlsxexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"cfdibox/internal/csvexport"
	"cfdibox/internal/domain"
)

// Section is one named subset of a batch for accounting review.
type Section struct {
	Name    string
	Records []domain.InvoiceRecord
}

// Sections partitions the deduplicated records into the review subsets.
// Each subset is a pure filter over the canonical Tipo and Alerta Fiscal
// fields on the records; nothing is re-derived here.
func Sections(records []domain.InvoiceRecord) []Section {
	return []Section{
		{Name: "Todos", Records: records},
		{Name: "Nómina", Records: filter(records, func(r *domain.InvoiceRecord) bool {
			return r.Type == domain.TypePayroll
		})},
		{Name: "Pagos", Records: filter(records, func(r *domain.InvoiceRecord) bool {
			return r.Type == domain.TypePayment
		})},
		{Name: "Ingresos Deducibles", Records: filter(records, func(r *domain.InvoiceRecord) bool {
			return r.Type == domain.TypeIncome && r.Deductibility == domain.Deductible
		})},
		{Name: "No Deducibles", Records: filter(records, func(r *domain.InvoiceRecord) bool {
			return r.Deductibility == domain.NotDeductibleCash || r.Deductibility == domain.NotDeductibleUsage
		})},
	}
}

func filter(records []domain.InvoiceRecord, keep func(*domain.InvoiceRecord) bool) []domain.InvoiceRecord {
	var out []domain.InvoiceRecord
	for i := range records {
		if keep(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// Write renders the batch as a multi-sheet workbook: one sheet per review
// section plus a Resumen sheet with the batch statistics.
func Write(w io.Writer, result *domain.BatchResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, section := range Sections(result.Records) {
		if i == 0 {
			// excelize always creates "Sheet1"; rename it for the first section.
			if err := f.SetSheetName("Sheet1", section.Name); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(section.Name); err != nil {
				return fmt.Errorf("creating sheet %q: %w", section.Name, err)
			}
		}
		if err := writeSheet(f, section); err != nil {
			return err
		}
	}

	if err := writeSummary(f, result); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, section Section) error {
	header := make([]interface{}, len(csvexport.Columns))
	for i, c := range csvexport.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(section.Name, "A1", &header); err != nil {
		return fmt.Errorf("sheet %q header: %w", section.Name, err)
	}

	for i := range section.Records {
		row := csvexport.RecordToRow(&section.Records[i])
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(section.Name, cell, &values); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", section.Name, i+2, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, result *domain.BatchResult) error {
	const sheet = "Resumen"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("creating sheet %q: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Comprobantes", result.Count()},
		{"Suma Total", result.TotalSum.StringFixed(2)},
		{"Duplicados Ignorados", result.DuplicateCount},
		{"Sin Timbre", result.MissingStampCount},
		{"Con Errores", result.MalformedCount},
		{},
		{"Tipo", "Cantidad", "Total"},
	}
	for _, t := range []domain.InvoiceType{
		domain.TypeIncome, domain.TypeExpense, domain.TypePayment,
		domain.TypePayroll, domain.TypeTransfer, domain.TypeOther,
	} {
		ts, ok := result.ByType[t]
		if !ok {
			continue
		}
		rows = append(rows, []interface{}{t.Label(), ts.Count, ts.Total.StringFixed(2)})
	}

	for i, row := range rows {
		row := row
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
