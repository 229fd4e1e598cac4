package report

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"

	"finanzas/internal/core"
)

// PDF writes the same content as Export as an A4 document, one table per
// day and a closing summary.
func PDF(w io.Writer, days []core.DayLedger, generated time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Finanzas", false)
	pdf.SetCreationDate(generated)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Finanzas")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Generado: %s", generated.Format(time.DateOnly))))
	pdf.Ln(10)

	for _, d := range days {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, fmt.Sprintf("Fecha: %s", d.Date.Display()))
		pdf.Ln(8)

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(25, 7, "Tipo", "B", 0, "L", false, 0, "")
		pdf.CellFormat(75, 7, "Nombre", "B", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, "Monto", "B", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, "Pago", "B", 0, "L", false, 0, "")
		pdf.Ln(7)

		pdf.SetFont("Helvetica", "", 10)
		for _, row := range listedRows(d) {
			pdf.CellFormat(25, 6, row.prefix, "", 0, "L", false, 0, "")
			pdf.CellFormat(75, 6, tr(row.entry.Name), "", 0, "L", false, 0, "")
			pdf.CellFormat(35, 6, core.FormatAmount(row.entry.Value()), "", 0, "R", false, 0, "")
			pdf.CellFormat(45, 6, tr(row.entry.Payment.Label()), "", 0, "L", false, 0, "")
			pdf.Ln(6)
		}

		writePDFTotals(pdf, core.ComputeTotals(d))
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Resumen (%d días)", len(days))))
	pdf.Ln(8)
	writePDFTotals(pdf, core.SumTotals(days))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

type pdfRow struct {
	prefix string
	entry  core.Entry
}

func listedRows(d core.DayLedger) []pdfRow {
	var rows []pdfRow
	for _, e := range d.Incomes {
		if e.Listed() {
			rows = append(rows, pdfRow{incomePrefix, e})
		}
	}
	for _, e := range d.Expenses {
		if e.Listed() {
			rows = append(rows, pdfRow{expensePrefix, e})
		}
	}
	return rows
}

func writePDFTotals(pdf *gofpdf.Fpdf, t core.Totals) {
	pdf.SetFont("Helvetica", "B", 10)
	for _, line := range [][2]string{
		{"Total Ingresos:", core.FormatAmount(t.TotalIncome)},
		{"Total Gastos:", core.FormatAmount(t.TotalExpense)},
		{"Saldo Neto:", core.FormatAmount(t.NetBalance)},
	} {
		pdf.CellFormat(100, 6, line[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, line[1], "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}
}
