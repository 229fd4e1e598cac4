// Package report renders the ledger as human-readable documents.
package report

import (
	"fmt"
	"strings"
	"time"

	"finanzas/internal/core"
)

// Separator closes every day block.
const Separator = "----------------------------"

const (
	incomePrefix  = "Ingreso"
	expensePrefix = "Gasto"
)

// Export renders every day in store order. Only entries with both a name
// and an amount are listed, but every entry counts towards the totals.
// Blocks are joined by a blank line. The output depends on days only.
func Export(days []core.DayLedger) string {
	blocks := make([]string, 0, len(days))
	for _, d := range days {
		blocks = append(blocks, dayBlock(d))
	}
	return strings.Join(blocks, "\n\n")
}

// Summary is Export followed by a block with the totals of all days.
func Summary(days []core.DayLedger) string {
	t := core.SumTotals(days)
	var b strings.Builder
	if len(days) > 0 {
		b.WriteString(Export(days))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Resumen (%d días)\n", len(days))
	writeTotals(&b, t)
	b.WriteString(Separator)
	return b.String()
}

// Filename is the date-stamped name of an export produced at now.
func Filename(now time.Time, ext string) string {
	return fmt.Sprintf("finanzas_%s.%s", now.Format(time.DateOnly), strings.TrimPrefix(ext, "."))
}

func dayBlock(d core.DayLedger) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fecha: %s\n", d.Date.Display())
	writeEntries(&b, incomePrefix, d.Incomes)
	writeEntries(&b, expensePrefix, d.Expenses)
	writeTotals(&b, core.ComputeTotals(d))
	b.WriteString(Separator)
	return b.String()
}

func writeEntries(b *strings.Builder, prefix string, entries []core.Entry) {
	for _, e := range entries {
		if !e.Listed() {
			continue
		}
		fmt.Fprintf(b, "%s: %s\n", prefix, entryLine(e))
	}
}

func entryLine(e core.Entry) string {
	return fmt.Sprintf("%s - %s (%s)", strings.TrimSpace(e.Name), core.FormatAmount(e.Value()), e.Payment.Label())
}

func writeTotals(b *strings.Builder, t core.Totals) {
	fmt.Fprintf(b, "Total Ingresos: %s\n", core.FormatAmount(t.TotalIncome))
	fmt.Fprintf(b, "Total Gastos: %s\n", core.FormatAmount(t.TotalExpense))
	fmt.Fprintf(b, "Saldo Neto: %s\n", core.FormatAmount(t.NetBalance))
}
