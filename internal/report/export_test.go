package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/core"
)

func exampleDay() core.DayLedger {
	d := core.NewDayLedger(core.NewDate(2024, 1, 15, time.UTC))
	d.Incomes[0] = core.Entry{Name: "Salary", Amount: "1000", Payment: core.Transfer}
	d.Expenses[0] = core.Entry{Name: "Rent", Amount: "400"}
	return d
}

func TestExportExampleScenario(t *testing.T) {
	got := Export([]core.DayLedger{exampleDay()})

	want := strings.Join([]string{
		"Fecha: 15/1/2024",
		"Ingreso: Salary - $1000.00 (Transferencia)",
		"Gasto: Rent - $400.00 (No especificado)",
		"Total Ingresos: $1000.00",
		"Total Gastos: $400.00",
		"Saldo Neto: $600.00",
		Separator,
	}, "\n")
	assert.Equal(t, want, got)
}

func TestExportSumsUnlistedEntries(t *testing.T) {
	d := core.NewDayLedger(core.NewDate(2024, 2, 1, time.UTC))
	d.Incomes = []core.Entry{
		{Name: "", Amount: "50"},
		{Name: "Bonus", Amount: ""},
		{Name: "Gift", Amount: "25.5"},
	}
	d.Expenses = []core.Entry{{Name: "Coffee", Amount: "abc"}}

	got := Export([]core.DayLedger{d})

	assert.NotContains(t, got, "Bonus")
	assert.Contains(t, got, "Ingreso: Gift - $25.50")
	assert.Contains(t, got, "Gasto: Coffee - $0.00")
	assert.Contains(t, got, "Total Ingresos: $75.50")
	assert.Contains(t, got, "Total Gastos: $0.00")
	assert.Contains(t, got, "Saldo Neto: $75.50")
}

func TestExportNegativeBalance(t *testing.T) {
	d := core.NewDayLedger(core.NewDate(2024, 2, 1, time.UTC))
	d.Expenses[0] = core.Entry{Name: "Market", Amount: "25.5", Payment: core.Cash}

	got := Export([]core.DayLedger{d})
	assert.Contains(t, got, "Gasto: Market - $25.50 (Efectivo)")
	assert.Contains(t, got, "Saldo Neto: -$25.50")
}

func TestExportJoinsBlocksWithBlankLine(t *testing.T) {
	first := exampleDay()
	second := core.NewDayLedger(core.NewDate(2024, 1, 10, time.UTC))

	got := Export([]core.DayLedger{first, second})
	blocks := strings.Split(got, "\n\n")
	require.Len(t, blocks, 2)
	assert.True(t, strings.HasPrefix(blocks[0], "Fecha: 15/1/2024"), "store order is kept")
	assert.True(t, strings.HasPrefix(blocks[1], "Fecha: 10/1/2024"))
	assert.True(t, strings.HasSuffix(blocks[1], Separator))
}

func TestExportIsIdempotent(t *testing.T) {
	days := []core.DayLedger{exampleDay()}
	assert.Equal(t, Export(days), Export(days))
}

func TestExportEmpty(t *testing.T) {
	assert.Equal(t, "", Export(nil))
}

func TestSummary(t *testing.T) {
	second := core.NewDayLedger(core.NewDate(2024, 1, 16, time.UTC))
	second.Expenses[0] = core.Entry{Name: "Food", Amount: "100"}

	got := Summary([]core.DayLedger{exampleDay(), second})
	assert.Contains(t, got, "Resumen (2 días)\nTotal Ingresos: $1000.00\nTotal Gastos: $500.00\nSaldo Neto: $500.00\n"+Separator)

	assert.Equal(t, "Resumen (0 días)\nTotal Ingresos: $0.00\nTotal Gastos: $0.00\nSaldo Neto: $0.00\n"+Separator, Summary(nil))
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "finanzas_2024-03-10.txt", Filename(now, "txt"))
	assert.Equal(t, "finanzas_2024-03-10.pdf", Filename(now, ".pdf"))
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	err := PDF(&buf, []core.DayLedger{exampleDay()}, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
