package core

import "github.com/shopspring/decimal"

// Totals is the derived summary of one or more days. It is never stored.
type Totals struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetBalance   decimal.Decimal
}

// Outlook classifies the sign of a net balance.
type Outlook string

const (
	Surplus Outlook = "surplus"
	Deficit Outlook = "deficit"
	Even    Outlook = "even"
)

// ComputeTotals sums both collections of d. Entries whose amount does not
// parse count as zero; none is skipped and the call never fails.
func ComputeTotals(d DayLedger) Totals {
	income := sum(d.Incomes)
	expense := sum(d.Expenses)
	return Totals{
		TotalIncome:  income,
		TotalExpense: expense,
		NetBalance:   income.Sub(expense),
	}
}

// SumTotals aggregates every day in days.
func SumTotals(days []DayLedger) Totals {
	income, expense := decimal.Zero, decimal.Zero
	for _, d := range days {
		income = income.Add(sum(d.Incomes))
		expense = expense.Add(sum(d.Expenses))
	}
	return Totals{
		TotalIncome:  income,
		TotalExpense: expense,
		NetBalance:   income.Sub(expense),
	}
}

func sum(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Value())
	}
	return total
}

func (t Totals) Outlook() Outlook {
	switch t.NetBalance.Sign() {
	case 1:
		return Surplus
	case -1:
		return Deficit
	default:
		return Even
	}
}

// Advice is the short message shown under a day summary; empty when the
// balance is exactly zero.
func (t Totals) Advice() string {
	switch t.Outlook() {
	case Surplus:
		return "Excelente, has generado un ahorro positivo hoy."
	case Deficit:
		return "Tus gastos superan tus ingresos. Considera revisar tus gastos."
	default:
		return ""
	}
}
