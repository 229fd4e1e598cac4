package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"finanzas/internal/core"
)

// Styles used by the terminal views.
type Styles struct {
	DateStyle    lipgloss.Style
	IncomeStyle  lipgloss.Style
	SpentStyle   lipgloss.Style
	MutedStyle   lipgloss.Style
	SummaryStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		DateStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d29b1d")),
		IncomeStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff00")),
		SpentStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")),
		MutedStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")),
		SummaryStyle: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		ErrorStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f5f")),
	}
}

// RenderDay draws one day as a tree of its entries with their indexes,
// followed by the day totals.
func (s Styles) RenderDay(d core.DayLedger) string {
	root := tree.New().Root(s.DateStyle.Render(fmt.Sprintf("%s (%s)", d.Date.Display(), d.Date.String())))
	root.Child(s.entryTree("Ingresos", d.Incomes, s.IncomeStyle))
	root.Child(s.entryTree("Gastos", d.Expenses, s.SpentStyle))

	return lipgloss.JoinVertical(lipgloss.Left,
		root.String(),
		s.RenderTotals(core.ComputeTotals(d)),
	)
}

// RenderDays draws every day in store order and a grand total.
func (s Styles) RenderDays(days []core.DayLedger) string {
	if len(days) == 0 {
		return s.MutedStyle.Render("No hay días registrados.")
	}
	views := make([]string, 0, len(days)+2)
	for _, d := range days {
		views = append(views, s.RenderDay(d), "")
	}
	views = append(views, s.DateStyle.Render(fmt.Sprintf("Total (%d días)", len(days))))
	views = append(views, s.RenderTotals(core.SumTotals(days)))
	return lipgloss.JoinVertical(lipgloss.Left, views...)
}

// RenderTotals draws the boxed income, expense and balance summary.
func (s Styles) RenderTotals(t core.Totals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total Ingresos: %s\n", s.IncomeStyle.Render(core.FormatAmount(t.TotalIncome)))
	fmt.Fprintf(&b, "Total Gastos: %s\n", s.SpentStyle.Render(core.FormatAmount(t.TotalExpense)))
	net := s.IncomeStyle
	if t.Outlook() == core.Deficit {
		net = s.SpentStyle
	}
	fmt.Fprintf(&b, "Saldo Neto: %s", net.Render(core.FormatAmount(t.NetBalance)))
	if advice := t.Advice(); advice != "" {
		fmt.Fprintf(&b, "\n%s", s.MutedStyle.Render(advice))
	}
	return s.SummaryStyle.Render(b.String())
}

// RenderError formats a user-facing error line.
func (s Styles) RenderError(msg string) string {
	return s.ErrorStyle.Render("Error: ") + msg
}

func (s Styles) entryTree(title string, entries []core.Entry, style lipgloss.Style) *tree.Tree {
	t := tree.New().Root(style.Render(title))
	if len(entries) == 0 {
		t.Child(s.MutedStyle.Render("(sin entradas)"))
		return t
	}
	for i, e := range entries {
		t.Child(fmt.Sprintf("[%d] %s", i, s.entryText(e)))
	}
	return t
}

func (s Styles) entryText(e core.Entry) string {
	if e.Blank() {
		return s.MutedStyle.Render("(vacío)")
	}
	name := strings.TrimSpace(e.Name)
	if name == "" {
		name = s.MutedStyle.Render("(sin nombre)")
	}
	amount := e.Amount
	if _, err := core.ParseAmount(e.Amount); err == nil {
		amount = core.FormatAmount(e.Value())
	} else if strings.TrimSpace(amount) != "" {
		amount = fmt.Sprintf("%q = %s", amount, core.FormatAmount(e.Value()))
	}
	return fmt.Sprintf("%s  %s  %s", name, amount, s.MutedStyle.Render(e.Payment.Label()))
}
