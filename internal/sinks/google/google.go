package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/sinks"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Ensure interface conformance
var _ sinks.Sink = (*Client)(nil)

// Config selects the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// valuesAPI is the slice of the Sheets values service the sink needs.
type valuesAPI interface {
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error
}

// Client rewrites one sheet with the whole ledger on every delivery.
type Client struct {
	values        valuesAPI
	spreadsheetID string
	sheetBase     string
}

var header = []any{"Fecha", "Tipo", "Nombre", "Monto", "Pago"}

// New creates a Sheets sink authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetBase := strings.TrimSpace(cfg.SheetName)
	if sheetBase == "" {
		sheetBase = "Finanzas"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		values:        serviceValues{svc: svc},
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Falls back to GOOGLE_APPLICATION_CREDENTIALS when neither JSON nor file is set.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.DebugContext(ctx, "Creating Google Sheets service",
		applog.FieldComponent, applog.ComponentSheets,
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) Name() string { return "sheets" }

// Deliver clears the report year's sheet and writes one row per entry
// followed by the day totals.
func (c *Client) Deliver(ctx context.Context, r sinks.Report) (string, error) {
	if c.values == nil {
		return "", errors.New("sheets service not initialized")
	}
	sheet := yearPrefixedName(c.sheetBase, r.Generated.Year())
	rows := buildRows(r.Days)

	if err := c.values.Clear(ctx, c.spreadsheetID, fmt.Sprintf("%s!A:E", sheet)); err != nil {
		return "", fmt.Errorf("failed to clear sheet %s: %w", sheet, err)
	}

	ref := fmt.Sprintf("%s!A1:E%d", sheet, len(rows))
	if err := c.values.Update(ctx, c.spreadsheetID, ref, rows); err != nil {
		return "", fmt.Errorf("failed to write sheet %s: %w", sheet, err)
	}

	slog.InfoContext(ctx, "Ledger written to sheet",
		applog.FieldComponent, applog.ComponentSheets,
		applog.FieldRef, ref,
		"days", len(r.Days),
		"rows", len(rows))
	return ref, nil
}

// buildRows lays out the ledger with a header. Every entry gets a row,
// listed or not, since the sheet mirrors stored data rather than the
// text report.
func buildRows(days []core.DayLedger) [][]any {
	rows := [][]any{header}
	for _, d := range days {
		date := d.Date.String()
		for _, e := range d.Incomes {
			rows = append(rows, entryRow(date, core.Income, e))
		}
		for _, e := range d.Expenses {
			rows = append(rows, entryRow(date, core.Expense, e))
		}
		t := core.ComputeTotals(d)
		rows = append(rows,
			[]any{date, "Total Ingresos", "", t.TotalIncome.StringFixed(2), ""},
			[]any{date, "Total Gastos", "", t.TotalExpense.StringFixed(2), ""},
			[]any{date, "Saldo Neto", "", t.NetBalance.StringFixed(2), ""},
		)
	}
	return rows
}

func entryRow(date string, kind core.Kind, e core.Entry) []any {
	label := "Ingreso"
	if kind == core.Expense {
		label = "Gasto"
	}
	return []any{date, label, e.Name, e.Amount, e.Payment.Label()}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

type serviceValues struct {
	svc *gsheet.Service
}

func (v serviceValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := v.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (v serviceValues) Update(ctx context.Context, spreadsheetID, rng string, rows [][]any) error {
	vr := &gsheet.ValueRange{Values: rows}
	_, err := v.svc.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}
