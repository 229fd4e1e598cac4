package ledger

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"finanzas/internal/core"
)

// DefaultKey is the storage key the ledger has always been saved under.
const DefaultKey = "financialData"

type dayRecord struct {
	Date     string        `json:"date"`
	Incomes  []entryRecord `json:"incomes"`
	Expenses []entryRecord `json:"expenses"`
}

type entryRecord struct {
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	PaymentType string `json:"paymentType"`
}

// Encode serializes days as the JSON array kept in storage. Dates are
// written as plain ISO dates so they do not move across time zones.
func Encode(days []core.DayLedger) ([]byte, error) {
	records := make([]dayRecord, 0, len(days))
	for _, d := range days {
		records = append(records, dayRecord{
			Date:     d.Date.String(),
			Incomes:  toRecords(d.Incomes),
			Expenses: toRecords(d.Expenses),
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger: %w", err)
	}
	return data, nil
}

// Decode parses stored bytes back into days, rebuilding each date at
// midnight in loc.
func Decode(data []byte, loc *time.Location) ([]core.DayLedger, error) {
	var records []dayRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse ledger: %w", err)
	}
	days := make([]core.DayLedger, 0, len(records))
	for i, r := range records {
		date, err := core.ParseDate(r.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", i, err)
		}
		days = append(days, core.DayLedger{
			Date:     date,
			Incomes:  fromRecords(r.Incomes),
			Expenses: fromRecords(r.Expenses),
		})
	}
	return days, nil
}

// MergeDuplicates folds days sharing a calendar date into the first of
// them, appending the later entries in order. It returns the merged days
// and how many records were folded.
func MergeDuplicates(days []core.DayLedger) ([]core.DayLedger, int) {
	out := make([]core.DayLedger, 0, len(days))
	merged := 0
	for _, d := range days {
		i := slices.IndexFunc(out, func(o core.DayLedger) bool { return o.Date.SameDay(d.Date) })
		if i < 0 {
			out = append(out, d)
			continue
		}
		out[i].Incomes = append(out[i].Incomes, d.Incomes...)
		out[i].Expenses = append(out[i].Expenses, d.Expenses...)
		merged++
	}
	return out, merged
}

func toRecords(entries []core.Entry) []entryRecord {
	out := make([]entryRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryRecord{
			Name:        e.Name,
			Amount:      e.Amount,
			PaymentType: string(e.Payment),
		})
	}
	return out
}

func fromRecords(records []entryRecord) []core.Entry {
	out := make([]core.Entry, 0, len(records))
	for _, r := range records {
		out = append(out, core.Entry{
			Name:    r.Name,
			Amount:  r.Amount,
			Payment: core.ParsePaymentMethod(r.PaymentType),
		})
	}
	return out
}
