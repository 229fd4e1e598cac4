package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	FieldName          Field = "name"
	FieldAmount        Field = "amount"
	FieldPaymentMethod Field = "paymentMethod"
)

type (
	// Kind selects one of the two entry collections of a day.
	Kind string

	// Field names an editable attribute of an Entry.
	Field string

	// Entry is a single income or expense row. Amount keeps the text the
	// user typed; it is only parsed when totals are computed.
	Entry struct {
		Name    string
		Amount  string
		Payment PaymentMethod
	}

	// DayLedger holds the entries recorded for one calendar day.
	DayLedger struct {
		Date     Date
		Incomes  []Entry
		Expenses []Entry
	}
)

var (
	ErrInvalidKind  = errors.New("invalid entry kind")
	ErrInvalidField = errors.New("invalid entry field")
)

// ParseKind accepts singular and plural forms, in English or Spanish.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "incomes", "ingreso", "ingresos":
		return Income, nil
	case "expense", "expenses", "gasto", "gastos":
		return Expense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

// ParseField accepts the field names used by the UI, including the legacy
// "paymentType" spelling found in stored data.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name":
		return FieldName, nil
	case "amount":
		return FieldAmount, nil
	case "paymentmethod", "paymenttype", "payment":
		return FieldPaymentMethod, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidField, s)
	}
}

func (f Field) String() string {
	return string(f)
}

// Blank reports whether no field of the entry has been filled in.
func (e Entry) Blank() bool {
	return e.Name == "" && e.Amount == "" && e.Payment == Unset
}

// Listed reports whether the entry appears in exported reports: both name
// and amount are non-empty. Whitespace counts as content.
func (e Entry) Listed() bool {
	return e.Name != "" && e.Amount != ""
}

// Value is the numeric contribution of the entry to totals.
func (e Entry) Value() decimal.Decimal {
	return AmountOf(e.Amount)
}

// Set assigns one field. Values are stored as given except for payment
// methods, which are normalized to their canonical form when recognized.
func (e *Entry) Set(field Field, value string) error {
	switch field {
	case FieldName:
		e.Name = value
	case FieldAmount:
		e.Amount = value
	case FieldPaymentMethod:
		e.Payment = ParsePaymentMethod(value)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidField, field)
	}
	return nil
}

// NewDayLedger returns a day with one blank starter row in each collection.
func NewDayLedger(date Date) DayLedger {
	return DayLedger{
		Date:     date,
		Incomes:  []Entry{{}},
		Expenses: []Entry{{}},
	}
}

// Entries returns the collection for kind. The slice is shared with d.
func (d DayLedger) Entries(kind Kind) []Entry {
	if kind == Income {
		return d.Incomes
	}
	return d.Expenses
}

// Clone returns a deep copy of the day.
func (d DayLedger) Clone() DayLedger {
	out := DayLedger{Date: d.Date}
	out.Incomes = append(make([]Entry, 0, len(d.Incomes)), d.Incomes...)
	out.Expenses = append(make([]Entry, 0, len(d.Expenses)), d.Expenses...)
	return out
}

// Date is a calendar day: midnight in the location it was created for.
type Date struct {
	time.Time
}

const isoDate = "2006-01-02"

// NewDate creates a Date from year, month, day in loc (time.Local when nil).
func NewDate(year, month, day int, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)}
}

// DateOf truncates t to midnight of its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

// ParseDate reads an ISO date (2024-01-15) as midnight in loc. Full RFC 3339
// timestamps, as written by older versions of the app, are first converted
// into loc and then truncated, so the calendar day the user saw is kept.
func ParseDate(s string, loc *time.Location) (Date, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(isoDate, s, loc); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t.In(loc)), nil
}

// String returns the ISO date used for storage and filenames.
func (d Date) String() string {
	return d.Format(isoDate)
}

// Display returns the day/month/year form shown to the user.
func (d Date) Display() string {
	return d.Format("2/1/2006")
}

// SameDay compares calendar days, ignoring time of day and location.
func (d Date) SameDay(o Date) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := o.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// After reports whether d is a later calendar day than o.
func (d Date) After(o Date) bool {
	y1, m1, d1 := d.Date()
	y2, m2, d2 := o.Date()
	if y1 != y2 {
		return y1 > y2
	}
	if m1 != m2 {
		return m1 > m2
	}
	return d1 > d2
}
