package ledger

import (
	"context"
	"errors"
	"fmt"

	"finanzas/internal/core"
)

// FlowState is a step of adding a day.
type FlowState int

const (
	Idle FlowState = iota
	DateSelectionPending
	Validated
	Committed
	Rejected
)

func (s FlowState) String() string {
	switch s {
	case Idle:
		return "idle"
	case DateSelectionPending:
		return "date_selection_pending"
	case Validated:
		return "validated"
	case Committed:
		return "committed"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("flow_state(%d)", int(s))
	}
}

// Rejection is the reason a selected date was refused.
type Rejection string

const (
	NoRejection        Rejection = ""
	FutureDateRejected Rejection = "future_date"
	DuplicateRejected  Rejection = "duplicate_date"
)

var ErrFlowState = errors.New("operation not allowed in current state")

// AddDayFlow drives the add-day interaction:
//
//	Idle -> DateSelectionPending -> Validated -> Committed
//	Idle -> DateSelectionPending -> Rejected -> DateSelectionPending
//
// The today shortcut skips date selection and can only be rejected for a
// duplicate date. A committed or cancelled flow returns to Idle on Begin.
type AddDayFlow struct {
	store     *Store
	state     FlowState
	date      core.Date
	today     bool
	rejection Rejection
	err       error
}

func NewAddDayFlow(store *Store) *AddDayFlow {
	return &AddDayFlow{store: store}
}

func (f *AddDayFlow) State() FlowState     { return f.state }
func (f *AddDayFlow) Rejection() Rejection { return f.rejection }
func (f *AddDayFlow) Date() core.Date      { return f.date }

// Err is the validation error behind the current rejection.
func (f *AddDayFlow) Err() error { return f.err }

// Begin opens date selection. It is the user pressing "add day".
func (f *AddDayFlow) Begin() error {
	switch f.state {
	case Idle, Committed:
		f.reset()
		f.state = DateSelectionPending
		return nil
	default:
		return fmt.Errorf("%w: begin from %s", ErrFlowState, f.state)
	}
}

// Select validates a picked date. A rejected date leaves the flow in
// Rejected; selecting again retries. A rejected today shortcut has no date
// selection and only accepts Retry or Cancel.
func (f *AddDayFlow) Select(date core.Date) error {
	if f.state != DateSelectionPending && (f.state != Rejected || f.today) {
		return fmt.Errorf("%w: select from %s", ErrFlowState, f.state)
	}
	f.date = date
	f.today = false
	return f.validate(f.store.Validate(date))
}

// Today validates the current date, skipping date selection.
func (f *AddDayFlow) Today() error {
	if f.state != Idle && f.state != Committed {
		return fmt.Errorf("%w: today from %s", ErrFlowState, f.state)
	}
	f.reset()
	f.date = f.store.Today()
	f.today = true
	err := f.store.Validate(f.date)
	return f.validate(err)
}

// Commit adds the validated day to the store.
func (f *AddDayFlow) Commit(ctx context.Context) (core.DayLedger, error) {
	if f.state != Validated {
		return core.DayLedger{}, fmt.Errorf("%w: commit from %s", ErrFlowState, f.state)
	}
	var (
		day core.DayLedger
		err error
	)
	if f.today {
		day, err = f.store.AddToday(ctx)
	} else {
		day, err = f.store.AddDay(ctx, f.date)
	}
	if err != nil && !errors.Is(err, ErrStorageWrite) {
		// the store changed between validation and commit
		return day, f.validate(err)
	}
	f.state = Committed
	return day, err
}

// Cancel abandons date selection.
func (f *AddDayFlow) Cancel() {
	f.reset()
}

// Retry returns a rejected flow to date selection. The today shortcut has
// nothing to retry and goes back to Idle.
func (f *AddDayFlow) Retry() error {
	if f.state != Rejected {
		return fmt.Errorf("%w: retry from %s", ErrFlowState, f.state)
	}
	if f.today {
		f.reset()
		return nil
	}
	f.state = DateSelectionPending
	f.rejection = NoRejection
	f.err = nil
	return nil
}

func (f *AddDayFlow) validate(err error) error {
	switch {
	case err == nil:
		f.state = Validated
		f.rejection = NoRejection
		f.err = nil
		return nil
	case errors.Is(err, ErrFutureDate) && !f.today:
		f.rejection = FutureDateRejected
	case errors.Is(err, ErrDuplicateDate):
		f.rejection = DuplicateRejected
	default:
		return err
	}
	f.state = Rejected
	f.err = err
	return err
}

func (f *AddDayFlow) reset() {
	f.state = Idle
	f.date = core.Date{}
	f.today = false
	f.rejection = NoRejection
	f.err = nil
}
