// Package ledger holds the day-keyed ledger and keeps it in sync with
// durable storage.
//
// Every mutating operation writes the whole ledger to storage before it
// returns. If that write fails the change is kept in memory and the error
// wraps ErrStorageWrite; the next successful write persists it.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finanzas/internal/core"
	applog "finanzas/internal/log"
)

type Store struct {
	mu      sync.Mutex
	storage Storage
	days    []core.DayLedger
	loc     *time.Location
	nowFn   func() time.Time
	logger  *applog.Logger
	loadErr error
}

type Option func(*Store)

// WithLocation sets the time zone calendar days are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

func WithLogger(l *applog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open hydrates a store from storage. Unreadable or corrupt data does not
// fail the call: the store starts empty and LoadErr reports what was lost.
// The discarded data is overwritten by the next mutation.
func Open(ctx context.Context, storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		days:    []core.DayLedger{},
		loc:     time.Local,
		nowFn:   time.Now,
		logger:  applog.New(applog.Config{Component: applog.ComponentLedger, Handler: slog.Default().Handler()}),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := storage.Load(ctx)
	if err != nil {
		s.loadErr = fmt.Errorf("%w: %v", ErrStorageRead, err)
	} else if len(data) > 0 {
		days, err := Decode(data, s.loc)
		if err != nil {
			s.loadErr = fmt.Errorf("%w: %v", ErrStorageRead, err)
		} else {
			unique, merged := MergeDuplicates(days)
			if merged > 0 {
				s.logger.WarnContext(ctx, "Merged stored days sharing a date",
					applog.FieldOperation, applog.OpLoad,
					"merged", merged)
			}
			s.days = unique
		}
	}

	if s.loadErr != nil {
		s.logger.WarnContext(ctx, "Starting with an empty ledger",
			applog.FieldOperation, applog.OpLoad,
			applog.FieldError, s.loadErr.Error())
	} else {
		s.logger.InfoContext(ctx, "Ledger loaded",
			applog.FieldOperation, applog.OpLoad,
			"days", len(s.days))
	}
	return s
}

// LoadErr returns the error that made Open discard stored data, if any.
func (s *Store) LoadErr() error {
	return s.loadErr
}

// Today is the current calendar day in the store's time zone.
func (s *Store) Today() core.Date {
	return core.DateOf(s.nowFn().In(s.loc))
}

// Location is the time zone calendar days are evaluated in.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Days returns a copy of every day in display order.
func (s *Store) Days() []core.DayLedger {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.DayLedger, len(s.days))
	for i, d := range s.days {
		out[i] = d.Clone()
	}
	return out
}

// Day returns a copy of the day for date.
func (s *Store) Day(date core.Date) (core.DayLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexLocked(date)
	if err != nil {
		return core.DayLedger{}, err
	}
	return s.days[i].Clone(), nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.days)
}

// Validate checks whether date could be added without changing the store.
func (s *Store) Validate(date core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateLocked(s.normalize(date), true)
}

// AddDay appends a new day for date. It fails with ErrFutureDate when date
// is after today and with ErrDuplicateDate when the day already exists.
func (s *Store) AddDay(ctx context.Context, date core.Date) (core.DayLedger, error) {
	return s.addDay(ctx, s.normalize(date), true)
}

// AddToday appends a day for the current date. It can only fail with
// ErrDuplicateDate or a storage error.
func (s *Store) AddToday(ctx context.Context) (core.DayLedger, error) {
	return s.addDay(ctx, s.Today(), false)
}

func (s *Store) addDay(ctx context.Context, date core.Date, checkFuture bool) (core.DayLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateLocked(date, checkFuture); err != nil {
		s.logger.WarnContext(ctx, "Day rejected",
			applog.FieldOperation, applog.OpCreate,
			applog.FieldDate, date.String(),
			applog.FieldError, err.Error())
		return core.DayLedger{}, err
	}

	day := core.NewDayLedger(date)
	s.days = append(s.days, day)
	s.logger.InfoContext(ctx, "Day added",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldDate, date.String(),
		"days", len(s.days))

	return day.Clone(), s.persistLocked(ctx)
}

// RemoveDay deletes the day for date.
func (s *Store) RemoveDay(ctx context.Context, date core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookupLocked(ctx, date)
	if err != nil {
		return err
	}
	s.days = append(s.days[:i], s.days[i+1:]...)
	s.logger.InfoContext(ctx, "Day removed",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldDate, date.String())

	return s.persistLocked(ctx)
}

// AddEntry appends a blank entry to one collection of a day and returns
// its index.
func (s *Store) AddEntry(ctx context.Context, date core.Date, kind core.Kind) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !kind.Valid() {
		return 0, s.programmingError(ctx, fmt.Errorf("%w: %q", core.ErrInvalidKind, kind))
	}
	i, err := s.lookupLocked(ctx, date)
	if err != nil {
		return 0, err
	}
	entries := append(s.days[i].Entries(kind), core.Entry{})
	s.setEntries(i, kind, entries)
	s.logger.InfoContext(ctx, "Entry added",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldDate, date.String(),
		applog.FieldKind, kind.String(),
		applog.FieldEntryIndex, len(entries)-1)

	return len(entries) - 1, s.persistLocked(ctx)
}

// UpdateEntry sets one field of an entry. Values are not validated, so an
// amount may hold partial input such as "12." while the user types.
func (s *Store) UpdateEntry(ctx context.Context, date core.Date, kind core.Kind, index int, field core.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.entryLocked(ctx, date, kind, index)
	if err != nil {
		return err
	}
	entry := s.days[i].Entries(kind)[index]
	if err := entry.Set(field, value); err != nil {
		return s.programmingError(ctx, err)
	}
	s.days[i].Entries(kind)[index] = entry
	fields := applog.NewFields().
		WithOperation(applog.OpUpdate).
		WithEntry(date.String(), kind.String(), index)
	fields[applog.FieldField] = field.String()
	s.logger.LogFields(ctx, slog.LevelInfo, "Entry updated", fields)

	return s.persistLocked(ctx)
}

// RemoveEntry deletes one entry. A collection may end up empty.
func (s *Store) RemoveEntry(ctx context.Context, date core.Date, kind core.Kind, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.entryLocked(ctx, date, kind, index)
	if err != nil {
		return err
	}
	entries := s.days[i].Entries(kind)
	entries = append(entries[:index], entries[index+1:]...)
	s.setEntries(i, kind, entries)
	s.logger.LogFields(ctx, slog.LevelInfo, "Entry removed", applog.NewFields().
		WithOperation(applog.OpDelete).
		WithEntry(date.String(), kind.String(), index))

	return s.persistLocked(ctx)
}

// ClearAll drops every day and erases durable storage. It does not ask for
// confirmation; callers are expected to have done that.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := len(s.days)
	s.days = []core.DayLedger{}
	if err := s.storage.Erase(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to erase stored ledger",
			applog.FieldOperation, applog.OpClear,
			applog.FieldError, err.Error())
		return fmt.Errorf("%w: erase: %v", ErrStorageWrite, err)
	}
	s.logger.InfoContext(ctx, "Ledger cleared",
		applog.FieldOperation, applog.OpClear,
		"days_removed", removed)
	return nil
}

func (s *Store) normalize(date core.Date) core.Date {
	if date.Location() == s.loc {
		return core.DateOf(date.Time)
	}
	y, m, d := date.Date()
	return core.NewDate(y, int(m), d, s.loc)
}

func (s *Store) validateLocked(date core.Date, checkFuture bool) error {
	if checkFuture {
		if today := s.Today(); date.After(today) {
			return fmt.Errorf("%w: %s is after %s", ErrFutureDate, date, today)
		}
	}
	for _, d := range s.days {
		if d.Date.SameDay(date) {
			return fmt.Errorf("%w: %s", ErrDuplicateDate, date)
		}
	}
	return nil
}

func (s *Store) indexLocked(date core.Date) (int, error) {
	for i, d := range s.days {
		if d.Date.SameDay(date) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: day %s", ErrNotFound, date)
}

func (s *Store) lookupLocked(ctx context.Context, date core.Date) (int, error) {
	i, err := s.indexLocked(date)
	if err != nil {
		return 0, s.programmingError(ctx, err)
	}
	return i, nil
}

func (s *Store) entryLocked(ctx context.Context, date core.Date, kind core.Kind, index int) (int, error) {
	if !kind.Valid() {
		return 0, s.programmingError(ctx, fmt.Errorf("%w: %q", core.ErrInvalidKind, kind))
	}
	i, err := s.lookupLocked(ctx, date)
	if err != nil {
		return 0, err
	}
	if n := len(s.days[i].Entries(kind)); index < 0 || index >= n {
		return 0, s.programmingError(ctx, fmt.Errorf("%w: %s entry %d of %d on %s", ErrNotFound, kind, index, n, date))
	}
	return i, nil
}

func (s *Store) setEntries(i int, kind core.Kind, entries []core.Entry) {
	if kind == core.Income {
		s.days[i].Incomes = entries
	} else {
		s.days[i].Expenses = entries
	}
}

// programmingError logs references that cannot be valid, such as a stale
// index held by the caller.
func (s *Store) programmingError(ctx context.Context, err error) error {
	s.logger.ErrorContext(ctx, "Invalid ledger reference",
		applog.FieldErrorType, applog.ErrorTypeNotFound,
		applog.FieldError, err.Error())
	return err
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := Encode(s.days)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	if err := s.storage.Save(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save ledger",
			applog.FieldOperation, applog.OpSave,
			applog.FieldError, err.Error())
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	s.logger.DebugContext(ctx, "Ledger saved",
		applog.FieldOperation, applog.OpSave,
		applog.FieldBytes, len(data))
	return nil
}
