package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/sinks"
	"finanzas/internal/sinks/memory"
)

type staticSnapshot []core.DayLedger

func (s staticSnapshot) Days() []core.DayLedger { return s }

// blockingSink waits for cancellation and records that it saw it.
type blockingSink struct {
	cancelled chan struct{}
	closed    bool
}

func (b *blockingSink) Name() string { return "blocking" }

func (b *blockingSink) Deliver(ctx context.Context, _ sinks.Report) (string, error) {
	<-ctx.Done()
	close(b.cancelled)
	return "", ctx.Err()
}

func (b *blockingSink) Close() error {
	b.closed = true
	return nil
}

func testLogger() (*applog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return applog.New(applog.Config{Output: &buf}), &buf
}

func exampleDays() staticSnapshot {
	d := core.NewDayLedger(core.NewDate(2024, 1, 15, time.UTC))
	d.Incomes[0] = core.Entry{Name: "Salary", Amount: "1000"}
	d.Expenses[0] = core.Entry{Name: "Rent", Amount: "400"}
	return staticSnapshot{d}
}

func TestExportFansOutToAllSinks(t *testing.T) {
	logger, buf := testLogger()
	a, b := memory.New("a"), memory.New("b")
	svc := NewExportService(exampleDays(), []sinks.Sink{a, b}, time.Second, logger)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC) }

	res, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "mem:1", "b": "mem:1"}, res.Refs)
	assert.Contains(t, res.Report.Text, "Saldo Neto: $600.00")
	assert.Equal(t, "finanzas_2024-03-10.txt", res.Report.Filename("txt"))

	require.Len(t, a.Reports(), 1)
	assert.Equal(t, res.Report.Text, a.Reports()[0].Text)
	assert.Equal(t, res.Report.Text, b.Reports()[0].Text)
	assert.Contains(t, buf.String(), "component=export")
	assert.Contains(t, buf.String(), "sink=a")
}

func TestExportWithSummary(t *testing.T) {
	sink := memory.New("")
	svc := NewExportService(exampleDays(), []sinks.Sink{sink}, 0, nil)

	res, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, res.Report.Text, "Resumen")

	svc.IncludeSummary(true)
	res, err = svc.Export(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Report.Text, "Fecha: 15/1/2024"))
	assert.Contains(t, res.Report.Text, "Resumen (1 días)\nTotal Ingresos: $1000.00")
}

func TestExportFailsWhenAnySinkFails(t *testing.T) {
	logger, buf := testLogger()
	ok := memory.New("ok")
	broken := memory.New("broken")
	boom := errors.New("disk full")
	broken.FailWith(boom)

	svc := NewExportService(exampleDays(), []sinks.Sink{ok, broken}, 0, logger)
	res, err := svc.Export(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.NotContains(t, res.Refs, "broken")
	assert.Contains(t, buf.String(), "Export sink failed")
}

func TestExportFailureCancelsSlowSinks(t *testing.T) {
	logger, _ := testLogger()
	slow := &blockingSink{cancelled: make(chan struct{})}
	broken := memory.New("broken")
	broken.FailWith(errors.New("boom"))

	svc := NewExportService(exampleDays(), []sinks.Sink{slow, broken}, 0, logger)
	_, err := svc.Export(context.Background())
	require.Error(t, err)

	select {
	case <-slow.cancelled:
	case <-time.After(time.Second):
		t.Fatal("slow sink was not cancelled")
	}
}

func TestExportTimeout(t *testing.T) {
	logger, _ := testLogger()
	slow := &blockingSink{cancelled: make(chan struct{})}
	svc := NewExportService(exampleDays(), []sinks.Sink{slow}, 10*time.Millisecond, logger)

	_, err := svc.Export(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExportWithoutSinks(t *testing.T) {
	svc := NewExportService(exampleDays(), nil, 0, nil)
	_, err := svc.Export(context.Background())
	require.ErrorIs(t, err, ErrNoSinks)
}

func TestCloseClosesConnectionHoldingSinks(t *testing.T) {
	slow := &blockingSink{cancelled: make(chan struct{})}
	svc := NewExportService(exampleDays(), []sinks.Sink{memory.New(""), slow}, 0, nil)
	require.NoError(t, svc.Close())
	assert.True(t, slow.closed)
}
