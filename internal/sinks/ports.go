package sinks

import (
	"context"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/report"
)

// Report is one rendered export handed to every sink.
type Report struct {
	Generated time.Time
	Text      string
	Days      []core.DayLedger
}

// Filename is the date-stamped name for this report with the given extension.
func (r Report) Filename(ext string) string {
	return report.Filename(r.Generated, ext)
}

// Sink delivers a report somewhere outside the process. The returned ref
// identifies the delivered artifact (a path, a message id, a sheet range).
type Sink interface {
	Name() string
	Deliver(ctx context.Context, r Report) (ref string, err error)
}
