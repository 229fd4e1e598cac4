package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"finanzas/internal/core"
	applog "finanzas/internal/log"
	"finanzas/internal/report"
	"finanzas/internal/sinks"
)

// ErrNoSinks is returned by Export when no sink is configured.
var ErrNoSinks = errors.New("no export sinks configured")

// Snapshot provides the days to export. *ledger.Store satisfies it.
type Snapshot interface {
	Days() []core.DayLedger
}

// ExportResult holds the delivered report and the ref each sink returned.
type ExportResult struct {
	Report sinks.Report
	Refs   map[string]string
}

// ExportService renders the ledger once and hands it to every sink.
type ExportService struct {
	source  Snapshot
	sinks   []sinks.Sink
	now     func() time.Time
	timeout time.Duration
	summary bool
	logger  *applog.Logger
}

func NewExportService(source Snapshot, out []sinks.Sink, timeout time.Duration, logger *applog.Logger) *ExportService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ExportService{
		source:  source,
		sinks:   out,
		now:     time.Now,
		timeout: timeout,
		logger:  logger.WithComponent(applog.ComponentExport),
	}
}

// IncludeSummary appends a grand-total block over all days to the text.
func (s *ExportService) IncludeSummary(on bool) {
	s.summary = on
}

// Export delivers the report to all sinks concurrently. The first failure
// cancels the others and is returned; refs of sinks that finished are kept.
func (s *ExportService) Export(ctx context.Context) (ExportResult, error) {
	if len(s.sinks) == 0 {
		return ExportResult{}, ErrNoSinks
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	days := s.source.Days()
	text := report.Export(days)
	if s.summary {
		text = report.Summary(days)
	}
	r := sinks.Report{
		Generated: s.now(),
		Text:      text,
		Days:      days,
	}
	result := ExportResult{Report: r, Refs: make(map[string]string, len(s.sinks))}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, sink := range s.sinks {
		sink := sink
		g.Go(func() error {
			start := time.Now()
			ref, err := sink.Deliver(gctx, r)
			elapsed := time.Since(start).Milliseconds()

			fields := applog.NewFields().
				WithOperation(applog.OpDeliver).
				WithSink(sink.Name(), ref, elapsed, err == nil)
			if err != nil {
				s.logger.LogFields(gctx, slog.LevelError, "Export sink failed",
					fields.WithErrorType(deliveryErrorType(err)).WithError(err))
				return fmt.Errorf("%s: %w", sink.Name(), err)
			}
			s.logger.LogFields(gctx, slog.LevelInfo, "Export delivered", fields)

			mu.Lock()
			result.Refs[sink.Name()] = ref
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("export: %w", err)
	}

	s.logger.InfoContext(ctx, "Export finished",
		applog.FieldOperation, applog.OpExport,
		"days", len(days),
		"sinks", len(s.sinks))
	return result, nil
}

func deliveryErrorType(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return applog.ErrorTypeNetwork
	}
	return applog.ErrorTypeInternal
}

// Close releases sinks that hold connections.
func (s *ExportService) Close() error {
	var errs []error
	for _, sink := range s.sinks {
		if c, ok := sink.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
