package memory

import (
	"context"
	"fmt"
	"sync"

	"finanzas/internal/sinks"
)

var _ sinks.Sink = (*Sink)(nil)

// Sink keeps delivered reports in memory.
type Sink struct {
	mu      sync.Mutex
	name    string
	fail    error
	reports []sinks.Report
}

func New(name string) *Sink {
	if name == "" {
		name = "memory"
	}
	return &Sink{name: name}
}

// FailWith makes every following delivery return err; nil restores success.
func (s *Sink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *Sink) Name() string { return s.name }

// Deliver stores the report and returns a synthetic reference.
func (s *Sink) Deliver(ctx context.Context, r sinks.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return "", s.fail
	}
	s.reports = append(s.reports, r)
	return fmt.Sprintf("mem:%d", len(s.reports)), nil
}

// Reports returns what was delivered so far.
func (s *Sink) Reports() []sinks.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sinks.Report(nil), s.reports...)
}
