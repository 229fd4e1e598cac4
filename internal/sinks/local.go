package sinks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"finanzas/internal/report"
)

var (
	_ Sink = (*FileSink)(nil)
	_ Sink = (*PDFSink)(nil)
	_ Sink = (*WriterSink)(nil)
)

// FileSink writes the text report as finanzas_<date>.txt into a directory.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Deliver(ctx context.Context, r Report) (string, error) {
	return writeInto(ctx, s.dir, r.Filename("txt"), []byte(r.Text))
}

// PDFSink renders the report days as finanzas_<date>.pdf.
type PDFSink struct {
	dir string
}

func NewPDFSink(dir string) *PDFSink {
	return &PDFSink{dir: dir}
}

func (s *PDFSink) Name() string { return "pdf" }

func (s *PDFSink) Deliver(ctx context.Context, r Report) (string, error) {
	var buf bytes.Buffer
	if err := report.PDF(&buf, r.Days, r.Generated); err != nil {
		return "", err
	}
	return writeInto(ctx, s.dir, r.Filename("pdf"), buf.Bytes())
}

// WriterSink copies the text report to w, usually stdout.
type WriterSink struct {
	name string
	w    io.Writer
}

func NewWriterSink(name string, w io.Writer) *WriterSink {
	return &WriterSink{name: name, w: w}
}

func (s *WriterSink) Name() string { return s.name }

func (s *WriterSink) Deliver(ctx context.Context, r Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := io.WriteString(s.w, r.Text+"\n"); err != nil {
		return "", fmt.Errorf("write report to %s: %w", s.name, err)
	}
	return s.name, nil
}

func writeInto(ctx context.Context, dir, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}
