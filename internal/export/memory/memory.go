// Package memory is an in-process report sink used in tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"bilancio/internal/export"
)

type Writer struct {
	mu      sync.Mutex
	reports []export.MonthlyReport
}

func New() *Writer {
	return &Writer{}
}

// Write stores the report and returns a synthetic reference.
func (w *Writer) Write(_ context.Context, report export.MonthlyReport) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reports = append(w.reports, report)
	return fmt.Sprintf("mem:%d", len(w.reports)), nil
}

// Reports returns a copy of everything written so far.
func (w *Writer) Reports() []export.MonthlyReport {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]export.MonthlyReport(nil), w.reports...)
}
