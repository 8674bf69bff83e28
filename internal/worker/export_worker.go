package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kengo-k/taxdesk-sub002/internal/amqp"
	"github.com/kengo-k/taxdesk-sub002/internal/log"
)

// Exporter re-exports the reports of a fiscal year.
type Exporter interface {
	Export(ctx context.Context, fiscalYear string) error
}

// ExportWorker keeps exported sheets in step with the ledger by reacting to ledger events.
type ExportWorker struct {
	exporter Exporter
	logger   *log.Logger
	// minGap spaces exports of the same fiscal year. Events arriving sooner
	// are folded into one deferred export at the end of the gap.
	minGap   time.Duration
	now      func() time.Time
	schedule func(d time.Duration, f func()) func() bool

	mu      sync.Mutex
	last    map[string]time.Time
	pending map[string]func() bool
}

func NewExportWorker(exporter Exporter, minGap time.Duration, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &ExportWorker{
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
		minGap:   minGap,
		now:      time.Now,
		schedule: func(d time.Duration, f func()) func() bool { return time.AfterFunc(d, f).Stop },
		last:     make(map[string]time.Time),
		pending:  make(map[string]func() bool),
	}
}

// HandleEvent processes a single ledger event from AMQP
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	w.logger.InfoContext(ctx, "Processing ledger event",
		log.FieldEventID, event.ID,
		log.FieldEventType, event.Type,
		log.FieldFiscalYear, event.FiscalYear)

	if wait, deferred := w.reserve(ctx, event.FiscalYear); deferred {
		w.logger.DebugContext(ctx, "Deferring export, fiscal year exported recently",
			log.FieldFiscalYear, event.FiscalYear,
			"wait", wait)
		return nil
	}
	return w.export(ctx, event.FiscalYear)
}

// Close cancels deferred exports that have not started yet.
func (w *ExportWorker) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for fy, stop := range w.pending {
		stop()
		delete(w.pending, fy)
	}
}

func (w *ExportWorker) export(ctx context.Context, fiscalYear string) error {
	if err := w.exporter.Export(ctx, fiscalYear); err != nil {
		w.forget(fiscalYear)
		return fmt.Errorf("export fiscal year %s: %w", fiscalYear, err)
	}
	return nil
}

// reserve records an export starting now, or, inside the gap, makes sure a
// single deferred export is scheduled for when the gap ends.
func (w *ExportWorker) reserve(ctx context.Context, fiscalYear string) (time.Duration, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.now()
	last, ok := w.last[fiscalYear]
	if !ok || w.minGap <= 0 || now.Sub(last) >= w.minGap {
		w.last[fiscalYear] = now
		return 0, false
	}

	wait := w.minGap - now.Sub(last)
	if _, scheduled := w.pending[fiscalYear]; !scheduled {
		runCtx := context.WithoutCancel(ctx)
		w.pending[fiscalYear] = w.schedule(wait, func() { w.runDeferred(runCtx, fiscalYear) })
	}
	return wait, true
}

func (w *ExportWorker) runDeferred(ctx context.Context, fiscalYear string) {
	w.mu.Lock()
	delete(w.pending, fiscalYear)
	w.last[fiscalYear] = w.now()
	w.mu.Unlock()

	if err := w.export(ctx, fiscalYear); err != nil {
		w.logger.ErrorContext(ctx, "Deferred export failed",
			log.FieldFiscalYear, fiscalYear,
			log.FieldError, err)
	}
}

func (w *ExportWorker) forget(fiscalYear string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.last, fiscalYear)
}
