package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kengo-k/taxdesk-sub002/internal/core"
	"github.com/kengo-k/taxdesk-sub002/internal/log"
	"github.com/kengo-k/taxdesk-sub002/internal/sheets"
)

// Base names of the exported sheets. Each is prefixed with the fiscal year.
const (
	SheetPaymentSummary = "Payroll Summary"
	SheetCheckStatuses  = "Check Status"
	SheetCashBalance    = "Cash Balance"
)

type FiscalYearLister interface {
	ListFiscalYears(ctx context.Context) ([]core.FiscalYear, error)
}

// ExporterConfig holds configuration for the report exporter
type ExporterConfig struct {
	// Interval between full exports of every open fiscal year (default: 15m)
	Interval time.Duration
}

func DefaultExporterConfig() ExporterConfig {
	return ExporterConfig{Interval: 15 * time.Minute}
}

// ReportExporter writes the payroll summary, check statuses and cash balance
// of a fiscal year to a ReportWriter, on demand or periodically.
type ReportExporter struct {
	reports *ReportAssembler
	years   FiscalYearLister
	writer  sheets.ReportWriter
	config  ExporterConfig
	logger  *log.Logger

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewReportExporter(reports *ReportAssembler, years FiscalYearLister, writer sheets.ReportWriter, config ExporterConfig, logger *log.Logger) *ReportExporter {
	if config.Interval <= 0 {
		config.Interval = DefaultExporterConfig().Interval
	}
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &ReportExporter{
		reports: reports,
		years:   years,
		writer:  writer,
		config:  config,
		logger:  logger.WithComponent(log.ComponentSheets),
	}
}

// Export recomputes the three export reports for fiscalYear and overwrites their sheets.
func (e *ReportExporter) Export(ctx context.Context, fiscalYear string) error {
	results, err := e.reports.Assemble(ctx, fiscalYear, []ReportRequest{
		PaymentSummaryRequest{},
		CheckStatusRequest{},
		CashBalanceRequest{},
	})
	if err != nil {
		return fmt.Errorf("assemble export reports: %w", err)
	}

	for _, r := range results {
		var (
			base   string
			header []string
			rows   [][]string
		)
		switch data := r.Data.(type) {
		case []core.MonthPaymentSummary:
			base = SheetPaymentSummary
			header, rows = paymentSummaryTable(data)
		case []core.MonthCheckStatus:
			base = SheetCheckStatuses
			header, rows = checkStatusTable(data)
		case core.CashBalance:
			base = SheetCashBalance
			header, rows = cashBalanceTable(data)
		default:
			return fmt.Errorf("unexpected export data %T", r.Data)
		}
		sheet := sheets.SheetName(fiscalYear, base)
		if err := e.writer.WriteTable(ctx, sheet, header, rows); err != nil {
			return fmt.Errorf("write %s: %w", sheet, err)
		}
	}

	e.logger.InfoContext(ctx, "Fiscal year exported",
		log.FieldFiscalYear, fiscalYear,
		log.FieldOperation, log.OpExport)
	return nil
}

// ExportAll exports every fiscal year that is not fixed. Failures are logged
// and the remaining years are still exported; the first error is returned.
func (e *ReportExporter) ExportAll(ctx context.Context) error {
	years, err := e.years.ListFiscalYears(ctx)
	if err != nil {
		return fmt.Errorf("list fiscal years: %w", err)
	}
	var first error
	for _, fy := range years {
		if fy.Fixed {
			continue
		}
		if err := e.Export(ctx, fy.Code); err != nil {
			e.logger.ErrorContext(ctx, "Export failed",
				log.FieldFiscalYear, fy.Code,
				log.FieldError, err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Start begins the periodic export loop. Returns an error if already running.
func (e *ReportExporter) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return fmt.Errorf("report exporter is already running")
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	e.mu.Unlock()

	go e.runLoop(ctx)

	e.logger.InfoContext(ctx, "Report exporter started", "interval", e.config.Interval)
	return nil
}

// Stop signals the loop and waits for it to finish or for ctx to expire.
func (e *ReportExporter) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	stopCh, doneCh := e.stopCh, e.doneCh
	e.running = false
	e.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		e.logger.InfoContext(ctx, "Report exporter stopped gracefully")
		return nil
	case <-ctx.Done():
		e.logger.WarnContext(ctx, "Report exporter stop timed out")
		return ctx.Err()
	}
}

func (e *ReportExporter) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *ReportExporter) runLoop(ctx context.Context) {
	defer close(e.doneCh)

	ticker := time.NewTicker(e.config.Interval)
	defer ticker.Stop()

	// Export immediately on startup
	_ = e.ExportAll(ctx)

	for {
		select {
		case <-e.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = e.ExportAll(ctx)
		}
	}
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func paymentSummaryTable(data []core.MonthPaymentSummary) ([]string, [][]string) {
	header := []string{"month", "isPaid", "totalCount", "uncheckedCount", "allChecked"}
	rows := make([][]string, 0, len(data))
	for _, m := range data {
		rows = append(rows, []string{
			strconv.Itoa(m.Month),
			strconv.FormatBool(m.IsPaid),
			itoa(m.TotalCount),
			itoa(m.UncheckedCount),
			strconv.FormatBool(m.AllChecked),
		})
	}
	return header, rows
}

func checkStatusTable(data []core.MonthCheckStatus) ([]string, [][]string) {
	header := []string{"month", "totalCount", "checkedCount", "uncheckedCount", "allChecked"}
	rows := make([][]string, 0, len(data))
	for _, m := range data {
		rows = append(rows, []string{
			strconv.Itoa(m.Month),
			itoa(m.TotalCount),
			itoa(m.CheckedCount),
			itoa(m.UncheckedCount),
			strconv.FormatBool(m.AllChecked),
		})
	}
	return header, rows
}

func cashBalanceTable(data core.CashBalance) ([]string, [][]string) {
	header := []string{"category", "name", "debit", "credit", "balance"}
	rows := make([][]string, 0, len(data.Entries)+1)
	for _, e := range data.Entries {
		rows = append(rows, []string{
			e.CategoryCode,
			e.CategoryName,
			itoa(int64(e.Debit)),
			itoa(int64(e.Credit)),
			itoa(int64(e.Balance)),
		})
	}
	rows = append(rows, []string{"total", "", itoa(int64(data.Total)), "", itoa(int64(data.NetTotal))})
	return header, rows
}
