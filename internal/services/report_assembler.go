package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kengo-k/taxdesk-sub002/internal/core"
	"github.com/kengo-k/taxdesk-sub002/internal/log"
)

type CheckStatusLister interface {
	ListCheckedStatuses(ctx context.Context, fiscalYear string) ([]core.MonthCheckStatus, error)
}

type PaymentStatusLister interface {
	GetPaymentStatuses(ctx context.Context, fiscalYear string) ([]core.PayrollPayment, error)
	PaymentSummary(ctx context.Context, fiscalYear string) ([]core.MonthPaymentSummary, error)
}

// ReportAssembler answers a batch of report requests for one fiscal year.
type ReportAssembler struct {
	agg         *Aggregator
	checks      CheckStatusLister
	payments    PaymentStatusLister
	concurrency int
	logger      *log.Logger
}

func NewReportAssembler(agg *Aggregator, checks CheckStatusLister, payments PaymentStatusLister, concurrency int, logger *log.Logger) *ReportAssembler {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &ReportAssembler{
		agg:         agg,
		checks:      checks,
		payments:    payments,
		concurrency: concurrency,
		logger:      logger.WithComponent(log.ComponentReports),
	}
}

// Assemble stamps fiscalYear onto every request, runs them concurrently and
// returns the results in request order. The first failure cancels the rest.
func (ra *ReportAssembler) Assemble(ctx context.Context, fiscalYear string, requests []ReportRequest) ([]ReportResult, error) {
	if _, err := core.ParseFiscalYear(fiscalYear); err != nil {
		return nil, err
	}

	results := make([]ReportResult, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ra.concurrency)
	for i, req := range requests {
		i, req := i, req.withFiscalYear(fiscalYear)
		g.Go(func() error {
			data, err := ra.run(gctx, req)
			if err != nil {
				return err
			}
			results[i] = ReportResult{Type: req.ReportType(), Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		ra.logger.WarnContext(ctx, "Report batch failed",
			log.FieldFiscalYear, fiscalYear,
			log.FieldErrorCode, core.CodeOf(err),
			log.FieldError, err)
		return nil, err
	}

	ra.logger.DebugContext(ctx, "Report batch assembled",
		log.FieldFiscalYear, fiscalYear,
		log.FieldCount, len(requests))
	return results, nil
}

// run is the single dispatch point for every request variant.
func (ra *ReportAssembler) run(ctx context.Context, req ReportRequest) (any, error) {
	switch r := req.(type) {
	case BreakdownRequest:
		return ra.agg.Breakdown(ctx, r.FiscalYear, BreakdownQuery{
			Kind:         r.Kind,
			Granularity:  r.Granularity,
			CategoryCode: r.CategoryCode,
		})
	case CountByAccountRequest:
		return ra.agg.CountByAccount(ctx, r.FiscalYear)
	case CountLedgerRequest:
		month, err := core.ParseMonthFilter(r.Month)
		if err != nil {
			return nil, err
		}
		n, err := ra.agg.CountLedgers(ctx, r.FiscalYear, r.Account, month)
		if err != nil {
			return nil, err
		}
		return map[string]int64{"count": n}, nil
	case CashBalanceRequest:
		return ra.agg.CashBalance(ctx, r.FiscalYear)
	case CheckStatusRequest:
		return ra.checks.ListCheckedStatuses(ctx, r.FiscalYear)
	case PaymentStatusRequest:
		return ra.payments.GetPaymentStatuses(ctx, r.FiscalYear)
	case PaymentSummaryRequest:
		return ra.payments.PaymentSummary(ctx, r.FiscalYear)
	default:
		return nil, core.Validation(core.CodeUnknownReportType, "unsupported report request %T", req)
	}
}
