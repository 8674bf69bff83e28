package services

import (
	"context"

	"github.com/kengo-k/taxdesk-sub002/internal/amqp"
	"github.com/kengo-k/taxdesk-sub002/internal/core"
	"github.com/kengo-k/taxdesk-sub002/internal/log"
)

// PaymentReader looks up payroll rows for a set of months in one read.
// Both the repository and a transaction-bound store satisfy it.
type PaymentReader interface {
	PaymentStatusesForMonths(ctx context.Context, fiscalYear string, months []int) ([]core.PayrollPayment, error)
}

type PayrollStore interface {
	PaymentReader
	ListPayrollPayments(ctx context.Context, fiscalYear string) ([]core.PayrollPayment, error)
	UpsertPayrollPayment(ctx context.Context, fiscalYear string, month int, isPaid bool) (core.PayrollPayment, error)
	CountCheckedByMonth(ctx context.Context, fiscalYear string) ([]core.MonthCheckStatus, error)
}

// PayrollGate answers whether payroll for a month is finalized and vetoes
// review changes to journals dated in a finalized month.
type PayrollGate struct {
	store PayrollStore
	notifier
}

func NewPayrollGate(store PayrollStore, opts ...Option) *PayrollGate {
	return &PayrollGate{
		store:    store,
		notifier: newNotifier(log.ComponentPayroll, opts),
	}
}

// CheckDate reports the payroll state of the month containing date.
func (g *PayrollGate) CheckDate(ctx context.Context, fiscalYear string, date core.Date) (core.PaymentCheck, error) {
	checks, err := g.CheckDates(ctx, fiscalYear, []core.Date{date})
	if err != nil {
		return core.PaymentCheck{}, err
	}
	return checks[0], nil
}

// CheckDates answers for every date in input order with a single store
// read covering the distinct months among dates. Every date must fall in
// fiscalYear.
func (g *PayrollGate) CheckDates(ctx context.Context, fiscalYear string, dates []core.Date) ([]core.PaymentCheck, error) {
	return checkDates(ctx, g.store, fiscalYear, dates)
}

func checkDates(ctx context.Context, r PaymentReader, fiscalYear string, dates []core.Date) ([]core.PaymentCheck, error) {
	if _, err := core.ParseFiscalYear(fiscalYear); err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return []core.PaymentCheck{}, nil
	}

	seen := make(map[int]bool, 12)
	months := make([]int, 0, 12)
	for _, d := range dates {
		if d.IsZero() {
			return nil, core.Validation(core.CodeInvalidDate, "date is required")
		}
		if !core.InFiscalYear(d, fiscalYear) {
			return nil, core.Validation(core.CodeDateOutsideYear, "date %s is outside fiscal year %s", d, fiscalYear)
		}
		m := core.FiscalMonthOf(d)
		if !seen[m] {
			seen[m] = true
			months = append(months, m)
		}
	}

	rows, err := r.PaymentStatusesForMonths(ctx, fiscalYear, months)
	if err != nil {
		return nil, core.Unexpected(err)
	}
	paid := make(map[int]bool, len(rows))
	for _, row := range rows {
		paid[row.Month] = row.IsPaid
	}

	out := make([]core.PaymentCheck, len(dates))
	for i, d := range dates {
		m := core.FiscalMonthOf(d)
		out[i] = core.PaymentCheck{Date: d, IsPaid: paid[m], FiscalYear: fiscalYear, Month: m}
	}
	return out, nil
}

// Precondition vetoes any checked-state change to a journal dated in a
// paid month. r is the reader of the surrounding write transaction.
func (g *PayrollGate) Precondition(ctx context.Context, r PaymentReader, j core.Journal) error {
	checks, err := checkDates(ctx, r, j.FiscalYear, []core.Date{j.Date})
	if err != nil {
		return err
	}
	if checks[0].IsPaid {
		return core.PayrollLocked(j.FiscalYear, checks[0].Month)
	}
	return nil
}

// GetPaymentStatuses lists stored payroll rows in calendar month order.
func (g *PayrollGate) GetPaymentStatuses(ctx context.Context, fiscalYear string) ([]core.PayrollPayment, error) {
	if _, err := core.ParseFiscalYear(fiscalYear); err != nil {
		return nil, err
	}
	rows, err := g.store.ListPayrollPayments(ctx, fiscalYear)
	if err != nil {
		return nil, core.Unexpected(err)
	}
	return rows, nil
}

// SetPaymentStatus marks a month paid or reopens it.
func (g *PayrollGate) SetPaymentStatus(ctx context.Context, fiscalYear string, month int, isPaid bool) (core.PayrollPayment, error) {
	if _, err := core.ParseFiscalYear(fiscalYear); err != nil {
		return core.PayrollPayment{}, err
	}
	if err := core.ValidateMonth(month); err != nil {
		return core.PayrollPayment{}, err
	}

	p, err := g.store.UpsertPayrollPayment(ctx, fiscalYear, month, isPaid)
	if err != nil {
		return core.PayrollPayment{}, core.Unexpected(err)
	}

	g.logger.InfoContext(ctx, "Payroll status updated",
		log.FieldFiscalYear, fiscalYear,
		log.FieldMonth, month,
		"is_paid", isPaid)

	event := amqp.NewLedgerEvent(amqp.EventPayrollUpdated, fiscalYear)
	event.Month = month
	g.changed(ctx, event)
	return p, nil
}

// PaymentSummary returns all twelve months in fiscal order with the payroll
// state and journal review counts of each.
func (g *PayrollGate) PaymentSummary(ctx context.Context, fiscalYear string) ([]core.MonthPaymentSummary, error) {
	payments, err := g.GetPaymentStatuses(ctx, fiscalYear)
	if err != nil {
		return nil, err
	}
	statuses, err := g.store.CountCheckedByMonth(ctx, fiscalYear)
	if err != nil {
		return nil, core.Unexpected(err)
	}

	paid := make(map[int]bool, len(payments))
	for _, p := range payments {
		paid[p.Month] = p.IsPaid
	}
	byMonth := make(map[int]core.MonthCheckStatus, len(statuses))
	for _, s := range statuses {
		byMonth[s.Month] = s
	}

	out := make([]core.MonthPaymentSummary, 0, 12)
	for _, m := range core.FiscalMonths() {
		s, ok := byMonth[m]
		if !ok {
			s = core.NewMonthCheckStatus(m, 0, 0)
		}
		out = append(out, core.MonthPaymentSummary{
			Month:          m,
			IsPaid:         paid[m],
			TotalCount:     s.TotalCount,
			UncheckedCount: s.UncheckedCount,
			AllChecked:     s.AllChecked,
		})
	}
	return out, nil
}
