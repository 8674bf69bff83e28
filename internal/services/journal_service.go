// Package services implements the ledger operations: journal review, the payroll
// gate, aggregation and batched reports, and their export.
package services

import (
	"context"
	"errors"
	"sort"

	"github.com/kengo-k/taxdesk-sub002/internal/accounts"
	"github.com/kengo-k/taxdesk-sub002/internal/amqp"
	"github.com/kengo-k/taxdesk-sub002/internal/core"
	"github.com/kengo-k/taxdesk-sub002/internal/log"
	"github.com/kengo-k/taxdesk-sub002/internal/storage"
)

// JournalService owns the journal lifecycle: review flag changes, soft
// deletes and the read paths used by the API and CLI.
type JournalService struct {
	repo  *storage.SQLiteRepository
	chart *accounts.Chart
	gate  *PayrollGate
	notifier
}

func NewJournalService(repo *storage.SQLiteRepository, chart *accounts.Chart, gate *PayrollGate, opts ...Option) *JournalService {
	return &JournalService{
		repo:     repo,
		chart:    chart,
		gate:     gate,
		notifier: newNotifier(log.ComponentLedger, opts),
	}
}

// engineError passes typed errors through and wraps everything else as UNEXPECTED.
func engineError(err error) error {
	var e *core.Error
	if errors.As(err, &e) {
		return err
	}
	return core.Unexpected(err)
}

// ListCheckedStatuses returns review counts for months that have journals, in fiscal order.
func (s *JournalService) ListCheckedStatuses(ctx context.Context, fiscalYear string) ([]core.MonthCheckStatus, error) {
	if _, err := core.ParseFiscalYear(fiscalYear); err != nil {
		return nil, err
	}
	statuses, err := s.repo.CountCheckedByMonth(ctx, fiscalYear)
	if err != nil {
		return nil, core.Unexpected(err)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return core.CompareFiscalMonth(statuses[i].Month, statuses[j].Month) < 0
	})
	return statuses, nil
}

// SoftDelete marks the live journals among ids deleted and returns how many changed.
// Unknown or already deleted ids are ignored.
func (s *JournalService) SoftDelete(ctx context.Context, fiscalYear string, ids []int64) (int64, error) {
	if _, err := core.ParseFiscalYear(fiscalYear); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var n int64
	err := s.repo.WithTx(ctx, func(tx *storage.Store) error {
		var err error
		n, err = tx.SoftDeleteJournals(ctx, fiscalYear, ids)
		return err
	})
	if err != nil {
		return 0, engineError(err)
	}

	if n > 0 {
		s.logger.InfoContext(ctx, "Journals soft deleted",
			log.FieldFiscalYear, fiscalYear,
			log.FieldCount, n)
		event := amqp.NewLedgerEvent(amqp.EventJournalsDeleted, fiscalYear)
		event.JournalIDs = ids
		s.changed(ctx, event)
	}
	return n, nil
}

// SetChecked changes the review flag of one journal. The payroll gate runs
// inside the write transaction, and a concurrent modification of the row
// between read and write is reported as CONFLICT.
func (s *JournalService) SetChecked(ctx context.Context, fiscalYear string, id int64, checked bool) (core.Journal, error) {
	if _, err := core.ParseFiscalYear(fiscalYear); err != nil {
		return core.Journal{}, err
	}
	if id <= 0 {
		return core.Journal{}, core.Validation(core.CodeInvalidRequest, "journal id must be positive")
	}

	var updated core.Journal
	err := s.repo.WithTx(ctx, func(tx *storage.Store) error {
		current, err := tx.GetJournal(ctx, fiscalYear, id)
		if err != nil {
			return err
		}
		if err := s.gate.Precondition(ctx, tx, current); err != nil {
			return err
		}
		updated, err = tx.SetJournalChecked(ctx, current, checked)
		return err
	})
	if err != nil {
		if core.IsCode(err, core.CodePayrollPeriodLocked) {
			s.logger.WarnContext(ctx, "Checked change refused by payroll lock",
				log.FieldFiscalYear, fiscalYear,
				log.FieldJournalID, id)
		}
		return core.Journal{}, engineError(err)
	}

	s.logger.InfoContext(ctx, "Journal checked state updated",
		log.FieldFiscalYear, fiscalYear,
		log.FieldJournalID, id,
		"checked", checked)

	event := amqp.NewLedgerEvent(amqp.EventJournalChecked, fiscalYear)
	event.Month = updated.Date.Month()
	event.JournalIDs = []int64{id}
	s.changed(ctx, event)
	return updated, nil
}

func (s *JournalService) GetJournal(ctx context.Context, fiscalYear string, id int64) (core.Journal, error) {
	if _, err := core.ParseFiscalYear(fiscalYear); err != nil {
		return core.Journal{}, err
	}
	j, err := s.repo.GetJournal(ctx, fiscalYear, id)
	if err != nil {
		return core.Journal{}, engineError(err)
	}
	return j, nil
}

// ListJournals returns live journals ordered by date then id.
func (s *JournalService) ListJournals(ctx context.Context, fiscalYear string, filter core.JournalFilter) ([]core.Journal, error) {
	if _, err := core.ParseFiscalYear(fiscalYear); err != nil {
		return nil, err
	}
	if filter.Account != "" && !s.chart.Exists(filter.Account) {
		return nil, core.Validation(core.CodeAccountNotFound, "account %q not found", filter.Account)
	}
	js, err := s.repo.ListJournals(ctx, fiscalYear, filter)
	if err != nil {
		return nil, core.Unexpected(err)
	}
	return js, nil
}

// CreateJournal records a balanced entry after checking both accounts against the chart.
func (s *JournalService) CreateJournal(ctx context.Context, in core.JournalInput) (core.Journal, error) {
	if err := in.Validate(); err != nil {
		return core.Journal{}, err
	}
	for _, code := range []string{in.DebitAccount, in.CreditAccount} {
		if !s.chart.Exists(code) {
			return core.Journal{}, core.Validation(core.CodeAccountNotFound, "account %q not found", code)
		}
	}

	j, err := s.repo.CreateJournal(ctx, in)
	if err != nil {
		return core.Journal{}, core.Unexpected(err)
	}

	event := amqp.NewLedgerEvent(amqp.EventJournalCreated, j.FiscalYear)
	event.Month = j.Date.Month()
	event.JournalIDs = []int64{j.ID}
	s.changed(ctx, event)
	return j, nil
}
