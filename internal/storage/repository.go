package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kengo-k/taxdesk-sub002/internal/core"

	_ "modernc.org/sqlite"
)

// Write transactions take the lock at BEGIN so a precondition read and the
// following update cannot interleave with another writer.
const dsnParams = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)&_txlock=immediate"

const timeLayout = time.RFC3339Nano

// Store exposes the ledger tables as core types. The same Store type is used
// for plain reads and inside WithTx.
type Store struct {
	q   *Queries
	now func() time.Time
}

type SQLiteRepository struct {
	*Store
	db *sql.DB
}

type Option func(*SQLiteRepository)

// WithClock overrides the clock used to stamp created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) {
		r.now = now
	}
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?"+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{
		Store: &Store{q: New(db), now: time.Now},
		db:    db,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WithTx runs fn inside one transaction. The transaction is committed when
// fn returns nil and rolled back otherwise; fn's error is returned as is.
func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(*Store) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Store{q: r.q.WithTx(tx), now: r.now}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, err)
	}
	return t, nil
}

func monthParam(f core.MonthFilter) string {
	if f.All() {
		return ""
	}
	return fmt.Sprintf("%02d", f.Month())
}

// ListBuckets, ListCategories and ListAccounts make the store an accounts.Source.
func (s *Store) ListBuckets(ctx context.Context) ([]core.BucketInfo, error) {
	rows, err := s.q.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	out := make([]core.BucketInfo, 0, len(rows))
	for _, b := range rows {
		out = append(out, core.BucketInfo{Code: core.Bucket(b.Code), Name: b.Name, Side: core.Side(b.Side)})
	}
	return out, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.q.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, 0, len(rows))
	for _, c := range rows {
		out = append(out, core.Category{
			Code:   c.Code,
			Name:   c.Name,
			Bucket: core.Bucket(c.BucketCode),
			IsCash: c.IsCash == 1,
		})
	}
	return out, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := s.q.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]core.Account, 0, len(rows))
	for _, a := range rows {
		out = append(out, core.Account{ID: a.ID, Code: a.Code, Name: a.Name, CategoryCode: a.CategoryCode})
	}
	return out, nil
}

func toFiscalYear(row FiscalYear) (core.FiscalYear, error) {
	start, err := core.ParseDate(row.StartDate)
	if err != nil {
		return core.FiscalYear{}, fmt.Errorf("fiscal year %s start: %w", row.Code, err)
	}
	end, err := core.ParseDate(row.EndDate)
	if err != nil {
		return core.FiscalYear{}, fmt.Errorf("fiscal year %s end: %w", row.Code, err)
	}
	return core.FiscalYear{Code: row.Code, StartDate: start, EndDate: end, Fixed: row.Fixed == 1}, nil
}

func (s *Store) ListFiscalYears(ctx context.Context) ([]core.FiscalYear, error) {
	rows, err := s.q.ListFiscalYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fiscal years: %w", err)
	}
	out := make([]core.FiscalYear, 0, len(rows))
	for _, row := range rows {
		fy, err := toFiscalYear(row)
		if err != nil {
			return nil, err
		}
		out = append(out, fy)
	}
	return out, nil
}

func (s *Store) GetFiscalYear(ctx context.Context, code string) (core.FiscalYear, error) {
	row, err := s.q.GetFiscalYear(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FiscalYear{}, core.NotFound(core.CodeFiscalYearNotFound, "fiscal year %s not found", code)
	}
	if err != nil {
		return core.FiscalYear{}, fmt.Errorf("get fiscal year %s: %w", code, err)
	}
	return toFiscalYear(row)
}

// CurrentFiscalYear returns the latest fiscal year that is not fixed.
func (s *Store) CurrentFiscalYear(ctx context.Context) (core.FiscalYear, error) {
	years, err := s.ListFiscalYears(ctx)
	if err != nil {
		return core.FiscalYear{}, err
	}
	for i := len(years) - 1; i >= 0; i-- {
		if !years[i].Fixed {
			return years[i], nil
		}
	}
	return core.FiscalYear{}, core.NotFound(core.CodeFiscalYearNotFound, "no open fiscal year")
}

// OpenFiscalYear registers code and fixes every earlier year, leaving code
// as the only open one when it is the latest.
func (s *Store) OpenFiscalYear(ctx context.Context, code string) (core.FiscalYear, error) {
	start, end, err := core.FiscalYearRange(code)
	if err != nil {
		return core.FiscalYear{}, err
	}
	if err := s.q.InsertFiscalYear(ctx, FiscalYear{
		Code:      code,
		StartDate: start.String(),
		EndDate:   end.String(),
	}); err != nil {
		return core.FiscalYear{}, fmt.Errorf("insert fiscal year %s: %w", code, err)
	}
	if err := s.q.FixFiscalYearsBefore(ctx, code); err != nil {
		return core.FiscalYear{}, fmt.Errorf("fix fiscal years before %s: %w", code, err)
	}
	return s.GetFiscalYear(ctx, code)
}

func toJournal(row Journal) (core.Journal, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Journal{}, fmt.Errorf("journal %d date: %w", row.ID, err)
	}
	created, err := parseTime(row.CreatedAt)
	if err != nil {
		return core.Journal{}, err
	}
	updated, err := parseTime(row.UpdatedAt)
	if err != nil {
		return core.Journal{}, err
	}
	return core.Journal{
		ID:            row.ID,
		FiscalYear:    row.FiscalYear,
		Date:          date,
		DebitAccount:  row.DebitAccount,
		DebitAmount:   core.Yen(row.DebitAmount),
		CreditAccount: row.CreditAccount,
		CreditAmount:  core.Yen(row.CreditAmount),
		Note:          row.Note,
		Checked:       row.Checked == 1,
		Deleted:       row.Deleted == 1,
		CreatedAt:     created,
		UpdatedAt:     updated,
	}, nil
}

// CreateJournal stores a validated input. Account existence is checked by the caller.
func (s *Store) CreateJournal(ctx context.Context, in core.JournalInput) (core.Journal, error) {
	row, err := s.q.CreateJournal(ctx, CreateJournalParams{
		FiscalYear:    in.FiscalYear,
		Date:          in.Date.String(),
		DebitAccount:  in.DebitAccount,
		DebitAmount:   int64(in.DebitAmount),
		CreditAccount: in.CreditAccount,
		CreditAmount:  int64(in.CreditAmount),
		Note:          in.Note,
		CreatedAt:     s.stamp(),
	})
	if err != nil {
		return core.Journal{}, fmt.Errorf("create journal: %w", err)
	}

	slog.DebugContext(ctx, "Journal saved to SQLite",
		"id", row.ID,
		"fiscal_year", row.FiscalYear,
		"date", row.Date,
		"amount", row.DebitAmount)

	return toJournal(row)
}

// GetJournal returns a live journal of the fiscal year.
func (s *Store) GetJournal(ctx context.Context, fiscalYear string, id int64) (core.Journal, error) {
	row, err := s.q.GetJournal(ctx, id, fiscalYear)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Journal{}, core.NotFound(core.CodeJournalNotFound, "journal %d not found in fiscal year %s", id, fiscalYear)
	}
	if err != nil {
		return core.Journal{}, fmt.Errorf("get journal %d: %w", id, err)
	}
	return toJournal(row)
}

// ListJournals returns live journals ordered by date then id.
func (s *Store) ListJournals(ctx context.Context, fiscalYear string, filter core.JournalFilter) ([]core.Journal, error) {
	checked := int64(-1)
	if filter.Checked != nil {
		checked = 0
		if *filter.Checked {
			checked = 1
		}
	}
	rows, err := s.q.ListJournals(ctx, ListJournalsParams{
		FiscalYear: fiscalYear,
		Month:      monthParam(filter.Month),
		Account:    filter.Account,
		Checked:    checked,
	})
	if err != nil {
		return nil, fmt.Errorf("list journals: %w", err)
	}
	out := make([]core.Journal, 0, len(rows))
	for _, row := range rows {
		j, err := toJournal(row)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, nil
}

// CountCheckedByMonth returns one status per month that has live journals, in no particular order.
func (s *Store) CountCheckedByMonth(ctx context.Context, fiscalYear string) ([]core.MonthCheckStatus, error) {
	rows, err := s.q.CountCheckedByMonth(ctx, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("count checked by month: %w", err)
	}
	out := make([]core.MonthCheckStatus, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.NewMonthCheckStatus(int(row.Month), row.TotalCount, row.CheckedCount))
	}
	return out, nil
}

func (s *Store) CountLedgerJournals(ctx context.Context, fiscalYear, account string, month core.MonthFilter) (int64, error) {
	n, err := s.q.CountLedgerJournals(ctx, CountLedgerJournalsParams{
		FiscalYear: fiscalYear,
		Account:    account,
		Month:      monthParam(month),
	})
	if err != nil {
		return 0, fmt.Errorf("count ledger journals: %w", err)
	}
	return n, nil
}

// SetJournalChecked updates the flag only if the row still carries the
// updated_at of prev. A row changed or deleted since prev was read yields CONFLICT.
func (s *Store) SetJournalChecked(ctx context.Context, prev core.Journal, checked bool) (core.Journal, error) {
	flag := int64(0)
	if checked {
		flag = 1
	}
	n, err := s.q.SetJournalChecked(ctx, SetJournalCheckedParams{
		Checked:       flag,
		UpdatedAt:     s.stamp(),
		ID:            prev.ID,
		FiscalYear:    prev.FiscalYear,
		PrevUpdatedAt: prev.UpdatedAt.UTC().Format(timeLayout),
	})
	if err != nil {
		return core.Journal{}, fmt.Errorf("set journal %d checked: %w", prev.ID, err)
	}
	if n == 0 {
		return core.Journal{}, core.Conflict(core.CodeJournalConflict,
			"journal %d was modified concurrently", prev.ID)
	}
	return s.GetJournal(ctx, prev.FiscalYear, prev.ID)
}

// SoftDeleteJournals marks live journals deleted and returns how many changed.
func (s *Store) SoftDeleteJournals(ctx context.Context, fiscalYear string, ids []int64) (int64, error) {
	n, err := s.q.SoftDeleteJournals(ctx, fiscalYear, ids, s.stamp())
	if err != nil {
		return 0, fmt.Errorf("soft delete journals: %w", err)
	}
	return n, nil
}

func toPayrollPayment(row PayrollPayment) (core.PayrollPayment, error) {
	created, err := parseTime(row.CreatedAt)
	if err != nil {
		return core.PayrollPayment{}, err
	}
	updated, err := parseTime(row.UpdatedAt)
	if err != nil {
		return core.PayrollPayment{}, err
	}
	return core.PayrollPayment{
		FiscalYear: row.FiscalYear,
		Month:      int(row.Month),
		IsPaid:     row.IsPaid == 1,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}, nil
}

func toPayrollPayments(rows []PayrollPayment) ([]core.PayrollPayment, error) {
	out := make([]core.PayrollPayment, 0, len(rows))
	for _, row := range rows {
		p, err := toPayrollPayment(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ListPayrollPayments returns the stored rows ordered by calendar month.
func (s *Store) ListPayrollPayments(ctx context.Context, fiscalYear string) ([]core.PayrollPayment, error) {
	rows, err := s.q.ListPayrollPayments(ctx, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("list payroll payments: %w", err)
	}
	return toPayrollPayments(rows)
}

// PaymentStatusesForMonths reads every requested month in a single query.
// Months without a stored row are absent from the result.
func (s *Store) PaymentStatusesForMonths(ctx context.Context, fiscalYear string, months []int) ([]core.PayrollPayment, error) {
	ms := make([]int64, 0, len(months))
	for _, m := range months {
		ms = append(ms, int64(m))
	}
	rows, err := s.q.GetPayrollPaymentsForMonths(ctx, fiscalYear, ms)
	if err != nil {
		return nil, fmt.Errorf("get payroll payments: %w", err)
	}
	return toPayrollPayments(rows)
}

func (s *Store) UpsertPayrollPayment(ctx context.Context, fiscalYear string, month int, isPaid bool) (core.PayrollPayment, error) {
	flag := int64(0)
	if isPaid {
		flag = 1
	}
	row, err := s.q.UpsertPayrollPayment(ctx, UpsertPayrollPaymentParams{
		FiscalYear: fiscalYear,
		Month:      int64(month),
		IsPaid:     flag,
		Now:        s.stamp(),
	})
	if err != nil {
		return core.PayrollPayment{}, fmt.Errorf("upsert payroll payment: %w", err)
	}
	return toPayrollPayment(row)
}
