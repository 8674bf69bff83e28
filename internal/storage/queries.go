package storage

import (
	"context"
	"database/sql"
	"strings"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every query can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const journalColumns = `id, fiscal_year, date, debit_account, debit_amount, credit_account, credit_amount,
       note, checked, deleted, created_at, updated_at`

func scanJournal(row interface{ Scan(...interface{}) error }) (Journal, error) {
	var j Journal
	err := row.Scan(&j.ID, &j.FiscalYear, &j.Date, &j.DebitAccount, &j.DebitAmount,
		&j.CreditAccount, &j.CreditAmount, &j.Note, &j.Checked, &j.Deleted, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

const listBuckets = `SELECT code, name, side FROM buckets ORDER BY code`

func (q *Queries) ListBuckets(ctx context.Context) ([]Bucket, error) {
	rows, err := q.db.QueryContext(ctx, listBuckets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.Code, &b.Name, &b.Side); err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const listCategories = `SELECT code, name, bucket_code, is_cash FROM categories ORDER BY code`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Code, &c.Name, &c.BucketCode, &c.IsCash); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const listAccounts = `SELECT id, code, name, category_code FROM accounts ORDER BY id`

func (q *Queries) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx, listAccounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.CategoryCode); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const listFiscalYears = `SELECT code, start_date, end_date, fixed FROM fiscal_years ORDER BY code`

func (q *Queries) ListFiscalYears(ctx context.Context) ([]FiscalYear, error) {
	rows, err := q.db.QueryContext(ctx, listFiscalYears)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FiscalYear
	for rows.Next() {
		var f FiscalYear
		if err := rows.Scan(&f.Code, &f.StartDate, &f.EndDate, &f.Fixed); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

const getFiscalYear = `SELECT code, start_date, end_date, fixed FROM fiscal_years WHERE code = ?`

func (q *Queries) GetFiscalYear(ctx context.Context, code string) (FiscalYear, error) {
	var f FiscalYear
	err := q.db.QueryRowContext(ctx, getFiscalYear, code).Scan(&f.Code, &f.StartDate, &f.EndDate, &f.Fixed)
	return f, err
}

const insertFiscalYear = `INSERT INTO fiscal_years (code, start_date, end_date, fixed) VALUES (?, ?, ?, ?)
ON CONFLICT (code) DO NOTHING`

func (q *Queries) InsertFiscalYear(ctx context.Context, arg FiscalYear) error {
	_, err := q.db.ExecContext(ctx, insertFiscalYear, arg.Code, arg.StartDate, arg.EndDate, arg.Fixed)
	return err
}

const fixFiscalYearsBefore = `UPDATE fiscal_years SET fixed = 1 WHERE code < ? AND fixed = 0`

func (q *Queries) FixFiscalYearsBefore(ctx context.Context, code string) error {
	_, err := q.db.ExecContext(ctx, fixFiscalYearsBefore, code)
	return err
}

const createJournal = `INSERT INTO journals (
    fiscal_year, date, debit_account, debit_amount, credit_account, credit_amount, note,
    checked, deleted, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
RETURNING ` + journalColumns

type CreateJournalParams struct {
	FiscalYear    string
	Date          string
	DebitAccount  string
	DebitAmount   int64
	CreditAccount string
	CreditAmount  int64
	Note          string
	CreatedAt     string
}

func (q *Queries) CreateJournal(ctx context.Context, arg CreateJournalParams) (Journal, error) {
	row := q.db.QueryRowContext(ctx, createJournal,
		arg.FiscalYear, arg.Date, arg.DebitAccount, arg.DebitAmount, arg.CreditAccount, arg.CreditAmount,
		arg.Note, arg.CreatedAt, arg.CreatedAt)
	return scanJournal(row)
}

const getJournal = `SELECT ` + journalColumns + ` FROM journals
WHERE id = ? AND fiscal_year = ? AND deleted = 0`

func (q *Queries) GetJournal(ctx context.Context, id int64, fiscalYear string) (Journal, error) {
	return scanJournal(q.db.QueryRowContext(ctx, getJournal, id, fiscalYear))
}

// Month is "" for every month or a zero-padded "04"; Checked is -1 for any.
const listJournals = `SELECT ` + journalColumns + ` FROM journals
WHERE fiscal_year = ?1
  AND deleted = 0
  AND (?2 = '' OR substr(date, 5, 2) = ?2)
  AND (?3 = '' OR debit_account = ?3 OR credit_account = ?3)
  AND (?4 < 0 OR checked = ?4)
ORDER BY date, id`

type ListJournalsParams struct {
	FiscalYear string
	Month      string
	Account    string
	Checked    int64
}

func (q *Queries) ListJournals(ctx context.Context, arg ListJournalsParams) ([]Journal, error) {
	rows, err := q.db.QueryContext(ctx, listJournals, arg.FiscalYear, arg.Month, arg.Account, arg.Checked)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Journal
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, j)
	}
	return items, rows.Err()
}

const countCheckedByMonth = `SELECT CAST(substr(date, 5, 2) AS INTEGER) AS month,
       COUNT(*) AS total_count,
       COALESCE(SUM(checked), 0) AS checked_count
FROM journals
WHERE fiscal_year = ? AND deleted = 0
GROUP BY month`

func (q *Queries) CountCheckedByMonth(ctx context.Context, fiscalYear string) ([]MonthCheckCount, error) {
	rows, err := q.db.QueryContext(ctx, countCheckedByMonth, fiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthCheckCount
	for rows.Next() {
		var c MonthCheckCount
		if err := rows.Scan(&c.Month, &c.TotalCount, &c.CheckedCount); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const countLedgerJournals = `SELECT COUNT(*) FROM journals
WHERE fiscal_year = ?1
  AND deleted = 0
  AND (debit_account = ?2 OR credit_account = ?2)
  AND (?3 = '' OR substr(date, 5, 2) = ?3)`

type CountLedgerJournalsParams struct {
	FiscalYear string
	Account    string
	Month      string
}

func (q *Queries) CountLedgerJournals(ctx context.Context, arg CountLedgerJournalsParams) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countLedgerJournals, arg.FiscalYear, arg.Account, arg.Month).Scan(&n)
	return n, err
}

const setJournalChecked = `UPDATE journals SET checked = ?, updated_at = ?
WHERE id = ? AND fiscal_year = ? AND deleted = 0 AND updated_at = ?`

type SetJournalCheckedParams struct {
	Checked       int64
	UpdatedAt     string
	ID            int64
	FiscalYear    string
	PrevUpdatedAt string
}

// SetJournalChecked returns the number of rows updated; 0 means the row is
// missing or was modified after PrevUpdatedAt was read.
func (q *Queries) SetJournalChecked(ctx context.Context, arg SetJournalCheckedParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, setJournalChecked,
		arg.Checked, arg.UpdatedAt, arg.ID, arg.FiscalYear, arg.PrevUpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const softDeleteJournals = `UPDATE journals SET deleted = 1, updated_at = ?
WHERE fiscal_year = ? AND deleted = 0 AND id IN (%s)`

func (q *Queries) SoftDeleteJournals(ctx context.Context, fiscalYear string, ids []int64, updatedAt string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, updatedAt, fiscalYear)
	for _, id := range ids {
		args = append(args, id)
	}
	query := strings.Replace(softDeleteJournals, "%s", placeholders(len(ids)), 1)
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const payrollColumns = `fiscal_year, month, is_paid, created_at, updated_at`

func scanPayroll(row interface{ Scan(...interface{}) error }) (PayrollPayment, error) {
	var p PayrollPayment
	err := row.Scan(&p.FiscalYear, &p.Month, &p.IsPaid, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const listPayrollPayments = `SELECT ` + payrollColumns + ` FROM payroll_payments
WHERE fiscal_year = ? ORDER BY month`

func (q *Queries) ListPayrollPayments(ctx context.Context, fiscalYear string) ([]PayrollPayment, error) {
	rows, err := q.db.QueryContext(ctx, listPayrollPayments, fiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PayrollPayment
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const getPayrollPaymentsForMonths = `SELECT ` + payrollColumns + ` FROM payroll_payments
WHERE fiscal_year = ? AND month IN (%s) ORDER BY month`

func (q *Queries) GetPayrollPaymentsForMonths(ctx context.Context, fiscalYear string, months []int64) ([]PayrollPayment, error) {
	if len(months) == 0 {
		return nil, nil
	}
	args := make([]interface{}, 0, len(months)+1)
	args = append(args, fiscalYear)
	for _, m := range months {
		args = append(args, m)
	}
	query := strings.Replace(getPayrollPaymentsForMonths, "%s", placeholders(len(months)), 1)
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PayrollPayment
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const upsertPayrollPayment = `INSERT INTO payroll_payments (fiscal_year, month, is_paid, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (fiscal_year, month) DO UPDATE SET is_paid = excluded.is_paid, updated_at = excluded.updated_at
RETURNING ` + payrollColumns

type UpsertPayrollPaymentParams struct {
	FiscalYear string
	Month      int64
	IsPaid     int64
	Now        string
}

func (q *Queries) UpsertPayrollPayment(ctx context.Context, arg UpsertPayrollPaymentParams) (PayrollPayment, error) {
	return scanPayroll(q.db.QueryRowContext(ctx, upsertPayrollPayment,
		arg.FiscalYear, arg.Month, arg.IsPaid, arg.Now, arg.Now))
}
