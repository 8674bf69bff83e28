package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kengo-k/taxdesk-sub002/internal/accounts"
	"github.com/kengo-k/taxdesk-sub002/internal/cache"
	"github.com/kengo-k/taxdesk-sub002/internal/core"
	"github.com/kengo-k/taxdesk-sub002/internal/log"
)

// JournalReader is the read side of the journal store used for reports.
type JournalReader interface {
	ListJournals(ctx context.Context, fiscalYear string, filter core.JournalFilter) ([]core.Journal, error)
	CountLedgerJournals(ctx context.Context, fiscalYear, account string, month core.MonthFilter) (int64, error)
}

type BreakdownKind string

const (
	BreakdownAsset   BreakdownKind = "asset"
	BreakdownExpense BreakdownKind = "expense"
	BreakdownIncome  BreakdownKind = "income"
)

type Granularity string

const (
	ByMonth Granularity = "month"
	ByYear  Granularity = "year"
)

// BreakdownQuery selects one breakdown. CategoryCode narrows it to a single category.
type BreakdownQuery struct {
	Kind         BreakdownKind
	Granularity  Granularity
	CategoryCode string
}

// bucketAndSide returns the bucket a kind reads and whether the debit side is summed.
func (k BreakdownKind) bucketAndSide() (core.Bucket, bool, error) {
	switch k {
	case BreakdownAsset:
		return core.BucketAsset, true, nil
	case BreakdownExpense:
		return core.BucketExpense, true, nil
	case BreakdownIncome:
		return core.BucketRevenue, false, nil
	default:
		return "", false, core.Validation(core.CodeInvalidRequest, "unknown breakdown kind %q", k)
	}
}

// Aggregator computes reports over a per fiscal year snapshot of live
// journals, classified through the chart held in memory.
type Aggregator struct {
	repo      JournalReader
	chart     *accounts.Chart
	snapshots *cache.LRUCache[[]core.Journal]
	logger    *log.Logger
}

// NewAggregator builds an aggregator. snapshots may be nil to read through on every call.
func NewAggregator(repo JournalReader, chart *accounts.Chart, snapshots *cache.LRUCache[[]core.Journal], logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &Aggregator{
		repo:      repo,
		chart:     chart,
		snapshots: snapshots,
		logger:    logger.WithComponent(log.ComponentReports),
	}
}

// Invalidate drops the cached snapshot of a fiscal year.
func (a *Aggregator) Invalidate(fiscalYear string) {
	if a.snapshots == nil {
		return
	}
	a.snapshots.Delete(fiscalYear)
	a.logger.Debug("Report snapshot invalidated", log.FieldFiscalYear, fiscalYear)
}

func (a *Aggregator) journals(ctx context.Context, fiscalYear string) ([]core.Journal, error) {
	if _, err := core.ParseFiscalYear(fiscalYear); err != nil {
		return nil, err
	}
	load := func(ctx context.Context) ([]core.Journal, error) {
		return a.repo.ListJournals(ctx, fiscalYear, core.JournalFilter{})
	}
	var (
		js  []core.Journal
		err error
	)
	if a.snapshots == nil {
		js, err = load(ctx)
	} else {
		js, err = a.snapshots.GetOrLoad(ctx, fiscalYear, load)
	}
	if err != nil {
		return nil, core.Unexpected(err)
	}
	return js, nil
}

func (a *Aggregator) classify(ctx context.Context, j core.Journal, code string) (accounts.Classification, bool) {
	cl, err := a.chart.Classify(code)
	if err != nil {
		a.logger.WarnContext(ctx, "Journal references an account missing from the chart",
			log.FieldJournalID, j.ID,
			log.FieldAccount, code)
		return accounts.Classification{}, false
	}
	return cl, true
}

// CountByAccount returns one row per chart account, zero counts included.
// A journal with the same account on both sides counts once.
func (a *Aggregator) CountByAccount(ctx context.Context, fiscalYear string) ([]core.AccountCount, error) {
	js, err := a.journals(ctx, fiscalYear)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, j := range js {
		counts[j.DebitAccount]++
		if j.CreditAccount != j.DebitAccount {
			counts[j.CreditAccount]++
		}
	}

	accts := a.chart.Accounts()
	out := make([]core.AccountCount, 0, len(accts))
	for _, acct := range accts {
		cl, err := a.chart.Classify(acct.Code)
		if err != nil {
			return nil, core.Unexpected(err)
		}
		out = append(out, core.AccountCount{
			AccountCode:  acct.Code,
			AccountName:  cl.AccountName,
			CategoryCode: cl.CategoryCode,
			CategoryName: cl.CategoryName,
			Bucket:       cl.Bucket,
			Count:        counts[acct.Code],
		})
	}
	return out, nil
}

// CountLedgers counts live journals touching account, optionally within one month.
func (a *Aggregator) CountLedgers(ctx context.Context, fiscalYear, account string, month core.MonthFilter) (int64, error) {
	if _, err := core.ParseFiscalYear(fiscalYear); err != nil {
		return 0, err
	}
	if !a.chart.Exists(account) {
		return 0, core.Validation(core.CodeAccountNotFound, "account %q not found", account)
	}
	n, err := a.repo.CountLedgerJournals(ctx, fiscalYear, account, month)
	if err != nil {
		return 0, core.Unexpected(err)
	}
	return n, nil
}

type breakdownKey struct {
	month    int
	category string
}

// Breakdown sums amounts per category of the kind's bucket, per month or for
// the whole year. Asset and expense read the debit side, income the credit side.
func (a *Aggregator) Breakdown(ctx context.Context, fiscalYear string, q BreakdownQuery) (core.BreakdownResult, error) {
	bucket, debitSide, err := q.Kind.bucketAndSide()
	if err != nil {
		return core.BreakdownResult{}, err
	}
	if q.Granularity != ByMonth && q.Granularity != ByYear {
		return core.BreakdownResult{}, core.Validation(core.CodeInvalidRequest, "unknown granularity %q", q.Granularity)
	}
	if q.CategoryCode != "" {
		cat, ok := a.chart.Category(q.CategoryCode)
		if !ok || cat.Bucket != bucket {
			return core.BreakdownResult{}, core.Validation(core.CodeCategoryNotFound,
				"category %q not found in bucket %s", q.CategoryCode, bucket)
		}
	}

	js, err := a.journals(ctx, fiscalYear)
	if err != nil {
		return core.BreakdownResult{}, err
	}

	sums := make(map[breakdownKey]core.Yen)
	var total core.Yen
	for _, j := range js {
		code, amount := j.CreditAccount, j.CreditAmount
		if debitSide {
			code, amount = j.DebitAccount, j.DebitAmount
		}
		cl, ok := a.classify(ctx, j, code)
		if !ok || cl.Bucket != bucket {
			continue
		}
		if q.CategoryCode != "" && cl.CategoryCode != q.CategoryCode {
			continue
		}
		key := breakdownKey{category: cl.CategoryCode}
		if q.Granularity == ByMonth {
			key.month = core.FiscalMonthOf(j.Date)
		}
		sums[key] += amount
		total += amount
	}

	rows := make([]core.BreakdownRow, 0, len(sums))
	for key, amount := range sums {
		cat, _ := a.chart.Category(key.category)
		rows = append(rows, core.BreakdownRow{
			Month:        key.month,
			CategoryCode: key.category,
			CategoryName: cat.Name,
			Amount:       amount,
			Share:        share(amount, total),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return core.CompareFiscalMonth(rows[i].Month, rows[j].Month) < 0
		}
		return rows[i].CategoryCode < rows[j].CategoryCode
	})

	return core.BreakdownResult{Rows: rows, Total: total}, nil
}

// share is amount as a percentage of total, rounded to two places.
func share(amount, total core.Yen) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(amount)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 2)
}

// CashBalance returns one entry per cash-equivalent category with debit,
// credit and balance (debit minus credit). Total sums the debit amounts of
// every entry; NetTotal sums the balances.
func (a *Aggregator) CashBalance(ctx context.Context, fiscalYear string) (core.CashBalance, error) {
	js, err := a.journals(ctx, fiscalYear)
	if err != nil {
		return core.CashBalance{}, err
	}

	entries := make(map[string]*core.CashEntry)
	var order []string
	for _, cat := range a.chart.CategoriesIn(core.BucketAsset) {
		if !cat.IsCash {
			continue
		}
		entries[cat.Code] = &core.CashEntry{CategoryCode: cat.Code, CategoryName: cat.Name}
		order = append(order, cat.Code)
	}

	entryFor := func(j core.Journal, code string) *core.CashEntry {
		cl, ok := a.classify(ctx, j, code)
		if !ok || !cl.IsCash {
			return nil
		}
		return entries[cl.CategoryCode]
	}
	for _, j := range js {
		if e := entryFor(j, j.DebitAccount); e != nil {
			e.Debit += j.DebitAmount
		}
		if e := entryFor(j, j.CreditAccount); e != nil {
			e.Credit += j.CreditAmount
		}
	}

	result := core.CashBalance{FiscalYear: fiscalYear, Entries: make([]core.CashEntry, 0, len(order))}
	for _, code := range order {
		e := entries[code]
		e.Balance = e.Debit - e.Credit
		result.Total += e.Debit
		result.NetTotal += e.Balance
		result.Entries = append(result.Entries, *e)
	}
	return result, nil
}

// Ledger lists the journals touching account with a year-to-date running
// balance signed by the account's side. The month filter only limits which
// lines are returned.
func (a *Aggregator) Ledger(ctx context.Context, fiscalYear, account string, month core.MonthFilter) ([]core.LedgerLine, error) {
	if _, err := core.ParseFiscalYear(fiscalYear); err != nil {
		return nil, err
	}
	cl, err := a.chart.Classify(account)
	if err != nil {
		return nil, core.Validation(core.CodeAccountNotFound, "account %q not found", account)
	}

	js, err := a.journals(ctx, fiscalYear)
	if err != nil {
		return nil, err
	}

	var (
		balance core.Yen
		lines   = []core.LedgerLine{}
	)
	for _, j := range js {
		if j.DebitAccount != account && j.CreditAccount != account {
			continue
		}
		line := core.LedgerLine{JournalID: j.ID, Date: j.Date, Note: j.Note, Checked: j.Checked}
		if j.DebitAccount == account {
			line.Debit = j.DebitAmount
			line.CounterAccount = j.CreditAccount
		}
		if j.CreditAccount == account {
			line.Credit = j.CreditAmount
			line.CounterAccount = j.DebitAccount
		}
		if cl.Side == core.SideLeft {
			balance += line.Debit - line.Credit
		} else {
			balance += line.Credit - line.Debit
		}
		line.Balance = balance
		if month.Matches(j.Date) {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
