package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kengo-k/taxdesk-sub002/internal/core"
)

func TestCountByAccount_NoJournals(t *testing.T) {
	env := newTestEnv(t)

	rows, err := env.agg.CountByAccount(context.Background(), "2025")
	require.NoError(t, err)
	require.Len(t, rows, len(env.chart.Accounts()))
	for _, r := range rows {
		assert.Zero(t, r.Count, r.AccountCode)
		assert.NotEmpty(t, r.CategoryCode)
	}
}

func TestCountByAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.add(t, "20250415", "10201", "40101", 1000)
	env.add(t, "20250416", "50101", "10201", 500)
	env.add(t, "20250417", "10201", "10201", 1)
	deleted := env.add(t, "20250418", "10201", "40101", 1)
	_, err := env.journals.SoftDelete(ctx, "2025", []int64{deleted.ID})
	require.NoError(t, err)

	rows, err := env.agg.CountByAccount(ctx, "2025")
	require.NoError(t, err)
	counts := map[string]int64{}
	for _, r := range rows {
		counts[r.AccountCode] = r.Count
	}
	assert.Equal(t, int64(3), counts["10201"])
	assert.Equal(t, int64(1), counts["40101"])
	assert.Equal(t, int64(1), counts["50101"])
	assert.Zero(t, counts["10101"])
}

func TestCountLedgers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.add(t, "20250415", "10201", "40101", 1000)
	env.add(t, "20250515", "50101", "10201", 500)

	n, err := env.agg.CountLedgers(ctx, "2025", "10201", core.AllMonths)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	may, err := core.InMonth(5)
	require.NoError(t, err)
	n, err = env.agg.CountLedgers(ctx, "2025", "10201", may)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = env.agg.CountLedgers(ctx, "2025", "00000", core.AllMonths)
	assert.Equal(t, core.KindValidation, core.KindOf(err))
	assert.Equal(t, core.CodeAccountNotFound, core.CodeOf(err))
}

func TestBreakdown_MonthRowsSumToYear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.add(t, "20250415", "50101", "10201", 300000)
	env.add(t, "20250515", "50101", "10201", 300000)
	env.add(t, "20250520", "50201", "10101", 1200)
	env.add(t, "20260110", "50201", "10101", 800)
	env.add(t, "20250430", "10201", "40101", 500000)

	for _, kind := range []BreakdownKind{BreakdownExpense, BreakdownIncome, BreakdownAsset} {
		t.Run(string(kind), func(t *testing.T) {
			byMonth, err := env.agg.Breakdown(ctx, "2025", BreakdownQuery{Kind: kind, Granularity: ByMonth})
			require.NoError(t, err)
			byYear, err := env.agg.Breakdown(ctx, "2025", BreakdownQuery{Kind: kind, Granularity: ByYear})
			require.NoError(t, err)

			assert.Equal(t, byYear.Total, byMonth.Total)
			perCategory := map[string]core.Yen{}
			for _, r := range byMonth.Rows {
				perCategory[r.CategoryCode] += r.Amount
			}
			for _, r := range byYear.Rows {
				assert.Zero(t, r.Month)
				assert.Equal(t, r.Amount, perCategory[r.CategoryCode], r.CategoryCode)
			}
			assert.Len(t, perCategory, len(byYear.Rows))
		})
	}

	expense, err := env.agg.Breakdown(ctx, "2025", BreakdownQuery{Kind: BreakdownExpense, Granularity: ByMonth})
	require.NoError(t, err)
	months := []int{}
	for _, r := range expense.Rows {
		months = append(months, r.Month)
	}
	assert.Equal(t, []int{4, 5, 5, 1}, months)
	assert.Equal(t, core.Yen(602000), expense.Total)

	income, err := env.agg.Breakdown(ctx, "2025", BreakdownQuery{Kind: BreakdownIncome, Granularity: ByYear})
	require.NoError(t, err)
	require.Len(t, income.Rows, 1)
	assert.Equal(t, "401", income.Rows[0].CategoryCode)
	assert.True(t, decimal.NewFromInt(100).Equal(income.Rows[0].Share))
}

func TestBreakdown_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.agg.Breakdown(ctx, "2025", BreakdownQuery{Kind: "liability", Granularity: ByYear})
	assert.Equal(t, core.KindValidation, core.KindOf(err))

	_, err = env.agg.Breakdown(ctx, "2025", BreakdownQuery{Kind: BreakdownExpense, Granularity: "week"})
	assert.Equal(t, core.KindValidation, core.KindOf(err))

	_, err = env.agg.Breakdown(ctx, "2025", BreakdownQuery{Kind: BreakdownExpense, Granularity: ByYear, CategoryCode: "401"})
	assert.Equal(t, core.CodeCategoryNotFound, core.CodeOf(err))

	res, err := env.agg.Breakdown(ctx, "2025", BreakdownQuery{Kind: BreakdownExpense, Granularity: ByYear, CategoryCode: "501"})
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Zero(t, res.Total)
}

func TestCashBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.add(t, "20250415", "10201", "40101", 1000)

	balance, err := env.agg.CashBalance(ctx, "2025")
	require.NoError(t, err)
	require.Len(t, balance.Entries, 3)

	byCategory := map[string]core.CashEntry{}
	for _, e := range balance.Entries {
		byCategory[e.CategoryCode] = e
	}
	assert.Equal(t, core.Yen(1000), byCategory["102"].Debit)
	assert.Equal(t, core.Yen(1000), byCategory["102"].Balance)
	assert.Equal(t, core.Yen(1000), balance.Total)

	// The cached snapshot is dropped when a journal is added. Credits to a
	// cash account leave the debit total alone and only move the net figure.
	env.add(t, "20250420", "50201", "10201", 400)
	balance, err = env.agg.CashBalance(ctx, "2025")
	require.NoError(t, err)
	assert.Equal(t, core.Yen(1000), balance.Total)
	assert.Equal(t, core.Yen(600), balance.NetTotal)

	var debits core.Yen
	for _, e := range balance.Entries {
		debits += e.Debit
	}
	assert.Equal(t, debits, balance.Total)
}

func TestLedger_RunningBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.add(t, "20250415", "10201", "40101", 1000)
	env.add(t, "20250510", "50101", "10201", 300)
	env.add(t, "20250601", "10201", "40101", 50)

	lines, err := env.agg.Ledger(ctx, "2025", "10201", core.AllMonths)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, []core.Yen{1000, 700, 750}, []core.Yen{lines[0].Balance, lines[1].Balance, lines[2].Balance})
	assert.Equal(t, "50101", lines[1].CounterAccount)

	// Credit-normal accounts grow on the credit side.
	lines, err = env.agg.Ledger(ctx, "2025", "40101", core.AllMonths)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, core.Yen(1050), lines[1].Balance)

	may, _ := core.InMonth(5)
	lines, err = env.agg.Ledger(ctx, "2025", "10201", may)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, core.Yen(700), lines[0].Balance, "balance is year to date")

	_, err = env.agg.Ledger(ctx, "2025", "00000", core.AllMonths)
	assert.Equal(t, core.CodeAccountNotFound, core.CodeOf(err))
}
