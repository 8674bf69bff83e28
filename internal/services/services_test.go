package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kengo-k/taxdesk-sub002/internal/accounts"
	"github.com/kengo-k/taxdesk-sub002/internal/amqp"
	"github.com/kengo-k/taxdesk-sub002/internal/cache"
	"github.com/kengo-k/taxdesk-sub002/internal/core"
	"github.com/kengo-k/taxdesk-sub002/internal/storage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	repo      *storage.SQLiteRepository
	chart     *accounts.Chart
	gate      *PayrollGate
	journals  *JournalService
	agg       *Aggregator
	assembler *ReportAssembler
	events    *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	var mu sync.Mutex
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"), storage.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	chart, err := accounts.Load(context.Background(), repo)
	require.NoError(t, err)

	events := &recordingPublisher{}
	agg := NewAggregator(repo, chart, cache.NewLRUCache[[]core.Journal](8, time.Minute), nil)
	gate := NewPayrollGate(repo, WithPublisher(events), WithInvalidator(agg))
	journals := NewJournalService(repo, chart, gate, WithPublisher(events), WithInvalidator(agg))

	return &testEnv{
		repo:      repo,
		chart:     chart,
		gate:      gate,
		journals:  journals,
		agg:       agg,
		assembler: NewReportAssembler(agg, journals, gate, 4, nil),
		events:    events,
	}
}

// add records a balanced journal dated date in the fiscal year the date belongs to.
func (e *testEnv) add(t *testing.T, date, debit, credit string, amount core.Yen) core.Journal {
	t.Helper()
	d := core.MustParseDate(date)
	j, err := e.journals.CreateJournal(context.Background(), core.JournalInput{
		FiscalYear:    core.FiscalYearOf(d),
		Date:          d,
		DebitAccount:  debit,
		DebitAmount:   amount,
		CreditAccount: credit,
		CreditAmount:  amount,
	})
	require.NoError(t, err)
	return j
}
