package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	ports "github.com/kengo-k/taxdesk-sub002/internal/sheets"
)

var (
	_ ports.ReportWriter = (*Store)(nil)
	_ ports.TableReader  = (*Store)(nil)
)

type table struct {
	header []string
	rows   [][]string
}

// Store keeps exported tables in memory. Used when no spreadsheet is configured.
type Store struct {
	mu     sync.Mutex
	tables map[string]table
	writes int
}

func New() *Store {
	return &Store{tables: make(map[string]table)}
}

// WriteTable replaces the sheet content with copies of header and rows.
func (s *Store) WriteTable(_ context.Context, sheet string, header []string, rows [][]string) error {
	sheet = strings.TrimSpace(sheet)
	if sheet == "" {
		return fmt.Errorf("sheet name is required")
	}
	t := table{header: append([]string(nil), header...), rows: make([][]string, len(rows))}
	for i, r := range rows {
		t.rows[i] = append([]string(nil), r...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[sheet] = t
	s.writes++
	return nil
}

func (s *Store) ReadTable(_ context.Context, sheet string) ([]string, [][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[sheet]
	if !ok {
		return nil, nil, fmt.Errorf("sheet %q not found", sheet)
	}
	return t.header, t.rows, nil
}

// Sheets returns the names of every written sheet, sorted.
func (s *Store) Sheets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tables))
	for name := range s.tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Writes counts WriteTable calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
