package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kengo-k/taxdesk-sub002/internal/sheets"
)

func TestStoreWriteAndRead(t *testing.T) {
	s := New()
	ctx := context.Background()

	rows := [][]string{{"102", "1000"}}
	require.NoError(t, s.WriteTable(ctx, "2025 Cash", []string{"category", "balance"}, rows))
	rows[0][1] = "mutated"

	header, got, err := s.ReadTable(ctx, "2025 Cash")
	require.NoError(t, err)
	assert.Equal(t, []string{"category", "balance"}, header)
	assert.Equal(t, [][]string{{"102", "1000"}}, got, "stored rows are copies")

	require.NoError(t, s.WriteTable(ctx, "2025 Cash", []string{"category"}, nil))
	_, got, err = s.ReadTable(ctx, "2025 Cash")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 2, s.Writes())
	assert.Equal(t, []string{"2025 Cash"}, s.Sheets())

	_, _, err = s.ReadTable(ctx, "missing")
	assert.Error(t, err)
	assert.Error(t, s.WriteTable(ctx, " ", nil, nil))
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		fy, base, want string
	}{
		{"2025", "Cash Balance", "2025 Cash Balance"},
		{"2025", "2025 Cash Balance", "2025 Cash Balance"},
		{"2025", "  Checks ", "2025 Checks"},
		{"", "Checks", "Checks"},
		{"2025", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, sheets.SheetName(tt.fy, tt.base))
		})
	}
}
