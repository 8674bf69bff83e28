package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"20250415", false},
		{"20240229", false},
		{"20250229", true},
		{"20251301", true},
		{"20250400", true},
		{"2025041", true},
		{"2025-04-15", true},
		{"2025041a", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDate(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, KindValidation, KindOf(err))
				assert.Equal(t, CodeInvalidDate, CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in, d.String())
		})
	}
}

func TestDateComponents(t *testing.T) {
	d := MustParseDate("20250415")
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, 4, d.Month())
	assert.Equal(t, 15, d.Day())
	assert.Equal(t, 4, FiscalMonthOf(d))
}

func TestDateJSON(t *testing.T) {
	var v struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"20260131"}`), &v))
	assert.Equal(t, "20260131", v.Date.String())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"20260131"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"2026-01-31"}`), &v))
}

func TestFiscalPosition(t *testing.T) {
	want := map[int]int{4: 1, 5: 2, 12: 9, 1: 10, 2: 11, 3: 12}
	for month, pos := range want {
		assert.Equal(t, pos, FiscalPosition(month), "month %d", month)
	}
}

func TestSortFiscalMonths(t *testing.T) {
	months := []int{3, 12, 1, 4, 10, 2, 5}
	SortFiscalMonths(months)
	assert.Equal(t, []int{4, 5, 10, 12, 1, 2, 3}, months)

	for i := 1; i < len(months); i++ {
		assert.Negative(t, CompareFiscalMonth(months[i-1], months[i]))
	}
	assert.Equal(t, 0, CompareFiscalMonth(7, 7))
}

func TestFiscalMonthsOrder(t *testing.T) {
	months := FiscalMonths()
	require.Len(t, months, 12)
	sorted := append([]int(nil), months...)
	SortFiscalMonths(sorted)
	assert.Equal(t, months, sorted)
}

func TestFiscalYearOf(t *testing.T) {
	assert.Equal(t, "2025", FiscalYearOf(MustParseDate("20250401")))
	assert.Equal(t, "2025", FiscalYearOf(MustParseDate("20251231")))
	assert.Equal(t, "2025", FiscalYearOf(MustParseDate("20260331")))
	assert.Equal(t, "2024", FiscalYearOf(MustParseDate("20250331")))
	assert.True(t, InFiscalYear(MustParseDate("20260115"), "2025"))
	assert.False(t, InFiscalYear(MustParseDate("20260401"), "2025"))
}

func TestFiscalYearRange(t *testing.T) {
	start, end, err := FiscalYearRange("2025")
	require.NoError(t, err)
	assert.Equal(t, "20250401", start.String())
	assert.Equal(t, "20260331", end.String())

	_, _, err = FiscalYearRange("25")
	assert.True(t, IsCode(err, CodeInvalidFiscalYear))
}

func TestParseMonth(t *testing.T) {
	for _, in := range []string{"4", "04", "12", " 1 "} {
		_, err := ParseMonth(in)
		assert.NoError(t, err, in)
	}
	for _, in := range []string{"0", "13", "", "+4", "abc", "004"} {
		_, err := ParseMonth(in)
		assert.True(t, IsCode(err, CodeInvalidMonth), in)
	}
}

func TestMonthFilter(t *testing.T) {
	assert.True(t, AllMonths.All())
	assert.True(t, AllMonths.Matches(MustParseDate("20250901")))
	assert.Equal(t, "all", AllMonths.String())

	f, err := ParseMonthFilter("04")
	require.NoError(t, err)
	assert.False(t, f.All())
	assert.Equal(t, 4, f.Month())
	assert.Equal(t, "04", f.String())
	assert.True(t, f.Matches(MustParseDate("20250415")))
	assert.False(t, f.Matches(MustParseDate("20250515")))

	f, err = ParseMonthFilter("")
	require.NoError(t, err)
	assert.True(t, f.All())

	_, err = InMonth(13)
	assert.True(t, IsCode(err, CodeInvalidMonth))
}
