package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FiscalYearStartMonth is the calendar month a fiscal year starts in.
const FiscalYearStartMonth = 4

// Date is a plain calendar date stored as YYYYMMDD. There is no timezone.
type Date struct {
	year  int
	month int
	day   int
}

// ParseDate parses an 8-digit YYYYMMDD string by fixed offsets.
func ParseDate(s string) (Date, error) {
	if len(s) != 8 {
		return Date{}, Validation(CodeInvalidDate, "date %q must be 8 digits (YYYYMMDD)", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Date{}, Validation(CodeInvalidDate, "date %q must be 8 digits (YYYYMMDD)", s)
		}
	}
	y, _ := strconv.Atoi(s[0:4])
	m, _ := strconv.Atoi(s[4:6])
	d, _ := strconv.Atoi(s[6:8])
	if m < 1 || m > 12 {
		return Date{}, Validation(CodeInvalidDate, "date %q has invalid month %d", s, m)
	}
	// Reject dates such as 20250230 that time.Date would normalize.
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if d < 1 || t.Day() != d || int(t.Month()) != m {
		return Date{}, Validation(CodeInvalidDate, "date %q is not a valid calendar date", s)
	}
	return Date{year: y, month: m, day: d}, nil
}

// MustParseDate is ParseDate for literals; it panics on malformed input.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) Year() int  { return d.year }
func (d Date) Month() int { return d.month }
func (d Date) Day() int   { return d.day }

// IsZero reports whether d was never set.
func (d Date) IsZero() bool { return d.year == 0 && d.month == 0 && d.day == 0 }

func (d Date) String() string {
	return fmt.Sprintf("%04d%02d%02d", d.year, d.month, d.day)
}

// MarshalText encodes the date as YYYYMMDD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a YYYYMMDD date.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// FiscalMonthOf returns the month a journal dated d is bucketed under.
// The value is the literal calendar month (1-12); use CompareFiscalMonth to order it.
func FiscalMonthOf(d Date) int {
	return d.month
}

// FiscalPosition maps a calendar month to its position in the fiscal year:
// April is 1, March is 12.
func FiscalPosition(month int) int {
	if month >= FiscalYearStartMonth {
		return month - FiscalYearStartMonth + 1
	}
	return month + 12 - FiscalYearStartMonth + 1
}

// CompareFiscalMonth orders calendar months by fiscal position: every month
// >= April sorts before every month < April, each group ascending.
func CompareFiscalMonth(a, b int) int {
	pa, pb := FiscalPosition(a), FiscalPosition(b)
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	default:
		return 0
	}
}

// SortFiscalMonths sorts months in place in fiscal order.
func SortFiscalMonths(months []int) {
	sort.SliceStable(months, func(i, j int) bool {
		return CompareFiscalMonth(months[i], months[j]) < 0
	})
}

// FiscalMonths returns the twelve calendar months in fiscal order.
func FiscalMonths() []int {
	return []int{4, 5, 6, 7, 8, 9, 10, 11, 12, 1, 2, 3}
}

// FiscalYearOf returns the fiscal year code a date belongs to.
func FiscalYearOf(d Date) string {
	y := d.year
	if d.month < FiscalYearStartMonth {
		y--
	}
	return fmt.Sprintf("%04d", y)
}

// ParseFiscalYear validates a 4-digit fiscal year code.
func ParseFiscalYear(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return "", Validation(CodeInvalidFiscalYear, "fiscal year %q must be 4 digits", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", Validation(CodeInvalidFiscalYear, "fiscal year %q must be 4 digits", s)
		}
	}
	return s, nil
}

// FiscalYearRange returns the first and last day of fiscal year code.
func FiscalYearRange(code string) (start, end Date, err error) {
	code, err = ParseFiscalYear(code)
	if err != nil {
		return Date{}, Date{}, err
	}
	y, _ := strconv.Atoi(code)
	start = Date{year: y, month: FiscalYearStartMonth, day: 1}
	end = Date{year: y + 1, month: FiscalYearStartMonth - 1, day: 31}
	return start, end, nil
}

// InFiscalYear reports whether d falls inside fiscal year code.
func InFiscalYear(d Date, code string) bool {
	return FiscalYearOf(d) == code
}

// ParseMonth accepts "1".."12" and the zero-padded "01".."12".
func ParseMonth(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 2 || strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, invalidMonth(s)
	}
	m, _ := strconv.Atoi(s)
	if err := ValidateMonth(m); err != nil {
		return 0, err
	}
	return m, nil
}

// ValidateMonth checks that m is a calendar month.
func ValidateMonth(m int) error {
	if m < 1 || m > 12 {
		e := Validation(CodeInvalidMonth, "month %d must be between 1 and 12", m)
		e.Month = m
		return e
	}
	return nil
}

func invalidMonth(s string) error {
	return Validation(CodeInvalidMonth, "month %q must be between 1 and 12", s)
}

// MonthFilter optionally restricts a query to one calendar month.
// The zero value selects every month.
type MonthFilter struct {
	month int
}

// AllMonths selects no month filter.
var AllMonths = MonthFilter{}

// InMonth restricts to calendar month m.
func InMonth(m int) (MonthFilter, error) {
	if err := ValidateMonth(m); err != nil {
		return MonthFilter{}, err
	}
	return MonthFilter{month: m}, nil
}

// ParseMonthFilter maps an empty string to AllMonths and anything else through ParseMonth.
func ParseMonthFilter(s string) (MonthFilter, error) {
	if strings.TrimSpace(s) == "" {
		return AllMonths, nil
	}
	m, err := ParseMonth(s)
	if err != nil {
		return MonthFilter{}, err
	}
	return MonthFilter{month: m}, nil
}

// All reports whether the filter selects every month.
func (f MonthFilter) All() bool { return f.month == 0 }

// Month returns the selected month, 0 for AllMonths.
func (f MonthFilter) Month() int { return f.month }

// Matches reports whether d passes the filter.
func (f MonthFilter) Matches(d Date) bool {
	return f.All() || d.month == f.month
}

func (f MonthFilter) String() string {
	if f.All() {
		return "all"
	}
	return fmt.Sprintf("%02d", f.month)
}
