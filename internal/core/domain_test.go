package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestJournalInputValidate(t *testing.T) {
	good := JournalInput{
		FiscalYear:    "2025",
		Date:          MustParseDate("20250415"),
		DebitAccount:  "1110101",
		DebitAmount:   1000,
		CreditAccount: "4110101",
		CreditAmount:  1000,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(*JournalInput)
		code string
	}{
		{"bad fiscal year", func(in *JournalInput) { in.FiscalYear = "25" }, CodeInvalidFiscalYear},
		{"missing date", func(in *JournalInput) { in.Date = Date{} }, CodeInvalidDate},
		{"date outside year", func(in *JournalInput) { in.Date = MustParseDate("20250331") }, CodeDateOutsideYear},
		{"missing account", func(in *JournalInput) { in.CreditAccount = " " }, CodeInvalidRequest},
		{"zero amount", func(in *JournalInput) { in.DebitAmount = 0 }, CodeInvalidAmount},
		{"unbalanced", func(in *JournalInput) { in.CreditAmount = 999 }, CodeUnbalancedJournal},
		{"note too long", func(in *JournalInput) { in.Note = strings.Repeat("x", 201) }, CodeInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := good
			tc.mut(&in)
			err := in.Validate()
			if CodeOf(err) != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestNewMonthCheckStatus(t *testing.T) {
	s := NewMonthCheckStatus(4, 1, 0)
	want := MonthCheckStatus{Month: 4, TotalCount: 1, CheckedCount: 0, UncheckedCount: 1, AllChecked: false}
	if s != want {
		t.Fatalf("got %+v, want %+v", s, want)
	}
	if !NewMonthCheckStatus(5, 3, 3).AllChecked {
		t.Fatal("expected all checked when unchecked count is zero")
	}
}

func TestBucketIsValid(t *testing.T) {
	for _, b := range []Bucket{BucketAsset, BucketLiability, BucketEquity, BucketRevenue, BucketExpense, BucketTax, BucketClosing} {
		if !b.IsValid() {
			t.Errorf("%s should be valid", b)
		}
	}
	if Bucket("income").IsValid() {
		t.Error("income is not a bucket")
	}
}

func TestErrorKinds(t *testing.T) {
	locked := PayrollLocked("2025", 4)
	if locked.Kind != KindValidation || locked.Code != CodePayrollPeriodLocked || locked.Month != 4 {
		t.Fatalf("unexpected payroll lock error: %+v", locked)
	}
	if !strings.Contains(locked.Error(), "month 4") {
		t.Fatalf("message should mention the month: %s", locked.Error())
	}

	wrapped := fmt.Errorf("set checked: %w", NotFound(CodeJournalNotFound, "journal %d not found", 7))
	if KindOf(wrapped) != KindNotFound || CodeOf(wrapped) != CodeJournalNotFound {
		t.Fatalf("kind/code should survive wrapping: %v", wrapped)
	}

	raw := errors.New("disk full")
	if KindOf(raw) != KindUnexpected || CodeOf(raw) != "" {
		t.Fatal("plain errors are unexpected and carry no code")
	}
	u := Unexpected(raw)
	if !errors.Is(u, raw) {
		t.Fatal("Unexpected should unwrap to the cause")
	}
}
