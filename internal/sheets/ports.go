package sheets

import (
	"context"
	"fmt"
	"strings"
)

// Ports for outbound adapters.
type (
	// ReportWriter replaces the content of a named sheet with a header row and data rows.
	ReportWriter interface {
		WriteTable(ctx context.Context, sheet string, header []string, rows [][]string) error
	}

	// TableReader returns what was last written to a sheet.
	TableReader interface {
		ReadTable(ctx context.Context, sheet string) (header []string, rows [][]string, err error)
	}
)

// SheetName returns "<fiscalYear> <base>" unless base already starts with that prefix.
func SheetName(fiscalYear, base string) string {
	base = strings.TrimSpace(base)
	if base == "" || fiscalYear == "" {
		return base
	}
	if strings.HasPrefix(base, fiscalYear+" ") {
		return base
	}
	return fmt.Sprintf("%s %s", fiscalYear, base)
}
