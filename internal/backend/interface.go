// Package backend selects where exported reports are written.
package backend

import (
	"context"

	"github.com/kengo-k/taxdesk-sub002/internal/sheets"
)

// BackendType names a report writer implementation.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SheetsBackend BackendType = "sheets"
)

func (t BackendType) IsValid() bool {
	return t == MemoryBackend || t == SheetsBackend
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the writer and an optional cleanup function.
type BackendResult struct {
	Writer  sheets.ReportWriter
	Cleanup CleanupFunc
}

// Factory creates report writers from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds what any backend may need.
type Config struct {
	Type BackendType

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}
