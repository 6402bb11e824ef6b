package model

import "time"

// ExportFormat selects which artifacts a run produces.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
	FormatBoth ExportFormat = "both"
)

// ParseExportFormat parses a format name, defaulting to csv when empty.
func ParseExportFormat(s string) (ExportFormat, bool) {
	switch ExportFormat(s) {
	case "":
		return FormatCSV, true
	case FormatCSV, FormatXLSX, FormatBoth:
		return ExportFormat(s), true
	}
	return "", false
}

// RunConfig is the full configuration of one pipeline run, assembled from
// the upload form plus server-side defaults. A run is stateless: the config
// and the uploaded bytes fully determine the result.
type RunConfig struct {
	// FromDate/ToDate bound the inclusive range filter. When nil they
	// default to the min/max of the parsed date column.
	FromDate *time.Time `json:"from_date,omitempty"`
	ToDate   *time.Time `json:"to_date,omitempty"`

	// PaymentStatus is applied uniformly to every surviving row.
	PaymentStatus PaymentStatus `json:"payment_status"`

	// DropZeroAmount removes zero-reimbursement rows before export.
	DropZeroAmount bool `json:"drop_zero_amount"`

	Variant Variant      `json:"variant"`
	Format  ExportFormat `json:"format"`

	// Workbook styling toggles.
	AlternateShading bool `json:"alternate_shading"`
	ConditionalFills bool `json:"conditional_fills"`
}

// RunStats summarizes what happened to the rows of a run at each stage.
type RunStats struct {
	RowsIngested   int        `json:"rows_ingested"`
	RowsInRange    int        `json:"rows_in_range"`
	RowsExported   int        `json:"rows_exported"`
	DatesMissing   int        `json:"dates_missing"`
	MinutesMissing int        `json:"minutes_missing"`
	FromDate       *time.Time `json:"from_date,omitempty"`
	ToDate         *time.Time `json:"to_date,omitempty"`
	ParseWarnings  []string   `json:"parse_warnings,omitempty"`
}

// Run statuses persisted by the tracking store.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
