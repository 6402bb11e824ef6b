package pipeline

import (
	"fmt"

	"compensaciones-losa/internal/model"
)

// ------------------- Pipeline Runner -------------------

// Run executes one complete compensation run over uploaded CSV bytes:
// parse, validate the schema, coerce dates and minutes, filter by the
// inclusive date range, apply the payment-status label, compute
// reimbursement tiers and optionally drop zero-amount rows. The run is a
// pure function of its inputs; no state survives between runs.
func Run(raw []byte, cfg model.RunConfig) (*model.Dataset, *model.RunStats, error) {
	fmt.Printf("🚀 Starting compensation run (variant=%s)\n", cfg.Variant)

	table, err := ParseUpload(raw)
	if err != nil {
		return nil, nil, err
	}

	if err := ValidateSchema(table, cfg.Variant); err != nil {
		return nil, nil, err
	}

	records, datesMissing, minutesMissing, err := BuildRecords(table)
	if err != nil {
		return nil, nil, err
	}

	stats := &model.RunStats{
		RowsIngested:   len(records),
		DatesMissing:   datesMissing,
		MinutesMissing: minutesMissing,
		ParseWarnings:  table.Warnings,
	}

	// Default range: the full span of the parsed date column.
	from, to := cfg.FromDate, cfg.ToDate
	if from == nil || to == nil {
		min, max, ok := DateBounds(records)
		if !ok {
			return nil, nil, ErrNoParseableDates
		}
		if from == nil {
			from = &min
		}
		if to == nil {
			to = &max
		}
	}
	stats.FromDate, stats.ToDate = from, to

	records, err = FilterByRange(records, *from, *to)
	if err != nil {
		return nil, nil, err
	}
	stats.RowsInRange = len(records)
	fmt.Printf("📅 Range filter kept %d of %d rows (%s .. %s)\n",
		stats.RowsInRange, stats.RowsIngested,
		from.Format("2006-01-02"), to.Format("2006-01-02"))

	ApplyPaymentStatus(records, cfg.PaymentStatus)
	ApplyReimbursement(records)

	if cfg.DropZeroAmount {
		records, err = FilterZeroAmount(records)
		if err != nil {
			return nil, nil, err
		}
		fmt.Printf("🧹 Zero-amount filter kept %d rows\n", len(records))
	}
	stats.RowsExported = len(records)

	fmt.Printf("✅ Run complete: %d rows ready for export\n", stats.RowsExported)
	return &model.Dataset{Variant: cfg.Variant, Records: records}, stats, nil
}
