package pipeline

import (
	"time"

	"compensaciones-losa/internal/model"
)

// ------------------- Filtering & Labeling -------------------

// DateBounds returns the min and max of the parsed date column. Records
// with a missing date are ignored. ok is false when no record has a date.
func DateBounds(records []model.Record) (min, max time.Time, ok bool) {
	for _, rec := range records {
		if rec.EventDate == nil {
			continue
		}
		d := *rec.EventDate
		if !ok {
			min, max = d, d
			ok = true
			continue
		}
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}
	return min, max, ok
}

// FilterByRange keeps the records whose date satisfies from <= date <= to.
// A missing date satisfies no range and is always dropped. A from/to pair
// in the wrong order is a user input error, not something to silently swap.
func FilterByRange(records []model.Record, from, to time.Time) ([]model.Record, error) {
	if from.After(to) {
		return nil, &InvalidRangeError{From: from, To: to}
	}

	kept := make([]model.Record, 0, len(records))
	for _, rec := range records {
		if rec.EventDate == nil {
			continue
		}
		d := *rec.EventDate
		if d.Before(from) || d.After(to) {
			continue
		}
		kept = append(kept, rec)
	}
	if len(kept) == 0 {
		return nil, ErrNoRowsInRange
	}
	return kept, nil
}

// ApplyPaymentStatus sets the global payment-status label on every record.
func ApplyPaymentStatus(records []model.Record, status model.PaymentStatus) {
	for i := range records {
		records[i].PaymentStatus = status
	}
}

// ApplyReimbursement computes the compensation tier for every record.
func ApplyReimbursement(records []model.Record) {
	for i := range records {
		records[i].Reimbursement = Reimbursement(records[i].Minutes)
	}
}

// FilterZeroAmount removes records with a zero reimbursement amount.
// Applying it twice yields the same result as applying it once.
func FilterZeroAmount(records []model.Record) ([]model.Record, error) {
	kept := make([]model.Record, 0, len(records))
	for _, rec := range records {
		if rec.Reimbursement == TierNone {
			continue
		}
		kept = append(kept, rec)
	}
	if len(kept) == 0 {
		return nil, ErrNothingToExport
	}
	return kept, nil
}
