package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Fatal-for-this-run errors. Each one aborts the current run with a message
// the user can act on; none of them is fatal to the process.
var (
	// ErrNoParseableDates means not a single value in the date column
	// parsed as a calendar date, so the upload is unusable.
	ErrNoParseableDates = errors.New("no parseable dates in the date column")

	// ErrNoRowsInRange means the date filter removed every row. The user
	// can recover by widening the range; the data itself is fine.
	ErrNoRowsInRange = errors.New("no rows fall inside the selected date range")

	// ErrNothingToExport means the zero-amount filter removed every row.
	ErrNothingToExport = errors.New("all rows have a zero reimbursement amount, nothing to export")
)

// MissingColumnsError reports required columns absent from the upload header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// InvalidRangeError reports a from/to pair supplied in the wrong order.
type InvalidRangeError struct {
	From time.Time
	To   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: from %s is after to %s",
		e.From.Format("2006-01-02"), e.To.Format("2006-01-02"))
}

// IsUserError reports whether err belongs to the user-correctable taxonomy,
// as opposed to an I/O failure reading the upload itself.
func IsUserError(err error) bool {
	var mc *MissingColumnsError
	var ir *InvalidRangeError
	return errors.Is(err, ErrNoParseableDates) ||
		errors.Is(err, ErrNoRowsInRange) ||
		errors.Is(err, ErrNothingToExport) ||
		errors.As(err, &mc) ||
		errors.As(err, &ir)
}
