package model

import (
	"fmt"
	"time"
)

// Column names expected in the uploaded CSV, exactly as exported by the
// upstream reporting tool. Header matching is case-sensitive.
const (
	ColEventDate      = "Day of tm_start_local_at"
	ColSegmentLabel   = "Segmento Tiempo en Losa"
	ColEndState       = "End State"
	ColReservationID  = "id_reservation_id"
	ColServiceChannel = "Service Channel"
	ColMinutes        = "Minutes Creation - Pickup"
	ColUserFullname   = "User Fullname"
	ColUserPhone      = "User Phone Number"
	ColUserEmail      = "User Email"
)

// Derived column names added by the pipeline, never present in the input.
const (
	ColPaymentStatus = "Payment Status"
	ColReimbursement = "Reimbursement Amount"
)

// PaymentStatus is the global label applied to every surviving row of a run.
type PaymentStatus string

const (
	Paid   PaymentStatus = "Paid"
	Unpaid PaymentStatus = "Unpaid"
)

// ParsePaymentStatus parses a user-supplied payment status value.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case Paid, Unpaid:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("invalid payment status %q: must be %q or %q", s, Paid, Unpaid)
}

// Variant selects the upload schema and workbook filename. The cabify
// variant additionally requires the User Email column.
type Variant string

const (
	VariantStandard Variant = "standard"
	VariantCabify   Variant = "cabify"
)

// ParseVariant parses a variant name, defaulting to standard when empty.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case "":
		return VariantStandard, nil
	case VariantStandard, VariantCabify:
		return Variant(s), nil
	}
	return "", fmt.Errorf("unknown variant %q", s)
}

// RequiredColumns returns the columns that must be present in an upload
// for this variant, in canonical order.
func (v Variant) RequiredColumns() []string {
	cols := []string{
		ColEventDate,
		ColSegmentLabel,
		ColEndState,
		ColReservationID,
		ColServiceChannel,
		ColMinutes,
		ColUserFullname,
		ColUserPhone,
	}
	if v == VariantCabify {
		cols = append(cols, ColUserEmail)
	}
	return cols
}

// WorkbookFilename returns the styled workbook artifact name for this variant.
func (v Variant) WorkbookFilename() string {
	if v == VariantCabify {
		return "compensaciones_losa_cabify.xlsx"
	}
	return "compensaciones_losa.xlsx"
}

// CSVFilename is the delimited-text artifact name, shared by both variants.
const CSVFilename = "compensaciones_filtrado.csv"

// Record is one validated trip row. EventDate and Minutes are nil when the
// raw value failed to parse; downstream stages treat nil as "missing".
type Record struct {
	EventDate      *time.Time
	SegmentLabel   string
	EndState       string
	ReservationID  string
	ServiceChannel string
	Minutes        *float64
	UserFullname   string
	UserPhone      string
	UserEmail      string

	// Derived during the run.
	PaymentStatus PaymentStatus
	Reimbursement int
}

// Dataset is an ordered sequence of records sharing one variant's schema.
// Input order is preserved through every stage.
type Dataset struct {
	Variant Variant
	Records []Record
}

// Columns returns the export column order: required input columns followed
// by the derived columns.
func (d *Dataset) Columns() []string {
	return append(d.Variant.RequiredColumns(), ColPaymentStatus, ColReimbursement)
}

// Len returns the number of records in the dataset.
func (d *Dataset) Len() int { return len(d.Records) }
