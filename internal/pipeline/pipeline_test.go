package pipeline

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compensaciones-losa/internal/model"
)

// tripCSV builds an upload with the standard schema from (date, minutes)
// pairs. Reservation IDs are r-0, r-1, ...
func tripCSV(rows ...[2]string) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(model.VariantStandard.RequiredColumns(), ","))
	b.WriteString("\n")
	for i, row := range rows {
		fmt.Fprintf(&b, "%s,30-45,finished,r-%d,app,%s,Ana Perez,+5691111111\n", row[0], i, row[1])
	}
	return []byte(b.String())
}

func TestRunFullPipeline(t *testing.T) {
	raw := tripCSV(
		[2]string{"2024-01-01", "55"},
		[2]string{"2024-01-15", "42"},
		[2]string{"2024-02-01", "10"},
	)
	cfg := model.RunConfig{
		FromDate:      ptrDay("2024-01-01"),
		ToDate:        ptrDay("2024-01-15"),
		PaymentStatus: model.Paid,
		Variant:       model.VariantStandard,
	}

	ds, stats, err := Run(raw, cfg)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	assert.Equal(t, "r-0", ds.Records[0].ReservationID)
	assert.Equal(t, TierMax, ds.Records[0].Reimbursement)
	assert.Equal(t, "r-1", ds.Records[1].ReservationID)
	assert.Equal(t, TierMid, ds.Records[1].Reimbursement)
	for _, rec := range ds.Records {
		assert.Equal(t, model.Paid, rec.PaymentStatus)
	}

	assert.Equal(t, 3, stats.RowsIngested)
	assert.Equal(t, 2, stats.RowsInRange)
	assert.Equal(t, 2, stats.RowsExported)
}

func TestRunDefaultsRangeToDateBounds(t *testing.T) {
	raw := tripCSV(
		[2]string{"2024-03-10", "36"},
		[2]string{"2024-01-05", "20"},
	)
	cfg := model.RunConfig{PaymentStatus: model.Unpaid, Variant: model.VariantStandard}

	ds, stats, err := Run(raw, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, day("2024-01-05"), *stats.FromDate)
	assert.Equal(t, day("2024-03-10"), *stats.ToDate)
}

func TestRunDropZeroAmount(t *testing.T) {
	raw := tripCSV(
		[2]string{"2024-01-01", "55"},
		[2]string{"2024-01-02", "10"},
	)
	cfg := model.RunConfig{
		PaymentStatus:  model.Paid,
		Variant:        model.VariantStandard,
		DropZeroAmount: true,
	}

	ds, stats, err := Run(raw, cfg)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, "r-0", ds.Records[0].ReservationID)
	assert.Equal(t, 2, stats.RowsInRange)
	assert.Equal(t, 1, stats.RowsExported)
}

func TestRunKeepsZeroAmountWhenConfigured(t *testing.T) {
	raw := tripCSV(
		[2]string{"2024-01-01", "55"},
		[2]string{"2024-01-02", "10"},
	)
	cfg := model.RunConfig{PaymentStatus: model.Paid, Variant: model.VariantStandard}

	ds, _, err := Run(raw, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
}

func TestRunMissingMinutesGetsMaxTier(t *testing.T) {
	raw := tripCSV([2]string{"2024-01-01", ""})
	cfg := model.RunConfig{PaymentStatus: model.Paid, Variant: model.VariantStandard}

	ds, _, err := Run(raw, cfg)
	require.NoError(t, err)
	assert.Equal(t, TierMax, ds.Records[0].Reimbursement)
}

func TestRunMissingColumnHalts(t *testing.T) {
	raw := []byte("only,two\n1,2\n")
	cfg := model.RunConfig{PaymentStatus: model.Paid, Variant: model.VariantStandard}

	_, _, err := Run(raw, cfg)
	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Len(t, missing.Columns, 8)
}

func TestRunInvalidRangeHalts(t *testing.T) {
	raw := tripCSV([2]string{"2024-01-15", "40"})
	cfg := model.RunConfig{
		FromDate:      ptrDay("2024-02-01"),
		ToDate:        ptrDay("2024-01-01"),
		PaymentStatus: model.Paid,
		Variant:       model.VariantStandard,
	}

	_, _, err := Run(raw, cfg)
	var invalid *InvalidRangeError
	assert.ErrorAs(t, err, &invalid)
}

func TestRunUnparseableDateColumnHalts(t *testing.T) {
	raw := tripCSV(
		[2]string{"not-a-date", "40"},
		[2]string{"also bad", "50"},
	)
	cfg := model.RunConfig{PaymentStatus: model.Paid, Variant: model.VariantStandard}

	_, _, err := Run(raw, cfg)
	assert.ErrorIs(t, err, ErrNoParseableDates)
}

func ptrDay(s string) *time.Time {
	d := day(s)
	return &d
}
