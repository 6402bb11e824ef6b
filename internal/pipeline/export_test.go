package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"compensaciones-losa/internal/model"
)

func exportDataset() *model.Dataset {
	mk := func(id string, mins *float64, amount int) model.Record {
		d := day("2024-01-10")
		return model.Record{
			EventDate:      &d,
			SegmentLabel:   "30-45",
			EndState:       "finished",
			ReservationID:  id,
			ServiceChannel: "app",
			Minutes:        mins,
			UserFullname:   "Ana Perez",
			UserPhone:      "+5691111111",
			PaymentStatus:  model.Paid,
			Reimbursement:  amount,
		}
	}
	return &model.Dataset{
		Variant: model.VariantStandard,
		Records: []model.Record{
			mk("r-1", minutes(55), TierMax),
			mk("r-2", minutes(37), TierLow),
			mk("r-3", nil, TierMax),
		},
	}
}

// triple is the export round-trip identity checked by both format tests.
type triple struct {
	id     string
	amount string
	status string
}

func datasetTriples(ds *model.Dataset) []triple {
	var out []triple
	for _, rec := range ds.Records {
		out = append(out, triple{rec.ReservationID, fmt.Sprint(rec.Reimbursement), string(rec.PaymentStatus)})
	}
	return out
}

func TestWriteCSVRoundTrip(t *testing.T) {
	ds := exportDataset()
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ds))

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(ds.Records)+1)
	assert.Equal(t, ds.Columns(), rows[0])

	idCol, statusCol, amountCol := 3, 8, 9
	var got []triple
	for _, row := range rows[1:] {
		got = append(got, triple{row[idCol], row[amountCol], row[statusCol]})
	}
	assert.Equal(t, datasetTriples(ds), got)

	// Missing minutes serialize as an empty cell, not a zero.
	assert.Equal(t, "", rows[3][5])
}

func TestWriteWorkbookRoundTrip(t *testing.T) {
	ds := exportDataset()
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, ds, WorkbookOptions{
		AlternateShading: true,
		ConditionalFills: true,
	}))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, len(ds.Records)+1)
	assert.Equal(t, ds.Columns(), rows[0])

	idCol, statusCol, amountCol := 3, 8, 9
	var got []triple
	for _, row := range rows[1:] {
		got = append(got, triple{row[idCol], row[amountCol], row[statusCol]})
	}
	assert.Equal(t, datasetTriples(ds), got)
}

func TestWriteWorkbookDropdownCoversDataRows(t *testing.T) {
	ds := exportDataset()
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, ds, WorkbookOptions{}))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	dvs, err := f.GetDataValidations(SheetName)
	require.NoError(t, err)
	require.Len(t, dvs, 1)

	// Payment Status is column I in the standard layout; the constraint
	// spans row 2 through the last data row.
	assert.Equal(t, fmt.Sprintf("I2:I%d", len(ds.Records)+1), dvs[0].Sqref)
	assert.Contains(t, dvs[0].Formula1, string(model.Paid))
	assert.Contains(t, dvs[0].Formula1, string(model.Unpaid))
}

func TestRowValuesCabifyIncludesEmail(t *testing.T) {
	d := day("2024-01-10")
	rec := model.Record{
		EventDate:     &d,
		ReservationID: "r-9",
		UserEmail:     "ana@example.com",
		PaymentStatus: model.Unpaid,
		Reimbursement: TierMid,
	}

	row := RowValues(rec, model.VariantCabify)
	require.Len(t, row, len(model.VariantCabify.RequiredColumns())+2)
	assert.Equal(t, "ana@example.com", row[8])
	assert.Equal(t, "Unpaid", row[9])
	assert.Equal(t, "6000", row[10])
}
