package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"compensaciones-losa/internal/model"
)

// ------------------- Export -------------------

// SheetName is the single sheet of the styled workbook.
const SheetName = "Compensaciones"

// Fill colors for the styled workbook. Presentation only; no computation
// depends on these.
var (
	headerFill    = "4F81BD"
	alternateFill = "F2F2F2"

	statusFills = map[model.PaymentStatus]string{
		model.Paid:   "C6EFCE",
		model.Unpaid: "FFC7CE",
	}
	tierFills = map[int]string{
		TierLow: "FFEB9C",
		TierMid: "FFD966",
		TierMax: "F8CBAD",
	}
)

// RowValues renders one record in export column order. Both exporters and
// the API preview use this so the artifacts always agree with the dataset.
func RowValues(rec model.Record, variant model.Variant) []string {
	date := ""
	if rec.EventDate != nil {
		date = rec.EventDate.Format("2006-01-02")
	}
	minutes := ""
	if rec.Minutes != nil {
		minutes = strconv.FormatFloat(*rec.Minutes, 'f', -1, 64)
	}

	row := []string{
		date,
		rec.SegmentLabel,
		rec.EndState,
		rec.ReservationID,
		rec.ServiceChannel,
		minutes,
		rec.UserFullname,
		rec.UserPhone,
	}
	if variant == model.VariantCabify {
		row = append(row, rec.UserEmail)
	}
	return append(row, string(rec.PaymentStatus), strconv.Itoa(rec.Reimbursement))
}

// WriteCSV serializes the dataset as UTF-8 comma-separated text: one
// header row, one row per record, no index column.
func WriteCSV(w io.Writer, ds *model.Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ds.Columns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range ds.Records {
		if err := writer.Write(RowValues(rec, ds.Variant)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WorkbookOptions are the styling toggles for the workbook export.
type WorkbookOptions struct {
	AlternateShading bool
	ConditionalFills bool
}

// workbookStyles caches combined style IDs so each fill variant is
// registered with the file once.
type workbookStyles struct {
	f     *excelize.File
	base  int
	byKey map[string]int
}

func newWorkbookStyles(f *excelize.File) (*workbookStyles, error) {
	base, err := f.NewStyle(&excelize.Style{
		Border:    thinBorders(),
		Alignment: &excelize.Alignment{Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	return &workbookStyles{f: f, base: base, byKey: make(map[string]int)}, nil
}

// filled returns the base style with a solid fill of the given color.
func (s *workbookStyles) filled(color string) (int, error) {
	if id, ok := s.byKey[color]; ok {
		return id, nil
	}
	id, err := s.f.NewStyle(&excelize.Style{
		Border:    thinBorders(),
		Alignment: &excelize.Alignment{Vertical: "center"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
	if err != nil {
		return 0, err
	}
	s.byKey[color] = id
	return id, nil
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	borders := make([]excelize.Border, 0, len(sides))
	for _, side := range sides {
		borders = append(borders, excelize.Border{Type: side, Style: 1, Color: "000000"})
	}
	return borders
}

// WriteWorkbook serializes the dataset into a single styled sheet: bold
// centered header on a solid fill, an in-cell dropdown restricting the
// payment-status column to {Paid, Unpaid}, an autofilter across the
// header, thin borders and vertical centering on every populated cell,
// plus the optional alternating shading and conditional fills.
func WriteWorkbook(w io.Writer, ds *model.Dataset, opts WorkbookOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	columns := ds.Columns()
	statusCol := len(columns) - 1
	amountCol := len(columns)
	lastRow := len(ds.Records) + 1

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return fmt.Errorf("failed to build styles: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Border:    thinBorders(),
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to build header style: %w", err)
	}

	for i, name := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, name); err != nil {
			return err
		}
	}
	firstHeader, _ := excelize.CoordinatesToCellName(1, 1)
	lastHeader, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(SheetName, firstHeader, lastHeader, headerStyle); err != nil {
		return err
	}

	for r, rec := range ds.Records {
		rowNum := r + 2
		rowStyle := styles.base
		if opts.AlternateShading && rowNum%2 == 0 {
			rowStyle, err = styles.filled(alternateFill)
			if err != nil {
				return err
			}
		}

		values := RowValues(rec, ds.Variant)
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, rowNum)
			if err != nil {
				return err
			}

			// The amount cell stays numeric so spreadsheet formulas work.
			if c+1 == amountCol {
				err = f.SetCellValue(SheetName, cell, rec.Reimbursement)
			} else {
				err = f.SetCellValue(SheetName, cell, v)
			}
			if err != nil {
				return err
			}

			cellStyle := rowStyle
			if opts.ConditionalFills {
				switch c + 1 {
				case statusCol:
					if color, ok := statusFills[rec.PaymentStatus]; ok {
						if cellStyle, err = styles.filled(color); err != nil {
							return err
						}
					}
				case amountCol:
					if color, ok := tierFills[rec.Reimbursement]; ok {
						if cellStyle, err = styles.filled(color); err != nil {
							return err
						}
					}
				}
			}
			if err := f.SetCellStyle(SheetName, cell, cell, cellStyle); err != nil {
				return err
			}
		}
	}

	// Dropdown on the payment-status column, row 2 through the last row.
	statusColName, err := excelize.ColumnNumberToName(statusCol)
	if err != nil {
		return err
	}
	dv := excelize.NewDataValidation(true)
	dv.Sqref = fmt.Sprintf("%s2:%s%d", statusColName, statusColName, lastRow)
	if err := dv.SetDropList([]string{string(model.Paid), string(model.Unpaid)}); err != nil {
		return fmt.Errorf("failed to build dropdown: %w", err)
	}
	if err := f.AddDataValidation(SheetName, dv); err != nil {
		return fmt.Errorf("failed to add dropdown: %w", err)
	}

	filterRange := fmt.Sprintf("%s:%s", firstHeader, lastHeader)
	if err := f.AutoFilter(SheetName, filterRange, nil); err != nil {
		return fmt.Errorf("failed to enable filter: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
