package pipeline

import (
	"strconv"
	"strings"
	"time"

	"compensaciones-losa/internal/model"
)

// ------------------- Normalization -------------------

// dateLayouts are tried in order when coercing the date column. The
// upstream reporting tool is not consistent about its export format.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02-Jan-2006",
}

// ParseDate attempts a permissive parse of a calendar date. Returns nil
// when the value cannot be interpreted; the caller treats nil as missing.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// ParseMinutes parses the elapsed-minutes column as a float. A comma
// decimal separator is accepted when no dot is present. Returns nil when
// the value is missing or unparseable.
func ParseMinutes(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// BuildRecords converts validated raw rows into typed records, coercing
// the date and minutes columns. Individual parse failures become missing
// values; only a fully unparseable date column is fatal. Columns outside
// the schema are discarded here.
func BuildRecords(table *RawTable) ([]model.Record, int, int, error) {
	records := make([]model.Record, 0, len(table.Rows))
	datesMissing := 0
	minutesMissing := 0

	for _, row := range table.Rows {
		rec := model.Record{
			EventDate:      ParseDate(row[model.ColEventDate]),
			SegmentLabel:   row[model.ColSegmentLabel],
			EndState:       row[model.ColEndState],
			ReservationID:  row[model.ColReservationID],
			ServiceChannel: row[model.ColServiceChannel],
			Minutes:        ParseMinutes(row[model.ColMinutes]),
			UserFullname:   row[model.ColUserFullname],
			UserPhone:      row[model.ColUserPhone],
			UserEmail:      row[model.ColUserEmail],
		}
		if rec.EventDate == nil {
			datesMissing++
		}
		if rec.Minutes == nil {
			minutesMissing++
		}
		records = append(records, rec)
	}

	if len(records) > 0 && datesMissing == len(records) {
		return nil, datesMissing, minutesMissing, ErrNoParseableDates
	}
	return records, datesMissing, minutesMissing, nil
}
