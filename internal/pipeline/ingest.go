package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ------------------- Ingestion -------------------

// RawTable holds one parsed upload before schema validation: a header row
// plus string-valued rows keyed by column name.
type RawTable struct {
	Headers  []string
	Rows     []map[string]string
	Warnings []string
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeUpload normalizes uploaded bytes to UTF-8. It strips a UTF-8 BOM,
// decodes UTF-16 (either byte order) and falls back to Latin-1 when the
// bytes are not valid UTF-8. Returns the decoded bytes and the detected
// encoding name.
func DecodeUpload(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return data, "utf-8", nil
	}

	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "utf-8-bom", nil
	case bytes.HasPrefix(data, bomUTF16LE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		out, err := dec.Bytes(data[len(bomUTF16LE):])
		if err != nil {
			return nil, "", fmt.Errorf("UTF-16 LE decode failed: %w", err)
		}
		return out, "utf-16le", nil
	case bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
		out, err := dec.Bytes(data[len(bomUTF16BE):])
		if err != nil {
			return nil, "", fmt.Errorf("UTF-16 BE decode failed: %w", err)
		}
		return out, "utf-16be", nil
	}

	if utf8.Valid(data) {
		return data, "utf-8", nil
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("Latin-1 decode failed: %w", err)
	}
	return out, "latin-1", nil
}

// ParseUpload decodes and parses uploaded CSV bytes into a RawTable.
// Rows with too few columns are padded, rows with too many are truncated,
// and unreadable rows are skipped with a warning rather than aborting.
func ParseUpload(data []byte) (*RawTable, error) {
	decoded, encoding, err := DecodeUpload(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode upload: %w", err)
	}
	if encoding != "utf-8" {
		fmt.Printf("📄 Upload decoded from %s\n", encoding)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty upload: no header row found")
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(strings.ReplaceAll(h, `"`, ""))
	}

	table := &RawTable{Headers: headers}
	rowNum := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			table.Warnings = append(table.Warnings,
				fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		rec := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = strings.TrimSpace(row[i])
			} else {
				rec[h] = ""
			}
		}
		if len(row) > len(headers) {
			table.Warnings = append(table.Warnings,
				fmt.Sprintf("row %d: %d extra columns truncated", rowNum, len(row)-len(headers)))
		}
		table.Rows = append(table.Rows, rec)
	}

	fmt.Printf("📄 Ingestion done: %d rows read\n", len(table.Rows))
	return table, nil
}
