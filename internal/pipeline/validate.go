package pipeline

import (
	"fmt"

	"compensaciones-losa/internal/model"
)

// ValidateSchema checks that every required column for the variant is
// present in the upload header. This is a hard gate: a missing column
// aborts the run before any row is processed. Extra columns pass
// validation and are discarded when records are built.
func ValidateSchema(table *RawTable, variant model.Variant) error {
	present := make(map[string]bool, len(table.Headers))
	for _, h := range table.Headers {
		present[h] = true
	}

	var missing []string
	for _, col := range variant.RequiredColumns() {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}

	fmt.Printf("✅ Schema valid: %d required columns present\n", len(variant.RequiredColumns()))
	return nil
}
