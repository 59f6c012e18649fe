package google

import (
	"fmt"

	"finmodel/internal/core"
	"finmodel/internal/source"
)

// parseRows converts a values matrix (as returned by the Sheets API) into
// transactions. The Sheets API drops trailing empty cells, so short rows are
// padded and left for validation to reject.
func parseRows(values [][]interface{}) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(values))
	for i, row := range values {
		cols := toStrings(row)
		if source.IsBlank(cols) {
			continue
		}
		if i == 0 && source.IsHeader(cols) {
			continue
		}
		for len(cols) < 4 {
			cols = append(cols, "")
		}
		t, err := source.ParseRow(cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}
