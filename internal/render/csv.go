// internal/render/csv.go
package render

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"nutrition-log/internal/models"
	"nutrition-log/internal/report"
)

// CSV writes table with its header row first.
func CSV(table *report.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(table.Header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range table.Rows {
		record := []string{
			models.FormatTimestamp(row.LoggedAt),
			row.Description,
			strconv.Itoa(row.AmountGrams),
			formatFloat(row.Calories),
			formatFloat(row.Protein),
			formatFloat(row.Fat),
			formatFloat(row.Carbs),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
