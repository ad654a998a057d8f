package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Cyriloo7/Interviewer/internal/models"
)

// csvHeader is the fixed column set of the downloadable export.
var csvHeader = []string{"Name", "Summary", "Experience (Yrs)", "Skills", "Links"}

// WriteCSV writes extraction rows as comma-separated values.
func WriteCSV(w io.Writer, rows []models.ExtractionRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Name,
			row.Summary,
			strconv.Itoa(row.Experience),
			row.Skills,
			row.Links,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", row.Name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
