// internal/output/csv.go
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// CSVHeader is the column layout: one row per ingredient.
var CSVHeader = []string{"recipe", "position", "quantity", "unit", "name", "notes"}

// CSVWriter writes ingredient rows in CSV format
type CSVWriter struct {
	writer *csv.Writer
}

// NewCSVWriter creates a new CSV writer
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{writer: csv.NewWriter(w)}
}

// Write writes the header and every ingredient of every recipe
func (w *CSVWriter) Write(recipes []*types.Recipe) error {
	if err := w.writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, recipe := range recipes {
		for i, ing := range recipe.Ingredients {
			record := []string{
				recipe.Title,
				strconv.Itoa(i + 1),
				formatFloat(ing.Quantity),
				ing.Unit,
				ing.Name,
				ing.Notes,
			}
			if err := w.writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
	}

	w.writer.Flush()
	return w.writer.Error()
}

// Close flushes any buffered rows
func (w *CSVWriter) Close() error {
	w.writer.Flush()
	return w.writer.Error()
}
