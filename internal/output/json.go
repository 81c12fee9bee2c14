// internal/output/json.go
package output

import (
	"encoding/json"
	"io"

	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// JSONWriter writes recipes as an indented JSON array
type JSONWriter struct {
	w io.Writer
}

// NewJSONWriter creates a new JSON writer
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w}
}

// Write encodes the whole batch. A nil batch is written as [].
func (w *JSONWriter) Write(recipes []*types.Recipe) error {
	if recipes == nil {
		recipes = []*types.Recipe{}
	}
	encoder := json.NewEncoder(w.w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(recipes)
}

// Close is a no-op; the Manager owns the underlying file.
func (w *JSONWriter) Close() error { return nil }
