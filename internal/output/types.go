// internal/output/types.go
package output

import (
	"io"
	"strconv"
	"strings"

	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// OutputFormat represents supported output formats
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatCSV   OutputFormat = "csv"
	FormatExcel OutputFormat = "excel"
)

// ValidOutputFormats returns all valid output format values
func ValidOutputFormats() []OutputFormat {
	return []OutputFormat{FormatJSON, FormatYAML, FormatCSV, FormatExcel}
}

// ParseFormat normalizes a format name. "yml" and "xlsx" are accepted aliases.
func ParseFormat(name string) (OutputFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, true
	case "yaml", "yml":
		return FormatYAML, true
	case "csv":
		return FormatCSV, true
	case "excel", "xlsx":
		return FormatExcel, true
	}
	return "", false
}

// Writer encodes a batch of recipes
type Writer interface {
	Write(recipes []*types.Recipe) error
	Close() error
}

// newWriter builds the writer for format on top of w.
func newWriter(format OutputFormat, w io.Writer) Writer {
	switch format {
	case FormatYAML:
		return NewYAMLWriter(w)
	case FormatCSV:
		return NewCSVWriter(w)
	case FormatExcel:
		return NewExcelWriter(w)
	default:
		return NewJSONWriter(w)
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
