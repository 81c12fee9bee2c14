// internal/output/yaml.go
package output

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// YAMLWriter writes recipes as a YAML sequence
type YAMLWriter struct {
	encoder *yaml.Encoder
}

// NewYAMLWriter creates a new YAML writer
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	return &YAMLWriter{encoder: encoder}
}

// Write encodes the batch as one document
func (w *YAMLWriter) Write(recipes []*types.Recipe) error {
	if recipes == nil {
		recipes = []*types.Recipe{}
	}
	return w.encoder.Encode(recipes)
}

// Close flushes the encoder
func (w *YAMLWriter) Close() error {
	return w.encoder.Close()
}
