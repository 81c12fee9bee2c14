// internal/output/manager.go
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/valpere/RecipeScrapexter/internal/config"
	apperrors "github.com/valpere/RecipeScrapexter/internal/errors"
	"github.com/valpere/RecipeScrapexter/pkg/types"
)

// Manager writes import batches in the configured format
type Manager struct {
	format OutputFormat
	file   string
	stdout io.Writer
}

// NewManager creates a new output manager. An empty file means stdout.
func NewManager(cfg *config.OutputConfig) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("output configuration is required")
	}

	format, ok := ParseFormat(cfg.Format)
	if !ok {
		return nil, fmt.Errorf("unsupported output format: %s", cfg.Format)
	}

	return &Manager{
		format: format,
		file:   cfg.File,
		stdout: os.Stdout,
	}, nil
}

// Format returns the resolved output format
func (m *Manager) Format() OutputFormat { return m.format }

// SetStdout redirects output written when no file is configured
func (m *Manager) SetStdout(w io.Writer) { m.stdout = w }

// Write writes the batch to the configured file or stdout
func (m *Manager) Write(recipes []*types.Recipe) error {
	if m.file == "" {
		return m.wrap("stdout", m.WriteTo(m.stdout, recipes))
	}
	target := m.file

	if dir := filepath.Dir(m.file); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return m.wrap(target, fmt.Errorf("failed to create output directory: %w", err))
		}
	}
	file, err := os.Create(m.file)
	if err != nil {
		return m.wrap(target, err)
	}

	if err := m.WriteTo(file, recipes); err != nil {
		file.Close()
		return m.wrap(target, err)
	}
	return m.wrap(target, file.Close())
}

// WriteTo encodes the batch onto w
func (m *Manager) WriteTo(w io.Writer, recipes []*types.Recipe) error {
	writer := newWriter(m.format, w)
	if err := writer.Write(recipes); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write %s output: %w", m.format, err)
	}
	return writer.Close()
}

func (m *Manager) wrap(target string, err error) error {
	if err == nil {
		return nil
	}
	return &apperrors.OutputError{Target: target, Err: err}
}
