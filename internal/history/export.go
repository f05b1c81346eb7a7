// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdftools/pkg/types"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Export is the document written by Store.Export.
type Export struct {
	Summary Summary     `json:"summary" yaml:"summary"`
	Runs    []types.Run `json:"runs" yaml:"runs"`
}

// Export writes all runs, oldest first, with a summary to w.
func (s *Store) Export(ctx context.Context, w io.Writer, format string) error {
	runs, err := s.All(ctx)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	sum, err := s.Summarize(ctx)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []types.Run{}
	}
	return Encode(w, format, Export{Summary: sum, Runs: runs})
}

// Encode writes v to w as YAML or JSON.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (want %s or %s)", format, FormatYAML, FormatJSON)
	}
}
