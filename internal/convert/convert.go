package convert

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Rana718/pgdiagram/internal/config"
	"github.com/Rana718/pgdiagram/internal/drawio"
	"github.com/Rana718/pgdiagram/internal/layout"
	"github.com/Rana718/pgdiagram/internal/schema"
	"github.com/Rana718/pgdiagram/internal/types"
)

type Result struct {
	Document    []byte
	Schema      *types.Schema
	Diagram     *layout.Diagram
	Diagnostics []schema.Diagnostic
}

// Convert runs the whole pipeline over DDL text. Problems with individual
// statements end up in Diagnostics; an error means the configuration or the
// rendering itself failed.
func Convert(input string, cfg *config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s, diags := schema.Parse(input, cfg.DefaultSchema)

	result, err := Render(s, cfg)
	if err != nil {
		return nil, err
	}
	result.Diagnostics = diags

	return result, nil
}

// Render lays out and renders an already built schema.
func Render(s *types.Schema, cfg *config.Config) (*Result, error) {
	d, err := layout.Compute(s, cfg.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to compute layout: %w", err)
	}

	doc, err := drawio.Render(s, d, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render diagram: %w", err)
	}

	return &Result{Document: doc, Schema: s, Diagram: d}, nil
}

// ConvertFile reads DDL from inPath and writes the diagram to outPath.
func ConvertFile(inPath, outPath string, cfg *config.Config) (*Result, error) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	result, err := Convert(string(data), cfg)
	if err != nil {
		return nil, err
	}

	if err := WriteDocument(outPath, result.Document); err != nil {
		return nil, err
	}

	return result, nil
}

func WriteDocument(path string, doc []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, doc, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
