package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Rana718/pgdiagram/internal/convert"
	"github.com/Rana718/pgdiagram/internal/layout"
	"github.com/Rana718/pgdiagram/internal/types"
)

// inspection is the dump written by inspect.
type inspection struct {
	Tables      []*types.Table     `json:"tables" yaml:"tables"`
	Unresolved  []types.Constraint `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	Layout      *layout.Diagram    `json:"layout,omitempty" yaml:"layout,omitempty"`
	Diagnostics []string           `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the schema extracted from a DDL file",
	Long: `
Parse a PostgreSQL DDL file and print the extracted tables, columns and
constraints as YAML or JSON. Use it to check what convert will draw.

Examples:
  pgdiagram inspect -i schema.sql
  pgdiagram inspect -i schema.sql --format json --layout`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		inPath, _ := cmd.Flags().GetString("input")
		format, _ := cmd.Flags().GetString("format")
		withLayout, _ := cmd.Flags().GetBool("layout")

		data, err := os.ReadFile(inPath)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		result, err := convert.Convert(string(data), cfg)
		if err != nil {
			return err
		}

		dump := inspection{
			Tables:     result.Schema.Tables(),
			Unresolved: result.Schema.UnresolvedForeignKeys(),
		}
		if withLayout {
			dump.Layout = result.Diagram
		}
		for _, d := range result.Diagnostics {
			dump.Diagnostics = append(dump.Diagnostics, d.String())
		}

		out, err := encodeInspection(dump, format)
		if err != nil {
			return err
		}

		_, err = os.Stdout.Write(out)
		return err
	},
}

func encodeInspection(dump inspection, format string) ([]byte, error) {
	switch format {
	case "yaml", "yml":
		return yaml.Marshal(dump)
	case "json":
		out, err := json.MarshalIndent(dump, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (use yaml or json)", format)
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringP("input", "i", "", "PostgreSQL DDL file to read")
	inspectCmd.Flags().StringP("format", "f", "yaml", "Output format: yaml or json")
	inspectCmd.Flags().Bool("layout", false, "Include computed placements and connectors")
	inspectCmd.MarkFlagRequired("input")
}
