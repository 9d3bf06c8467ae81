package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rana718/pgdiagram/internal/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a PostgreSQL DDL file into a draw.io diagram",
	Long: `
Read a PostgreSQL schema dump and write an entity-relationship diagram.

Only CREATE TABLE, ALTER TABLE ... ADD CONSTRAINT and CREATE UNIQUE INDEX
statements contribute to the diagram. Everything else in the dump (DML,
functions, grants, sequences) is skipped. Foreign keys may appear before the
tables they reference.

Examples:
  pgdiagram convert -i schema.sql -o schema.drawio
  pgdiagram convert -i dump.sql -o er.drawio --columns 0 --pk-first`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		inPath, _ := cmd.Flags().GetString("input")
		outPath, _ := cmd.Flags().GetString("output")

		result, err := convert.ConvertFile(inPath, outPath, cfg)
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}

		printDiagnostics(result.Diagnostics)
		printSummary(result, outPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringP("input", "i", "", "PostgreSQL DDL file to read")
	convertCmd.Flags().StringP("output", "o", "", "draw.io file to write")
	convertCmd.MarkFlagRequired("input")
	convertCmd.MarkFlagRequired("output")

	bindRenderFlags(convertCmd)
}

// bindRenderFlags adds the layout and render overrides shared by convert and
// pull and binds them to their config keys.
func bindRenderFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Int("columns", 0, "Tables per grid row, 0 for a square grid (default from config)")
	flags.Bool("pk-first", false, "List primary key columns first in each table")
	flags.Bool("cardinality", true, "Label connectors with cardinality")
	flags.Bool("dedupe", false, "Collapse identical foreign keys into one connector")
	flags.String("default-schema", "", "Schema assumed for unqualified table names")

	bindings := map[string]string{
		"columns":        "layout.columns_per_row",
		"pk-first":       "render.primary_keys_first",
		"cardinality":    "render.cardinality",
		"dedupe":         "layout.dedupe_edges",
		"default-schema": "default_schema",
	}

	// viper keeps one flag per key, so bind when the command runs.
	prev := cmd.PreRunE
	cmd.PreRunE = func(c *cobra.Command, args []string) error {
		for flag, key := range bindings {
			if err := viper.BindPFlag(key, c.Flags().Lookup(flag)); err != nil {
				return fmt.Errorf("failed to bind --%s: %w", flag, err)
			}
		}
		if prev != nil {
			return prev(c, args)
		}
		return nil
	}
}
