package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rana718/pgdiagram/internal/pull"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Draw the schema of a live PostgreSQL database",
	Long: `
Connect to the database named by the configured URL environment variable
(DATABASE_URL by default), read tables, columns and key constraints from the
catalog and write them as a draw.io diagram.

The command will:
1. Connect to the database
2. Introspect tables, columns, primary keys, foreign keys and unique keys
3. Lay the tables out on a grid and connect foreign keys
4. Optionally back up the existing diagram before overwriting it

Examples:
  pgdiagram pull -o schema.drawio
  pgdiagram pull -o schema.drawio --schema public --schema billing --backup`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		backup, _ := cmd.Flags().GetBool("backup")
		outputPath, _ := cmd.Flags().GetString("output")
		schemas, _ := cmd.Flags().GetStringSlice("schema")

		ctx := context.Background()

		pullService, err := pull.NewService(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to create pull service: %w", err)
		}
		defer pullService.Close()

		result, err := pullService.Pull(ctx, pull.Options{
			Backup:     backup,
			OutputPath: outputPath,
			Schemas:    schemas,
		})
		if err != nil {
			return err
		}

		printDiagnostics(result.Diagnostics)
		printSummary(result, outputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)

	pullCmd.Flags().BoolP("backup", "b", false, "Back up an existing diagram before overwriting it")
	pullCmd.Flags().StringP("output", "o", "", "draw.io file to write")
	pullCmd.Flags().StringSliceP("schema", "s", nil, "Schema to include, repeatable (default from config)")
	pullCmd.MarkFlagRequired("output")

	bindRenderFlags(pullCmd)
}
