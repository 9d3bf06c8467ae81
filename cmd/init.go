package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Rana718/pgdiagram/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default " + config.FileName,
	Long: `Write the default layout, render and database settings to
` + config.FileName + ` in the current directory. An existing file is left alone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(config.FileName); err != nil {
			return err
		}

		color.Green("✅ Created %s", config.FileName)
		fmt.Println()
		color.Cyan("Next steps:")
		fmt.Println("  pgdiagram convert -i schema.sql -o schema.drawio")
		fmt.Println("  DATABASE_URL=postgres://... pgdiagram pull -o schema.drawio")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
