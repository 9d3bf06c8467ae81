package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rana718/pgdiagram/internal/config"
)

var (
	cfgFile string
	verbose bool
	Version = "0.3.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔════════════════════════════════════════════════╗",
		"║   ┌──────────┐          ┌──────────┐           ║",
		"║   │ users    │──────────│ orders   │           ║",
		"║   ├──────────┤          ├──────────┤           ║",
		"║   │ PK id    │          │ FK user  │           ║",
		"║   └──────────┘          └──────────┘           ║",
		"║                                                ║",
		"║      pgdiagram: PostgreSQL DDL to draw.io      ║",
		"╚════════════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("                ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "pgdiagram",
	Short: "Turn PostgreSQL schemas into draw.io ER diagrams",
	Long: `
pgdiagram reads PostgreSQL DDL (typically pg_dump --schema-only output) or a
live database and writes an entity-relationship diagram that draw.io opens
directly.

Every table becomes an entity box with one row per column, marked PK, FK or
UQ. Every resolved foreign key becomes a connector between the referencing
and referenced column rows.`,
	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("pgdiagram version %s\n", Version)
			os.Exit(0)
		}

		if len(args) == 0 {
			showBanner()
			fmt.Println()
			cmd.Help()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.FileName+")")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Also print informational diagnostics such as skipped statements")

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName(strings.TrimSuffix(config.FileName, ".json"))
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			color.Red("❌ Failed to read config: %v", err)
		}
	}
}

// loadConfig loads the merged configuration and validates it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
