package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
)

var (
	cfgFile string
	envFile string
	cfg     spacetraveling.SiteConfig
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "spacetraveling",
	Short: "Statically generated blog over a Prismic repository",
	Long: `spacetraveling builds a blog from a Prismic repository and serves it.

Example usage:
  spacetraveling build                     # render every page into the page store
  spacetraveling build --out dist          # also export the site as static files
  spacetraveling serve                     # serve the stored pages
  spacetraveling version                   # print the version`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return initConfig()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the spacetraveling version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "spacetraveling %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./spacetraveling.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	rootCmd.AddCommand(buildCmd, serveCmd, versionCmd)
}

// initConfig loads the dotenv file, then the config file and environment.
func initConfig() error {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}

	var err error
	cfg, err = loadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger = spacetraveling.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Debug("configuration loaded",
		"site", cfg.URL,
		"content", cfg.ContentEndpoint,
		"database", cfg.DatabasePath,
		"page_size", cfg.PageSize,
	)
	return nil
}
