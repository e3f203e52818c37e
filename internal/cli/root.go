// Package cli holds the cobra command tree of the server binary: serve runs
// the HTTP API, migrate applies the schema, version prints build info.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-crypto-backend/internal/config"
	"github.com/tbourn/go-crypto-backend/internal/sysutil"
)

// Set with -ldflags "-X github.com/tbourn/go-crypto-backend/internal/cli.version=..."
var version = "dev"

var (
	envFile  string
	logLevel string
	cfg      config.Config
)

var rootCmd = &cobra.Command{
	Use:          "crypto-backend",
	Short:        "Crypto conversion API with per-user history and favorites",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnv(envFile, cmd.Flags().Changed("env-file")); err != nil {
			return err
		}
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			c.LogLevel = logLevel
		}
		sysutil.ConfigureLogger(c.LogPretty, nil)
		sysutil.SetLogLevel(c.LogLevel)
		cfg = c
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnv loads path into the process environment without overriding
// variables that are already set. A missing default file is not an error;
// a missing file the user asked for is.
func loadEnv(path string, explicit bool) error {
	err := godotenv.Load(path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		log.Debug().Str("path", path).Msg("no dotenv file, using process environment")
		return nil
	default:
		return fmt.Errorf("load %s: %w", path, err)
	}
}

func appVersion() string {
	return sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)
}
