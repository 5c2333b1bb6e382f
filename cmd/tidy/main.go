// Package main contains the tidy CLI commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/tidy-ledger/internal/common"
	"github.com/Veraticus/tidy-ledger/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "tidy",
		Short: "≡ Human-in-the-loop transaction categorizer",
		Long: `tidy-ledger walks the unclassified transactions of one ledger month and
lets you assign each one a category from the remote taxonomy.

Every request is echoed as an equivalent curl command before it is sent.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/tidy/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("base-url", "", "ledger API base URL (default: http://localhost:7712)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "per-request timeout (default: 20s)")
	rootCmd.PersistentFlags().String("ca-file", "", "PEM file with extra CA certificates for an https base URL")
	rootCmd.PersistentFlags().Bool("no-curl", false, "do not echo requests as curl commands")

	// Bind flags to viper
	_ = v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = v.BindPFlag("ledger.base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = v.BindPFlag("ledger.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = v.BindPFlag("ledger.ca_file", rootCmd.PersistentFlags().Lookup("ca-file"))
	_ = v.BindPFlag("classify.no_curl", rootCmd.PersistentFlags().Lookup("no-curl"))

	config.SetDefaults(v)

	// Add commands
	rootCmd.AddCommand(classifyCmd(v))
	rootCmd.AddCommand(taxonomyCmd(v))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	err := newRootCmd(viper.GetViper()).ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(v *viper.Viper, cfgFile string) error {
	// A .env next to the invocation seeds TIDY_* variables.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	// Set up config file
	if cfgFile != "" {
		v.SetConfigFile(config.ExpandPath(cfgFile))
	} else {
		v.AddConfigPath(config.ExpandPath("$HOME/.config/tidy"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Environment variables
	v.SetEnvPrefix("TIDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := common.SetupLogger(v.GetString("logging.level"), v.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tidy version %s\n", version)
			slog.Debug("tidy version", "version", version)
		},
	}
}
