// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdftools CLI: size estimation,
// compression with local, remote, or containerised strategies, merge and
// split, document inspection, and run history.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/pdftools/internal/logging"
	"github.com/pdiddy/pdftools/internal/secrets"
	"github.com/pdiddy/pdftools/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the merged configuration, unmarshalled before every command.
	cfg types.Config

	// logger is built from cfg.Log before every command.
	logger = zap.NewNop()

	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets map[string]string
)

// rootCmd is the base command for the pdftools CLI.
var rootCmd = &cobra.Command{
	Use:   "pdftools",
	Short: "Compress, estimate, merge, and split PDF documents",
	Long: `pdftools shrinks PDF documents by a requested percentage or to a target
size, predicts the result before doing any work, and merges or splits
documents by page.

Compression runs through one of three strategies: local (in-process pdfcpu
rewrite), remote (hosted optimization API), or ghostscript (gs in a docker or
podman container). Every compress run is recorded in a local history
database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}

		l, err := logging.New(cfg.Log, os.Stderr)
		if err != nil {
			return err
		}
		logger = l
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}

		s, err := secrets.Load(secrets.DefaultDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdftools.yaml or ~/.config/pdftools/pdftools.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default warn)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	setDefaults(viper.GetViper())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdftools")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdftools"))
		}
	}

	viper.SetEnvPrefix("PDFTOOLS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "warning: reading config: %v\n", err)
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
