// Command stockdash builds US equity research tables from public market-data vendors.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/internal/infra"
	"github.com/seenimoa/stockdash/internal/pipeline"
	"github.com/seenimoa/stockdash/internal/present"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/internal/providers"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Shared state built in PersistentPreRunE.
var (
	cfg    *config.Config
	logger *zap.Logger
	reg    *provider.Registry
	pipe   *pipeline.Pipeline
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stockdash",
	Short: "stockdash: US stock drops, competitors, news and insider trades",
	Long: `stockdash aggregates public market-data vendors into research tables:
the day's biggest decliners joined with reference data, competitor
benchmarks, relevance-weighted news sentiment and congressional trades.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = infra.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		reg = provider.NewRegistry()
		if err := providers.RegisterAllTo(reg, cfg, providers.NewDeps(cfg, logger)); err != nil {
			return fmt.Errorf("failed to register providers: %w", err)
		}
		pipe = pipeline.New(reg, cfg.Pipeline, logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json", false, "print raw JSON instead of tables")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(passphraseCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Needs no config.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "stockdash %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Output helpers ---

// emit prints v as JSON when --json is set, otherwise the rendered text.
func emit(cmd *cobra.Command, v any, render func() string) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Fprintln(cmd.OutOrStdout(), render())
	return nil
}

// noData reports whether err is the empty-result outcome and, if so,
// prints the explicit no-data state.
func noData(cmd *cobra.Command, err error, what string) bool {
	if !errors.Is(err, provider.ErrNoDataFound) {
		return false
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		fmt.Fprintln(cmd.OutOrStdout(), `{"no_data": true}`)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), present.NoData(what))
	}
	logger.Debug("no data", zap.String("what", what), zap.Error(err))
	return true
}
