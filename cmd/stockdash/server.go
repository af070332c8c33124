package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/stockdash/api"
	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}
		api.Version = version
		srv := api.NewServer(cfg, reg, pipe, logger)
		return srv.ListenAndServe(cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and registered vendors",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  stockdash system status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Market Status: %s\n", utils.MarketStatus())
		fmt.Fprintf(out, "  Time (ET):     %s\n", utils.NowET().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "  Cache TTL:     %s\n", cfg.Cache.TTL())
		fmt.Fprintf(out, "  Concurrency:   %d\n", cfg.Pipeline.Concurrency)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			if k.IsSet {
				fmt.Fprintf(out, "    ✓ %-22s %s (from %s)\n", k.Name, k.Masked, k.Source)
			} else {
				fmt.Fprintf(out, "    ✗ %-22s not set, disables: %s\n", k.Name, k.Features)
			}
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Models:")
		for _, model := range provider.AllModels() {
			def, ok := reg.DefaultProvider(model)
			if !ok {
				def = "(none)"
			}
			fmt.Fprintf(out, "    %-20s %-13s all: %s\n", model, def, strings.Join(reg.ProvidersFor(model), ", "))
		}
		return nil
	},
}

// --- Passphrase Command ---

var passphraseCmd = &cobra.Command{
	Use:   "passphrase",
	Short: "Manage API access passphrases",
}

var passphraseHashCmd = &cobra.Command{
	Use:   "hash [passphrase]",
	Short: "Print the bcrypt hash for access.passphrase_hashes",
	Long:  "Print the bcrypt hash of a passphrase. Reads the passphrase from stdin when no argument is given.",
	Args:  cobra.MaximumNArgs(1),
	// Needs no config.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		var pass string
		if len(args) == 1 {
			pass = args[0]
		} else {
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read passphrase: %w", err)
			}
			pass = strings.TrimRight(line, "\r\n")
		}
		if pass == "" {
			return fmt.Errorf("passphrase must not be empty")
		}
		hash, err := api.HashPassphrase(pass)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	passphraseCmd.AddCommand(passphraseHashCmd)
}
