package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/stockdash/internal/pipeline"
	"github.com/seenimoa/stockdash/internal/present"
)

func init() {
	dropsCmd.Flags().Float64("threshold", 0, "minimum drop as a fraction, e.g. 0.10 (default from config)")
	dropsCmd.Flags().String("sector", "", "exact sector filter")
	dropsCmd.Flags().String("industry", "", "exact industry filter")
	dropsCmd.Flags().String("type", "", "exact security type filter, e.g. stock")
	dropsCmd.Flags().Float64("mcap-pct", 0, "keep rows at or above this market-cap percentile (0-100)")

	stockCmd.Flags().String("range", "", `look-back window, e.g. "6 months" (default from config)`)

	peersCmd.Flags().String("set", "metrics", "column set: overview, metrics or growth")
	peersCmd.Flags().StringSlice("columns", nil, "explicit columns, overrides --set")

	newsCmd.Flags().Int("limit", 0, "maximum articles to request (default from config)")
	newsCmd.Flags().StringSlice("topics", nil, "news topics (default from config)")

	tradesCmd.Flags().Int("days", 0, "look-back window in days (default from config)")

	headlinesCmd.Flags().Int("limit", 0, "maximum headlines (default from config)")

	rootCmd.AddCommand(dropsCmd, stockCmd, peersCmd, newsCmd, sentimentCmd, tradesCmd, headlinesCmd)
}

// --- Drops Command ---

var dropsCmd = &cobra.Command{
	Use:   "drops",
	Short: "List today's biggest decliners",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		var req pipeline.DropRequest
		req.Threshold, _ = f.GetFloat64("threshold")
		req.Sector, _ = f.GetString("sector")
		req.Industry, _ = f.GetString("industry")
		req.Type, _ = f.GetString("type")
		req.MarketCapPercentile, _ = f.GetFloat64("mcap-pct")

		table, err := pipe.Drops(cmd.Context(), req)
		if err != nil {
			return err
		}
		return emit(cmd, table, func() string { return present.DropTable(table) })
	},
}

// --- Stock Command ---

var stockCmd = &cobra.Command{
	Use:   "stock [symbol]",
	Short: "Show a symbol's profile, price window and earnings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rng, _ := cmd.Flags().GetString("range")
		dash, err := pipe.Dashboard(cmd.Context(), pipeline.StockRequest{Symbol: args[0], Range: rng})
		if err != nil {
			if noData(cmd, err, strings.ToUpper(args[0])) {
				return nil
			}
			return err
		}
		return emit(cmd, dash, func() string { return present.Dashboard(dash) })
	},
}

// --- Peers Command ---

var peersCmd = &cobra.Command{
	Use:   "peers [symbol]",
	Short: "Benchmark a symbol against its competitors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		columns, _ := cmd.Flags().GetStringSlice("columns")
		if len(columns) == 0 {
			name, _ := cmd.Flags().GetString("set")
			set, ok := pipeline.ColumnSet(name)
			if !ok {
				return fmt.Errorf("unknown column set %q (overview, metrics, growth)", name)
			}
			columns = set
		}
		report, err := pipe.Benchmarks(cmd.Context(), pipeline.BenchmarkRequest{Symbol: args[0], Columns: columns})
		if err != nil {
			return err
		}
		return emit(cmd, report, func() string {
			return present.BenchmarkTable(&report.Table) + "\n" + present.PeerStats(report.Stats)
		})
	},
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [symbol]",
	Short: "Show relevant news with weighted sentiment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		topics, _ := cmd.Flags().GetStringSlice("topics")
		report, err := pipe.News(cmd.Context(), pipeline.NewsRequest{Symbol: args[0], Limit: limit, Topics: topics})
		if err != nil {
			return err
		}
		return emit(cmd, report, func() string { return present.NewsTable(report, time.Now()) })
	},
}

// --- Sentiment Command ---

var sentimentCmd = &cobra.Command{
	Use:   "sentiment [symbol]",
	Short: "Print the relevance-weighted news sentiment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := pipe.Sentiment(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return emit(cmd, sum, func() string { return present.SentimentLine(*sum) })
	},
}

// --- Trades Command ---

var tradesCmd = &cobra.Command{
	Use:   "trades [symbol]",
	Short: "List congressional trades in a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		report, err := pipe.InsiderTrades(cmd.Context(), args[0], days)
		if err != nil {
			if noData(cmd, err, strings.ToUpper(args[0])+" trades") {
				return nil
			}
			return err
		}
		return emit(cmd, report, func() string { return present.TradesTable(report) })
	},
}

// --- Headlines Command ---

var headlinesCmd = &cobra.Command{
	Use:   "headlines [symbol]",
	Short: "Search headlines explaining a drop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		hs, err := pipe.Headlines(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		symbol := strings.ToUpper(strings.TrimSpace(args[0]))
		return emit(cmd, hs, func() string { return present.HeadlinesTable(symbol, hs, time.Now()) })
	},
}
