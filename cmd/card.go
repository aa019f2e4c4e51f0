// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	mstats "github.com/montanaflynn/stats"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ntananh/github-stats/internal/config"
	"github.com/ntananh/github-stats/internal/domain"
	"github.com/ntananh/github-stats/internal/gateway"
	"github.com/ntananh/github-stats/internal/render"
	"github.com/ntananh/github-stats/internal/usecase"
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Generates the stats SVG card for a GitHub user",
	Long: `Reconciles the local line-of-code ledger against GitHub, aggregates the
user's activity counts and renders everything into an SVG card. Requires
the ACCESS_TOKEN environment variable (a GitHub personal access token).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		if verbose {
			logger.SetOutput(os.Stderr)
			logger.SetLevel(logrus.DebugLevel)
		}

		// Environment first, .env as a fallback for local runs.
		if err := godotenv.Load(); err != nil {
			logger.Debug("no .env file found")
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.AccessToken == "" {
			return fmt.Errorf("ACCESS_TOKEN environment variable is not set")
		}
		if user, _ := cmd.Flags().GetString("user"); user != "" {
			cfg.Login = user
		}
		if cacheDir, _ := cmd.Flags().GetString("cache-dir"); cacheDir != "" {
			cfg.CacheDir = cacheDir
		}
		force, _ := cmd.Flags().GetBool("force-refresh")
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = fmt.Sprintf("stats_%s.svg", cfg.Login)
		}

		// Inject dependencies and run the main business logic.
		gw, err := gateway.NewGitHubGateway(cfg.AccessToken, cfg.HTTPTimeout, logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}
		timings := usecase.NewTimings()
		reconciler := usecase.NewReconciler(gw, logger, cfg.CacheDir, cfg.HeaderSize)
		aggregator := usecase.NewAggregator(gw, reconciler, logger, timings, cfg.ArchivePath(), cfg.ArchiveOwner)

		stats, loc, err := aggregator.Aggregate(ctx, cfg.Login, force)
		if err != nil {
			return fmt.Errorf("failed to aggregate stats: %w", err)
		}

		if verbose {
			if remaining, limit, err := gw.FetchRateLimit(ctx); err == nil {
				logger.Infof("REST rate limit: %d/%d remaining", remaining, limit)
			}
			now := time.Now()
			if total, err := gw.FetchContributionTotal(ctx, cfg.Login, now.AddDate(-1, 0, 0), now); err == nil {
				logger.Infof("contribution calendar, past year: %d commits", total)
			}
		}

		err = timings.Track("SVG generation", func() error {
			return render.WriteFile(output, stats, time.Now())
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printTimings(out, timings, loc)
		printQueryCounts(out, gw.Queries())
		printSummary(out, stats, output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cardCmd)
	cardCmd.Flags().StringP("user", "u", "", "GitHub login to measure (defaults to USER_NAME)")
	cardCmd.Flags().StringP("output", "o", "", "Output SVG path (defaults to stats_<user>.svg)")
	cardCmd.Flags().String("cache-dir", "", "Ledger cache directory (defaults to CACHE_DIR)")
	cardCmd.Flags().BoolP("force-refresh", "f", false, "Invalidate the whole ledger and refetch everything")
}

func printTimings(w io.Writer, timings *usecase.Timings, loc *usecase.LOCResult) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Calculation times")
	tw.AppendHeader(table.Row{"Phase", "Duration"})
	for _, phase := range timings.Phases() {
		tw.AppendRow(table.Row{phase.Name, formatDuration(phase.Elapsed)})
	}
	tw.Render()

	if len(loc.RefetchDurations) > 0 {
		secs := make([]float64, 0, len(loc.RefetchDurations))
		for _, d := range loc.RefetchDurations {
			secs = append(secs, d.Seconds())
		}
		mean, _ := mstats.Mean(secs)
		median, _ := mstats.Median(secs)
		fmt.Fprintf(w, "Stale repositories refetched: %d (mean %.2fs, median %.2fs)\n",
			len(secs), mean, median)
	}
}

func printQueryCounts(w io.Writer, queries *gateway.QueryCounter) {
	counts := queries.Snapshot()
	ops := make([]string, 0, len(counts))
	for op := range counts {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("API queries")
	tw.AppendHeader(table.Row{"Operation", "Calls"})
	for _, op := range ops {
		tw.AppendRow(table.Row{op, counts[op]})
	}
	tw.AppendFooter(table.Row{"total", queries.Total()})
	tw.Render()
}

func printSummary(w io.Writer, stats *domain.AggregateStats, output string) {
	comma := func(n int) string { return humanize.Comma(int64(n)) }
	fmt.Fprintln(w, "\nGitHub Stats Summary:")
	fmt.Fprintf(w, "Username: %s\n", stats.Login)
	fmt.Fprintf(w, "GitHub Age: %s\n", stats.Age)
	fmt.Fprintf(w, "Repositories: %s (contributed to %s)\n", comma(stats.Repos), comma(stats.ContributedRepos))
	fmt.Fprintf(w, "Stars: %s\n", comma(stats.Stars))
	fmt.Fprintf(w, "Commits: %s\n", comma(stats.Commits))
	fmt.Fprintf(w, "Followers: %s / Following: %s\n", comma(stats.Followers), comma(stats.Following))
	fmt.Fprintf(w, "Lines of Code (net): %s (+%s / -%s)\n",
		comma(stats.NetLines), comma(stats.LinesAdded), comma(stats.LinesDeleted))
	if stats.CachedLOC {
		fmt.Fprintln(w, "LOC served from cache.")
	}
	fmt.Fprintf(w, "Card written to %s\n", output)
}

func formatDuration(d time.Duration) string {
	if d > time.Second {
		return fmt.Sprintf("%.4f s", d.Seconds())
	}
	return fmt.Sprintf("%.4f ms", float64(d.Microseconds())/1000)
}
