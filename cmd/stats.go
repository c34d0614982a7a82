// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/naka-gawa/github-stats/internal/cache"
	"github.com/naka-gawa/github-stats/internal/gateway"
	"github.com/naka-gawa/github-stats/internal/metrics"
	"github.com/naka-gawa/github-stats/internal/report"
	"github.com/naka-gawa/github-stats/internal/usecase"
	"github.com/spf13/cobra"
)

// lowRateBudget is the remaining GraphQL quota below which a warning is logged.
const lowRateBudget = 100

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregates GitHub profile statistics and prints them",
	Long: `Aggregates repositories, stars, commits, contributions, followers and lines of code
for a GitHub user and prints the result. Remote failures never abort the command:
placeholder statistics are printed instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg := mustLoadConfig(cmd)
		logger := newLogger(cmd, cfg)
		format, _ := cmd.Flags().GetString("format")

		rec := metrics.NewRecorder()
		githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
			Token:             cfg.GithubToken,
			GraphQLURL:        cfg.GraphQLURL,
			RestURL:           cfg.RestURL,
			RequestTimeout:    cfg.RequestTimeout,
			RequestsPerMinute: cfg.RequestsPerMinute,
		}, logger, rec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		if cfg.GithubToken != "" {
			budget, err := githubGateway.FetchRateBudget(ctx)
			switch {
			case err != nil:
				logger.Warn().Err(err).Msg("Could not read the GraphQL rate limit.")
			case budget.Remaining < lowRateBudget:
				logger.Warn().Int("remaining", budget.Remaining).Time("reset", budget.Reset).Msg("GraphQL rate limit nearly exhausted.")
			default:
				logger.Debug().Int("remaining", budget.Remaining).Int("limit", budget.Limit).Msg("GraphQL rate limit")
			}
		}

		// Inject dependencies and run the main business logic.
		locAggregator := usecase.NewLOCAggregator(githubGateway, githubGateway, cache.NewStore(cfg.CacheDir), cfg.Concurrency, logger, rec)
		aggregator := usecase.NewAggregator(githubGateway, locAggregator, usecase.AggregatorOptions{
			AllStars:    cfg.AllStars,
			Concurrency: cfg.Concurrency,
		}, logger, rec)

		logger.Info().Str("user", cfg.GithubUsername).Msg("Fetching statistics...")
		stats := aggregator.Run(ctx, cfg.GithubUsername, cfg.GithubToken)

		if cfg.MetricsFile != "" {
			if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
				logger.Warn().Err(err).Msg("Failed to write metrics.")
			}
		}

		if err := report.Write(os.Stdout, format, stats); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write results: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringP("format", "f", report.FormatJSON, "Output format: json, yaml or table")
	statsCmd.Flags().Bool("all-stars", false, "Count stars of every owned repository instead of the 100 most starred")
	statsCmd.Flags().String("metrics-file", "", "Write run metrics to this Prometheus textfile")
}
