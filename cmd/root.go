// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"

	"github.com/naka-gawa/github-stats/internal/config"
	"github.com/naka-gawa/github-stats/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "github-stats",
	Short: "A CLI tool to aggregate GitHub profile statistics.",
	Long: `github-stats is a CLI tool that aggregates a user's GitHub profile statistics
(repositories, stars, commits, contributions, followers and lines of code).
Lines of code are cached per repository so repeated runs only rescan
repositories whose commit count changed.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("user", "u", "", "Target GitHub user name (default $GITHUB_USERNAME)")
	rootCmd.PersistentFlags().String("cache-dir", "", "Directory of the LOC cache (default $STATS_CACHE_DIR or ./cache)")
}

// loadConfig reads the environment and applies flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	return config.NewLoader(config.DefaultPrefix).Load(func(c *config.Config) {
		if flags.Changed("user") {
			c.GithubUsername, _ = flags.GetString("user")
		}
		if flags.Changed("cache-dir") {
			c.CacheDir, _ = flags.GetString("cache-dir")
		}
		if flags.Lookup("all-stars") != nil && flags.Changed("all-stars") {
			c.AllStars, _ = flags.GetBool("all-stars")
		}
		if flags.Lookup("metrics-file") != nil && flags.Changed("metrics-file") {
			c.MetricsFile, _ = flags.GetString("metrics-file")
		}
	})
}

// newLogger logs to standard error so standard output stays machine-readable.
func newLogger(cmd *cobra.Command, cfg config.Config) zerolog.Logger {
	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = zerolog.LevelDebugValue
	}
	return logger.New(level, cfg.LogFormat, os.Stderr)
}

func mustLoadConfig(cmd *cobra.Command) config.Config {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
