package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/naka-gawa/github-stats/internal/cache"
	"github.com/naka-gawa/github-stats/internal/domain"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspects or clears the lines-of-code cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Lists the cached line deltas of a user",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig(cmd)
		store := cache.NewStore(cfg.CacheDir)

		entries, err := store.Load(cfg.GithubUsername)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}

		sorted := make([]domain.CacheEntry, 0, len(entries))
		var totals domain.LOCTotals
		for _, e := range entries {
			sorted = append(sorted, e)
			totals.Additions += e.Additions
			totals.Deletions += e.Deletions
		}
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Key < sorted[j].Key
		})

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle(store.Path(cfg.GithubUsername))
		t.AppendHeader(table.Row{"Repository hash", "Commits", "Additions", "Deletions"})
		for _, e := range sorted {
			t.AppendRow(table.Row{shortKey(e.Key), e.CommitCount, e.Additions, e.Deletions})
		}
		t.AppendFooter(table.Row{fmt.Sprintf("%d repositories", len(sorted)), "", totals.Additions, totals.Deletions})
		t.Render()
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Deletes the cache of a user so the next run rescans every repository",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig(cmd)
		store := cache.NewStore(cfg.CacheDir)
		if err := store.Remove(cfg.GithubUsername); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to clear cache: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed %s\n", store.Path(cfg.GithubUsername))
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheShowCmd, cacheClearCmd)
}

func shortKey(k domain.CacheKey) string {
	const width = 12
	if len(k) <= width {
		return string(k)
	}
	return string(k[:width])
}
