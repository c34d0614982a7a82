// Package report writes Stats for people and scripts.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/naka-gawa/github-stats/internal/domain"
	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// Write renders stats to w in the given format.
func Write(w io.Writer, format string, stats domain.Stats) error {
	switch format {
	case FormatJSON, "":
		// Marshal the results into a pretty-printed JSON string.
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results to JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(stats); err != nil {
			return fmt.Errorf("failed to marshal results to YAML: %w", err)
		}
		return enc.Close()
	case FormatTable:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Stat", "Value"})
		t.AppendRows([]table.Row{
			{"Repos", stats.Repos},
			{"Stars", stats.Stars},
			{"Commits", stats.Commits},
			{"Contributions", stats.TotalContributions},
			{"Other contributions", stats.OtherContributions},
			{"Followers", stats.Followers},
			{"LOC", fmt.Sprintf("%s (%s, %s)", stats.LOCTotal, stats.LOCAdd, stats.LOCDel)},
		})
		t.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
