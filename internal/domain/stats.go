// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"time"

	"github.com/dustin/go-humanize"
)

// placeholder is shown for every count that could not be fetched.
const placeholder = "??"

// UserProfile identifies the account whose contributions are aggregated.
// ID is the GraphQL node ID used to attribute commits to the user.
type UserProfile struct {
	ID        string
	Login     string
	CreatedAt time.Time
	Followers int
}

// YearContributions holds the contribution totals of one calendar year.
type YearContributions struct {
	Year    int `json:"year"`
	Commits int `json:"commits"`
	Total   int `json:"total"`
}

// ContributionSummary sums the yearly contribution totals of an account.
type ContributionSummary struct {
	Years   []YearContributions
	Commits int
	Total   int
}

// Other is the number of non-commit contributions (issues, PRs, reviews).
func (s ContributionSummary) Other() int {
	return s.Total - s.Commits
}

// Add folds one year into the summary.
func (s *ContributionSummary) Add(y YearContributions) {
	s.Years = append(s.Years, y)
	s.Commits += y.Commits
	s.Total += y.Total
}

// Totals is the numeric result of one aggregation run.
type Totals struct {
	Repos         int
	Stars         int
	Followers     int
	Contributions ContributionSummary
	LOC           LOCTotals
}

// Stats is the display form of Totals handed to the report renderer.
// Every value is pre-formatted; the renderer only substitutes placeholders.
type Stats struct {
	Repos              string `json:"repos" yaml:"repos"`
	Stars              string `json:"stars" yaml:"stars"`
	Commits            string `json:"commits" yaml:"commits"`
	TotalContributions string `json:"total_contributions" yaml:"total_contributions"`
	OtherContributions string `json:"other_contributions" yaml:"other_contributions"`
	Followers          string `json:"followers" yaml:"followers"`
	LOCTotal           string `json:"loc_total" yaml:"loc_total"`
	LOCAdd             string `json:"loc_add" yaml:"loc_add"`
	LOCDel             string `json:"loc_del" yaml:"loc_del"`
}

// NewStats formats totals for display.
func NewStats(t Totals) Stats {
	return Stats{
		Repos:              humanize.Comma(int64(t.Repos)),
		Stars:              humanize.Comma(int64(t.Stars)),
		Commits:            humanize.Comma(int64(t.Contributions.Commits)),
		TotalContributions: humanize.Comma(int64(t.Contributions.Total)),
		OtherContributions: humanize.Comma(int64(t.Contributions.Other())),
		Followers:          humanize.Comma(int64(t.Followers)),
		LOCTotal:           humanize.Comma(t.LOC.Net()),
		LOCAdd:             humanize.Comma(t.LOC.Additions) + "++",
		LOCDel:             humanize.Comma(t.LOC.Deletions) + "--",
	}
}

// MockStats is the fixed value reported when real statistics are unavailable.
func MockStats() Stats {
	return Stats{
		Repos:              placeholder,
		Stars:              placeholder,
		Commits:            placeholder,
		TotalContributions: placeholder,
		OtherContributions: placeholder,
		Followers:          placeholder,
		LOCTotal:           "0",
		LOCAdd:             "0++",
		LOCDel:             "0--",
	}
}

// Map returns the placeholder map consumed by the renderer.
func (s Stats) Map() map[string]string {
	return map[string]string{
		"repos":               s.Repos,
		"stars":               s.Stars,
		"commits":             s.Commits,
		"total_contributions": s.TotalContributions,
		"other_contributions": s.OtherContributions,
		"followers":           s.Followers,
		"loc_total":           s.LOCTotal,
		"loc_add":             s.LOCAdd,
		"loc_del":             s.LOCDel,
	}
}
