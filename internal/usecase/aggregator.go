// Package usecase contains the business logic of the application.
package usecase

import (
	"context"

	"github.com/montanaflynn/stats"
	"github.com/naka-gawa/github-stats/internal/domain"
	"github.com/naka-gawa/github-stats/internal/gateway"
	"github.com/naka-gawa/github-stats/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// LOCTotaler computes the line totals of an author.
type LOCTotaler interface {
	Aggregate(ctx context.Context, login, authorID string) (domain.LOCTotals, error)
}

// AggregatorOptions tunes an Aggregator.
type AggregatorOptions struct {
	// AllStars pages through every owned repository instead of the 100 most starred.
	AllStars bool
	// Concurrency bounds the per-year contribution queries in flight.
	Concurrency int
}

// Aggregator is the use case for aggregating GitHub stats.
// It orchestrates the fetching and combining of data.
type Aggregator struct {
	fetcher gateway.Fetcher
	loc     LOCTotaler
	opts    AggregatorOptions
	metrics *metrics.Recorder
	logger  zerolog.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, loc LOCTotaler, opts AggregatorOptions, logger zerolog.Logger, rec *metrics.Recorder) *Aggregator {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Aggregator{
		fetcher: fetcher,
		loc:     loc,
		opts:    opts,
		metrics: rec,
		logger:  logger,
	}
}

// Run returns the display statistics of login. It never fails: without a
// token, or when any remote fetch fails, it reports domain.MockStats.
func (a *Aggregator) Run(ctx context.Context, login, token string) domain.Stats {
	if token == "" {
		a.logger.Warn().Msg("Missing GITHUB_TOKEN; reporting placeholder statistics.")
		a.metrics.ObserveDegraded()
		return domain.MockStats()
	}

	totals, err := a.Collect(ctx, login)
	if err != nil {
		a.logger.Error().Err(err).Str("user", login).Msg("Error fetching stats; reporting placeholder statistics.")
		a.metrics.ObserveDegraded()
		return domain.MockStats()
	}
	return domain.NewStats(totals)
}

// Collect fetches every statistic of login concurrently.
// The first error cancels the remaining fetches and is returned.
func (a *Aggregator) Collect(ctx context.Context, login string) (domain.Totals, error) {
	a.logger.Info().Str("user", login).Msg("Usecase: Starting data aggregation...")

	var totals domain.Totals
	eg, egCtx := errgroup.WithContext(ctx)

	// The LOC walk needs the author ID resolved by the profile query.
	eg.Go(func() error {
		profile, err := a.fetcher.FetchUserProfile(egCtx, login)
		if err != nil {
			return err
		}
		totals.Followers = profile.Followers
		totals.LOC, err = a.loc.Aggregate(egCtx, login, profile.ID)
		return err
	})

	eg.Go(func() error {
		var err error
		totals.Repos, err = a.fetcher.FetchRepositoryCount(egCtx, login)
		return err
	})

	eg.Go(func() error {
		var err error
		totals.Stars, err = a.fetcher.FetchStarTotal(egCtx, login, a.opts.AllStars)
		return err
	})

	eg.Go(func() error {
		var err error
		totals.Contributions, err = a.collectContributions(egCtx, login)
		return err
	})

	if err := eg.Wait(); err != nil {
		return domain.Totals{}, err
	}
	a.logger.Info().Msg("Usecase: Aggregation complete.")
	return totals, nil
}

// collectContributions sums the contributions of every year login was active.
func (a *Aggregator) collectContributions(ctx context.Context, login string) (domain.ContributionSummary, error) {
	years, err := a.fetcher.FetchContributionYears(ctx, login)
	if err != nil {
		return domain.ContributionSummary{}, err
	}
	a.logger.Info().Ints("years", years).Msg("Fetching stats for contribution years...")

	perYear := make([]domain.YearContributions, len(years))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(a.opts.Concurrency)
	for i, year := range years {
		eg.Go(func() error {
			y, err := a.fetcher.FetchYearContributions(egCtx, login, year)
			if err != nil {
				return err
			}
			perYear[i] = y
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return domain.ContributionSummary{}, err
	}

	var summary domain.ContributionSummary
	commits := make(stats.Float64Data, 0, len(perYear))
	for _, y := range perYear {
		a.logger.Info().Int("year", y.Year).Int("commits", y.Commits).Int("contributions", y.Total).Msg("Year summary")
		summary.Add(y)
		commits = append(commits, float64(y.Commits))
	}
	if len(commits) > 0 {
		median, _ := commits.Median()
		peak, _ := commits.Max()
		a.logger.Debug().Float64("median_commits", median).Float64("max_commits", peak).
			Int("other_contributions", summary.Other()).Msg("Contribution breakdown")
	}
	return summary, nil
}
