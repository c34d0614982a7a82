package usecase

import (
	"context"
	"fmt"

	"github.com/naka-gawa/github-stats/internal/domain"
	"github.com/naka-gawa/github-stats/internal/gateway"
	"github.com/naka-gawa/github-stats/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// CacheStore persists line deltas between runs.
type CacheStore interface {
	Load(user string) (map[domain.CacheKey]domain.CacheEntry, error)
	Save(user string, entries []domain.CacheEntry) error
}

// LOCAggregator sums the lines a user changed across all their repositories,
// recomputing only repositories whose commit count changed since the last run.
type LOCAggregator struct {
	repos       gateway.RepositoryEnumerator
	calculator  gateway.LOCCalculator
	store       CacheStore
	concurrency int
	metrics     *metrics.Recorder
	logger      zerolog.Logger
}

// NewLOCAggregator creates a new LOCAggregator instance. concurrency bounds
// the number of commit histories walked at the same time.
func NewLOCAggregator(repos gateway.RepositoryEnumerator, calculator gateway.LOCCalculator, store CacheStore, concurrency int, logger zerolog.Logger, rec *metrics.Recorder) *LOCAggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &LOCAggregator{
		repos:       repos,
		calculator:  calculator,
		store:       store,
		concurrency: concurrency,
		metrics:     rec,
		logger:      logger,
	}
}

// Aggregate returns the line totals of authorID over every repository of
// login and rewrites the cache of login exactly once.
//
// Enumeration errors are returned as is and leave the cache untouched. A
// history walk that fails still contributes its partial delta, which is
// cached with the live commit count like any other result.
func (a *LOCAggregator) Aggregate(ctx context.Context, login, authorID string) (domain.LOCTotals, error) {
	cached, err := a.store.Load(login)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Ignoring unreadable LOC cache.")
	}
	if cached == nil {
		cached = make(map[domain.CacheKey]domain.CacheEntry)
	}

	repos, err := a.repos.FetchRepositories(ctx, login, gateway.DefaultAffiliations)
	if err != nil {
		return domain.LOCTotals{}, err
	}

	results := make([]domain.LineDelta, len(repos))
	var eg errgroup.Group
	eg.SetLimit(a.concurrency)
	for i, repo := range repos {
		if entry, ok := cached[domain.HashIdentity(repo.Identity)]; ok && entry.Matches(repo) {
			a.metrics.ObserveCacheLookup(metrics.CacheHit)
			results[i] = domain.LineDelta{Additions: entry.Additions, Deletions: entry.Deletions}
			continue
		}
		if repo.CommitCount == 0 {
			a.metrics.ObserveCacheLookup(metrics.CacheZeroCommit)
			continue
		}
		if ctx.Err() != nil {
			break
		}

		a.metrics.ObserveCacheLookup(metrics.CacheMiss)
		eg.Go(func() error {
			a.logger.Info().Str("repo", repo.Identity).Int("commits", repo.CommitCount).Msg("Recalculating LOC...")
			delta, err := a.calculator.FetchAuthorLineDelta(ctx, repo.Identity, authorID)
			if err != nil {
				a.metrics.ObserveTruncatedHistory()
				a.logger.Warn().Err(err).Str("repo", repo.Identity).
					Int64("additions", delta.Additions).Int64("deletions", delta.Deletions).
					Msg("Using partial LOC for repository.")
			}
			results[i] = delta
			return nil
		})
	}
	// Workers absorb calculator errors, so Wait only joins them.
	if err := eg.Wait(); err != nil {
		return domain.LOCTotals{}, err
	}

	if err := ctx.Err(); err != nil {
		return domain.LOCTotals{}, fmt.Errorf("LOC aggregation interrupted: %w", err)
	}

	var (
		total   domain.LineDelta
		entries = make([]domain.CacheEntry, 0, len(repos))
	)
	for i, repo := range repos {
		delta := results[i]
		total.Add(delta)
		entries = append(entries, domain.CacheEntry{
			Key:         domain.HashIdentity(repo.Identity),
			CommitCount: repo.CommitCount,
			Additions:   delta.Additions,
			Deletions:   delta.Deletions,
		})
	}

	saveErr := a.store.Save(login, entries)
	a.metrics.ObserveCacheWrite(saveErr)
	if saveErr != nil {
		a.logger.Error().Err(saveErr).Msg("Failed to write LOC cache; the next run will recompute.")
	}

	a.logger.Info().Int("repositories", len(repos)).Int("cached", len(entries)).
		Int64("additions", total.Additions).Int64("deletions", total.Deletions).
		Msg("Completed LOC aggregation.")
	return domain.LOCTotals{Additions: total.Additions, Deletions: total.Deletions}, nil
}
