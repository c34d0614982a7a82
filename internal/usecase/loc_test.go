package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/naka-gawa/github-stats/internal/cache"
	"github.com/naka-gawa/github-stats/internal/domain"
	"github.com/naka-gawa/github-stats/internal/gateway"
	"github.com/naka-gawa/github-stats/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testUser   = "u"
	testAuthor = "U_author"
)

func newTestLOCAggregator(fetcher *mockFetcher, store CacheStore) *LOCAggregator {
	return NewLOCAggregator(fetcher, fetcher, store, 4, zerolog.Nop(), metrics.NewRecorder())
}

func expectRepos(fetcher *mockFetcher, repos []domain.RepositorySnapshot, err error) *mock.Call {
	return fetcher.On("FetchRepositories", mock.Anything, testUser, gateway.DefaultAffiliations).Return(repos, err)
}

func expectDelta(fetcher *mockFetcher, identity string, delta domain.LineDelta, err error) *mock.Call {
	return fetcher.On("FetchAuthorLineDelta", mock.Anything, identity, testAuthor).Return(delta, err)
}

func cacheLine(identity string, commits int, add, del int64) string {
	return fmt.Sprintf("%s %d %d %d\n", domain.HashIdentity(identity), commits, add, del)
}

func readCache(t *testing.T, store *cache.Store) string {
	t.Helper()
	raw, err := os.ReadFile(store.Path(testUser))
	require.NoError(t, err)
	return string(raw)
}

func TestLOCAggregator_ColdCache(t *testing.T) {
	store := cache.NewStore(filepath.Join(t.TempDir(), "cache"))
	fetcher := new(mockFetcher)
	expectRepos(fetcher, []domain.RepositorySnapshot{{Identity: "u/r", CommitCount: 5}}, nil)
	expectDelta(fetcher, "u/r", domain.LineDelta{Additions: 120, Deletions: 30}, nil).Once()

	totals, err := newTestLOCAggregator(fetcher, store).Aggregate(context.Background(), testUser, testAuthor)

	require.NoError(t, err)
	assert.Equal(t, domain.LOCTotals{Additions: 120, Deletions: 30}, totals)
	assert.Equal(t, cacheLine("u/r", 5, 120, 30), readCache(t, store))
	fetcher.AssertExpectations(t)
}

func TestLOCAggregator_CacheHit(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	require.NoError(t, store.Save(testUser, []domain.CacheEntry{
		{Key: domain.HashIdentity("u/r"), CommitCount: 5, Additions: 120, Deletions: 30},
	}))
	fetcher := new(mockFetcher)
	expectRepos(fetcher, []domain.RepositorySnapshot{{Identity: "u/r", CommitCount: 5}}, nil)

	totals, err := newTestLOCAggregator(fetcher, store).Aggregate(context.Background(), testUser, testAuthor)

	require.NoError(t, err)
	assert.Equal(t, domain.LOCTotals{Additions: 120, Deletions: 30}, totals)
	fetcher.AssertNotCalled(t, "FetchAuthorLineDelta", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, cacheLine("u/r", 5, 120, 30), readCache(t, store))
}

func TestLOCAggregator_Idempotent(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	fetcher := new(mockFetcher)
	expectRepos(fetcher, []domain.RepositorySnapshot{
		{Identity: "u/a", CommitCount: 3},
		{Identity: "org/b", CommitCount: 9},
	}, nil)
	// Each history is walked exactly once across both runs.
	expectDelta(fetcher, "u/a", domain.LineDelta{Additions: 10, Deletions: 2}, nil).Once()
	expectDelta(fetcher, "org/b", domain.LineDelta{Additions: 7, Deletions: 40}, nil).Once()
	aggregator := newTestLOCAggregator(fetcher, store)

	first, err := aggregator.Aggregate(context.Background(), testUser, testAuthor)
	require.NoError(t, err)
	firstCache := readCache(t, store)
	second, err := aggregator.Aggregate(context.Background(), testUser, testAuthor)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, domain.LOCTotals{Additions: 17, Deletions: 42}, second)
	assert.Equal(t, int64(-25), second.Net())
	assert.Equal(t, firstCache, readCache(t, store))
	fetcher.AssertNumberOfCalls(t, "FetchAuthorLineDelta", 2)
}

func TestLOCAggregator_Invalidation(t *testing.T) {
	testCases := []struct {
		name        string
		liveCommits int
	}{
		{name: "repository gained commits", liveCommits: 6},
		{name: "repository lost commits (force push)", liveCommits: 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := cache.NewStore(t.TempDir())
			require.NoError(t, store.Save(testUser, []domain.CacheEntry{
				{Key: domain.HashIdentity("u/r"), CommitCount: 5, Additions: 120, Deletions: 30},
			}))
			fetcher := new(mockFetcher)
			expectRepos(fetcher, []domain.RepositorySnapshot{{Identity: "u/r", CommitCount: tc.liveCommits}}, nil)
			expectDelta(fetcher, "u/r", domain.LineDelta{Additions: 150, Deletions: 45}, nil).Once()

			totals, err := newTestLOCAggregator(fetcher, store).Aggregate(context.Background(), testUser, testAuthor)

			require.NoError(t, err)
			assert.Equal(t, domain.LOCTotals{Additions: 150, Deletions: 45}, totals, "stale cached delta must not be reused")
			assert.Equal(t, cacheLine("u/r", tc.liveCommits, 150, 45), readCache(t, store))
			fetcher.AssertExpectations(t)
		})
	}
}

func TestLOCAggregator_PartialFailure(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	fetcher := new(mockFetcher)
	rec := metrics.NewRecorder()
	expectRepos(fetcher, []domain.RepositorySnapshot{
		{Identity: "u/a", CommitCount: 2},
		{Identity: "u/b", CommitCount: 300},
		{Identity: "u/c", CommitCount: 4},
	}, nil)
	expectDelta(fetcher, "u/a", domain.LineDelta{Additions: 10, Deletions: 1}, nil)
	expectDelta(fetcher, "u/b", domain.LineDelta{Additions: 3, Deletions: 1}, errors.New("history of u/b truncated after 1 pages"))
	expectDelta(fetcher, "u/c", domain.LineDelta{Additions: 20, Deletions: 2}, nil)

	totals, err := NewLOCAggregator(fetcher, fetcher, store, 2, zerolog.Nop(), rec).
		Aggregate(context.Background(), testUser, testAuthor)

	require.NoError(t, err)
	assert.Equal(t, domain.LOCTotals{Additions: 33, Deletions: 4}, totals)
	assert.Equal(t, cacheLine("u/a", 2, 10, 1)+cacheLine("u/b", 300, 3, 1)+cacheLine("u/c", 4, 20, 2), readCache(t, store),
		"a truncated walk is cached with its partial delta")
	expected := "# HELP github_stats_loc_history_truncated_total Commit history walks that stopped early on an error.\n" +
		"# TYPE github_stats_loc_history_truncated_total counter\n" +
		"github_stats_loc_history_truncated_total 1\n"
	assert.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "github_stats_loc_history_truncated_total"))
}

func TestLOCAggregator_TruncatedWalkIsNotRepeated(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	fetcher := new(mockFetcher)
	expectRepos(fetcher, []domain.RepositorySnapshot{{Identity: "u/b", CommitCount: 300}}, nil)
	expectDelta(fetcher, "u/b", domain.LineDelta{Additions: 3, Deletions: 1}, errors.New("history of u/b truncated after 1 pages")).Once()
	aggregator := newTestLOCAggregator(fetcher, store)

	first, err := aggregator.Aggregate(context.Background(), testUser, testAuthor)
	require.NoError(t, err)
	second, err := aggregator.Aggregate(context.Background(), testUser, testAuthor)
	require.NoError(t, err)

	assert.Equal(t, domain.LOCTotals{Additions: 3, Deletions: 1}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, cacheLine("u/b", 300, 3, 1), readCache(t, store))
	fetcher.AssertNumberOfCalls(t, "FetchAuthorLineDelta", 1)
}

func TestLOCAggregator_ZeroCommitsAndOrphans(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	require.NoError(t, store.Save(testUser, []domain.CacheEntry{
		{Key: domain.HashIdentity("u/renamed-away"), CommitCount: 8, Additions: 1, Deletions: 1},
		{Key: domain.HashIdentity("u/kept"), CommitCount: 2, Additions: 5, Deletions: 0},
	}))
	fetcher := new(mockFetcher)
	expectRepos(fetcher, []domain.RepositorySnapshot{
		{Identity: "u/empty", CommitCount: 0},
		{Identity: "u/kept", CommitCount: 2},
	}, nil)

	totals, err := newTestLOCAggregator(fetcher, store).Aggregate(context.Background(), testUser, testAuthor)

	require.NoError(t, err)
	assert.Equal(t, domain.LOCTotals{Additions: 5, Deletions: 0}, totals)
	fetcher.AssertNotCalled(t, "FetchAuthorLineDelta", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, cacheLine("u/empty", 0, 0, 0)+cacheLine("u/kept", 2, 5, 0), readCache(t, store))
}

func TestLOCAggregator_EnumerationFailure(t *testing.T) {
	store := cache.NewStore(t.TempDir())
	previous := []domain.CacheEntry{{Key: domain.HashIdentity("u/r"), CommitCount: 5, Additions: 120, Deletions: 30}}
	require.NoError(t, store.Save(testUser, previous))
	fetcher := new(mockFetcher)
	enumErr := &gateway.TransportError{Op: "repositories", StatusCode: 502}
	expectRepos(fetcher, nil, enumErr)

	totals, err := newTestLOCAggregator(fetcher, store).Aggregate(context.Background(), testUser, testAuthor)

	assert.ErrorIs(t, err, enumErr)
	assert.Equal(t, domain.LOCTotals{}, totals)
	assert.Equal(t, cacheLine("u/r", 5, 120, 30), readCache(t, store), "cache must be untouched")
}

func TestLOCAggregator_CacheErrorsAreNotFatal(t *testing.T) {
	store := new(mockStore)
	store.On("Load", testUser).Return(nil, &cache.ReadError{Path: "x", Err: errors.New("permission denied")})
	store.On("Save", testUser, []domain.CacheEntry{
		{Key: domain.HashIdentity("u/r"), CommitCount: 5, Additions: 120, Deletions: 30},
	}).Return(&cache.WriteError{Path: "x", Err: errors.New("disk full")})
	fetcher := new(mockFetcher)
	expectRepos(fetcher, []domain.RepositorySnapshot{{Identity: "u/r", CommitCount: 5}}, nil)
	expectDelta(fetcher, "u/r", domain.LineDelta{Additions: 120, Deletions: 30}, nil)

	totals, err := newTestLOCAggregator(fetcher, store).Aggregate(context.Background(), testUser, testAuthor)

	require.NoError(t, err)
	assert.Equal(t, domain.LOCTotals{Additions: 120, Deletions: 30}, totals)
	store.AssertExpectations(t)
}

func TestLOCAggregator_Cancelled(t *testing.T) {
	store := new(mockStore)
	store.On("Load", testUser).Return(map[domain.CacheKey]domain.CacheEntry{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	fetcher := new(mockFetcher)
	expectRepos(fetcher, []domain.RepositorySnapshot{{Identity: "u/r", CommitCount: 5}}, nil)
	expectDelta(fetcher, "u/r", domain.LineDelta{Additions: 1}, context.Canceled).Run(func(mock.Arguments) { cancel() })

	_, err := newTestLOCAggregator(fetcher, store).Aggregate(ctx, testUser, testAuthor)

	assert.ErrorIs(t, err, context.Canceled)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
