package usecase

import (
	"context"

	"github.com/naka-gawa/github-stats/internal/domain"
	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/mock"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchUserProfile(ctx context.Context, login string) (domain.UserProfile, error) {
	args := m.Called(ctx, login)
	return args.Get(0).(domain.UserProfile), args.Error(1)
}

func (m *mockFetcher) FetchRepositoryCount(ctx context.Context, login string) (int, error) {
	args := m.Called(ctx, login)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchStarTotal(ctx context.Context, login string, exhaustive bool) (int, error) {
	args := m.Called(ctx, login, exhaustive)
	return args.Int(0), args.Error(1)
}

func (m *mockFetcher) FetchContributionYears(ctx context.Context, login string) ([]int, error) {
	args := m.Called(ctx, login)
	// We need to handle the case where the returned slice is nil (e.g., when an error occurs).
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *mockFetcher) FetchYearContributions(ctx context.Context, login string, year int) (domain.YearContributions, error) {
	args := m.Called(ctx, login, year)
	return args.Get(0).(domain.YearContributions), args.Error(1)
}

func (m *mockFetcher) FetchRepositories(ctx context.Context, login string, affiliations []githubv4.RepositoryAffiliation) ([]domain.RepositorySnapshot, error) {
	args := m.Called(ctx, login, affiliations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RepositorySnapshot), args.Error(1)
}

func (m *mockFetcher) FetchAuthorLineDelta(ctx context.Context, identity, authorID string) (domain.LineDelta, error) {
	args := m.Called(ctx, identity, authorID)
	return args.Get(0).(domain.LineDelta), args.Error(1)
}

// mockLOC stands in for the LOC aggregator in Aggregator tests.
type mockLOC struct {
	mock.Mock
}

func (m *mockLOC) Aggregate(ctx context.Context, login, authorID string) (domain.LOCTotals, error) {
	args := m.Called(ctx, login, authorID)
	return args.Get(0).(domain.LOCTotals), args.Error(1)
}

// mockStore is a CacheStore whose failures can be scripted.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Load(user string) (map[domain.CacheKey]domain.CacheEntry, error) {
	args := m.Called(user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.CacheKey]domain.CacheEntry), args.Error(1)
}

func (m *mockStore) Save(user string, entries []domain.CacheEntry) error {
	args := m.Called(user, entries)
	return args.Error(0)
}
