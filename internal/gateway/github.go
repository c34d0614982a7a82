// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying GraphQL and REST clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/naka-gawa/github-stats/internal/domain"
	"github.com/naka-gawa/github-stats/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
)

// DefaultAffiliations are the repository relations whose history is scanned for LOC.
var DefaultAffiliations = []githubv4.RepositoryAffiliation{
	githubv4.RepositoryAffiliationOwner,
	githubv4.RepositoryAffiliationCollaborator,
}

// RepositoryEnumerator lists every repository of a user.
type RepositoryEnumerator interface {
	FetchRepositories(ctx context.Context, login string, affiliations []githubv4.RepositoryAffiliation) ([]domain.RepositorySnapshot, error)
}

// LOCCalculator sums the lines one author changed in a repository.
// A non-nil error means the walk was cut short; the returned delta is
// still the valid partial sum.
type LOCCalculator interface {
	FetchAuthorLineDelta(ctx context.Context, identity, authorID string) (domain.LineDelta, error)
}

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	RepositoryEnumerator
	LOCCalculator
	FetchUserProfile(ctx context.Context, login string) (domain.UserProfile, error)
	FetchRepositoryCount(ctx context.Context, login string) (int, error)
	FetchStarTotal(ctx context.Context, login string, exhaustive bool) (int, error)
	FetchContributionYears(ctx context.Context, login string) ([]int, error)
	FetchYearContributions(ctx context.Context, login string, year int) (domain.YearContributions, error)
}

// Options configures the endpoints and limits of a GitHubGateway.
type Options struct {
	Token             string
	GraphQLURL        string
	RestURL           string
	RequestTimeout    time.Duration
	RequestsPerMinute int
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient *github.Client
	exec       *queryExecutor
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts Options, logger zerolog.Logger, rec *metrics.Recorder) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
	authed := &oauth2.Transport{
		Base:   rateLimitWaiter,
		Source: ts,
	}

	restClient := github.NewClient(&http.Client{Transport: authed})
	if opts.RestURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(opts.RestURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid REST API URL %q: %w", opts.RestURL, err)
		}
		restClient.BaseURL = baseURL
	}

	graphqlURL := opts.GraphQLURL
	if graphqlURL == "" {
		graphqlURL = "https://api.github.com/graphql"
	}
	graphqlClient := githubv4.NewEnterpriseClient(graphqlURL, &http.Client{Transport: &statusTransport{base: authed}})

	return newGitHubGateway(restClient, graphqlClient, opts, logger, rec), nil
}

func newGitHubGateway(restClient *github.Client, graphqlClient *githubv4.Client, opts Options, logger zerolog.Logger, rec *metrics.Recorder) *GitHubGateway {
	return &GitHubGateway{
		restClient: restClient,
		exec:       newQueryExecutor(graphqlClient, opts.RequestsPerMinute, opts.RequestTimeout, rec),
		timeout:    opts.RequestTimeout,
		logger:     logger,
	}
}
