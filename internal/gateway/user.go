package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/naka-gawa/github-stats/internal/domain"
	"github.com/shurcooL/githubv4"
)

// FetchUserProfile resolves the node ID and follower count of login.
func (g *GitHubGateway) FetchUserProfile(ctx context.Context, login string) (domain.UserProfile, error) {
	var q userProfileQuery
	if err := g.exec.execute(ctx, "userProfile", &q, map[string]any{"login": githubv4.String(login)}); err != nil {
		return domain.UserProfile{}, fmt.Errorf("failed to fetch user profile: %w", err)
	}
	if q.User.ID == "" {
		return domain.UserProfile{}, &APIError{Op: "userProfile", Message: fmt.Sprintf("user %q not found", login)}
	}
	return domain.UserProfile{
		ID:        q.User.ID,
		Login:     q.User.Login,
		CreatedAt: q.User.CreatedAt.Time,
		Followers: q.User.Followers.TotalCount,
	}, nil
}

// FetchRepositoryCount returns the number of repositories login owns.
func (g *GitHubGateway) FetchRepositoryCount(ctx context.Context, login string) (int, error) {
	var q repositoryCountQuery
	if err := g.exec.execute(ctx, "repositoryCount", &q, map[string]any{"login": githubv4.String(login)}); err != nil {
		return 0, fmt.Errorf("failed to fetch repository count: %w", err)
	}
	return q.User.Repositories.TotalCount, nil
}

// FetchStarTotal sums stargazers over the repositories login owns. Unless
// exhaustive is set only the first page is read: the 100 most starred
// repositories, which undercounts accounts with more starred repositories.
func (g *GitHubGateway) FetchStarTotal(ctx context.Context, login string, exhaustive bool) (int, error) {
	variables := map[string]any{"login": githubv4.String(login), "cursor": (*githubv4.String)(nil)}
	stars := 0
	for {
		var q starTotalQuery
		if err := g.exec.execute(ctx, "starTotal", &q, variables); err != nil {
			return 0, fmt.Errorf("failed to fetch star total: %w", err)
		}
		for _, node := range q.User.Repositories.Nodes {
			stars += node.Stargazers.TotalCount
		}
		if !exhaustive || !q.User.Repositories.PageInfo.HasNextPage {
			break
		}
		if err := nextCursor(ctx, variables, "starTotal", q.User.Repositories.PageInfo); err != nil {
			return 0, fmt.Errorf("failed to fetch star total: %w", err)
		}
		g.logger.Debug().Msg("Fetching next page of starred repositories...")
	}
	return stars, nil
}

// FetchContributionYears lists the years in which login has any activity.
func (g *GitHubGateway) FetchContributionYears(ctx context.Context, login string) ([]int, error) {
	var q contributionYearsQuery
	if err := g.exec.execute(ctx, "contributionYears", &q, map[string]any{"login": githubv4.String(login)}); err != nil {
		return nil, fmt.Errorf("failed to fetch contribution years: %w", err)
	}
	return q.User.ContributionsCollection.ContributionYears, nil
}

// FetchYearContributions returns the commit and total contributions of one calendar year.
func (g *GitHubGateway) FetchYearContributions(ctx context.Context, login string, year int) (domain.YearContributions, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	variables := map[string]any{
		"login": githubv4.String(login),
		"from":  githubv4.DateTime{Time: from},
		"to":    githubv4.DateTime{Time: to},
	}

	var q yearContributionsQuery
	if err := g.exec.execute(ctx, "yearContributions", &q, variables); err != nil {
		return domain.YearContributions{}, fmt.Errorf("failed to fetch contributions for %d: %w", year, err)
	}
	c := q.User.ContributionsCollection
	return domain.YearContributions{
		Year:    year,
		Commits: c.TotalCommitContributions,
		Total:   c.ContributionCalendar.TotalContributions,
	}, nil
}

// nextCursor advances variables to the page after info. It refuses to loop
// on a page that claims more results but carries no cursor, and stops when
// ctx is done.
func nextCursor(ctx context.Context, variables map[string]any, op string, info pageInfo) error {
	if info.EndCursor == "" {
		return &TransportError{Op: op, Err: fmt.Errorf("page reports more results without an end cursor")}
	}
	if err := ctx.Err(); err != nil {
		return &TransportError{Op: op, Err: err}
	}
	variables["cursor"] = githubv4.NewString(info.EndCursor)
	return nil
}
