package gateway

import (
	"context"
	"fmt"

	"github.com/naka-gawa/github-stats/internal/domain"
	"github.com/shurcooL/githubv4"
)

// FetchRepositories pages through every repository of login with the given
// affiliations. It is all-or-nothing: a failed page discards everything,
// since a partial list would silently undercount lines of code.
func (g *GitHubGateway) FetchRepositories(ctx context.Context, login string, affiliations []githubv4.RepositoryAffiliation) ([]domain.RepositorySnapshot, error) {
	if len(affiliations) == 0 {
		affiliations = DefaultAffiliations
	}
	variables := map[string]any{
		"login":        githubv4.String(login),
		"affiliations": affiliations,
		"cursor":       (*githubv4.String)(nil),
	}

	var repos []domain.RepositorySnapshot
	for {
		var q repositoriesQuery
		if err := g.exec.execute(ctx, "repositories", &q, variables); err != nil {
			return nil, fmt.Errorf("failed to enumerate repositories: %w", err)
		}
		for _, node := range q.User.Repositories.Nodes {
			snapshot := domain.RepositorySnapshot{Identity: node.NameWithOwner}
			if node.DefaultBranchRef != nil {
				snapshot.CommitCount = node.DefaultBranchRef.Target.Commit.History.TotalCount
			}
			repos = append(repos, snapshot)
		}
		if !q.User.Repositories.PageInfo.HasNextPage {
			break
		}
		if err := nextCursor(ctx, variables, "repositories", q.User.Repositories.PageInfo); err != nil {
			return nil, fmt.Errorf("failed to enumerate repositories: %w", err)
		}
		g.logger.Debug().Int("fetched", len(repos)).Msg("Fetching next page of repositories...")
	}
	g.logger.Info().Int("repositories", len(repos)).Msg("Completed repository enumeration.")
	return repos, nil
}
