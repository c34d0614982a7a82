package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/naka-gawa/github-stats/internal/domain"
	"github.com/shurcooL/githubv4"
)

// FetchAuthorLineDelta sums additions and deletions of the commits on the
// default branch of identity ("owner/name") whose author is linked to
// authorID. Commits without a linked account are skipped.
//
// A repository without a default branch yields a zero delta. If a page fails
// the walk stops there and the delta accumulated so far is returned together
// with the error.
func (g *GitHubGateway) FetchAuthorLineDelta(ctx context.Context, identity, authorID string) (domain.LineDelta, error) {
	var delta domain.LineDelta
	owner, name, ok := strings.Cut(identity, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return delta, fmt.Errorf("invalid repository identity %q", identity)
	}

	variables := map[string]any{
		"owner":  githubv4.String(owner),
		"name":   githubv4.String(name),
		"cursor": (*githubv4.String)(nil),
	}
	pages := 0
	for {
		var q historyQuery
		if err := g.exec.execute(ctx, "history", &q, variables); err != nil {
			return delta, fmt.Errorf("history of %s truncated after %d pages: %w", identity, pages, err)
		}
		ref := q.Repository.DefaultBranchRef
		if ref == nil {
			return delta, nil
		}
		history := ref.Target.Commit.History
		for _, commit := range history.Nodes {
			if commit.Author.User == nil || commit.Author.User.ID != authorID {
				continue
			}
			delta.Additions += int64(commit.Additions)
			delta.Deletions += int64(commit.Deletions)
		}
		pages++
		if !history.PageInfo.HasNextPage {
			break
		}
		if err := nextCursor(ctx, variables, "history", history.PageInfo); err != nil {
			return delta, fmt.Errorf("history of %s truncated after %d pages: %w", identity, pages, err)
		}
	}
	g.logger.Debug().Str("repo", identity).Int("pages", pages).
		Int64("additions", delta.Additions).Int64("deletions", delta.Deletions).
		Msg("Completed commit history walk.")
	return delta, nil
}
