package gateway

import (
	"context"
	"fmt"
	"time"
)

// RateBudget is the remaining GraphQL quota of the token.
type RateBudget struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// FetchRateBudget reads the GraphQL rate limit through the REST API. The
// call does not count against the quota and is bounded by the request timeout.
func (g *GitHubGateway) FetchRateBudget(ctx context.Context) (RateBudget, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	limits, _, err := g.restClient.RateLimit.Get(ctx)
	if err != nil {
		return RateBudget{}, fmt.Errorf("failed to fetch rate limits with REST API: %w", err)
	}
	rate := limits.GetGraphQL()
	if rate == nil {
		return RateBudget{}, fmt.Errorf("rate limit response has no graphql section")
	}
	return RateBudget{
		Limit:     rate.Limit,
		Remaining: rate.Remaining,
		Reset:     rate.Reset.Time,
	}, nil
}
