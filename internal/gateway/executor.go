package gateway

import (
	"context"
	"time"

	"github.com/naka-gawa/github-stats/internal/metrics"
	"github.com/shurcooL/githubv4"
	"golang.org/x/time/rate"
)

// queryExecutor sends exactly one GraphQL request per call. It does not
// retry and does not cache.
type queryExecutor struct {
	client  *githubv4.Client
	limiter *rate.Limiter
	timeout time.Duration
	metrics *metrics.Recorder
}

func newQueryExecutor(client *githubv4.Client, requestsPerMinute int, timeout time.Duration, rec *metrics.Recorder) *queryExecutor {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute)
	}
	return &queryExecutor{client: client, limiter: limiter, timeout: timeout, metrics: rec}
}

// execute decodes the response of query into q. op names the query shape in
// errors and metrics.
func (e *queryExecutor) execute(ctx context.Context, op string, q any, variables map[string]any) error {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			err = &TransportError{Op: op, Err: err}
			e.metrics.ObserveRequest(op, outcomeOf(err))
			return err
		}
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	err := classifyError(op, e.client.Query(ctx, q, variables))
	e.metrics.ObserveRequest(op, outcomeOf(err))
	return err
}
