package summarizer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited paces calls to the wrapped summarizer.
type RateLimited struct {
	next    Summarizer
	limiter *rate.Limiter
}

// NewRateLimited allows requestsPerMinute calls per minute. A non-positive
// rate returns next unchanged.
func NewRateLimited(next Summarizer, requestsPerMinute int) Summarizer {
	if requestsPerMinute <= 0 {
		return next
	}

	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

func (r *RateLimited) Summarize(ctx context.Context, input Input) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for rate limiter: %w", err)
	}

	return r.next.Summarize(ctx, input)
}
