package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/rentledger/internal/orgcontext"
	"github.com/smallbiznis/rentledger/internal/ratelimit"
)

var ErrRateLimited = errors.New("email_rate_limited")

// ThrottledProvider spends one token per message from the sending organization's bucket.
type ThrottledProvider struct {
	next    Provider
	limiter ratelimit.Limiter
}

func NewThrottled(next Provider, limiter ratelimit.Limiter) Provider {
	if limiter == nil {
		return next
	}
	return &ThrottledProvider{next: next, limiter: limiter}
}

func (p *ThrottledProvider) Name() string { return p.next.Name() }

func (p *ThrottledProvider) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	res, err := p.limiter.Allow(ctx, throttleKey(ctx))
	if err != nil {
		return fmt.Errorf("email throttle: %w", err)
	}
	if !res.Allowed {
		return fmt.Errorf("%w: retry after %s", ErrRateLimited, res.RetryAfter)
	}
	return p.next.Send(ctx, msg)
}

func throttleKey(ctx context.Context) string {
	if orgID, ok := orgcontext.OrgIDFromContext(ctx); ok {
		return "email:org:" + orgID.String()
	}
	return "email:global"
}
