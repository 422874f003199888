package mapper

import (
	"context"

	action "github.com/goliatone/go-action"
)

// Chained satisfies a request from a primary partial mapper and, when the
// primary answer is incomplete, forwards the unhandled remainder to a
// decorated fallback mapper. Fallback results refresh the primary store
// before the combined response is returned, so a subsequent read through the
// same chain sees the refreshed data absent external mutation.
//
// Per-invocation flow:
//
//	primary complete   → return primary response unchanged, no fallback, no refresh
//	partial, no fallback → combine(primary, zero secondary)
//	partial, fallback  → fallback(unhandled) → refresh(unhandled, fallback result)
//	                     → combine(primary, fallback result)
type Chained[Request, Response any] struct {
	name     string
	primary  PartialMapper[Request, Response]
	fallback DomainMapper[Request, Response]
	refresh  RefreshStrategy[Request, Response]
	combiner Combiner[Request, Response]
	logger   action.Logger
	metrics  *Metrics
}

// ChainedOption configures a Chained mapper.
type ChainedOption[Request, Response any] func(*Chained[Request, Response])

// WithFallback decorates the chain with a fallback mapper consulted for the
// unhandled remainder of partial responses.
func WithFallback[Request, Response any](m DomainMapper[Request, Response]) ChainedOption[Request, Response] {
	return func(c *Chained[Request, Response]) {
		c.fallback = m
	}
}

// WithRefresh installs the primary-store backfill applied to fallback results.
func WithRefresh[Request, Response any](r RefreshStrategy[Request, Response]) ChainedOption[Request, Response] {
	return func(c *Chained[Request, Response]) {
		c.refresh = r
	}
}

// WithLogger sets the chain logger.
func WithLogger[Request, Response any](l action.Logger) ChainedOption[Request, Response] {
	return func(c *Chained[Request, Response]) {
		c.logger = l
	}
}

// WithMetrics attaches chain instrumentation under the given mapper name.
func WithMetrics[Request, Response any](m *Metrics, name string) ChainedOption[Request, Response] {
	return func(c *Chained[Request, Response]) {
		c.metrics = m
		c.name = name
	}
}

// NewChained builds a chain around a primary mapper and a combiner policy.
func NewChained[Request, Response any](
	primary PartialMapper[Request, Response],
	combiner Combiner[Request, Response],
	opts ...ChainedOption[Request, Response],
) *Chained[Request, Response] {
	c := &Chained[Request, Response]{
		primary:  primary,
		combiner: combiner,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = normalizeChainLogger(c.logger)
	return c
}

// Execute resolves req through the chain.
func (c *Chained[Request, Response]) Execute(ctx context.Context, req Request) (Response, error) {
	var zero Response

	primary, err := c.primary.Execute(ctx, req)
	if err != nil {
		return zero, err
	}

	if primary.Complete() {
		c.metrics.observeRequest(c.name, requestOutcomeComplete)
		return primary.Response, nil
	}

	var secondary Response
	if c.fallback == nil {
		c.metrics.observeRequest(c.name, requestOutcomePartial)
		return c.combiner.Combine(ctx, primary, secondary, req)
	}

	secondary, err = c.fallback.Execute(ctx, primary.Unhandled)
	if err != nil {
		return zero, err
	}
	c.metrics.observeRequest(c.name, requestOutcomeFallback)

	// Refresh must finish before the combined result is returned so the
	// next read through this chain finds the backfilled data, but a refresh
	// failure only costs the cache, not the caller.
	if c.refresh != nil {
		if rerr := c.refresh.Refresh(ctx, primary.Unhandled, secondary); rerr != nil {
			c.metrics.observeRefreshFailure(c.name)
			c.logger.Warn("primary store refresh failed, serving combined result: %v", rerr)
		}
	}

	return c.combiner.Combine(ctx, primary, secondary, req)
}

func normalizeChainLogger(l action.Logger) action.Logger {
	if l == nil {
		return action.NewFmtLogger(nil)
	}
	return l
}
