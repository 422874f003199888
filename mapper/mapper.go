// Package mapper implements the partial-response chained data-access layer:
// a primary mapper (typically a cache) answers what it can, the unhandled
// remainder of the request is forwarded to a decorated fallback mapper
// (typically a database or directory), the primary store is refreshed from
// the fallback results, and a pluggable combiner stitches both result sets
// back together in request order.
package mapper

import "context"

// DomainMapper is the generic synchronous data-access contract. A zero or
// nil response signals "not found"; errors are reserved for infrastructure
// failures.
type DomainMapper[Request, Response any] interface {
	Execute(ctx context.Context, req Request) (Response, error)
}

// Func adapts a function to DomainMapper.
type Func[Request, Response any] func(ctx context.Context, req Request) (Response, error)

func (f Func[Request, Response]) Execute(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// PartialResponse is a mapper result that may only satisfy part of a
// request. The unsatisfied remainder travels with the response; a response
// is complete iff there is no remainder, and that is the sole completeness
// signal the chaining logic consumes. Construct values through
// NewCompleteResponse or NewPartialResponse so the invariant holds.
type PartialResponse[Request, Response any] struct {
	Response  Response
	Unhandled Request

	partial bool
}

// NewCompleteResponse marks res as fully satisfying the request.
func NewCompleteResponse[Request, Response any](res Response) PartialResponse[Request, Response] {
	return PartialResponse[Request, Response]{Response: res}
}

// NewPartialResponse carries res plus the remainder of the request a
// downstream mapper still has to answer.
func NewPartialResponse[Request, Response any](res Response, unhandled Request) PartialResponse[Request, Response] {
	return PartialResponse[Request, Response]{Response: res, Unhandled: unhandled, partial: true}
}

// Complete reports whether the response fully satisfied its request.
func (p PartialResponse[Request, Response]) Complete() bool {
	return !p.partial
}

// PartialMapper is a mapper already wrapped to report partial results.
type PartialMapper[Request, Response any] interface {
	Execute(ctx context.Context, req Request) (PartialResponse[Request, Response], error)
}

// PartialFunc adapts a function to PartialMapper.
type PartialFunc[Request, Response any] func(ctx context.Context, req Request) (PartialResponse[Request, Response], error)

func (f PartialFunc[Request, Response]) Execute(ctx context.Context, req Request) (PartialResponse[Request, Response], error) {
	return f(ctx, req)
}

// RefreshStrategy backfills the primary store with data obtained from the
// fallback mapper. Refresh is best effort: a failure is logged by the caller
// and must not block returning the combined result.
type RefreshStrategy[Request, Response any] interface {
	Refresh(ctx context.Context, req Request, res Response) error
}

// RefreshFunc adapts a function to RefreshStrategy.
type RefreshFunc[Request, Response any] func(ctx context.Context, req Request, res Response) error

func (f RefreshFunc[Request, Response]) Refresh(ctx context.Context, req Request, res Response) error {
	return f(ctx, req, res)
}
