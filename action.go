package action

import "context"

// ValidationStrategy checks a context's params before anything else runs.
// Failures are reported as a *ValidationError; validation may stash lookup
// results in the context State for execution to reuse.
type ValidationStrategy[P any] interface {
	Validate(ctx context.Context, ac *ActionContext[P]) error
}

// ValidationFunc adapts a function to ValidationStrategy.
type ValidationFunc[P any] func(ctx context.Context, ac *ActionContext[P]) error

func (f ValidationFunc[P]) Validate(ctx context.Context, ac *ActionContext[P]) error {
	return f(ctx, ac)
}

// AuthorizationStrategy decides whether the context's principal may perform
// the action. It runs after validation and may assume inputs are valid.
// Denials are reported as a *AuthorizationError.
type AuthorizationStrategy[P any] interface {
	Authorize(ctx context.Context, ac *ActionContext[P]) error
}

// AuthorizationFunc adapts a function to AuthorizationStrategy.
type AuthorizationFunc[P any] func(ctx context.Context, ac *ActionContext[P]) error

func (f AuthorizationFunc[P]) Authorize(ctx context.Context, ac *ActionContext[P]) error {
	return f(ctx, ac)
}

// ExecutionStrategy performs the action's business logic inside the
// transaction boundary selected by the action's ReadOnly flag.
type ExecutionStrategy[P, R any] interface {
	Execute(ctx context.Context, ac *ActionContext[P]) (R, error)
}

// ExecutionFunc adapts a function to ExecutionStrategy.
type ExecutionFunc[P, R any] func(ctx context.Context, ac *ActionContext[P]) (R, error)

func (f ExecutionFunc[P, R]) Execute(ctx context.Context, ac *ActionContext[P]) (R, error) {
	return f(ctx, ac)
}

// TaskHandlerExecutionStrategy is the execution variant that can enqueue
// UserActionRequests onto its TaskHandlerContext for dispatch after commit.
type TaskHandlerExecutionStrategy[P, R any] interface {
	Execute(ctx context.Context, tc *TaskHandlerContext[P]) (R, error)
}

// TaskHandlerExecutionFunc adapts a function to TaskHandlerExecutionStrategy.
type TaskHandlerExecutionFunc[P, R any] func(ctx context.Context, tc *TaskHandlerContext[P]) (R, error)

func (f TaskHandlerExecutionFunc[P, R]) Execute(ctx context.Context, tc *TaskHandlerContext[P]) (R, error) {
	return f(ctx, tc)
}

// Action bundles the three pipeline strategies for one named server-side
// operation. Validation and Authorization are optional; a nil strategy is a
// no-op pass. ReadOnly selects the cheaper read-only transaction mode and
// must be set whenever execution performs no writes.
type Action[P, R any] struct {
	Name      string
	ReadOnly  bool
	Validate  ValidationStrategy[P]
	Authorize AuthorizationStrategy[P]
	Execute   ExecutionStrategy[P, R]
}

// TaskHandlerAction is an Action whose execution strategy accumulates
// UserActionRequests, drained through Tasks after the transaction commits.
type TaskHandlerAction[P, R any] struct {
	Name      string
	ReadOnly  bool
	Validate  ValidationStrategy[P]
	Authorize AuthorizationStrategy[P]
	Execute   TaskHandlerExecutionStrategy[P, R]
	Tasks     TaskHandler
}

// AsyncAction is the principal-less action shape run by the async controller:
// optional validation plus execution, no authorization. Params arrive as the
// opaque payload of a UserActionRequest.
type AsyncAction struct {
	Name     string
	ReadOnly bool
	Validate ValidationStrategy[any]
	Execute  ExecutionStrategy[any, any]
}

// TaskHandlerAsyncAction is an async action that can itself enqueue further
// UserActionRequests, drained through Tasks after its transaction commits.
type TaskHandlerAsyncAction struct {
	Name     string
	ReadOnly bool
	Validate ValidationStrategy[any]
	Execute  TaskHandlerExecutionStrategy[any, any]
	Tasks    TaskHandler
}
