package action

import "context"

// UserActionRequest is a deferred, queueable unit of work created during
// execution and consumed exactly once by a TaskHandler after the main
// transaction commits. ActionKey names the async action to invoke; Params is
// its payload.
type UserActionRequest struct {
	ActionKey string
	Params    any
}

// NewUserActionRequest builds a request value.
func NewUserActionRequest(actionKey string, params any) UserActionRequest {
	return UserActionRequest{ActionKey: actionKey, Params: params}
}

// TaskHandler dispatches a UserActionRequest gathered during execution.
// Implementations may discard (null), enqueue onto a durable broker, or
// execute in process. Failures propagate to the caller; retries, if any,
// belong to the queue infrastructure.
type TaskHandler interface {
	HandleTask(ctx context.Context, req UserActionRequest) error
}

// TaskHandlerFunc adapts a function to the TaskHandler interface.
type TaskHandlerFunc func(ctx context.Context, req UserActionRequest) error

func (f TaskHandlerFunc) HandleTask(ctx context.Context, req UserActionRequest) error {
	return f(ctx, req)
}
