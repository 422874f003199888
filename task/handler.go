// Package task provides the fan-out side of the action framework: the three
// interchangeable TaskHandler strategies that dispatch UserActionRequests
// collected during execution. They discard, enqueue to a durable broker, or
// run in process.
package task

import (
	"context"

	action "github.com/goliatone/go-action"
	"github.com/goliatone/go-errors"
)

// NullHandler discards every request. Used when async side effects are
// disabled.
type NullHandler struct{}

func (NullHandler) HandleTask(context.Context, action.UserActionRequest) error {
	return nil
}

// Resolver maps an action key to its registered async action. Satisfied by
// *action.Registry; injected explicitly so the handler never reaches into an
// ambient container.
type Resolver interface {
	Resolve(key string) (action.AsyncAction, bool)
	ResolveTask(key string) (action.TaskHandlerAsyncAction, bool)
}

// ExecutingHandler resolves a request's action key against an explicit
// registry and runs the action synchronously in process through the async
// pipeline controller. A plain async action gets a fresh context built from
// the request params; a task-handler async action additionally gets a task
// queue of its own, drained through that action's handler after it commits.
type ExecutingHandler struct {
	resolver   Resolver
	controller *action.Controller
}

// NewExecutingHandler builds an in-process handler around a registry and the
// controller that runs resolved actions.
func NewExecutingHandler(resolver Resolver, controller *action.Controller) (*ExecutingHandler, error) {
	if resolver == nil {
		return nil, errors.New("executing handler requires a resolver", errors.CategoryBadInput).
			WithTextCode("NIL_RESOLVER")
	}
	if controller == nil {
		controller = action.NewController()
	}
	return &ExecutingHandler{resolver: resolver, controller: controller}, nil
}

func (h *ExecutingHandler) HandleTask(ctx context.Context, req action.UserActionRequest) error {
	if act, ok := h.resolver.Resolve(req.ActionKey); ok {
		_, err := action.ExecuteAsync(ctx, h.controller, act, action.NewContext[any](req.Params))
		return err
	}

	if act, ok := h.resolver.ResolveTask(req.ActionKey); ok {
		_, err := action.ExecuteAsyncTask(ctx, h.controller, act, action.NewContext[any](req.Params))
		return err
	}

	return errors.New("no async action registered for key", errors.CategoryBadInput).
		WithTextCode("UNKNOWN_ACTION_KEY").
		WithMetadata(map[string]any{
			"action_key": req.ActionKey,
		})
}
