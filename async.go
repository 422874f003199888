package action

import "context"

// ExecuteAsync runs a principal-less async action: optional validation, then
// execution inside a transaction. There is no authorization stage; async
// actions are system-triggered and trust their queued params.
func ExecuteAsync(ctx context.Context, c *Controller, act AsyncAction, ac *ActionContext[any]) (any, error) {
	return Execute(ctx, c, Action[any, any]{
		Name:     act.Name,
		ReadOnly: act.ReadOnly,
		Validate: act.Validate,
		Execute:  act.Execute,
	}, ac)
}

// ExecuteAsyncTask runs an async action that can itself enqueue further
// UserActionRequests, drained through the action's TaskHandler after commit.
func ExecuteAsyncTask(ctx context.Context, c *Controller, act TaskHandlerAsyncAction, ac *ActionContext[any]) (any, error) {
	return ExecuteTask(ctx, c, TaskHandlerAction[any, any]{
		Name:     act.Name,
		ReadOnly: act.ReadOnly,
		Validate: act.Validate,
		Execute:  act.Execute,
		Tasks:    act.Tasks,
	}, ac)
}

// ExecuteInline runs an async action from inside another action's execution
// strategy, within the caller's transaction: no transaction of its own is
// opened, validation still runs, and the result is returned to the caller.
func ExecuteInline(ctx context.Context, log Logger, act AsyncAction, params any) (any, error) {
	if act.Execute == nil {
		return nil, NewExecutionError("action "+act.Name+" has no execution strategy", nil)
	}
	ac := NewContext(params)
	if act.Validate != nil {
		if err := act.Validate.Validate(ctx, ac); err != nil {
			logValidationFailure(normalizeLogger(log), err)
			return nil, err
		}
	}
	return runExecution(ctx, normalizeLogger(log), act.Name, func(ctx context.Context) (any, error) {
		return act.Execute.Execute(ctx, ac)
	})
}

// ExecuteInlineTask runs a task-handler async action inside a parent
// execution. Requests the nested action enqueues are appended to the parent
// context so they drain with the parent's own requests after the parent
// transaction commits.
func ExecuteInlineTask[P any](
	ctx context.Context,
	log Logger,
	act TaskHandlerAsyncAction,
	params any,
	parent *TaskHandlerContext[P],
) (any, error) {
	if act.Execute == nil {
		return nil, NewExecutionError("action "+act.Name+" has no execution strategy", nil)
	}
	if parent == nil {
		return nil, NewExecutionError("inline task execution requires a parent task handler context", nil)
	}

	ac := NewContext(params)
	if act.Validate != nil {
		if err := act.Validate.Validate(ctx, ac); err != nil {
			logValidationFailure(normalizeLogger(log), err)
			return nil, err
		}
	}

	nested := NewTaskHandlerContext(ac)
	result, err := runExecution(ctx, normalizeLogger(log), act.Name, func(ctx context.Context) (any, error) {
		return act.Execute.Execute(ctx, nested)
	})
	if err != nil {
		return nil, err
	}

	for _, req := range nested.UserActionRequests() {
		parent.Enqueue(req)
	}
	return result, nil
}
