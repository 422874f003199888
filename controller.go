package action

import (
	"context"
	goerrors "errors"
)

// Controller drives a service action through its validate → authorize →
// execute sequence, wrapping execution in a transaction whose write mode is
// selected by the action's ReadOnly flag. Validation and authorization
// failures short-circuit before any state-mutating execution; execution
// errors surface unchanged after the transaction rolls back.
type Controller struct {
	tx      TransactionManager
	logger  Logger
	metrics *Metrics
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithTransactionManager sets the transaction boundary collaborator.
func WithTransactionManager(tm TransactionManager) ControllerOption {
	return func(c *Controller) {
		if tm != nil {
			c.tx = tm
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(l Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithMetrics attaches pipeline instrumentation.
func WithMetrics(m *Metrics) ControllerOption {
	return func(c *Controller) {
		c.metrics = m
	}
}

// NewController builds a controller. Without options it uses a noop
// transaction manager and the fallback logger.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		tx: NoopTransactionManager{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = normalizeLogger(c.logger)
	return c
}

// Execute runs act against ac and returns the execution result.
//
// Failure semantics: a *ValidationError aborts before authorization, a
// *AuthorizationError aborts before execution, and neither is retried. Errors
// from the execution strategy propagate unchanged after rollback. A panic in
// the execution strategy is recovered into an *ExecutionError.
func Execute[P, R any](ctx context.Context, c *Controller, act Action[P, R], ac *ActionContext[P]) (R, error) {
	var zero R
	if act.Execute == nil {
		return zero, NewExecutionError("action "+act.Name+" has no execution strategy", nil)
	}

	log := withLoggerFields(c.logger, map[string]any{"action": act.Name})

	tx, err := c.tx.Begin(ctx, TxOptions{Name: act.Name, ReadOnly: act.ReadOnly})
	if err != nil {
		c.metrics.observeAction(act.Name, OutcomeTransactionFailed)
		return zero, wrapTransaction(err, "begin", act.Name)
	}

	if err := runGates(ctx, c, log, act.Name, act.Validate, act.Authorize, ac, tx); err != nil {
		return zero, err
	}

	result, err := runExecution(ctx, log, act.Name, func(ctx context.Context) (R, error) {
		return act.Execute.Execute(ctx, ac)
	})
	if err != nil {
		rollback(tx, log)
		c.metrics.observeAction(act.Name, OutcomeExecutionFailed)
		return zero, err
	}

	if err := tx.Commit(); err != nil {
		rollback(tx, log)
		c.metrics.observeAction(act.Name, OutcomeTransactionFailed)
		return zero, wrapTransaction(err, "commit", act.Name)
	}

	c.metrics.observeAction(act.Name, OutcomeOK)
	return result, nil
}

// ExecuteTask runs a TaskHandlerAction: the same pipeline as Execute, with a
// TaskHandlerContext collecting UserActionRequests during execution. After
// the transaction commits, the collected requests are drained to the action's
// TaskHandler in enqueue order. Queue submissions are deliberately outside
// the transaction; a submission failure surfaces as an *ExecutionError but
// cannot undo the committed result.
func ExecuteTask[P, R any](ctx context.Context, c *Controller, act TaskHandlerAction[P, R], ac *ActionContext[P]) (R, error) {
	var zero R
	if act.Execute == nil {
		return zero, NewExecutionError("action "+act.Name+" has no execution strategy", nil)
	}

	log := withLoggerFields(c.logger, map[string]any{"action": act.Name})

	tx, err := c.tx.Begin(ctx, TxOptions{Name: act.Name, ReadOnly: act.ReadOnly})
	if err != nil {
		c.metrics.observeAction(act.Name, OutcomeTransactionFailed)
		return zero, wrapTransaction(err, "begin", act.Name)
	}

	if err := runGates(ctx, c, log, act.Name, act.Validate, act.Authorize, ac, tx); err != nil {
		return zero, err
	}

	tc := NewTaskHandlerContext(ac)

	result, err := runExecution(ctx, log, act.Name, func(ctx context.Context) (R, error) {
		return act.Execute.Execute(ctx, tc)
	})
	if err != nil {
		rollback(tx, log)
		c.metrics.observeAction(act.Name, OutcomeExecutionFailed)
		return zero, err
	}

	if err := tx.Commit(); err != nil {
		rollback(tx, log)
		c.metrics.observeAction(act.Name, OutcomeTransactionFailed)
		return zero, wrapTransaction(err, "commit", act.Name)
	}

	if err := c.drainTasks(ctx, log, act.Tasks, tc.UserActionRequests()); err != nil {
		c.metrics.observeAction(act.Name, OutcomeExecutionFailed)
		return zero, err
	}

	c.metrics.observeAction(act.Name, OutcomeOK)
	return result, nil
}

// runGates performs validation then authorization, rolling back and logging
// on the first failure.
func runGates[P any](
	ctx context.Context,
	c *Controller,
	log Logger,
	name string,
	validate ValidationStrategy[P],
	authorize AuthorizationStrategy[P],
	ac *ActionContext[P],
	tx Transaction,
) error {
	if validate != nil {
		if err := validate.Validate(ctx, ac); err != nil {
			rollback(tx, log)
			logValidationFailure(log, err)
			c.metrics.observeAction(name, OutcomeValidationFailed)
			return err
		}
	}

	if authorize != nil {
		if err := authorize.Authorize(ctx, ac); err != nil {
			rollback(tx, log)
			log.Warn("authorization failed: %v", err)
			c.metrics.observeAction(name, OutcomeAuthorizationFailed)
			return err
		}
	}

	return nil
}

func runExecution[R any](ctx context.Context, log Logger, name string, fn func(context.Context) (R, error)) (result R, err error) {
	defer recoverExecution(name, log, &err)
	result, err = fn(ctx)
	return result, err
}

func (c *Controller) drainTasks(ctx context.Context, log Logger, handler TaskHandler, requests []UserActionRequest) error {
	if len(requests) == 0 {
		return nil
	}
	if handler == nil {
		return NewExecutionError("user action requests enqueued but no task handler configured", nil)
	}
	for _, req := range requests {
		if err := handler.HandleTask(ctx, req); err != nil {
			log.Error("posting user action request %s failed: %v", req.ActionKey, err)
			c.metrics.observeTaskFailure(req.ActionKey)
			return NewExecutionError("posting user action request "+req.ActionKey, err)
		}
		c.metrics.observeTaskEnqueued(req.ActionKey)
	}
	return nil
}

func logValidationFailure(log Logger, err error) {
	log.Warn("validation failed: %v", err)
	var ve *ValidationError
	if goerrors.As(err, &ve) {
		for field, message := range ve.Errors {
			log.Warn("validation field %s: %s", field, message)
		}
	}
}

func rollback(tx Transaction, log Logger) {
	if err := tx.Rollback(); err != nil {
		log.Error("transaction rollback failed: %v", err)
	}
}
