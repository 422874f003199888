package action

import (
	"context"
	"errors"
	"testing"
)

func TestExecuteAsync(t *testing.T) {
	t.Run("validation runs before execution", func(t *testing.T) {
		executed := 0
		act := AsyncAction{
			Name: "feed.refresh",
			Validate: ValidationFunc[any](func(context.Context, *ActionContext[any]) error {
				return NewValidationError("url", "malformed")
			}),
			Execute: ExecutionFunc[any, any](func(context.Context, *ActionContext[any]) (any, error) {
				executed++
				return nil, nil
			}),
		}

		_, err := ExecuteAsync(context.Background(), NewController(), act, NewContext[any]("nats://feed"))
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if executed != 0 {
			t.Error("execution ran after failed validation")
		}
	})

	t.Run("params flow through the fresh context", func(t *testing.T) {
		act := AsyncAction{
			Name: "feed.refresh",
			Execute: ExecutionFunc[any, any](func(_ context.Context, ac *ActionContext[any]) (any, error) {
				return ac.Params(), nil
			}),
		}

		result, err := ExecuteAsync(context.Background(), NewController(), act, NewContext[any](int64(99)))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result != int64(99) {
			t.Errorf("expected params to round-trip, got %v", result)
		}
	})
}

func TestExecuteInline(t *testing.T) {
	t.Run("runs without opening a transaction", func(t *testing.T) {
		act := AsyncAction{
			Name: "notify.render",
			Execute: ExecutionFunc[any, any](func(_ context.Context, ac *ActionContext[any]) (any, error) {
				return "rendered", nil
			}),
		}

		result, err := ExecuteInline(context.Background(), nil, act, "payload")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result != "rendered" {
			t.Errorf("expected rendered, got %v", result)
		}
	})

	t.Run("missing execution strategy is a misconfiguration", func(t *testing.T) {
		_, err := ExecuteInline(context.Background(), nil, AsyncAction{Name: "broken"}, nil)
		var ee *ExecutionError
		if !errors.As(err, &ee) {
			t.Fatalf("expected *ExecutionError, got %v", err)
		}
	})
}

func TestExecuteInlineTask(t *testing.T) {
	t.Run("nested requests append to the parent queue", func(t *testing.T) {
		parent := NewTaskHandlerContext(NewContext("parent"))
		parent.Enqueue(NewUserActionRequest("parent.request", nil))

		nested := TaskHandlerAsyncAction{
			Name: "notify.followers",
			Execute: TaskHandlerExecutionFunc[any, any](func(_ context.Context, tc *TaskHandlerContext[any]) (any, error) {
				tc.Enqueue(NewUserActionRequest("email.send", "a@example.com"))
				tc.Enqueue(NewUserActionRequest("email.send", "b@example.com"))
				return nil, nil
			}),
		}

		if _, err := ExecuteInlineTask(context.Background(), nil, nested, nil, parent); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		reqs := parent.UserActionRequests()
		if len(reqs) != 3 {
			t.Fatalf("expected 3 requests on parent, got %d", len(reqs))
		}
		if reqs[0].ActionKey != "parent.request" || reqs[1].ActionKey != "email.send" {
			t.Errorf("unexpected request order: %v", reqs)
		}
	})

	t.Run("nested failure leaves the parent queue untouched", func(t *testing.T) {
		parent := NewTaskHandlerContext(NewContext("parent"))

		nested := TaskHandlerAsyncAction{
			Name: "notify.followers",
			Execute: TaskHandlerExecutionFunc[any, any](func(_ context.Context, tc *TaskHandlerContext[any]) (any, error) {
				tc.Enqueue(NewUserActionRequest("email.send", nil))
				return nil, errors.New("template missing")
			}),
		}

		if _, err := ExecuteInlineTask(context.Background(), nil, nested, nil, parent); err == nil {
			t.Fatal("expected nested failure")
		}
		if len(parent.UserActionRequests()) != 0 {
			t.Error("failed nested action leaked requests into parent")
		}
	})

	t.Run("nil parent is a misconfiguration", func(t *testing.T) {
		nested := TaskHandlerAsyncAction{
			Name: "notify.followers",
			Execute: TaskHandlerExecutionFunc[any, any](func(context.Context, *TaskHandlerContext[any]) (any, error) {
				return nil, nil
			}),
		}

		_, err := ExecuteInlineTask[string](context.Background(), nil, nested, nil, nil)
		var ee *ExecutionError
		if !errors.As(err, &ee) {
			t.Fatalf("expected *ExecutionError, got %v", err)
		}
	})
}
