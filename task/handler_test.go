package task

import (
	"context"
	"errors"
	"testing"

	action "github.com/goliatone/go-action"
	goerrors "github.com/goliatone/go-errors"
)

func TestNullHandlerDiscards(t *testing.T) {
	req := action.NewUserActionRequest("anything", map[string]any{"id": 1})
	if err := (NullHandler{}).HandleTask(context.Background(), req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestNewExecutingHandlerRequiresResolver(t *testing.T) {
	if _, err := NewExecutingHandler(nil, nil); err == nil {
		t.Fatal("expected an error for a nil resolver")
	}
}

func TestExecutingHandlerRunsPlainAction(t *testing.T) {
	registry := action.NewRegistry()

	calls := 0
	var gotParams any
	err := registry.RegisterAsync(action.AsyncAction{
		Name: "deleteActivity",
		Execute: action.ExecutionFunc[any, any](func(_ context.Context, ac *action.ActionContext[any]) (any, error) {
			calls++
			gotParams = ac.Params()
			return nil, nil
		}),
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	h, err := NewExecutingHandler(registry, action.NewController())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	req := action.NewUserActionRequest("deleteActivity", int64(42))
	if err := h.HandleTask(context.Background(), req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one execution, got %d", calls)
	}
	if gotParams != int64(42) {
		t.Errorf("expected the request params to reach the action, got %v", gotParams)
	}
}

func TestExecutingHandlerRunsTaskAction(t *testing.T) {
	registry := action.NewRegistry()

	nested := 0
	err := registry.RegisterTaskAsync(action.TaskHandlerAsyncAction{
		Name: "postNotification",
		Execute: action.TaskHandlerExecutionFunc[any, any](func(_ context.Context, tc *action.TaskHandlerContext[any]) (any, error) {
			tc.Enqueue(action.NewUserActionRequest("sendEmail", "hi"))
			return nil, nil
		}),
		Tasks: action.TaskHandlerFunc(func(context.Context, action.UserActionRequest) error {
			nested++
			return nil
		}),
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	h, err := NewExecutingHandler(registry, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	req := action.NewUserActionRequest("postNotification", nil)
	if err := h.HandleTask(context.Background(), req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if nested != 1 {
		t.Errorf("expected the nested request to be dispatched once, got %d", nested)
	}
}

func TestExecutingHandlerUnknownKey(t *testing.T) {
	h, err := NewExecutingHandler(action.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	err = h.HandleTask(context.Background(), action.NewUserActionRequest("nope", nil))
	if err == nil {
		t.Fatal("expected an error for an unregistered key")
	}

	var rich *goerrors.Error
	if !errors.As(err, &rich) || rich.TextCode != "UNKNOWN_ACTION_KEY" {
		t.Errorf("expected UNKNOWN_ACTION_KEY, got %v", err)
	}
}

func TestExecutingHandlerPropagatesActionError(t *testing.T) {
	registry := action.NewRegistry()

	boom := errors.New("downstream unavailable")
	if err := registry.RegisterAsync(action.AsyncAction{
		Name: "refreshFeed",
		Execute: action.ExecutionFunc[any, any](func(context.Context, *action.ActionContext[any]) (any, error) {
			return nil, boom
		}),
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	h, err := NewExecutingHandler(registry, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := h.HandleTask(context.Background(), action.NewUserActionRequest("refreshFeed", nil)); !errors.Is(err, boom) {
		t.Fatalf("expected the action error, got %v", err)
	}
}
