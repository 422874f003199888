// Package transform provides the pure functions that map an action context's
// raw params to the narrower value an authorization or validation strategy
// consumes: an entity id, a string key, a principal id.
package transform

import (
	"context"
	"fmt"
	"strconv"

	action "github.com/goliatone/go-action"
	"github.com/goliatone/go-action/mapper"
)

// Transformer derives a value from an action context. Implementations are
// pure functions of params (and sometimes state or principal) and must not
// mutate the context except where explicitly documented.
type Transformer[P, V any] interface {
	Transform(ctx context.Context, ac *action.ActionContext[P]) (V, error)
}

// TransformerFunc adapts a function to Transformer.
type TransformerFunc[P, V any] func(ctx context.Context, ac *action.ActionContext[P]) (V, error)

func (f TransformerFunc[P, V]) Transform(ctx context.Context, ac *action.ActionContext[P]) (V, error) {
	return f(ctx, ac)
}

// Passthrough returns the params unchanged.
func Passthrough[P any]() Transformer[P, P] {
	return TransformerFunc[P, P](func(_ context.Context, ac *action.ActionContext[P]) (P, error) {
		return ac.Params(), nil
	})
}

// ToString renders the params with their natural string form.
func ToString[P any]() Transformer[P, string] {
	return TransformerFunc[P, string](func(_ context.Context, ac *action.ActionContext[P]) (string, error) {
		return fmt.Sprint(ac.Params()), nil
	})
}

// MapValue extracts the value stored under key when params are a map.
// A missing key is an execution error: the action was wired against params
// its transformer does not understand.
func MapValue[K comparable, V any](key K) Transformer[map[K]V, V] {
	return TransformerFunc[map[K]V, V](func(_ context.Context, ac *action.ActionContext[map[K]V]) (V, error) {
		v, ok := ac.Params()[key]
		if !ok {
			var zero V
			return zero, action.NewExecutionError(fmt.Sprintf("params map has no key %v", key), nil)
		}
		return v, nil
	})
}

// SingleElementList wraps the inner transformer's value in a one-element
// list, for strategies that consume batch-shaped requests.
func SingleElementList[P, V any](inner Transformer[P, V]) Transformer[P, []V] {
	return TransformerFunc[P, []V](func(ctx context.Context, ac *action.ActionContext[P]) ([]V, error) {
		v, err := inner.Transform(ctx, ac)
		if err != nil {
			return nil, err
		}
		return []V{v}, nil
	})
}

// NestedID extracts an entity id from a request field via get. With AsString
// set, the id is rendered as a decimal string; some authorization strategies
// compare against string-typed principal fields and need that form.
type NestedID[P any] struct {
	Get      func(P) int64
	AsString bool
}

func (t NestedID[P]) Transform(_ context.Context, ac *action.ActionContext[P]) (any, error) {
	if t.Get == nil {
		return nil, action.NewExecutionError("nested id transformer has no accessor", nil)
	}
	id := t.Get(ac.Params())
	if t.AsString {
		return strconv.FormatInt(id, 10), nil
	}
	return id, nil
}

// ShortNameToID resolves a short name taken from params to an entity id
// through a lookup mapper. The resolved id is persisted into the context
// state under StateKey so downstream strategies reuse it instead of
// repeating the lookup, the one documented exception to transformer purity.
type ShortNameToID[P any] struct {
	ShortName func(P) string
	Lookup    mapper.DomainMapper[string, int64]
	StateKey  action.StateKey[int64]
}

func (t ShortNameToID[P]) Transform(ctx context.Context, ac *action.ActionContext[P]) (int64, error) {
	if t.ShortName == nil || t.Lookup == nil {
		return 0, action.NewExecutionError("short name transformer missing accessor or lookup mapper", nil)
	}

	if id, ok := action.GetState(ac.State(), t.StateKey); ok {
		return id, nil
	}

	id, err := t.Lookup.Execute(ctx, t.ShortName(ac.Params()))
	if err != nil {
		return 0, err
	}

	action.SetState(ac.State(), t.StateKey, id)
	return id, nil
}

// PrincipalID ignores params and returns the current principal's id, for
// actions where the target is always the caller.
func PrincipalID[P any]() Transformer[P, int64] {
	return TransformerFunc[P, int64](func(_ context.Context, ac *action.ActionContext[P]) (int64, error) {
		p, ok := ac.Principal()
		if !ok {
			return 0, action.NewExecutionError("context has no principal", nil)
		}
		return p.ID, nil
	})
}
