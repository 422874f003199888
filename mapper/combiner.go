package mapper

import (
	"context"
	"reflect"
)

// Combiner merges a partial primary result with a fallback result into the
// final response. Implementations are total: they must tolerate a zero
// secondary value (no fallback configured) and an empty original request.
type Combiner[Request, Response any] interface {
	Combine(ctx context.Context, primary PartialResponse[Request, Response], secondary Response, original Request) (Response, error)
}

// CombinerFunc adapts a function to Combiner.
type CombinerFunc[Request, Response any] func(ctx context.Context, primary PartialResponse[Request, Response], secondary Response, original Request) (Response, error)

func (f CombinerFunc[Request, Response]) Combine(ctx context.Context, primary PartialResponse[Request, Response], secondary Response, original Request) (Response, error) {
	return f(ctx, primary, secondary, original)
}

// FirstNonNil returns the primary response when it is non-nil, otherwise the
// secondary. Both nil yields nil. Non-nilable response types always count as
// present, so the primary wins.
type FirstNonNil[Request, Response any] struct{}

func (FirstNonNil[Request, Response]) Combine(_ context.Context, primary PartialResponse[Request, Response], secondary Response, _ Request) (Response, error) {
	if !isNil(primary.Response) {
		return primary.Response, nil
	}
	return secondary, nil
}

// CollectionMerge reconstructs the output order of a list request by walking
// the original request: positions the primary handled pull from the primary
// response, positions it reported unhandled pull from the secondary. Both
// responses are consumed in order, one item per satisfied position.
//
// Duplicate request entries are matched by count: each unhandled occurrence
// consumes one occurrence of the key, so n duplicates split n ways between
// the two sources exactly as the primary reported them. Positions neither
// source can satisfy are dropped rather than padded.
type CollectionMerge[K comparable, V any] struct{}

func (CollectionMerge[K, V]) Combine(_ context.Context, primary PartialResponse[[]K, []V], secondary []V, original []K) ([]V, error) {
	if len(original) == 0 {
		return []V{}, nil
	}

	unhandled := make(map[K]int, len(primary.Unhandled))
	for _, k := range primary.Unhandled {
		unhandled[k]++
	}

	out := make([]V, 0, len(original))
	pi, si := 0, 0
	for _, k := range original {
		if n := unhandled[k]; n > 0 {
			unhandled[k] = n - 1
			if si < len(secondary) {
				out = append(out, secondary[si])
				si++
			}
			continue
		}
		if pi < len(primary.Response) {
			out = append(out, primary.Response[pi])
			pi++
		}
	}
	return out, nil
}

// ColliderCombiner delegates merging of two ranked ID lists to an external
// ListCollider, bounded by MaxResults. The exact merge policy belongs to the
// collider.
type ColliderCombiner[Request any] struct {
	Collider   ListCollider
	MaxResults int
}

func (c ColliderCombiner[Request]) Combine(_ context.Context, primary PartialResponse[Request, []int64], secondary []int64, _ Request) ([]int64, error) {
	return c.Collider.Collide(primary.Response, secondary, c.MaxResults), nil
}

// isNil reports whether v is nil, directly or through a nilable kind.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
