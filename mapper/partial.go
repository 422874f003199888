package mapper

import "context"

// KeyedPartial wraps a multi-get mapper over a list of keys so it reports
// partial results: the wrapped mapper returns whichever items it found, and
// the wrapper computes the unhandled remainder as the keys (in request
// order) not covered by any returned item. keyOf extracts the request key an
// item answers.
func KeyedPartial[K comparable, V any](m DomainMapper[[]K, []V], keyOf func(V) K) PartialMapper[[]K, []V] {
	return PartialFunc[[]K, []V](func(ctx context.Context, keys []K) (PartialResponse[[]K, []V], error) {
		found, err := m.Execute(ctx, keys)
		if err != nil {
			return PartialResponse[[]K, []V]{}, err
		}

		// counted, so duplicate request keys only count as handled once per
		// returned item
		have := make(map[K]int, len(found))
		for _, v := range found {
			have[keyOf(v)]++
		}

		var unhandled []K
		for _, k := range keys {
			if n := have[k]; n > 0 {
				have[k] = n - 1
				continue
			}
			unhandled = append(unhandled, k)
		}

		if len(unhandled) == 0 {
			return NewCompleteResponse[[]K](found), nil
		}
		return NewPartialResponse(found, unhandled), nil
	})
}

// SingleValuePartial wraps a single-value mapper so a nil response marks the
// entire request unhandled and any non-nil response is complete.
func SingleValuePartial[Request, Response any](m DomainMapper[Request, Response]) PartialMapper[Request, Response] {
	return PartialFunc[Request, Response](func(ctx context.Context, req Request) (PartialResponse[Request, Response], error) {
		res, err := m.Execute(ctx, req)
		if err != nil {
			return PartialResponse[Request, Response]{}, err
		}
		if isNil(res) {
			return NewPartialResponse(res, req), nil
		}
		return NewCompleteResponse[Request](res), nil
	})
}
