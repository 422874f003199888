package mapper

import "sort"

// ListCollider merges two ID lists into one bounded result. Implementations
// own the merge policy: intersection, interleave, dedup.
type ListCollider interface {
	Collide(sorted []int64, unsorted []int64, maxResults int) []int64
}

// SortedIntersectionCollider intersects a descending-sorted ID list with an
// arbitrary list, preserving the unsorted list's order, dropping duplicates,
// and capping the result at maxResults. Membership tests run as binary
// searches against the sorted list.
type SortedIntersectionCollider struct{}

func (SortedIntersectionCollider) Collide(sorted []int64, unsorted []int64, maxResults int) []int64 {
	out := make([]int64, 0, maxResults)
	if maxResults <= 0 || len(sorted) == 0 || len(unsorted) == 0 {
		return out
	}

	seen := make(map[int64]struct{}, len(unsorted))
	for _, id := range unsorted {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if containsDescending(sorted, id) {
			out = append(out, id)
			if len(out) >= maxResults {
				break
			}
		}
	}
	return out
}

// containsDescending binary-searches a descending-sorted list.
func containsDescending(sorted []int64, id int64) bool {
	i := sort.Search(len(sorted), func(i int) bool {
		return sorted[i] <= id
	})
	return i < len(sorted) && sorted[i] == id
}
