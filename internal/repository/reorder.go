package repository

import "slices"

// moveTo moves the dragged item into the target's position among the
// items matched by inScope. Items outside the scope keep their places. It
// reports false when either id is not in scope.
func moveTo[T any](items []T, id func(T) string, inScope func(T) bool, draggedID, targetID string) ([]T, bool) {
	var slots []int
	var subset []T
	from, to := -1, -1
	for i, item := range items {
		if !inScope(item) {
			continue
		}
		if id(item) == draggedID {
			from = len(subset)
		}
		if id(item) == targetID {
			to = len(subset)
		}
		slots = append(slots, i)
		subset = append(subset, item)
	}
	if from < 0 || to < 0 {
		return items, false
	}

	moved := subset[from]
	subset = slices.Delete(subset, from, from+1)
	subset = slices.Insert(subset, to, moved)

	out := slices.Clone(items)
	for k, i := range slots {
		out[i] = subset[k]
	}
	return out, true
}
