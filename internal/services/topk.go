package services

import "sort"

// PromoteTopK reorders items so the k best-scored entries lead the list in
// score order, while every remaining item keeps its original position
// relative to the others. Ties among promoted items break by base order.
// The returned count says how many leading entries were promoted, which is
// min(k, len(items)).
func PromoteTopK[T any](items []T, score func(T) float64, k int) ([]T, int) {
	if k <= 0 || len(items) == 0 {
		return items, 0
	}
	if k > len(items) {
		k = len(items)
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return score(items[order[i]]) > score(items[order[j]])
	})

	promoted := make(map[int]bool, k)
	result := make([]T, 0, len(items))
	for _, idx := range order[:k] {
		promoted[idx] = true
		result = append(result, items[idx])
	}
	for i, item := range items {
		if !promoted[i] {
			result = append(result, item)
		}
	}
	return result, k
}
