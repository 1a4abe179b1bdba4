// Package filter narrows in-memory listings with composable predicates and
// slices them into fixed-size pages. Relative order is always preserved.
package filter

import "strings"

// Query is the set of optional narrowing criteria a listing accepts.
// Zero values disable the corresponding predicate.
type Query struct {
	Search     string   `form:"q" json:"q"`
	IDs        []string `form:"ids" json:"ids"`
	StartDate  string   `form:"startDate" json:"startDate"`
	EndDate    string   `form:"endDate" json:"endDate"`
	Status     string   `form:"status" json:"status"`
	ActiveOnly bool     `form:"activeOnly" json:"activeOnly"`
}

// Fields tells the filter how to read the attributes of T. Nil accessors
// make the matching predicate a no-op.
type Fields[T any] struct {
	Text   func(T) []string
	ID     func(T) string
	Date   func(T) string
	Status func(T) string
	Active func(T) bool
}

// Predicate reports whether an item is kept.
type Predicate[T any] func(T) bool

// All combines predicates with logical AND.
func All[T any](preds ...Predicate[T]) Predicate[T] {
	return func(item T) bool {
		for _, p := range preds {
			if !p(item) {
				return false
			}
		}
		return true
	}
}

// Keep returns the items matching pred in their original order.
func Keep[T any](items []T, pred Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// Apply narrows items by q. An inverted date range (start after end) yields
// an empty result rather than an error.
func Apply[T any](items []T, q Query, f Fields[T]) []T {
	if q.StartDate != "" && q.EndDate != "" && q.StartDate > q.EndDate {
		return []T{}
	}
	return Keep(items, Predicates(q, f))
}

// Predicates builds the predicate chain for q.
func Predicates[T any](q Query, f Fields[T]) Predicate[T] {
	var preds []Predicate[T]

	if len(q.IDs) > 0 && f.ID != nil {
		selected := make(map[string]struct{}, len(q.IDs))
		for _, id := range q.IDs {
			selected[id] = struct{}{}
		}
		preds = append(preds, func(item T) bool {
			_, ok := selected[f.ID(item)]
			return ok
		})
	}

	if f.Date != nil && (q.StartDate != "" || q.EndDate != "") {
		preds = append(preds, func(item T) bool {
			return InRange(f.Date(item), q.StartDate, q.EndDate)
		})
	}

	if q.Status != "" && f.Status != nil {
		preds = append(preds, func(item T) bool {
			return strings.EqualFold(f.Status(item), q.Status)
		})
	}

	if q.ActiveOnly && f.Active != nil {
		preds = append(preds, f.Active)
	}

	if search := strings.TrimSpace(q.Search); search != "" && f.Text != nil {
		preds = append(preds, func(item T) bool {
			return MatchesAny(search, f.Text(item)...)
		})
	}

	return All(preds...)
}

// MatchesAny reports whether any field contains search, ignoring case.
func MatchesAny(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// InRange reports whether a YYYY-MM-DD date lies within [start, end].
// Empty bounds are open.
func InRange(date, start, end string) bool {
	if start != "" && date < start {
		return false
	}
	if end != "" && date > end {
		return false
	}
	return true
}
