package planner

import (
	"sort"
	"time"
)

// TimelineEntry places one item on the chronological timeline. OriginalIndex points back
// into the slice passed to BuildTimeline so selection state keyed by that index survives
// the re-sort.
type TimelineEntry[T any] struct {
	SortedIndex   int `json:"sorted_index"`
	OriginalIndex int `json:"original_index"`
	Semester      T   `json:"semester"`
}

// KeyFunc extracts the identity and start date used to order an item.
type KeyFunc[T any] func(T) (id string, start time.Time)

// SemesterKey is the KeyFunc for the planner's own Semester type.
func SemesterKey(s Semester) (string, time.Time) {
	return s.ID, s.StartDate
}

// BuildTimeline orders items by start date, earliest first. Items without a start date
// go last and equal start dates keep their input order.
func BuildTimeline[T any](items []T, key KeyFunc[T]) []TimelineEntry[T] {
	if len(items) == 0 {
		return []TimelineEntry[T]{}
	}

	type keyed struct {
		pos   int
		id    string
		start time.Time
	}

	ordered := make([]keyed, len(items))
	firstByID := make(map[string]int, len(items))
	for i, item := range items {
		id, start := key(item)
		ordered[i] = keyed{pos: i, id: id, start: start}
		if id == "" {
			continue
		}
		if _, seen := firstByID[id]; !seen {
			firstByID[id] = i
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].start, ordered[j].start
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.Before(b)
		}
	})

	entries := make([]TimelineEntry[T], len(ordered))
	for i, k := range ordered {
		original := k.pos
		if k.id != "" {
			original = firstByID[k.id]
		}
		entries[i] = TimelineEntry[T]{
			SortedIndex:   i,
			OriginalIndex: original,
			Semester:      items[k.pos],
		}
	}
	return entries
}
