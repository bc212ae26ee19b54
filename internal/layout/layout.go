// Package layout assigns side-by-side columns to overlapping time intervals.
//
// The day and week views both call Arrange once per rendered day. Columns are
// never shared between days.
package layout

import (
	"sort"
)

// Interval is anything with a start and end measured in minutes since local
// midnight.
type Interval interface {
	StartMinutes() int
	EndMinutes() int
}

// Placement is an item annotated with its column and the number of equal
// width columns the row must be divided into while the item is visible.
type Placement[T any] struct {
	Item         T
	Column       int
	TotalColumns int
}

// Span is a bare interval with no payload.
type Span struct {
	Start int
	End   int
}

func (s Span) StartMinutes() int { return s.Start }
func (s Span) EndMinutes() int   { return s.End }

// overlaps uses strict inequalities: back-to-back intervals do not overlap.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

type entry struct {
	index  int // position in the caller's slice
	start  int
	end    int
	column int
}

// Arrange places every item in the leftmost column that is free for its whole
// duration, then computes each item's TotalColumns from the items it directly
// overlaps.
//
// Items are considered in order of start time, longer items first on equal
// starts, input order after that. The result has one placement per input item
// in input order. The input slice is not modified.
func Arrange[T Interval](items []T) []Placement[T] {
	out := make([]Placement[T], len(items))
	if len(items) == 0 {
		return out
	}

	entries := make([]*entry, len(items))
	for i, item := range items {
		entries[i] = &entry{
			index: i,
			start: item.StartMinutes(),
			end:   item.EndMinutes(),
		}
	}

	sorted := make([]*entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].end-sorted[i].start > sorted[j].end-sorted[j].start
	})

	// Pass 1: leftmost fit.
	var columns [][]*entry
	for _, e := range sorted {
		placed := false
		for c := range columns {
			if fits(columns[c], e) {
				columns[c] = append(columns[c], e)
				e.column = c
				placed = true
				break
			}
		}
		if !placed {
			e.column = len(columns)
			columns = append(columns, []*entry{e})
		}
	}

	// Pass 2: widest column among direct overlaps, not across the whole
	// cluster. Neighbours in one cluster may report different totals.
	for _, a := range entries {
		// A counts its own column even when it does not overlap itself
		// (zero-length or inverted), so the total is never below column+1.
		maxColumn := a.column
		for _, b := range entries {
			if b == a {
				continue
			}
			if overlaps(a.start, a.end, b.start, b.end) && b.column > maxColumn {
				maxColumn = b.column
			}
		}
		out[a.index] = Placement[T]{
			Item:         items[a.index],
			Column:       a.column,
			TotalColumns: maxColumn + 1,
		}
	}

	return out
}

func fits(column []*entry, e *entry) bool {
	for _, existing := range column {
		if overlaps(e.start, e.end, existing.start, existing.end) {
			return false
		}
	}
	return true
}

// Columns returns the number of distinct columns used by placements.
func Columns[T any](placements []Placement[T]) int {
	n := 0
	for _, p := range placements {
		if p.Column+1 > n {
			n = p.Column + 1
		}
	}
	return n
}
