package layout

import (
	"math/rand"
	"reflect"
	"testing"
)

type appt struct {
	Title string
	Color string
	Start int
	End   int
}

func (a appt) StartMinutes() int { return a.Start }
func (a appt) EndMinutes() int   { return a.End }

// hm converts a wall-clock time to minutes since midnight.
func hm(hour, minute int) int {
	return hour*60 + minute
}

func TestArrangeScenarios(t *testing.T) {
	tests := []struct {
		name          string
		spans         []Span
		expectColumns []int
		expectTotals  []int
	}{
		{
			name:          "Single interval",
			spans:         []Span{{hm(9, 0), hm(10, 0)}},
			expectColumns: []int{0},
			expectTotals:  []int{1},
		},
		{
			name:          "Back to back intervals share a column",
			spans:         []Span{{hm(9, 0), hm(10, 0)}, {hm(10, 0), hm(11, 0)}},
			expectColumns: []int{0, 0},
			expectTotals:  []int{1, 1},
		},
		{
			name:          "Identical intervals keep input order",
			spans:         []Span{{hm(9, 0), hm(10, 0)}, {hm(9, 0), hm(10, 0)}},
			expectColumns: []int{0, 1},
			expectTotals:  []int{2, 2},
		},
		{
			name: "Short item tucks under a long one",
			spans: []Span{
				{hm(9, 0), hm(11, 0)},
				{hm(9, 30), hm(10, 0)},
				{hm(10, 15), hm(10, 45)},
			},
			expectColumns: []int{0, 1, 1},
			expectTotals:  []int{2, 2, 2},
		},
		{
			name: "Longer item wins a tied start",
			spans: []Span{
				{hm(9, 0), hm(9, 30)},
				{hm(9, 0), hm(11, 0)},
			},
			expectColumns: []int{1, 0},
			expectTotals:  []int{2, 2},
		},
		{
			name: "Unsorted input",
			spans: []Span{
				{hm(14, 0), hm(15, 0)},
				{hm(8, 0), hm(9, 0)},
				{hm(8, 30), hm(9, 30)},
			},
			expectColumns: []int{0, 0, 1},
			expectTotals:  []int{1, 2, 2},
		},
		{
			name: "Totals are local to direct overlaps",
			spans: []Span{
				{0, 100}, // A
				{10, 20}, // B
				{15, 30}, // C overlaps A and B
				{50, 60}, // D overlaps only A
			},
			expectColumns: []int{0, 1, 2, 1},
			expectTotals:  []int{3, 3, 3, 2},
		},
		{
			name: "Zero duration item at a boundary",
			spans: []Span{
				{hm(9, 0), hm(10, 0)},
				{hm(10, 0), hm(10, 0)},
			},
			expectColumns: []int{0, 0},
			expectTotals:  []int{1, 1},
		},
		{
			name: "Zero duration item inside another",
			spans: []Span{
				{hm(9, 0), hm(10, 0)},
				{hm(9, 30), hm(9, 30)},
			},
			expectColumns: []int{0, 1},
			expectTotals:  []int{2, 2},
		},
		{
			name:          "Lone zero duration item counts its own column",
			spans:         []Span{{hm(9, 0), hm(9, 0)}},
			expectColumns: []int{0},
			expectTotals:  []int{1},
		},
		{
			name: "Zero duration item opening a third column",
			spans: []Span{
				{hm(9, 0), hm(10, 0)},
				{hm(9, 0), hm(10, 0)},
				{hm(9, 30), hm(9, 30)},
			},
			expectColumns: []int{0, 1, 2},
			expectTotals:  []int{3, 3, 3},
		},
		{
			name: "Inverted interval is still placed",
			spans: []Span{
				{hm(9, 0), hm(10, 0)},
				{hm(9, 30), hm(9, 0)},
			},
			expectColumns: []int{0, 0},
			expectTotals:  []int{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Arrange(tt.spans)
			if len(got) != len(tt.spans) {
				t.Fatalf("Arrange returned %d placements, want %d", len(got), len(tt.spans))
			}
			for i, p := range got {
				if p.Item != tt.spans[i] {
					t.Errorf("placement %d item = %+v, want %+v", i, p.Item, tt.spans[i])
				}
				if p.Column != tt.expectColumns[i] {
					t.Errorf("placement %d column = %d, want %d", i, p.Column, tt.expectColumns[i])
				}
				if p.TotalColumns != tt.expectTotals[i] {
					t.Errorf("placement %d totalColumns = %d, want %d", i, p.TotalColumns, tt.expectTotals[i])
				}
			}
		})
	}
}

func TestArrangeEmpty(t *testing.T) {
	got := Arrange([]Span(nil))
	if got == nil {
		t.Fatal("Arrange(nil) returned nil, want empty slice")
	}
	if len(got) != 0 {
		t.Errorf("Arrange(nil) returned %d placements", len(got))
	}
	if Columns(got) != 0 {
		t.Errorf("Columns of empty layout = %d, want 0", Columns(got))
	}
}

func TestArrangePassesPayloadThrough(t *testing.T) {
	input := []appt{
		{Title: "Standup", Color: "#ff0000", Start: hm(9, 0), End: hm(9, 15)},
		{Title: "Client call", Color: "#00ff00", Start: hm(9, 0), End: hm(10, 0)},
		{Title: "Lunch", Color: "", Start: hm(12, 0), End: hm(13, 0)},
	}
	before := make([]appt, len(input))
	copy(before, input)

	got := Arrange(input)

	if !reflect.DeepEqual(input, before) {
		t.Errorf("input was modified: %+v", input)
	}
	for i, p := range got {
		if p.Item != input[i] {
			t.Errorf("placement %d item = %+v, want %+v", i, p.Item, input[i])
		}
	}
	if got[1].Column != 0 || got[0].Column != 1 {
		t.Errorf("columns = %d,%d; longer tied item should be first", got[0].Column, got[1].Column)
	}
}

func TestArrangeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		n := rng.Intn(25)
		spans := make([]Span, n)
		for i := range spans {
			// Quarter hour grid makes ties and shared boundaries common.
			start := rng.Intn(96) * 15
			end := start + (1+rng.Intn(12))*15
			spans[i] = Span{Start: start, End: end}
		}

		got := Arrange(spans)
		if len(got) != n {
			t.Fatalf("round %d: got %d placements, want %d", round, len(got), n)
		}

		for i := range got {
			a := got[i]
			if a.TotalColumns < a.Column+1 {
				t.Errorf("round %d: placement %d totalColumns %d < column+1 %d", round, i, a.TotalColumns, a.Column+1)
			}
			for j := i + 1; j < len(got); j++ {
				b := got[j]
				if overlaps(a.Item.Start, a.Item.End, b.Item.Start, b.Item.End) && a.Column == b.Column {
					t.Errorf("round %d: overlapping %+v and %+v share column %d", round, a.Item, b.Item, a.Column)
				}
			}
		}

		if used, want := Columns(got), maxConcurrency(spans); used != want {
			t.Errorf("round %d: used %d columns, max concurrency is %d", round, used, want)
		}

		again := Arrange(append([]Span(nil), spans...))
		if !reflect.DeepEqual(got, again) {
			t.Errorf("round %d: layout not deterministic", round)
		}
	}
}

// maxConcurrency counts the largest number of intervals active at one instant.
// For positive durations the peak is always reached at some interval's start.
func maxConcurrency(spans []Span) int {
	best := 0
	for _, a := range spans {
		active := 0
		for _, b := range spans {
			if b.Start <= a.Start && a.Start < b.End {
				active++
			}
		}
		if active > best {
			best = active
		}
	}
	return best
}
