package calendar

import (
	"github.com/adam-palmer1/calview/internal/layout"
)

// Metrics are the rendering constants for a time grid. SlotHeight is the
// height of one hour; Gutter is subtracted from both height and width.
type Metrics struct {
	SlotHeight float64
	Gutter     float64
}

// Box is the position of one placement. Top and Height are in SlotHeight
// units; Left and Width are percentages of the day column.
type Box struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
}

// Geometry maps a placement to its box.
func (m Metrics) Geometry(p layout.Placement[Item]) Box {
	startHour := p.Item.Start / 60
	startMinute := p.Item.Start % 60
	hours := float64(p.Item.End-p.Item.Start) / 60

	total := p.TotalColumns
	if total < 1 {
		total = 1
	}
	share := 100 / float64(total)

	return Box{
		Top:    float64(startHour)*m.SlotHeight + float64(startMinute)/60*m.SlotHeight,
		Height: clamp(hours*m.SlotHeight - m.Gutter),
		Left:   float64(p.Column) * share,
		Width:  clamp(share - m.Gutter),
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
