package accounting

import (
	"fmt"
	"math"

	"github.com/alexanderramin/punchclock/internal/domain"
)

// Fixed colors for days that are not classified by ratio.
const (
	WeekendColor     = "rgb(226 232 240)"
	AbsenceColor     = "rgb(250 204 21)"
	BeforeStartColor = "rgb(148 163 184)"
)

type colorStop struct {
	at      float64
	r, g, b float64
}

var colorStops = []colorStop{
	{at: 0.0, r: 239, g: 68, b: 68},
	{at: 0.7, r: 249, g: 115, b: 22},
	{at: 1.0, r: 34, g: 197, b: 94},
	{at: 1.15, r: 59, g: 130, b: 246},
	{at: 1.35, r: 168, g: 85, b: 247},
	{at: 2.0, r: 168, g: 85, b: 247},
}

// HeatCell is the rendering data for one day of a month.
type HeatCell struct {
	Date            string
	WorkedMinutes   int
	ExpectedMinutes int
	Weekend         bool
	Ratio           float64
	Absence         bool
	AbsenceReason   string
	BeforeStart     bool
	HasNote         bool
	Color           string
}

// ColorForRatio maps worked/expected to a color, interpolating linearly
// between the two bracketing stops after clamping to [0, 2]. Weekends are
// always WeekendColor.
func ColorForRatio(ratio float64, weekend bool) string {
	if weekend {
		return WeekendColor
	}
	x := math.Max(0, math.Min(2, ratio))
	for i := 0; i < len(colorStops)-1; i++ {
		a, b := colorStops[i], colorStops[i+1]
		if x >= a.at && x <= b.at {
			return mixColor(a, b, x)
		}
	}
	last := colorStops[len(colorStops)-1]
	return rgb(last.r, last.g, last.b)
}

func mixColor(a, b colorStop, at float64) string {
	t := (at - a.at) / (b.at - a.at)
	return rgb(lerp(a.r, b.r, t), lerp(a.g, b.g, t), lerp(a.b, b.b, t))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// rgb rounds each channel half up, matching the web client byte for byte.
func rgb(r, g, b float64) string {
	return fmt.Sprintf("rgb(%d %d %d)", roundHalfUp(r), roundHalfUp(g), roundHalfUp(b))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// HeatMap classifies every day of days. Before-start wins over absence,
// which wins over weekend, which wins over the ratio color. A note never
// changes the color.
func HeatMap(status domain.DailyStatus, days []domain.DayAggregate) []HeatCell {
	start := overtimeStart(status)
	cells := make([]HeatCell, 0, len(days))
	for _, d := range days {
		weekend := IsWeekend(d.DateLocal)
		expected := 0
		if !weekend {
			expected = status.TargetMinutes
		}
		ratio := 0.0
		if expected > 0 {
			ratio = float64(d.WorkedMinutes) / float64(expected)
		}

		cell := HeatCell{
			Date:            d.DateLocal,
			WorkedMinutes:   d.WorkedMinutes,
			ExpectedMinutes: expected,
			Weekend:         weekend,
			Ratio:           ratio,
			Absence:         d.Absence != nil,
			BeforeStart:     start != "" && d.DateLocal < start,
			HasNote:         d.HasNote,
		}
		if d.Absence != nil {
			cell.AbsenceReason = d.Absence.Reason.Name
		}

		switch {
		case cell.BeforeStart:
			cell.Color = BeforeStartColor
		case cell.Absence:
			cell.Color = AbsenceColor
		default:
			cell.Color = ColorForRatio(ratio, weekend)
		}
		cells = append(cells, cell)
	}
	return cells
}
