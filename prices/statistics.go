package prices

import (
	"slices"
	"time"

	"github.com/icodeforyou/nordpool-go/hours"
	"github.com/icodeforyou/nordpool-go/types/maybe"
)

type DayStatistics struct {
	Date    string
	Values  []float64
	Min     float64
	Max     float64
	Average maybe.Maybe[float64] // Only valid for a complete day
}

// Complete reports whether the day has every expected slot.
func (s DayStatistics) Complete() bool {
	return s.Average.IsValid()
}

type Statistics struct {
	Today    DayStatistics
	Tomorrow DayStatistics
}

// NewStatistics computes statistics for the calendar date of today and the
// date after it. today must already be in the display timezone.
func NewStatistics(grid Grid, today time.Time, resolution int) Statistics {
	return Statistics{
		Today:    NewDayStatistics(grid, hours.Date(today), resolution),
		Tomorrow: NewDayStatistics(grid, hours.Date(hours.NextDay(today)), resolution),
	}
}

func NewDayStatistics(grid Grid, date string, resolution int) DayStatistics {
	values := grid.Flatten(date)
	stats := DayStatistics{
		Date:    date,
		Values:  values,
		Average: maybe.None[float64](),
	}
	if len(values) == 0 {
		return stats
	}

	stats.Min = slices.Min(values)
	stats.Max = slices.Max(values)

	if len(values) == hours.ExpectedSlots(resolution) {
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		stats.Average = maybe.Some(sum / float64(len(values)))
	}

	return stats
}
