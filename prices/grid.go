package prices

import (
	"slices"
	"time"

	"github.com/icodeforyou/nordpool-go/convert"
	"github.com/icodeforyou/nordpool-go/hours"
	"github.com/icodeforyou/nordpool-go/types"
)

// Grid maps a local date to hour (0-23) to quarter (0-3) to a rounded price.
// Hourly values live at quarter 0.
type Grid map[string]map[int]map[int]float64

// ToGrid places every price into the wall-clock slot of its start time in loc.
// With hourly set, an hour holding all four quarters collapses into their
// average at quarter 0; incomplete hours are kept as they are so callers can
// tell them apart.
func ToGrid(records []types.Price, loc *time.Location, hourly bool, multiplier float64) Grid {
	grid := Grid{}
	for _, r := range records {
		slot := hours.FromTime(r.Start, loc)
		day, ok := grid[slot.Date]
		if !ok {
			day = map[int]map[int]float64{}
			grid[slot.Date] = day
		}
		hour, ok := day[int(slot.Hour)]
		if !ok {
			hour = map[int]float64{}
			day[int(slot.Hour)] = hour
		}
		hour[int(slot.Quarter)] = convert.RoundFloat64(multiplier*r.Price, 4)
	}

	if hourly {
		for _, day := range grid {
			for h, quarters := range day {
				if len(quarters) != 4 {
					continue
				}
				sum := quarters[0] + quarters[1] + quarters[2] + quarters[3]
				day[h] = map[int]float64{0: convert.RoundFloat64(sum/4, 4)}
			}
		}
	}

	return grid
}

func (g Grid) Value(date string, hour, quarter int) (float64, bool) {
	v, ok := g[date][hour][quarter]
	return v, ok
}

// Flatten lists the values of a date ordered by hour and quarter.
func (g Grid) Flatten(date string) []float64 {
	day := g[date]
	values := make([]float64, 0, 96)
	for _, h := range sortedKeys(day) {
		quarters := day[h]
		for _, q := range sortedKeys(quarters) {
			values = append(values, quarters[q])
		}
	}
	return values
}

// Dates returns the dates of the grid in ascending order.
func (g Grid) Dates() []string {
	dates := make([]string, 0, len(g))
	for d := range g {
		dates = append(dates, d)
	}
	slices.Sort(dates)
	return dates
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
