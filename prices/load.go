package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/icodeforyou/nordpool-go/hours"
	"github.com/icodeforyou/nordpool-go/types"
)

// Days is the grid and statistics of today and tomorrow for one country.
type Days struct {
	Grid       Grid
	Stats      Statistics
	Resolution int
}

// LoadDays reads today and tomorrow (in today's location) from repo. The
// hourly view averages quarter hour data and falls back to stored hourly rows
// when there is none.
func LoadDays(ctx context.Context, repo types.PriceRepository, country string, today time.Time, resolution int, multiplier float64) (Days, error) {
	start := hours.StartOfDay(today)
	end := hours.NextDay(hours.NextDay(today))
	hourly := resolution == 60

	records, err := repo.GetPrices(ctx, start, end, country, 15)
	if err != nil {
		return Days{}, fmt.Errorf("loading prices for %s: %w", country, err)
	}
	if hourly && len(records) == 0 {
		records, err = repo.GetPrices(ctx, start, end, country, 60)
		if err != nil {
			return Days{}, fmt.Errorf("loading hourly prices for %s: %w", country, err)
		}
	}

	grid := ToGrid(records, today.Location(), hourly, multiplier)
	return Days{
		Grid:       grid,
		Stats:      NewStatistics(grid, today, resolution),
		Resolution: resolution,
	}, nil
}

// ChartSeries returns one value per slot of today and tomorrow, nil where
// there is no price. Today gets an extra closing point holding the first
// value of tomorrow and tomorrow a trailing nil so both match the labels of
// hours.Labels plus "00:00".
func (d Days) ChartSeries() (today, tomorrow []*float64) {
	qph := hours.QuartersPerHour(d.Resolution)
	series := func(date string) []*float64 {
		values := make([]*float64, 0, 24*qph+1)
		for h := 0; h < 24; h++ {
			for q := 0; q < qph; q++ {
				if v, ok := d.Grid.Value(date, h, q); ok {
					values = append(values, &v)
				} else {
					values = append(values, nil)
				}
			}
		}
		return values
	}

	today = series(d.Stats.Today.Date)
	tomorrow = series(d.Stats.Tomorrow.Date)
	today = append(today, tomorrow[0])
	tomorrow = append(tomorrow, nil)
	return today, tomorrow
}

// ChartLabels are the slot labels followed by the closing "00:00".
func ChartLabels(resolution int) []string {
	return append(hours.Labels(resolution), "00:00")
}
