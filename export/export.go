package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/icodeforyou/nordpool-go/convert"
	"github.com/icodeforyou/nordpool-go/hours"
	"github.com/icodeforyou/nordpool-go/types"
)

// Series returns the prices of country starting in [start, end). Hourly
// series are averaged from quarter hour data; when a range has no quarter
// hour data the stored hourly rows are used instead.
func Series(ctx context.Context, repo types.PriceRepository, country string, start, end time.Time, resolution int) ([]types.Price, error) {
	records, err := repo.GetPrices(ctx, start, end, country, 15)
	if err != nil {
		return nil, err
	}
	if resolution != 60 {
		return records, nil
	}
	if len(records) == 0 {
		return repo.GetPrices(ctx, start, end, country, 60)
	}
	return HourlyAverages(records), nil
}

// HourlyAverages folds quarter hour prices into hourly prices. Hours missing
// any quarter are left out. Input must be ordered by start.
func HourlyAverages(records []types.Price) []types.Price {
	var (
		result []types.Price
		bucket []types.Price
	)
	flush := func() {
		if len(bucket) == 4 {
			sum := 0.0
			for _, p := range bucket {
				sum += p.Price
			}
			result = append(result, types.Price{
				Price:      sum / 4,
				Start:      bucket[0].Start,
				End:        bucket[0].Start.Add(time.Hour),
				Country:    bucket[0].Country,
				Resolution: 60,
			})
		}
		bucket = bucket[:0]
	}

	for _, p := range records {
		if len(bucket) > 0 && !p.Start.Truncate(time.Hour).Equal(bucket[0].Start) {
			flush()
		}
		if len(bucket) == 0 && !p.Start.Equal(p.Start.Truncate(time.Hour)) {
			// starts mid hour, cannot be complete
			continue
		}
		bucket = append(bucket, p)
	}
	flush()
	return result
}

// WriteCSV writes "ts_start,ts_end,price" rows, newest first, with times in
// loc. Excel gets ';' as separator.
func WriteCSV(w io.Writer, records []types.Price, loc *time.Location, excel bool) error {
	cw := csv.NewWriter(w)
	if excel {
		cw.Comma = ';'
	}

	if err := cw.Write([]string{"ts_start", "ts_end", "price"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	rows := slices.Clone(records)
	slices.Reverse(rows)
	for _, p := range rows {
		err := cw.Write([]string{
			p.Start.In(loc).Format(hours.TimeLayout),
			p.End.In(loc).Format(hours.TimeLayout),
			strconv.FormatFloat(convert.RoundFloat64(p.Price, 6), 'f', 6, 64),
		})
		if err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// Window is the exported range: the last days full days up to the end of
// tomorrow in now's location.
func Window(now time.Time, days int) (time.Time, time.Time) {
	return hours.StartOfDay(now).AddDate(0, 0, -days), hours.NextDay(hours.NextDay(now))
}
