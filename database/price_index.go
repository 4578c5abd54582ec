package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/icodeforyou/nordpool-go/convert"
	"github.com/icodeforyou/nordpool-go/types"
	"github.com/icodeforyou/nordpool-go/types/maybe"
)

const (
	DefaultResolution = 15
	sqlTimeLayout     = "2006-01-02 15:04:05"
)

// Layouts found in price_indices. Values without an offset are UTC.
var timestampLayouts = []string{
	"2006-01-02 15:04:05Z07:00",
	time.RFC3339,
	sqlTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

type priceIndexRow struct {
	Country    string  `db:"country"`
	TsStart    string  `db:"ts_start"`
	TsEnd      string  `db:"ts_end"`
	Value      float64 `db:"value"`
	Resolution int     `db:"resolution_minutes"`
}

func (r priceIndexRow) toPrice() (types.Price, error) {
	start, err := parseTimestamp(r.TsStart)
	if err != nil {
		return types.Price{}, fmt.Errorf("ts_start: %w", err)
	}
	end, err := parseTimestamp(r.TsEnd)
	if err != nil {
		return types.Price{}, fmt.Errorf("ts_end: %w", err)
	}
	return types.Price{
		Price:      convert.MWh2Kwh(r.Value),
		Start:      start,
		End:        end,
		Country:    r.Country,
		Resolution: r.Resolution,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format %q", s)
}

// GetPrices returns the prices of a country and resolution whose interval
// starts in [start, end), ordered by start. Bounds may be in any timezone.
// datetime() normalises the mixed text formats in ts_start before comparing.
func (d *Database) GetPrices(ctx context.Context, start, end time.Time, country string, resolution int) ([]types.Price, error) {
	if resolution == 0 {
		resolution = DefaultResolution
	}

	var rows []priceIndexRow
	err := d.read.SelectContext(ctx, &rows, `
		SELECT country, ts_start, ts_end, value, resolution_minutes
		FROM price_indices
		WHERE country = ?
		  AND resolution_minutes = ?
		  AND datetime(ts_start) >= ?
		  AND datetime(ts_start) < ?
		ORDER BY datetime(ts_start) ASC`,
		country,
		resolution,
		start.UTC().Format(sqlTimeLayout),
		end.UTC().Format(sqlTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("fetching prices for %s: %w", country, err)
	}

	prices := make([]types.Price, 0, len(rows))
	for _, row := range rows {
		p, err := row.toPrice()
		if err != nil {
			return nil, fmt.Errorf("converting price row for %s: %w", country, err)
		}
		prices = append(prices, p)
	}

	return prices, nil
}

// LastUpdate is the time the ingestion job last wrote a price row.
func (d *Database) LastUpdate(ctx context.Context) (maybe.Maybe[time.Time], error) {
	var createdAt sql.NullString
	err := d.read.QueryRowContext(ctx, "SELECT MAX(created_at) FROM price_indices").Scan(&createdAt)
	if err != nil {
		return maybe.None[time.Time](), fmt.Errorf("fetching last update: %w", err)
	}
	if !createdAt.Valid {
		return maybe.None[time.Time](), nil
	}

	t, err := parseTimestamp(createdAt.String)
	if err != nil {
		return maybe.None[time.Time](), fmt.Errorf("parsing last update: %w", err)
	}
	return maybe.Some(t), nil
}

// DataFingerprint changes whenever rows are added, removed or rewritten.
func (d *Database) DataFingerprint(ctx context.Context) (string, error) {
	var (
		count     int64
		createdAt string
		total     float64
	)
	err := d.read.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MAX(created_at), ''), COALESCE(SUM(value), 0)
		FROM price_indices`).Scan(&count, &createdAt, &total)
	if err != nil {
		return "", fmt.Errorf("fetching data fingerprint: %w", err)
	}
	return fmt.Sprintf("%d|%s|%.4f", count, createdAt, total), nil
}
