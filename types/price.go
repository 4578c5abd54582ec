package types

import (
	"context"
	"time"
)

type Price struct {
	Price      float64 // Price in EUR per kWh excluding VAT
	Start      time.Time
	End        time.Time
	Country    string
	Resolution int // Interval length in minutes, 15 or 60
}

type PriceRepository interface {
	// GetPrices returns prices starting in [start, end) ordered by start time.
	GetPrices(ctx context.Context, start, end time.Time, country string, resolution int) ([]Price, error)
}
