package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/icodeforyou/nordpool-go/config"
	"github.com/icodeforyou/nordpool-go/hours"
	"github.com/icodeforyou/nordpool-go/prices"
	"github.com/icodeforyou/nordpool-go/types"
)

type FingerprintStore interface {
	types.PriceRepository
	DataFingerprint(ctx context.Context) (string, error)
}

type Invalidator interface {
	Bump(ctx context.Context) uint64
}

type Notifier interface {
	PricesUpdated(generation uint64)
}

type Announcer interface {
	Announce(ctx context.Context, country string, resolution int, stats prices.Statistics) error
}

// NewRefreshTask watches the price table for changes made by the ingestion
// job. On a change the page cache is invalidated, open pages are told to
// reload and the new day statistics are announced per country.
func NewRefreshTask(
	logger *slog.Logger,
	store FingerprintStore,
	pages Invalidator,
	notifier Notifier,
	announcer Announcer,
	countries []config.Country) func() {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	last, err := store.DataFingerprint(ctx)
	if err != nil {
		logger.Error("refresh task error, reading initial fingerprint", slog.Any("error", err))
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		fp, err := store.DataFingerprint(ctx)
		if err != nil {
			logger.Error("refresh task error, reading fingerprint", slog.Any("error", err))
			return
		}
		if fp == last {
			return
		}
		last = fp

		gen := pages.Bump(ctx)
		notifier.PricesUpdated(gen)
		logger.Info("prices changed", slog.String("fingerprint", fp), slog.Uint64("generation", gen))

		for _, c := range countries {
			loc, err := hours.Location(c.Timezone)
			if err != nil {
				logger.Error("refresh task error", slog.String("country", c.Code), slog.Any("error", err))
				continue
			}
			days, err := prices.LoadDays(ctx, store, c.Code, time.Now().In(loc), 15, 1)
			if err != nil {
				logger.Error("refresh task error, loading statistics", slog.String("country", c.Code), slog.Any("error", err))
				continue
			}
			if err := announcer.Announce(ctx, c.Code, days.Resolution, days.Stats); err != nil {
				logger.Warn("refresh task error, announcing statistics", slog.String("country", c.Code), slog.Any("error", err))
			}
		}
	}
}
