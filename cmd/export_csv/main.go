// Command export_csv writes the price export of one country to stdout, the
// same file the web server serves as /nordpool-{cc}.csv.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/icodeforyou/nordpool-go/config"
	"github.com/icodeforyou/nordpool-go/database"
	"github.com/icodeforyou/nordpool-go/export"
	"github.com/icodeforyou/nordpool-go/hours"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	country := flag.String("country", "LV", "country code")
	resolution := flag.Int("res", 15, "resolution in minutes, 15 or 60")
	excel := flag.Bool("excel", false, "use ';' as separator")
	days := flag.Int("days", 30, "number of past days")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.RFC3339,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("loading config", slog.Any("error", err))
		os.Exit(1)
	}

	c, ok := cnfg.Country(*country)
	if !ok {
		logger.Error("unknown country", slog.String("country", *country))
		os.Exit(2)
	}
	if *resolution != 15 && *resolution != 60 {
		logger.Error("resolution must be 15 or 60", slog.Int("res", *resolution))
		os.Exit(2)
	}

	loc, err := hours.Location(c.Timezone)
	if err != nil {
		logger.Error("loading timezone", slog.Any("error", err))
		os.Exit(1)
	}

	rows, err := run(context.Background(), cnfg.Database.Path, c.Code, loc, *resolution, *days, *excel)
	if err != nil {
		logger.Error("exporting prices", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("export done", slog.String("country", c.Code), slog.Int("rows", rows))
}

func run(ctx context.Context, dbPath, country string, loc *time.Location, resolution, days int, excel bool) (int, error) {
	db, err := database.New(ctx, dbPath)
	if err != nil {
		return 0, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	start, end := export.Window(time.Now().In(loc), days)
	records, err := export.Series(ctx, db, strings.ToUpper(country), start, end, resolution)
	if err != nil {
		return 0, fmt.Errorf("reading prices: %w", err)
	}

	if err := export.WriteCSV(os.Stdout, records, loc, excel); err != nil {
		return 0, err
	}
	return len(records), nil
}
