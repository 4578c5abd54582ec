package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/icodeforyou/nordpool-go/cache"
	"github.com/icodeforyou/nordpool-go/config"
	"github.com/icodeforyou/nordpool-go/database"
	"github.com/icodeforyou/nordpool-go/mqtt"
	"github.com/icodeforyou/nordpool-go/www"
	"github.com/robfig/cron/v3"
)

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	RefreshTask     func()
	MaintenanceTask func()
}

func NewTasks(
	db *database.Database,
	pages *cache.Generational,
	hub *www.Hub,
	announcer *mqtt.Announcer,
	cnfg *config.AppConfig,
) *Tasks {
	logger := slog.Default().With("module", "tasks")
	return &Tasks{
		cron: cron.New(),
		cnfg: cnfg,
		RefreshTask: NewRefreshTask(
			logger.With(slog.String("task", "refresh")),
			db,
			pages,
			hubNotifier{hub},
			announcer,
			cnfg.GetCountries()),
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg),
	}
}

func (t *Tasks) Run() error {
	if _, err := t.cron.AddFunc(t.cnfg.Tasks.GetRefreshRunAt(), t.RefreshTask); err != nil {
		return fmt.Errorf("scheduling refresh task: %w", err)
	}
	if _, err := t.cron.AddFunc(t.cnfg.Tasks.GetMaintenanceRunAt(), t.MaintenanceTask); err != nil {
		return fmt.Errorf("scheduling maintenance task: %w", err)
	}
	t.cron.Start()
	return nil
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}

type hubNotifier struct {
	hub *www.Hub
}

func (n hubNotifier) PricesUpdated(generation uint64) {
	n.hub.Publish(www.Event{Type: www.EventPricesUpdated, Generation: generation})
}
