package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/icodeforyou/nordpool-go/cache"
	"github.com/icodeforyou/nordpool-go/config"
	"github.com/icodeforyou/nordpool-go/database"
	"github.com/icodeforyou/nordpool-go/locale"
	"github.com/icodeforyou/nordpool-go/logging"
	"github.com/icodeforyou/nordpool-go/mqtt"
	"github.com/icodeforyou/nordpool-go/task"
	"github.com/icodeforyou/nordpool-go/www"
	"github.com/joho/godotenv"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("failed to read .env file: %v", err))
	}

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	consoleHandler := logging.NewConsoleHandler(os.Stdout, cnfg.Logging.GetConsoleLevel(), os.Getenv("NO_COLOR") != "")
	slog.New(consoleHandler).Debug("nordpool is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Database operations are logged into the database itself from here on
	db.SetLogger(logger.With("module", "database"))

	tr, err := locale.LoadTranslations(cnfg.Gui.GetTranslationsFile())
	if err != nil {
		panic(fmt.Sprintf("failed to load translations: %v", err))
	}

	pages := cache.NewGenerational(newCacheBackend(cnfg.Cache), cnfg.Cache.GetTtl())

	announcer := mqtt.NewAnnouncer(cnfg.Mqtt)
	announcer.Connect()
	defer announcer.Disconnect()

	hub := www.NewHub(logger.With("module", "websocket"))

	tasks := task.NewTasks(db, pages, hub, announcer, cnfg)
	if isDevMode() {
		logger.Info("dev mode, skipping task scheduling")
	} else {
		if err := tasks.Run(); err != nil {
			panic(fmt.Sprintf("failed to schedule tasks: %v", err))
		}
		defer tasks.Stop()
	}

	server, err := www.NewServer(cnfg, db, tr, pages, hub)
	if err != nil {
		panic(fmt.Sprintf("failed to create server: %v", err))
	}
	server.Run(ctx)
}

func newCacheBackend(cnfg config.AppConfigCache) cache.Cache {
	if cnfg.GetBackend() == "redis" {
		return cache.NewRedis(cache.RedisOptions{
			Addr:     cnfg.Redis.Addr,
			Password: cnfg.Redis.Password,
			DB:       cnfg.Redis.DB,
			Prefix:   cnfg.GetRedisPrefix(),
		})
	}
	return cache.NewMemory(cnfg.GetMaxEntries())
}

func isDevMode() bool {
	return strings.EqualFold(os.Getenv("APP_ENV"), "development")
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	time.Sleep(2 * time.Second)
	os.Exit(1)
}
