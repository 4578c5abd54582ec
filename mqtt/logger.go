package mqtt

import (
	"context"
	"fmt"
	"log/slog"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// slogBridge routes paho's internal logging to slog at a fixed level.
type slogBridge struct {
	logger *slog.Logger
	level  slog.Level
}

func (l slogBridge) Println(v ...any) {
	l.logger.Log(context.Background(), l.level, fmt.Sprint(v...))
}

func (l slogBridge) Printf(format string, v ...any) {
	l.logger.Log(context.Background(), l.level, fmt.Sprintf(format, v...))
}

func setPahoLoggers(logger *slog.Logger) {
	paho.CRITICAL = slogBridge{logger: logger, level: slog.LevelError}
	paho.ERROR = slogBridge{logger: logger, level: slog.LevelError}
	paho.WARN = slogBridge{logger: logger, level: slog.LevelWarn}
}
