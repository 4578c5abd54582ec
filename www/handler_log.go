package www

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/icodeforyou/nordpool-go/database"
	"github.com/icodeforyou/nordpool-go/logging"
)

type logLevelOption struct {
	Name     string
	Selected bool
}

func NewLogHandler(logger *slog.Logger, store Store, tm *TemplateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !methodAllowed(w, r, http.MethodGet) {
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		level := r.URL.Query().Get("level")
		minLevel := logging.LevelFromString(&level)
		if level == "" {
			minLevel = slog.LevelDebug
		}

		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			levels := make([]logLevelOption, 0, 4)
			for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
				levels = append(levels, logLevelOption{Name: l.String(), Selected: l == minLevel})
			}
			if err := tm.ExecuteToWriter("log.html", levels, w); err != nil {
				logger.Error("handling log request", slog.Any("error", err))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		pageSize := 25
		if ps, err := strconv.Atoi(r.URL.Query().Get("pageSize")); err == nil && ps > 0 {
			pageSize = ps
		}

		entries, err := store.GetLogEntries(r.Context(), minLevel, page, pageSize)
		if err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		next := url.Values{}
		next.Set("page", strconv.Itoa(page+1))
		next.Set("pageSize", strconv.Itoa(pageSize))
		next.Set("level", minLevel.String())

		data := struct {
			PageSize int
			Next     string
			Entries  []database.LogEntryRow
		}{
			PageSize: pageSize,
			Next:     "/log?" + next.Encode(),
			Entries:  entries,
		}

		if err := tm.ExecuteToWriter("log_entries.html", data, w); err != nil {
			logger.Error("handling log request", slog.Any("error", err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	}
}
