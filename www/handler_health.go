package www

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/icodeforyou/nordpool-go/types/maybe"
)

type healthResponse struct {
	Status     string                 `json:"status"`
	LastUpdate maybe.Maybe[time.Time] `json:"lastUpdate"`
}

func NewHealthHandler(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !methodAllowed(w, r, http.MethodGet, http.MethodHead) {
			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := store.Ping(r.Context()); err != nil {
			logger.Warn("database ping failed", slog.Any("error", err))
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(healthResponse{Status: "unavailable"})
			return
		}

		last, err := store.LastUpdate(r.Context())
		if err != nil {
			logger.Warn("reading last update", slog.Any("error", err))
		}
		json.NewEncoder(w).Encode(healthResponse{Status: "ok", LastUpdate: last})
	}
}
