package www

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/icodeforyou/nordpool-go/prices"
	"github.com/icodeforyou/nordpool-go/www/chartjs"
)

// NewChartHandler serves today and tomorrow as a line chart. The today series
// ends with the first price of tomorrow so the lines join at midnight.
func NewChartHandler(logger *slog.Logger, site *site, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !methodAllowed(w, r, http.MethodGet, http.MethodHead) {
			return
		}

		req, err := site.parse(r)
		if err != nil {
			httpError(w, err)
			return
		}
		l := req.locale

		days, err := prices.LoadDays(r.Context(), store, l.Code(), req.now, req.resolution, req.multiplier())
		if err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
			httpError(w, err)
			return
		}

		today, tomorrow := days.ChartSeries()
		chart := chartjs.NewChart(l.Msg("Primitīvs grafiks"), prices.ChartLabels(req.resolution))
		chart.AddDataset(l.Msg("Šodien"), chartjs.ColorToday, today)
		chart.AddDataset(l.Msg("Rīt"), chartjs.ColorTomorrow, tomorrow)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(chart); err != nil {
			logger.Error("handling chart request", slog.Any("error", err))
			http.Error(w, "unable to encode data points", http.StatusInternalServerError)
		}
	}
}
