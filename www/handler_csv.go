package www

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/icodeforyou/nordpool-go/export"
)

const exportDays = 30

// NewCsvHandler serves /nordpool-{cc}[-1h][-excel].csv. The variant comes
// from the path values set by the dispatcher.
func NewCsvHandler(logger *slog.Logger, site *site, store Store) http.HandlerFunc {
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
		excel := r.PathValue("excel") != ""

		start, end := export.Window(req.now, exportDays)
		records, err := export.Series(r.Context(), store, l.Code(), start, end, req.resolution)
		if err != nil {
			logger.Error("handling csv request", slog.Any("error", err))
			httpError(w, err)
			return
		}

		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, records, l.Timezone(), excel); err != nil {
			logger.Error("handling csv request", slog.Any("error", err))
			httpError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", r.URL.Path[1:]))
		buf.WriteTo(w)
	}
}
