package www

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/icodeforyou/nordpool-go/cache"
	"github.com/icodeforyou/nordpool-go/hours"
	"github.com/icodeforyou/nordpool-go/prices"
)

func NewIndexHandler(logger *slog.Logger, site *site, store Store, tm *TemplateManager, pages *cache.Generational, prefs *Preferences) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !methodAllowed(w, r, http.MethodGet, http.MethodHead) {
			return
		}

		req, err := site.parse(r)
		if err != nil {
			httpError(w, err)
			return
		}
		threshold := prefs.Threshold(r)

		key := fmt.Sprintf("index:%s:%d:%t:%s", req.locale.Code(), req.resolution, req.vat, hours.Date(req.now))
		if threshold > 0 {
			key += fmt.Sprintf(":t%d", threshold)
		}

		html, err := pages.GetOrRender(r.Context(), key, func(ctx context.Context) ([]byte, error) {
			days, err := prices.LoadDays(ctx, store, req.locale.Code(), req.now, req.resolution, req.multiplier())
			if err != nil {
				return nil, err
			}
			buf, err := tm.Execute("index.html", newIndexPage(req, site.locales(), days, threshold))
			if err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		})
		if err != nil {
			logger.Error("handling index request", slog.Any("error", err))
			httpError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(html)
	}
}
