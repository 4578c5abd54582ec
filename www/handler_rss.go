package www

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/icodeforyou/nordpool-go/convert"
	"github.com/icodeforyou/nordpool-go/export"
	"github.com/icodeforyou/nordpool-go/hours"
)

type feed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   feedTitle   `xml:"title"`
	Updated string      `xml:"updated"`
	Link    feedLink    `xml:"link"`
	ID      string      `xml:"id"`
	Entries []feedEntry `xml:"entry"`
}

type feedTitle struct {
	Type string `xml:"type,attr"`
	Text string `xml:",chardata"`
}

type feedLink struct {
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
	Href string `xml:"href,attr"`
}

type feedEntry struct {
	ID         string `xml:"id"`
	TsStart    string `xml:"ts_start"`
	TsEnd      string `xml:"ts_end"`
	Resolution int    `xml:"resolution"`
	Price      string `xml:"price"`
	PriceVAT   string `xml:"price_vat"`
}

// NewRssHandler serves tomorrow's prices as a feed.
func NewRssHandler(logger *slog.Logger, site *site, store Store) http.HandlerFunc {
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
		start := hours.NextDay(req.now)
		end := hours.NextDay(start)

		records, err := export.Series(r.Context(), store, l.Code(), start, end, req.resolution)
		if err != nil {
			logger.Error("handling rss request", slog.Any("error", err))
			httpError(w, err)
			return
		}

		baseUrl := site.config.Api.GetBaseUrl()
		f := feed{
			Title: feedTitle{
				Type: "text",
				Text: fmt.Sprintf("Nordpool spot prices tomorrow (%s) for %s", hours.Date(start), l.Code()),
			},
			Updated: req.now.Format(time.RFC3339),
			Link:    feedLink{Rel: "alternate", Type: "text/html", Href: baseUrl},
			ID:      baseUrl + "/feed",
		}
		for _, p := range records {
			tsStart := p.Start.In(l.Timezone())
			tsEnd := p.End.In(l.Timezone())
			f.Entries = append(f.Entries, feedEntry{
				ID:         fmt.Sprintf("%s-%d-%d-%d", l.Code(), p.Resolution, tsStart.Unix(), tsEnd.Unix()),
				TsStart:    tsStart.Format(time.RFC3339),
				TsEnd:      tsEnd.Format(time.RFC3339),
				Resolution: p.Resolution,
				Price:      strconv.FormatFloat(p.Price, 'f', -1, 64),
				PriceVAT:   strconv.FormatFloat(convert.RoundFloat64(p.Price*(1+l.VAT()), 4), 'f', -1, 64),
			})
		}

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Write([]byte(xml.Header))
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(f); err != nil {
			logger.Error("encoding rss", slog.Any("error", err))
		}
	}
}
