package www

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type manifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

type manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	StartUrl        string         `json:"start_url"`
	Display         string         `json:"display"`
	Lang            string         `json:"lang"`
	BackgroundColor string         `json:"background_color"`
	ThemeColor      string         `json:"theme_color"`
	Icons           []manifestIcon `json:"icons"`
}

func NewManifestHandler(logger *slog.Logger, site *site) http.HandlerFunc {
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

		m := manifest{
			Name:            l.Msg("app_name"),
			ShortName:       l.Msg("app_short_name"),
			StartUrl:        l.Route("/") + req.query(),
			Display:         "standalone",
			Lang:            l.Lang(),
			BackgroundColor: "#ffffff",
			ThemeColor:      "#003352",
			Icons: []manifestIcon{
				{Src: "/static/favicon-light.svg", Sizes: "any", Type: "image/svg+xml"},
			},
		}

		w.Header().Set("Content-Type", "application/manifest+json")
		if err := json.NewEncoder(w).Encode(m); err != nil {
			logger.Error("encoding manifest", slog.Any("error", err))
		}
	}
}
