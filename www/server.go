package www

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/icodeforyou/nordpool-go/cache"
	"github.com/icodeforyou/nordpool-go/config"
	"github.com/icodeforyou/nordpool-go/database"
	"github.com/icodeforyou/nordpool-go/hours"
	"github.com/icodeforyou/nordpool-go/locale"
	"github.com/icodeforyou/nordpool-go/types"
	"github.com/icodeforyou/nordpool-go/types/maybe"
)

// Store is the part of the database the web front-end reads from.
type Store interface {
	types.PriceRepository
	LastUpdate(ctx context.Context) (maybe.Maybe[time.Time], error)
	Ping(ctx context.Context) error
	GetLogEntries(ctx context.Context, minLvl slog.Level, page, pageSize int) ([]database.LogEntryRow, error)
}

type Server struct {
	logger  *slog.Logger
	config  *config.AppConfig
	site    *site
	store   Store
	pages   *cache.Generational
	hub     *Hub
	tm      *TemplateManager
	prefs   *Preferences
	handler http.Handler

	index    http.HandlerFunc
	rss      http.HandlerFunc
	manifest http.HandlerFunc
	chart    http.HandlerFunc
	csv      http.HandlerFunc
}

//go:embed static
var embeddedStaticDir embed.FS

var csvFileRe = regexp.MustCompile(`^nordpool-([a-z]{2})(-1h)?(-excel)?\.csv$`)

func NewServer(cnfg *config.AppConfig, store Store, tr locale.Translations, pages *cache.Generational, hub *Hub) (*Server, error) {
	logger := slog.Default().With(slog.String("module", "www"))

	tm, err := NewTemplateManager(logger, cnfg.Api.WwwDir)
	if err != nil {
		return nil, fmt.Errorf("template manager initialization error: %w", err)
	}

	guiLoc, err := hours.Location(cnfg.Gui.GetTimezone())
	if err != nil {
		return nil, err
	}

	s := &Server{
		logger: logger,
		config: cnfg,
		site:   newSite(cnfg, tr, guiLoc),
		store:  store,
		pages:  pages,
		hub:    hub,
		tm:     tm,
		prefs:  NewPreferences(cnfg.Api.GetSessionKey()),
	}

	handlerLogger := func(name string) *slog.Logger {
		return logger.With(slog.String("handler", name))
	}

	s.index = NewIndexHandler(handlerLogger("index"), s.site, store, tm, pages, s.prefs)
	s.rss = NewRssHandler(handlerLogger("rss"), s.site, store)
	s.manifest = NewManifestHandler(handlerLogger("manifest"), s.site)
	s.chart = NewChartHandler(handlerLogger("chart"), s.site, store)
	s.csv = NewCsvHandler(handlerLogger("csv"), s.site, store)

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static", staticFilesHandler(cnfg.Api.WwwDir)))
	mux.Handle("/favicon.ico", http.RedirectHandler("/static/favicon-light.svg", http.StatusMovedPermanently))
	mux.Handle("/healthz", NewHealthHandler(handlerLogger("healthz"), store))
	mux.Handle("/log", NewLogHandler(handlerLogger("log"), store, tm))
	mux.Handle("/preferences", NewPreferencesHandler(handlerLogger("preferences"), s.prefs))
	mux.Handle("/rss", s.rss)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		client, err := NewClient(s.hub, w, r, r.Header.Get("User-Agent"))
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		if !s.hub.Add(client) {
			client.conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	})
	mux.HandleFunc("/", s.dispatch)

	s.handler = requestLogger(logger, mux)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// dispatch routes the country dependent paths:
//
//	/                          index of the default country
//	/{cc}                      index, or the feed with ?rss
//	/{cc}/rss|manifest|chart
//	/nordpool-{cc}[-1h][-excel].csv
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(segments) == 1 && segments[0] == "":
		s.index(w, r)

	case len(segments) == 1 && csvFileRe.MatchString(segments[0]):
		m := csvFileRe.FindStringSubmatch(segments[0])
		r.SetPathValue("country", m[1])
		if m[2] != "" {
			r.SetPathValue("res", "60")
		}
		if m[3] != "" {
			r.SetPathValue("excel", "1")
		}
		s.csv(w, r)

	case len(segments) == 1 && len(segments[0]) == 2:
		r.SetPathValue("country", segments[0])
		if r.URL.Query().Has("rss") {
			s.rss(w, r)
			return
		}
		s.index(w, r)

	case len(segments) == 2 && len(segments[0]) == 2:
		r.SetPathValue("country", segments[0])
		switch segments[1] {
		case "rss":
			s.rss(w, r)
		case "manifest":
			s.manifest(w, r)
		case "chart":
			s.chart(w, r)
		default:
			http.NotFound(w, r)
		}

	default:
		http.NotFound(w, r)
	}
}

func (s *Server) Run(ctx context.Context) {
	addr := fmt.Sprintf("%s:%d", s.config.Api.Address, s.config.Api.Port)
	s.logger.Info("starting server...", slog.String("addr", addr))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.hub.Run(ctx)

	srvErrors := make(chan error, 1)
	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", slog.Any("error", err))
		}

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", slog.Any("error", err))
		}
	}

	if err := s.tm.Close(); err != nil {
		s.logger.Warn("closing template watcher", slog.Any("error", err))
	}
}

func staticFilesHandler(extDir *string) http.Handler {
	if extDir != nil && *extDir != "" {
		staticDir := path.Join(*extDir, "static")
		if _, err := os.Stat(staticDir); err == nil {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	fsys, err := fs.Sub(embeddedStaticDir, "static")
	if err != nil {
		log.Panic(err)
	}
	return http.FileServer(http.FS(fsys))
}

func methodAllowed(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}
