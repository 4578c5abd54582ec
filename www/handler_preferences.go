package www

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/sessions"
)

const (
	sessionName  = "nordpool"
	thresholdKey = "threshold"
)

// Preferences keeps visitor settings in a signed cookie.
type Preferences struct {
	store *sessions.CookieStore
}

func NewPreferences(key string) *Preferences {
	store := sessions.NewCookieStore([]byte(key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Preferences{store: store}
}

// Threshold is the heatmap threshold in cents, 0 for the automatic scale.
func (p *Preferences) Threshold(r *http.Request) int {
	session, err := p.store.Get(r, sessionName)
	if err != nil {
		return 0
	}
	if v, ok := session.Values[thresholdKey].(int); ok {
		return v
	}
	return 0
}

func (p *Preferences) SetThreshold(w http.ResponseWriter, r *http.Request, threshold int) error {
	// A cookie signed with another key yields a fresh session and an error,
	// which is fine to overwrite.
	session, _ := p.store.Get(r, sessionName)
	session.Values[thresholdKey] = threshold
	return session.Save(r, w)
}

type preferencesResponse struct {
	Threshold int `json:"threshold"`
}

func NewPreferencesHandler(logger *slog.Logger, prefs *Preferences) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !methodAllowed(w, r, http.MethodGet, http.MethodPost) {
			return
		}

		current := prefs.Threshold(r)

		if r.Method == http.MethodPost {
			threshold, err := strconv.Atoi(r.FormValue("threshold"))
			if err == nil {
				err = validate.Var(threshold, "gte=0,lte=65")
			}
			if err != nil {
				http.Error(w, "threshold must be a number between 0 and 65", http.StatusBadRequest)
				return
			}

			if err := prefs.SetThreshold(w, r, threshold); err != nil {
				logger.Error("saving preferences", slog.Any("error", err))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if back := r.FormValue("back"); isLocalPath(back) {
				http.Redirect(w, r, back, http.StatusSeeOther)
				return
			}
			current = threshold
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(preferencesResponse{Threshold: current}); err != nil {
			logger.Error("encoding preferences", slog.Any("error", err))
		}
	}
}

// isLocalPath accepts "/..." but not "//host" or "/\host".
func isLocalPath(s string) bool {
	return strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") && !strings.HasPrefix(s, "/\\")
}
