package www

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/icodeforyou/nordpool-go/config"
	"github.com/icodeforyou/nordpool-go/convert"
	"github.com/icodeforyou/nordpool-go/hours"
	"github.com/icodeforyou/nordpool-go/locale"
)

var errBadRequest = errors.New("bad request")

var validate = validator.New()

type queryParams struct {
	Now string `validate:"omitempty,datetime=2006-01-02 15:04:05"`
}

// site holds what every country page shares.
type site struct {
	config *config.AppConfig
	tr     locale.Translations
	guiLoc *time.Location
	now    func() time.Time
}

func newSite(cnfg *config.AppConfig, tr locale.Translations, guiLoc *time.Location) *site {
	return &site{
		config: cnfg,
		tr:     tr,
		guiLoc: guiLoc,
		now:    time.Now,
	}
}

func (s *site) locale(code string) *locale.Locale {
	country, _ := s.config.Country(code)
	return locale.New(country, s.tr)
}

func (s *site) locales() []*locale.Locale {
	countries := s.config.GetCountries()
	result := make([]*locale.Locale, 0, len(countries))
	for _, c := range countries {
		result = append(result, locale.New(c, s.tr))
	}
	return result
}

type pageRequest struct {
	locale     *locale.Locale
	now        time.Time // in the country timezone
	resolution int
	vat        bool
}

func (p pageRequest) multiplier() float64 {
	return convert.VatMultiplier(p.vat, p.locale.VAT())
}

// query is the part of the query string that selects a page variant.
func (p pageRequest) query() string {
	return variantQuery(p.vat, p.resolution)
}

func variantQuery(vat bool, resolution int) string {
	switch {
	case vat && resolution == 60:
		return "?vat&res=60"
	case vat:
		return "?vat"
	case resolution == 60:
		return "?res=60"
	}
	return ""
}

// parse reads the country from the path and vat, res and now from the query.
// An unknown country falls back to the default one.
func (s *site) parse(r *http.Request) (pageRequest, error) {
	q := r.URL.Query()
	params := queryParams{Now: q.Get("now")}
	if err := validate.Struct(params); err != nil {
		return pageRequest{}, fmt.Errorf("%w: now must look like 2006-01-02 15:04:05", errBadRequest)
	}

	l := s.locale(r.PathValue("country"))

	now := s.now()
	if params.Now != "" {
		t, err := hours.ParseInLocation(params.Now, s.guiLoc)
		if err != nil {
			return pageRequest{}, fmt.Errorf("%w: %w", errBadRequest, err)
		}
		now = t
	}

	resolution := 15
	if q.Get("res") == "60" || r.PathValue("res") == "60" {
		resolution = 60
	}

	return pageRequest{
		locale:     l,
		now:        now.In(l.Timezone()),
		resolution: resolution,
		vat:        q.Has("vat"),
	}, nil
}

// httpError answers 400 for request errors and 500 for everything else.
func httpError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBadRequest) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
