package locale

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/icodeforyou/nordpool-go/config"
	"github.com/icodeforyou/nordpool-go/hours"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Translations maps a message key to its text per country code.
type Translations map[string]map[string]string

//go:embed translations.yaml
var defaultTranslations []byte

// LoadTranslations returns the embedded table, with keys from the optional
// file at path replacing the embedded ones.
func LoadTranslations(path string) (Translations, error) {
	var tr Translations
	if err := yaml.Unmarshal(defaultTranslations, &tr); err != nil {
		return nil, fmt.Errorf("parsing embedded translations: %w", err)
	}
	if path == "" {
		return tr, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading translations file: %w", err)
	}
	var override Translations
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parsing translations file %s: %w", path, err)
	}
	for key, texts := range override {
		if tr[key] == nil {
			tr[key] = map[string]string{}
		}
		maps.Copy(tr[key], texts)
	}
	return tr, nil
}

var monthNames = map[string][12]string{
	"LV": {"janv.", "febr.", "marts", "apr.", "maijs", "jūn.", "jūl.", "aug.", "sept.", "okt.", "nov.", "dec."},
	"LT": {"saus.", "vas.", "koht.", "bal.", "geg.", "birž.", "liep.", "rugp.", "rugs.", "spal.", "lapkr.", "gruod."},
	"EE": {"jaan", "veebr", "märts", "apr", "mai", "juuni", "juuli", "aug", "sept", "okt", "nov", "dets"},
}

const (
	ShortDate       = "d. MMM"
	defaultDateTime = "02.01.2006 15:04"
)

type Locale struct {
	country config.Country
	tr      Translations
	tag     language.Tag
	printer *message.Printer
	loc     *time.Location
}

func New(country config.Country, tr Translations) *Locale {
	tag, err := language.Parse(strings.ReplaceAll(country.Locale, "_", "-"))
	if err != nil {
		tag = language.Latvian
	}
	loc, err := hours.Location(country.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Locale{
		country: country,
		tr:      tr,
		tag:     tag,
		printer: message.NewPrinter(tag),
		loc:     loc,
	}
}

func (l *Locale) Code() string {
	return l.country.Code
}

func (l *Locale) CodeLC() string {
	return l.country.CodeLC
}

func (l *Locale) Country() config.Country {
	return l.country
}

// Lang is the BCP 47 tag for the html lang attribute.
func (l *Locale) Lang() string {
	base, _ := l.tag.Base()
	return base.String()
}

func (l *Locale) Timezone() *time.Location {
	return l.loc
}

func (l *Locale) VAT() float64 {
	return l.country.VAT
}

// Get returns a country setting by its config key, or "" for unknown keys.
func (l *Locale) Get(key string) string {
	switch key {
	case "code":
		return l.country.Code
	case "code_lc":
		return l.country.CodeLC
	case "name":
		return l.country.Name
	case "flag":
		return l.country.Flag
	case "locale":
		return l.country.Locale
	case "timezone":
		return l.country.Timezone
	case "vat":
		return strconv.FormatFloat(l.country.VAT, 'f', -1, 64)
	}
	return ""
}

// Msg translates key, falling back to the key itself.
func (l *Locale) Msg(key string) string {
	if texts, ok := l.tr[key]; ok {
		if text, ok := texts[l.country.Code]; ok {
			return text
		}
	}
	return key
}

func (l *Locale) Msgf(key string, args ...any) string {
	return l.printer.Sprintf(l.Msg(key), args...)
}

// Route prefixes path with the lowercase country code, except for LV which
// lives at the root.
func (l *Locale) Route(path string) string {
	path = strings.TrimLeft(path, "/")
	if l.country.Code == "LV" {
		return "/" + path
	}
	return "/" + l.country.CodeLC + "/" + path
}

// FormatDate renders t in the country timezone. Only ShortDate is localised,
// any other layout gives "02.01.2006 15:04".
func (l *Locale) FormatDate(t time.Time, layout string) string {
	t = t.In(l.loc)
	if layout == ShortDate {
		months, ok := monthNames[l.country.Code]
		if !ok {
			months = monthNames["LV"]
		}
		return fmt.Sprintf("%d. %s", t.Day(), months[t.Month()-1])
	}
	return t.Format(defaultDateTime)
}
