package www

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/icodeforyou/nordpool-go/hours"
	"github.com/icodeforyou/nordpool-go/locale"
	"github.com/icodeforyou/nordpool-go/prices"
	"github.com/icodeforyou/nordpool-go/types/maybe"
)

type priceCell struct {
	Present bool
	Value   float64
	Quarter int
	Colspan int
	Start   string
	End     string
	Color   template.CSS
}

type priceRow struct {
	Hour     int
	Label    string
	Today    []priceCell
	Tomorrow []priceCell
}

type dayHeader struct {
	Date    string
	Label   string
	Min     float64
	Max     float64
	Average maybe.Maybe[float64]
}

type countryLink struct {
	Href   string
	CodeLC string
	Name   string
	Flag   string
}

type thresholdOption struct {
	Value    int
	Label    string
	Selected bool
}

type indexPage struct {
	L               *locale.Locale
	Resolution      int
	QuartersPerHour int
	Minutes         []string
	VAT             bool
	VATPercent      string
	VATToggleHref   string
	ResToggleHref   string
	ManifestHref    string
	RssHref         string
	ChartHref       string
	Countries       []countryLink
	Thresholds      []thresholdOption
	Threshold       int
	Today           dayHeader
	Tomorrow        dayHeader
	Rows            []priceRow
	Disclaimer      template.HTML
}

func newIndexPage(req pageRequest, countries []*locale.Locale, days prices.Days, threshold int) indexPage {
	l := req.locale
	qph := hours.QuartersPerHour(req.resolution)
	otherRes := 60
	if req.resolution == 60 {
		otherRes = 15
	}

	page := indexPage{
		L:               l,
		Resolution:      req.resolution,
		QuartersPerHour: qph,
		VAT:             req.vat,
		VATPercent:      fmt.Sprintf("%.0f", l.VAT()*100),
		VATToggleHref:   l.Route("/") + variantQuery(!req.vat, req.resolution),
		ResToggleHref:   l.Route("/") + variantQuery(req.vat, otherRes),
		ManifestHref:    "/" + l.CodeLC() + "/manifest" + req.query(),
		RssHref:         "/" + l.CodeLC() + "?rss",
		ChartHref:       "/" + l.CodeLC() + "/chart" + req.query(),
		Threshold:       threshold,
		Today:           newDayHeader(l, days.Stats.Today, req.now),
		Tomorrow:        newDayHeader(l, days.Stats.Tomorrow, hours.NextDay(req.now)),
		Disclaimer:      disclaimer(l),
	}

	for q := 0; q < qph; q++ {
		page.Minutes = append(page.Minutes, fmt.Sprintf(":%02d", q*60/qph))
	}

	for _, c := range countries {
		page.Countries = append(page.Countries, countryLink{
			Href:   c.Route("/"),
			CodeLC: c.CodeLC(),
			Name:   c.Get("name"),
			Flag:   c.Get("flag"),
		})
	}

	page.Thresholds = append(page.Thresholds, thresholdOption{Value: 0, Label: l.Msg("automātiski"), Selected: threshold == 0})
	for t := 5; t <= 65; t += 5 {
		page.Thresholds = append(page.Thresholds, thresholdOption{
			Value:    t,
			Label:    fmt.Sprintf("%.2f+€", float64(t)/100),
			Selected: t == threshold,
		})
	}

	for h := 0; h < 24; h++ {
		page.Rows = append(page.Rows, priceRow{
			Hour:     h,
			Label:    fmt.Sprintf("%02d-%02d", h, (h+1)%24),
			Today:    rowCells(days.Grid, page.Today, h, qph, threshold),
			Tomorrow: rowCells(days.Grid, page.Tomorrow, h, qph, threshold),
		})
	}

	return page
}

func newDayHeader(l *locale.Locale, stats prices.DayStatistics, day time.Time) dayHeader {
	return dayHeader{
		Date:    stats.Date,
		Label:   l.FormatDate(day, locale.ShortDate),
		Min:     stats.Min,
		Max:     stats.Max,
		Average: stats.Average,
	}
}

// rowCells returns the cells of one hour. Consecutive slots with the same
// price are merged into one cell spanning them.
func rowCells(grid prices.Grid, day dayHeader, hour, qph, threshold int) []priceCell {
	step := 60 / qph
	var cells []priceCell

	for q := 0; q < qph; {
		value, ok := grid.Value(day.Date, hour, q)
		next := q + 1
		for ok && next < qph {
			v, nextOk := grid.Value(day.Date, hour, next)
			if !nextOk || v != value {
				break
			}
			next++
		}

		cell := priceCell{
			Present: ok,
			Value:   value,
			Quarter: q,
			Colspan: next - q,
			Start:   slotTime(day.Date, hour*60+q*step),
			End:     slotTime(day.Date, hour*60+next*step),
		}
		if ok {
			if threshold > 0 {
				cell.Color = template.CSS(prices.ThresholdColor(value, float64(threshold)/100))
			} else {
				cell.Color = template.CSS(prices.Color(value, day.Min, day.Max))
			}
		}
		cells = append(cells, cell)
		q = next
	}

	return cells
}

// slotTime renders minutes after midnight of date as "YYYY-MM-DD HH:MM".
// Midnight at the end of the day is written as 24:00.
func slotTime(date string, minutes int) string {
	return fmt.Sprintf("%s %02d:%02d", date, minutes/60, minutes%60)
}

func disclaimer(l *locale.Locale) template.HTML {
	cc := l.CodeLC()
	link := func(href, text string) string {
		return `<a href="` + href + `">` + template.HTMLEscapeString(text) + `</a>`
	}
	csv := func(suffix string) string {
		return strings.Join([]string{
			link("/nordpool-"+cc+suffix+".csv", l.Msg("15min data")),
			link("/nordpool-"+cc+"-1h"+suffix+".csv", l.Msg("1h average")),
		}, ", ")
	}

	return template.HTML(l.Msgf("disclaimer",
		l.Msg("normal CSV")+" ("+csv("")+")",
		l.Msg("Excel CSV")+" ("+csv("-excel")+")",
		link("/"+cc+"?rss", "rss"),
	))
}
