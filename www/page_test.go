package www

import (
	"strings"
	"testing"
	"time"

	"github.com/icodeforyou/nordpool-go/config"
	"github.com/icodeforyou/nordpool-go/locale"
	"github.com/icodeforyou/nordpool-go/prices"
	"github.com/icodeforyou/nordpool-go/types"
)

func TestRowCells(t *testing.T) {
	loc := riga(t)
	day := time.Date(2025, 10, 4, 0, 0, 0, 0, loc)
	values := []float64{0.1, 0.1, 0.2}
	records := quarters("LV", day, len(values), func(i int) float64 { return values[i] })
	grid := prices.ToGrid(records, loc, false, 1)
	header := dayHeader{Date: "2025-10-04", Min: 0.1, Max: 0.2}

	cells := rowCells(grid, header, 0, 4, 0)

	want := []struct {
		present bool
		quarter int
		colspan int
		start   string
		end     string
	}{
		{true, 0, 2, "2025-10-04 00:00", "2025-10-04 00:30"},
		{true, 2, 1, "2025-10-04 00:30", "2025-10-04 00:45"},
		{false, 3, 1, "2025-10-04 00:45", "2025-10-04 01:00"},
	}
	if len(cells) != len(want) {
		t.Fatalf("expected %d cells, got %d", len(want), len(cells))
	}
	for i, w := range want {
		c := cells[i]
		if c.Present != w.present || c.Quarter != w.quarter || c.Colspan != w.colspan || c.Start != w.start || c.End != w.end {
			t.Errorf("cell %d expected %+v, got %+v", i, w, c)
		}
	}
	if cells[0].Color != "rgb(0,136,0)" || cells[1].Color != "rgb(170,0,0)" || cells[2].Color != "" {
		t.Errorf("unexpected colours %q %q %q", cells[0].Color, cells[1].Color, cells[2].Color)
	}

	thresholdCells := rowCells(grid, header, 0, 4, 15)
	if thresholdCells[0].Color != "rgb(0,136,0)" || thresholdCells[1].Color != "rgb(170,0,0)" {
		t.Errorf("unexpected threshold colours %q %q", thresholdCells[0].Color, thresholdCells[1].Color)
	}
}

func TestRowCellsMissingDay(t *testing.T) {
	cells := rowCells(prices.Grid{}, dayHeader{Date: "2025-10-05"}, 23, 1, 0)
	if len(cells) != 1 || cells[0].Present {
		t.Fatalf("expected a single empty cell, got %+v", cells)
	}
	if cells[0].End != "2025-10-05 24:00" {
		t.Errorf("end expected 24:00, got %s", cells[0].End)
	}
}

func TestVariantQuery(t *testing.T) {
	tests := []struct {
		vat        bool
		resolution int
		want       string
	}{
		{false, 15, ""},
		{true, 15, "?vat"},
		{false, 60, "?res=60"},
		{true, 60, "?vat&res=60"},
	}
	for _, tt := range tests {
		if got := variantQuery(tt.vat, tt.resolution); got != tt.want {
			t.Errorf("variantQuery(%v, %d) expected %q, got %q", tt.vat, tt.resolution, tt.want, got)
		}
	}
}

func TestNewIndexPage(t *testing.T) {
	tr, err := locale.LoadTranslations("")
	if err != nil {
		t.Fatalf("failed to load translations: %v", err)
	}
	lt := locale.New(config.DefaultCountries[1], tr)
	now := time.Date(2025, 10, 4, 12, 0, 0, 0, lt.Timezone())
	req := pageRequest{locale: lt, now: now, resolution: 15, vat: true}

	days := prices.Days{
		Grid:       prices.ToGrid([]types.Price{}, lt.Timezone(), false, 1),
		Stats:      prices.NewStatistics(prices.Grid{}, now, 15),
		Resolution: 15,
	}
	var countries []*locale.Locale
	for _, c := range config.DefaultCountries {
		countries = append(countries, locale.New(c, tr))
	}

	page := newIndexPage(req, countries, days, 35)

	if len(page.Rows) != 24 || page.Rows[23].Label != "23-00" {
		t.Errorf("expected 24 rows ending with 23-00")
	}
	if page.VATToggleHref != "/lt/" || page.ResToggleHref != "/lt/?vat&res=60" {
		t.Errorf("unexpected toggles %s %s", page.VATToggleHref, page.ResToggleHref)
	}
	if page.VATPercent != "21" {
		t.Errorf("vat percent expected 21, got %s", page.VATPercent)
	}
	if len(page.Countries) != 3 || page.Countries[0].Href != "/" || page.Countries[1].Href != "/lt/" {
		t.Errorf("unexpected country links %+v", page.Countries)
	}
	if len(page.Thresholds) != 14 || !page.Thresholds[7].Selected || page.Thresholds[7].Label != "0.35+€" {
		t.Errorf("expected 0.35 to be the selected threshold, got %+v", page.Thresholds[7])
	}
	if strings.Join(page.Minutes, " ") != ":00 :15 :30 :45" {
		t.Errorf("unexpected minutes %v", page.Minutes)
	}
	if page.Today.Average.IsValid() {
		t.Errorf("expected no average without data")
	}

	disclaimer := string(page.Disclaimer)
	for _, link := range []string{`href="/nordpool-lt.csv"`, `href="/nordpool-lt-1h-excel.csv"`, `href="/lt?rss"`} {
		if !strings.Contains(disclaimer, link) {
			t.Errorf("disclaimer expected to contain %s", link)
		}
	}
}
