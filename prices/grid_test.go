package prices

import (
	"testing"
	"time"

	"github.com/icodeforyou/nordpool-go/types"
)

func price(start time.Time, value float64, resolution int) types.Price {
	return types.Price{
		Price:      value,
		Start:      start,
		End:        start.Add(time.Duration(resolution) * time.Minute),
		Country:    "LV",
		Resolution: resolution,
	}
}

func quarters(start time.Time, values ...float64) []types.Price {
	records := make([]types.Price, len(values))
	for i, v := range values {
		records[i] = price(start.Add(time.Duration(i*15)*time.Minute), v, 15)
	}
	return records
}

func riga(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Riga")
	if err != nil {
		t.Fatalf("load Europe/Riga: %v", err)
	}
	return loc
}

func TestToGridEmpty(t *testing.T) {
	grid := ToGrid(nil, time.UTC, false, 1)
	if grid == nil {
		t.Fatal("ToGrid expected an empty grid, got nil")
	}
	if len(grid) != 0 {
		t.Errorf("ToGrid expected 0 dates, got %d", len(grid))
	}

	grid = ToGrid([]types.Price{}, time.UTC, true, 1.21)
	if len(grid) != 0 {
		t.Errorf("ToGrid hourly expected 0 dates, got %d", len(grid))
	}
}

func TestToGridQuarters(t *testing.T) {
	start := time.Date(2025, 10, 4, 10, 0, 0, 0, time.UTC)
	grid := ToGrid(quarters(start, 0.1, 0.12, 0.14, 0.16), time.UTC, false, 1)

	tests := []struct {
		quarter  int
		expected float64
	}{
		{0, 0.1}, {1, 0.12}, {2, 0.14}, {3, 0.16},
	}
	for _, tt := range tests {
		v, ok := grid.Value("2025-10-04", 10, tt.quarter)
		if !ok {
			t.Errorf("quarter %d expected a value", tt.quarter)
			continue
		}
		if v != tt.expected {
			t.Errorf("quarter %d expected %v, got %v", tt.quarter, tt.expected, v)
		}
	}
}

func TestToGridHourlyAverage(t *testing.T) {
	start := time.Date(2025, 10, 4, 10, 0, 0, 0, time.UTC)
	grid := ToGrid(quarters(start, 0.100, 0.120, 0.140, 0.160), time.UTC, true, 1)

	hour := grid["2025-10-04"][10]
	if len(hour) != 1 {
		t.Fatalf("hourly grid expected 1 entry, got %d", len(hour))
	}
	if hour[0] != 0.13 {
		t.Errorf("hourly average expected 0.13, got %v", hour[0])
	}
}

func TestToGridHourlyKeepsIncompleteHours(t *testing.T) {
	start := time.Date(2025, 10, 4, 10, 0, 0, 0, time.UTC)
	grid := ToGrid(quarters(start, 0.1, 0.2), time.UTC, true, 1)

	hour := grid["2025-10-04"][10]
	if len(hour) != 2 {
		t.Fatalf("incomplete hour expected 2 entries, got %d", len(hour))
	}
	if hour[0] != 0.1 || hour[1] != 0.2 {
		t.Errorf("incomplete hour expected untouched quarters, got %v", hour)
	}
}

func TestToGridHourlyResolution(t *testing.T) {
	start := time.Date(2025, 10, 4, 10, 0, 0, 0, time.UTC)
	records := []types.Price{
		price(start, 0.2, 60),
		price(start.Add(time.Hour), 0.3, 60),
	}
	grid := ToGrid(records, time.UTC, true, 1)

	if v, _ := grid.Value("2025-10-04", 10, 0); v != 0.2 {
		t.Errorf("10:00 expected 0.2, got %v", v)
	}
	if v, _ := grid.Value("2025-10-04", 11, 0); v != 0.3 {
		t.Errorf("11:00 expected 0.3, got %v", v)
	}
}

func TestToGridMultiplier(t *testing.T) {
	start := time.Date(2025, 10, 4, 10, 0, 0, 0, time.UTC)
	records := []types.Price{price(start, 0.100, 15), price(start.Add(15*time.Minute), 0.12345, 15)}

	plain := ToGrid(records, time.UTC, false, 1)
	withVat := ToGrid(records, time.UTC, false, 1.21)

	if v, _ := withVat.Value("2025-10-04", 10, 0); v != 0.121 {
		t.Errorf("0.100 * 1.21 expected 0.121, got %v", v)
	}
	if v, _ := plain.Value("2025-10-04", 10, 1); v != 0.1235 {
		t.Errorf("rounded price expected 0.1235, got %v", v)
	}
	if v, _ := withVat.Value("2025-10-04", 10, 1); v != 0.1494 {
		t.Errorf("0.12345 * 1.21 expected 0.1494, got %v", v)
	}
}

func TestToGridTwoDates(t *testing.T) {
	records := []types.Price{
		price(time.Date(2025, 10, 4, 10, 0, 0, 0, time.UTC), 0.1, 15),
		price(time.Date(2025, 10, 4, 11, 0, 0, 0, time.UTC), 0.1, 15),
		price(time.Date(2025, 10, 5, 10, 0, 0, 0, time.UTC), 0.2, 15),
	}
	grid := ToGrid(records, time.UTC, false, 1)

	dates := grid.Dates()
	if len(dates) != 2 || dates[0] != "2025-10-04" || dates[1] != "2025-10-05" {
		t.Fatalf("expected dates [2025-10-04 2025-10-05], got %v", dates)
	}
	if len(grid["2025-10-04"]) != 2 {
		t.Errorf("2025-10-04 expected 2 hours, got %d", len(grid["2025-10-04"]))
	}
	if _, ok := grid["2025-10-05"][10]; !ok {
		t.Error("2025-10-05 expected hour 10")
	}
}

func TestToGridTimezoneShift(t *testing.T) {
	plusOne := time.FixedZone("UTC+1", 60*60)
	plusTwo := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2025, 10, 4, 10, 0, 0, 0, plusOne)

	grid := ToGrid([]types.Price{price(start, 0.1, 15)}, plusTwo, false, 1)
	if _, ok := grid.Value("2025-10-04", 11, 0); !ok {
		t.Errorf("10:00 at UTC+1 expected at 11:00 in UTC+2, got %v", grid)
	}
}

func TestToGridMidnightMovesDate(t *testing.T) {
	start := time.Date(2025, 10, 4, 21, 45, 0, 0, time.UTC)
	grid := ToGrid([]types.Price{price(start, 0.1, 15)}, riga(t), false, 1)
	if _, ok := grid.Value("2025-10-05", 0, 3); !ok {
		t.Errorf("21:45 UTC expected at 2025-10-05 00:45 in Riga, got %v", grid)
	}
}

func TestToGridDstShortDay(t *testing.T) {
	loc := riga(t)
	// 2025-03-30 has no 03:00 in Riga
	start := time.Date(2025, 3, 30, 0, 0, 0, 0, loc)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, loc)
	var records []types.Price
	for ts := start; ts.Before(end); ts = ts.Add(15 * time.Minute) {
		records = append(records, price(ts, 0.1, 15))
	}

	grid := ToGrid(records, loc, false, 1)
	if n := len(grid["2025-03-30"]); n != 23 {
		t.Errorf("short day expected 23 hours, got %d", n)
	}
	if _, ok := grid["2025-03-30"][3]; ok {
		t.Error("short day expected no hour 3")
	}
}

func TestToGridLastWriteWins(t *testing.T) {
	start := time.Date(2025, 10, 4, 10, 0, 0, 0, time.UTC)
	records := []types.Price{price(start, 0.1, 15), price(start, 0.2, 15)}
	grid := ToGrid(records, time.UTC, false, 1)
	if v, _ := grid.Value("2025-10-04", 10, 0); v != 0.2 {
		t.Errorf("duplicate slot expected 0.2, got %v", v)
	}
}

func TestGridFlattenOrder(t *testing.T) {
	grid := Grid{
		"2025-10-04": {
			11: {0: 0.5},
			10: {3: 0.4, 0: 0.1, 2: 0.3, 1: 0.2},
		},
	}
	values := grid.Flatten("2025-10-04")
	expected := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	if len(values) != len(expected) {
		t.Fatalf("Flatten expected %d values, got %d", len(expected), len(values))
	}
	for i := range expected {
		if values[i] != expected[i] {
			t.Errorf("Flatten[%d] expected %v, got %v", i, expected[i], values[i])
		}
	}
	if missing := grid.Flatten("2025-10-05"); len(missing) != 0 {
		t.Errorf("Flatten of missing date expected no values, got %v", missing)
	}
}
