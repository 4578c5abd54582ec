package database

import (
	"context"
	"testing"
	"time"
)

type testRow struct {
	country    string
	start      string
	end        string
	value      float64
	resolution int
	createdAt  string
}

func insertPrices(t *testing.T, db *Database, rows ...testRow) {
	t.Helper()
	for _, r := range rows {
		createdAt := r.createdAt
		if createdAt == "" {
			createdAt = "2025-10-03 12:00:00"
		}
		_, err := db.write.Exec(`
			INSERT INTO price_indices (country, ts_start, ts_end, value, resolution_minutes, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			r.country, r.start, r.end, r.value, r.resolution, createdAt)
		if err != nil {
			t.Fatalf("failed to insert price row: %v", err)
		}
	}
}

func utc(s string) time.Time {
	t, err := time.Parse(sqlTimeLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestGetPrices(t *testing.T) {
	db := newTestDatabase(t)
	insertPrices(t, db,
		testRow{"LV", "2025-10-04 08:00:00", "2025-10-04 08:15:00", 100, 15, ""},
		testRow{"LV", "2025-10-04 08:15:00", "2025-10-04 08:30:00", 120, 15, ""},
		testRow{"LV", "2025-10-04 09:00:00", "2025-10-04 09:15:00", 80, 15, ""},
		testRow{"LV", "2025-10-04 10:00:00", "2025-10-04 10:15:00", 90, 15, ""},
		testRow{"LT", "2025-10-04 08:00:00", "2025-10-04 08:15:00", 55, 15, ""},
		testRow{"LV", "2025-10-04 08:00:00", "2025-10-04 09:00:00", 110, 60, ""},
	)

	riga, err := time.LoadLocation("Europe/Riga")
	if err != nil {
		t.Fatalf("failed to load Europe/Riga: %v", err)
	}

	tests := []struct {
		name       string
		start      time.Time
		end        time.Time
		country    string
		resolution int
		want       []float64
	}{
		{"utc range", utc("2025-10-04 08:00:00"), utc("2025-10-04 10:00:00"), "LV", 15, []float64{0.1, 0.12, 0.08}},
		{"exclusive end", utc("2025-10-04 08:00:00"), utc("2025-10-04 09:00:00"), "LV", 15, []float64{0.1, 0.12}},
		{"one second before end", utc("2025-10-04 08:00:00"), utc("2025-10-04 08:59:59"), "LV", 15, []float64{0.1, 0.12}},
		{"inclusive start", utc("2025-10-04 09:00:00"), utc("2025-10-04 09:00:01"), "LV", 15, []float64{0.08}},
		{"other country", utc("2025-10-04 00:00:00"), utc("2025-10-05 00:00:00"), "LT", 15, []float64{0.055}},
		{"hourly resolution", utc("2025-10-04 00:00:00"), utc("2025-10-05 00:00:00"), "LV", 60, []float64{0.11}},
		{"default resolution", utc("2025-10-04 10:00:00"), utc("2025-10-04 11:00:00"), "LV", 0, []float64{0.09}},
		{"local bounds", time.Date(2025, 10, 4, 11, 0, 0, 0, riga), time.Date(2025, 10, 4, 13, 0, 0, 0, riga), "LV", 15, []float64{0.1, 0.12, 0.08}},
		{"unknown country", utc("2025-10-04 00:00:00"), utc("2025-10-05 00:00:00"), "EE", 15, nil},
		{"empty range", utc("2025-10-05 00:00:00"), utc("2025-10-06 00:00:00"), "LV", 15, nil},
		{"injection attempt", utc("2025-10-04 00:00:00"), utc("2025-10-05 00:00:00"), "LV' OR '1'='1", 15, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.GetPrices(context.Background(), tt.start, tt.end, tt.country, tt.resolution)
			if err != nil {
				t.Fatalf("GetPrices failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d prices, got %d", len(tt.want), len(got))
			}
			for i, p := range got {
				if p.Price != tt.want[i] {
					t.Errorf("price %d expected %v, got %v", i, tt.want[i], p.Price)
				}
				if p.Start.Location() != time.UTC {
					t.Errorf("price %d expected UTC start, got %v", i, p.Start.Location())
				}
				if i > 0 && !got[i-1].Start.Before(p.Start) {
					t.Errorf("prices not ordered by start at %d", i)
				}
			}
		})
	}
}

func TestGetPricesStorageFailure(t *testing.T) {
	db := newTestDatabase(t)
	insertPrices(t, db,
		testRow{"LV", "2025-10-04 08:00:00", "2025-10-04 08:15:00", 100, 15, ""},
	)
	start, end := utc("2025-10-04 00:00:00"), utc("2025-10-05 00:00:00")

	got, err := db.GetPrices(context.Background(), start, end, "EE", 15)
	if err != nil || len(got) != 0 {
		t.Fatalf("missing data expected empty result without error, got %v (%v)", got, err)
	}

	db.Close()

	got, err = db.GetPrices(context.Background(), start, end, "LV", 15)
	if err == nil {
		t.Fatalf("closed database expected an error, got %v", got)
	}
	if got != nil {
		t.Errorf("closed database expected no prices, got %v", got)
	}
}

func TestGetPricesMixedFormats(t *testing.T) {
	db := newTestDatabase(t)
	insertPrices(t, db,
		testRow{"LV", "2025-10-04 08:00:00+00:00", "2025-10-04 08:15:00+00:00", 10, 15, ""},
		testRow{"LV", "2025-10-04T08:15:00Z", "2025-10-04T08:30:00Z", 20, 15, ""},
		testRow{"LV", "2025-10-04 08:30:00", "2025-10-04 08:45:00", 30, 15, ""},
	)

	got, err := db.GetPrices(context.Background(), utc("2025-10-04 08:00:00"), utc("2025-10-04 09:00:00"), "LV", 15)
	if err != nil {
		t.Fatalf("GetPrices failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 prices, got %d", len(got))
	}

	wantStarts := []string{"2025-10-04 08:00:00", "2025-10-04 08:15:00", "2025-10-04 08:30:00"}
	for i, p := range got {
		if !p.Start.Equal(utc(wantStarts[i])) {
			t.Errorf("start %d expected %s, got %v", i, wantStarts[i], p.Start)
		}
		if p.End.Sub(p.Start) != 15*time.Minute {
			t.Errorf("row %d expected 15 minute interval, got %v", i, p.End.Sub(p.Start))
		}
		if p.Country != "LV" || p.Resolution != 15 {
			t.Errorf("row %d unexpected country/resolution %s/%d", i, p.Country, p.Resolution)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2025-10-04 08:00:00", "2025-10-04 08:00:00", false},
		{"2025-10-04 08:00:00+00:00", "2025-10-04 08:00:00", false},
		{"2025-10-04 11:00:00+03:00", "2025-10-04 08:00:00", false},
		{"2025-10-04T08:00:00Z", "2025-10-04 08:00:00", false},
		{"2025-10-04T08:00:00", "2025-10-04 08:00:00", false},
		{"2025-10-04 08:00", "2025-10-04 08:00:00", false},
		{"yesterday", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTimestamp(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTimestamp failed: %v", err)
			}
			if got.Format(sqlTimeLayout) != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.Format(sqlTimeLayout))
			}
		})
	}
}

func TestLastUpdate(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	last, err := db.LastUpdate(ctx)
	if err != nil {
		t.Fatalf("LastUpdate failed: %v", err)
	}
	if last.IsValid() {
		t.Errorf("expected no last update on empty table, got %v", last.Value())
	}

	insertPrices(t, db,
		testRow{"LV", "2025-10-04 08:00:00", "2025-10-04 08:15:00", 10, 15, "2025-10-02 12:00:00"},
		testRow{"LV", "2025-10-04 08:15:00", "2025-10-04 08:30:00", 20, 15, "2025-10-03 12:00:00"},
	)

	last, err = db.LastUpdate(ctx)
	if err != nil {
		t.Fatalf("LastUpdate failed: %v", err)
	}
	if !last.IsValid() || !last.Value().Equal(utc("2025-10-03 12:00:00")) {
		t.Errorf("expected last update 2025-10-03 12:00:00, got %v", last.Value())
	}
}

func TestDataFingerprint(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	empty, err := db.DataFingerprint(ctx)
	if err != nil {
		t.Fatalf("DataFingerprint failed: %v", err)
	}

	insertPrices(t, db, testRow{"LV", "2025-10-04 08:00:00", "2025-10-04 08:15:00", 10, 15, ""})
	first, err := db.DataFingerprint(ctx)
	if err != nil {
		t.Fatalf("DataFingerprint failed: %v", err)
	}
	if first == empty {
		t.Errorf("fingerprint did not change after insert: %s", first)
	}

	again, _ := db.DataFingerprint(ctx)
	if again != first {
		t.Errorf("fingerprint changed without writes: %s != %s", again, first)
	}

	if _, err := db.write.Exec("UPDATE price_indices SET value = 11"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	updated, _ := db.DataFingerprint(ctx)
	if updated == first {
		t.Errorf("fingerprint did not change after update: %s", updated)
	}
}
