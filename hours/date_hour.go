package hours

import (
	"fmt"
	"sync"
	"time"
)

const (
	dateLayout = "2006-01-02"
	TimeLayout = "2006-01-02 15:04:05"
)

var locations sync.Map

// Location loads a timezone once and keeps it for the lifetime of the process.
func Location(name string) (*time.Location, error) {
	if loc, ok := locations.Load(name); ok {
		return loc.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", name, err)
	}
	locations.Store(name, loc)
	return loc, nil
}

// Slot is a wall-clock quarter of an hour in some timezone.
type Slot struct {
	Date    string
	Hour    uint8
	Quarter uint8
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %02d:%02d", s.Date, s.Hour, int(s.Quarter)*15)
}

func (s Slot) IsZero() bool {
	return s.Date == "" && s.Hour == 0 && s.Quarter == 0
}

func FromTime(t time.Time, loc *time.Location) Slot {
	if t.IsZero() {
		return Slot{}
	}
	t = t.In(loc)
	return Slot{
		Date:    t.Format(dateLayout),
		Hour:    uint8(t.Hour()),
		Quarter: uint8(t.Minute() / 15),
	}
}

func Date(t time.Time) string {
	return t.Format(dateLayout)
}

// StartOfDay returns midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextDay returns midnight of the following calendar date, which is not
// always 24 hours away.
func NextDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

func QuartersPerHour(resolution int) int {
	if resolution == 60 {
		return 1
	}
	return 4
}

// ExpectedSlots is the number of values in a complete day.
func ExpectedSlots(resolution int) int {
	return 24 * QuartersPerHour(resolution)
}

func Label(hour, quarter int) string {
	return fmt.Sprintf("%02d:%02d", hour, quarter*15)
}

func Labels(resolution int) []string {
	qph := QuartersPerHour(resolution)
	labels := make([]string, 0, 24*qph)
	for h := 0; h < 24; h++ {
		for q := 0; q < qph; q++ {
			labels = append(labels, Label(h, q))
		}
	}
	return labels
}

// ParseInLocation parses "2006-01-02 15:04:05" as wall clock time in loc.
func ParseInLocation(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}
