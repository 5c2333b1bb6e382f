package model

import (
	"fmt"
	"strings"
	"time"
)

// MonthLayout is the accepted month format.
const MonthLayout = "2006-01"

// DateLayout is the wire format for dates.
const DateLayout = "2006-01-02"

// MonthWindow is a calendar month as a half-open date range [Start, End).
type MonthWindow struct {
	Start time.Time
	End   time.Time
}

// ParseMonth parses YYYY-MM into a window ending on the first day of the next month.
func ParseMonth(raw string) (MonthWindow, error) {
	raw = strings.TrimSpace(raw)
	start, err := time.Parse(MonthLayout, raw)
	if err != nil || len(raw) != len(MonthLayout) {
		return MonthWindow{}, fmt.Errorf("month must be in YYYY-MM format: %q", raw)
	}
	return MonthWindowFor(start.Year(), start.Month()), nil
}

// MonthWindowFor builds the window for the given calendar month.
func MonthWindowFor(year int, month time.Month) MonthWindow {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return MonthWindow{
		Start: start,
		End:   start.AddDate(0, 1, 0),
	}
}

// Contains reports whether t falls inside the window, compared by calendar date.
func (w MonthWindow) Contains(t time.Time) bool {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(w.Start) && d.Before(w.End)
}

// Label renders the window as YYYY-MM.
func (w MonthWindow) Label() string {
	return w.Start.Format(MonthLayout)
}

func (w MonthWindow) String() string {
	return fmt.Sprintf("%s..%s exclusive", w.Start.Format(DateLayout), w.End.Format(DateLayout))
}
