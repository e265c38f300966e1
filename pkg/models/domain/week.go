package domain

import "time"

const (
	DaysInWeek = 7
	DateLayout = "2006-01-02"
)

// WeekSelection is the active 7-day period
type WeekSelection struct {
	StartDate  time.Time
	EndDate    time.Time
	WeekNumber int
}

func NewWeekSelection(start time.Time) WeekSelection {
	start = TruncateDate(start)
	_, week := start.ISOWeek()
	return WeekSelection{
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, DaysInWeek-1),
		WeekNumber: week,
	}
}

// ParseWeekSelection builds a selection from a YYYY-MM-DD start date
func ParseWeekSelection(start string) (WeekSelection, error) {
	t, err := time.Parse(DateLayout, start)
	if err != nil {
		return WeekSelection{}, err
	}
	return NewWeekSelection(t), nil
}

func (w WeekSelection) IsZero() bool {
	return w.StartDate.IsZero()
}

// Dates returns the seven consecutive calendar dates of the week
func (w WeekSelection) Dates() []time.Time {
	dates := make([]time.Time, 0, DaysInWeek)
	for i := 0; i < DaysInWeek; i++ {
		dates = append(dates, w.StartDate.AddDate(0, 0, i))
	}
	return dates
}

func (w WeekSelection) Previous() WeekSelection {
	return NewWeekSelection(w.StartDate.AddDate(0, 0, -DaysInWeek))
}

// Key identifies the week in caches and guards
func (w WeekSelection) Key() string {
	return w.StartDate.Format(DateLayout)
}

// IsCurrentWeek reports whether the selection starts inside the calendar week (Monday based) containing now
func (w WeekSelection) IsCurrentWeek(now time.Time) bool {
	current := StartOfWeek(now)
	start := TruncateDate(w.StartDate)
	return !start.Before(current) && start.Before(current.AddDate(0, 0, DaysInWeek))
}

// TruncateDate drops the clock part and pins the date to UTC
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfWeek returns the Monday of the week containing t
func StartOfWeek(t time.Time) time.Time {
	day := TruncateDate(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
