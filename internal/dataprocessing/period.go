package dataprocessing

import "time"

// WeekLength is the number of calendar days in a fiscal week.
const WeekLength = 7

// SplitDecision describes whether a fiscal week crosses a calendar-month boundary.
// When Split is set, FirstPartDays+SecondPartDays == WeekLength and both are positive.
type SplitDecision struct {
	Start          time.Time
	End            time.Time
	Split          bool
	Boundary       time.Time // first day of the month after Start's month
	FirstPartDays  int
	SecondPartDays int
}

// AnalyzeWeek decides whether the week [start, start+6] spans two calendar months.
// Months are compared as (year, month) pairs so December/January weeks split correctly.
func AnalyzeWeek(start time.Time) SplitDecision {
	start = calendarDate(start)
	end := start.AddDate(0, 0, WeekLength-1)
	d := SplitDecision{Start: start, End: end}

	if start.Year() == end.Year() && start.Month() == end.Month() {
		return d
	}

	nextMonth := time.Date(start.Year(), start.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	endOfMonth := nextMonth.AddDate(0, 0, -1)

	firstPartEnd := end
	if endOfMonth.Before(end) {
		firstPartEnd = endOfMonth
	}

	first := daysBetween(start, firstPartEnd) + 1
	second := WeekLength - first
	if first <= 0 || second <= 0 {
		return d
	}

	d.Split = true
	d.Boundary = nextMonth
	d.FirstPartDays = first
	d.SecondPartDays = second
	return d
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
