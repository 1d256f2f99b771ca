package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestAnalyzeWeek(t *testing.T) {
	tests := []struct {
		name       string
		start      time.Time
		wantSplit  bool
		wantFirst  int
		wantSecond int
		wantBound  time.Time
	}{
		{
			name:       "crosses january into february",
			start:      date(2024, time.January, 28),
			wantSplit:  true,
			wantFirst:  4,
			wantSecond: 3,
			wantBound:  date(2024, time.February, 1),
		},
		{
			name:  "inside one month",
			start: date(2024, time.March, 4),
		},
		{
			name:       "crosses year boundary",
			start:      date(2023, time.December, 29),
			wantSplit:  true,
			wantFirst:  3,
			wantSecond: 4,
			wantBound:  date(2024, time.January, 1),
		},
		{
			name:       "starts on last day of month",
			start:      date(2024, time.April, 30),
			wantSplit:  true,
			wantFirst:  1,
			wantSecond: 6,
			wantBound:  date(2024, time.May, 1),
		},
		{
			name:  "ends exactly on last day of month",
			start: date(2024, time.January, 25),
		},
		{
			name:  "starts on first of month",
			start: date(2024, time.June, 1),
		},
		{
			name:       "leap february",
			start:      date(2024, time.February, 26),
			wantSplit:  true,
			wantFirst:  4,
			wantSecond: 3,
			wantBound:  date(2024, time.March, 1),
		},
		{
			name:       "non-leap february",
			start:      date(2023, time.February, 26),
			wantSplit:  true,
			wantFirst:  3,
			wantSecond: 4,
			wantBound:  date(2023, time.March, 1),
		},
		{
			name:  "february ending on the 28th",
			start: date(2023, time.February, 22),
		},
		{
			name:       "time of day is ignored",
			start:      time.Date(2024, time.January, 31, 23, 59, 0, 0, time.UTC),
			wantSplit:  true,
			wantFirst:  1,
			wantSecond: 6,
			wantBound:  date(2024, time.February, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := AnalyzeWeek(tt.start)

			assert.Equal(t, tt.wantSplit, d.Split)
			assert.Equal(t, tt.wantFirst, d.FirstPartDays)
			assert.Equal(t, tt.wantSecond, d.SecondPartDays)
			assert.Equal(t, calendarDate(tt.start), d.Start)
			assert.Equal(t, d.Start.AddDate(0, 0, 6), d.End)
			if tt.wantSplit {
				assert.Equal(t, tt.wantBound, d.Boundary)
			}
		})
	}
}

func TestAnalyzeWeek_DayCountsOverTwoYears(t *testing.T) {
	for day := date(2023, time.January, 1); day.Year() < 2025; day = day.AddDate(0, 0, 1) {
		d := AnalyzeWeek(day)
		end := day.AddDate(0, 0, 6)
		sameMonth := day.Month() == end.Month() && day.Year() == end.Year()

		if assert.Equal(t, !sameMonth, d.Split, day.Format(time.DateOnly)) && d.Split {
			assert.Equal(t, WeekLength, d.FirstPartDays+d.SecondPartDays)
			assert.Positive(t, d.FirstPartDays)
			assert.Positive(t, d.SecondPartDays)
			assert.Equal(t, 1, d.Boundary.Day())
			assert.Equal(t, end.Month(), d.Boundary.Month())
		}
	}
}
