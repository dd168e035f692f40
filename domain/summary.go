package domain

import (
	"math"
	"time"
)

// Summary backs the dashboard.
type Summary struct {
	Total          int `json:"total"`
	Todo           int `json:"todo"`
	Doing          int `json:"doing"`
	Done           int `json:"done"`
	Overdue        int `json:"overdue"`
	CompletionRate int `json:"completion_rate"`
}

// Summarize counts tasks per column. CompletionRate is the rounded share of done tasks, 0 for an empty board.
func Summarize(tasks []Task, now time.Time) Summary {
	var s Summary
	for _, t := range tasks {
		s.Total++
		switch t.Status {
		case StatusTodo:
			s.Todo++
		case StatusDoing:
			s.Doing++
		case StatusDone:
			s.Done++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Done) / float64(s.Total) * 100))
	}
	return s
}

// ByStatus splits tasks into board columns, preserving order within each column.
func ByStatus(tasks []Task) map[Status][]Task {
	cols := make(map[Status][]Task, len(Statuses))
	for _, s := range Statuses {
		cols[s] = []Task{}
	}
	for _, t := range tasks {
		cols[t.Status] = append(cols[t.Status], t)
	}
	return cols
}

// CalendarDate is one cell of a month view.
type CalendarDate struct {
	Date  time.Time
	Tasks []Task
}

// CalendarMonth lays out one month. Offset is the weekday of the first day (0 = Sunday),
// i.e. the number of blank cells before it.
type CalendarMonth struct {
	Year   int
	Month  time.Month
	Offset int
	Days   []CalendarDate
}

// BuildCalendarMonth groups tasks by due day within the given month.
func BuildCalendarMonth(tasks []Task, year int, month time.Month) CalendarMonth {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	cal := CalendarMonth{
		Year:   year,
		Month:  month,
		Offset: int(first.Weekday()),
		Days:   make([]CalendarDate, last.Day()),
	}
	for i := range cal.Days {
		cal.Days[i].Date = first.AddDate(0, 0, i)
	}
	for _, t := range tasks {
		if t.DueDate.IsZero() {
			continue
		}
		due := CalendarDay(t.DueDate)
		if due.Year() != year || due.Month() != month {
			continue
		}
		idx := due.Day() - 1
		cal.Days[idx].Tasks = append(cal.Days[idx].Tasks, t)
	}
	return cal
}
