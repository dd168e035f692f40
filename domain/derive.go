package domain

import "time"

// IsOverdue reports whether an unfinished task was due on a day before now's day.
// Only calendar days are compared, so a task due today is never overdue.
func (t Task) IsOverdue(now time.Time) bool {
	if t.Status == StatusDone || t.DueDate.IsZero() {
		return false
	}
	return CalendarDay(t.DueDate).Before(CalendarDay(now))
}

// CompletedSubTasks counts checked sub-tasks.
func (t Task) CompletedSubTasks() int {
	n := 0
	for _, st := range t.SubTasks {
		if st.Completed {
			n++
		}
	}
	return n
}

// Progress is the completed share of sub-tasks. ok is false when there are none.
func (t Task) Progress() (ratio float64, ok bool) {
	total := len(t.SubTasks)
	if total == 0 {
		return 0, false
	}
	return float64(t.CompletedSubTasks()) / float64(total), true
}
