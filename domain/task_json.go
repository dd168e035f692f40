package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the wire format of due dates.
const DateLayout = "2006-01-02"

// ParseDate reads a calendar date. Full RFC3339 timestamps are accepted and
// reduced to the date they name in their own offset.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if d, err := time.Parse(DateLayout, raw); err == nil {
		return d, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return CalendarDay(ts), nil
	}
	return time.Time{}, Invalid("invalid date %q, expected YYYY-MM-DD", raw)
}

// FormatDate renders a due date; the zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// CalendarDay truncates t to midnight UTC of the date t shows in its own location.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

type taskRecord struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      Status       `json:"status"`
	Priority    Priority     `json:"priority"`
	Tags        []string     `json:"tags"`
	DueDate     string       `json:"dueDate"`
	CreatedAt   int64        `json:"createdAt"`
	SubTasks    []SubTask    `json:"subTasks"`
	Assignee    *StaffMember `json:"assignee"`
}

// MarshalJSON renders the wire shape: camelCase keys, date-only dueDate and createdAt in epoch milliseconds.
func (t Task) MarshalJSON() ([]byte, error) {
	rec := taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Tags:        t.Tags,
		DueDate:     FormatDate(t.DueDate),
		CreatedAt:   millis(t.CreatedAt),
		SubTasks:    t.SubTasks,
		Assignee:    t.Assignee,
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	if rec.SubTasks == nil {
		rec.SubTasks = []SubTask{}
	}
	return json.Marshal(rec)
}

// UnmarshalJSON rejects documents whose status is not one of the three columns.
func (t *Task) UnmarshalJSON(data []byte) error {
	var rec taskRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	if !rec.Status.Valid() {
		return Invalid("task %q has unknown status %q", rec.ID, rec.Status)
	}
	due, err := ParseDate(rec.DueDate)
	if err != nil {
		return err
	}
	*t = Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Status:      rec.Status,
		Priority:    rec.Priority,
		Tags:        rec.Tags,
		DueDate:     due,
		CreatedAt:   fromMillis(rec.CreatedAt),
		SubTasks:    rec.SubTasks,
		Assignee:    rec.Assignee,
	}
	// rows written before priorities existed carry none
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.SubTasks == nil {
		t.SubTasks = []SubTask{}
	}
	return nil
}
