package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	yesterday := Task{Status: StatusTodo, DueDate: date(2026, 10, 17)}
	today := Task{Status: StatusTodo, DueDate: date(2026, 10, 18)}
	tomorrow := Task{Status: StatusDoing, DueDate: date(2026, 10, 19)}

	assert.True(t, yesterday.IsOverdue(now))
	assert.False(t, today.IsOverdue(now))
	assert.False(t, tomorrow.IsOverdue(now))
}

func TestIsOverdue_TodayLateInTheDay(t *testing.T) {
	now := time.Date(2026, 10, 18, 23, 59, 59, 0, time.UTC)
	task := Task{Status: StatusTodo, DueDate: date(2026, 10, 18)}
	assert.False(t, task.IsOverdue(now))
}

func TestIsOverdue_ComparesNowInItsOwnZone(t *testing.T) {
	zone := time.FixedZone("UTC-5", -5*3600)
	// 01:00 UTC on the 19th is still the 18th in UTC-5
	now := time.Date(2026, 10, 19, 1, 0, 0, 0, time.UTC).In(zone)
	task := Task{Status: StatusTodo, DueDate: date(2026, 10, 18)}
	assert.False(t, task.IsOverdue(now))
}

func TestIsOverdue_DoneNeverOverdue(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	task := Task{Title: "A", Status: StatusTodo, DueDate: date(2026, 10, 17)}
	assert.True(t, task.IsOverdue(now))

	task.Status = StatusDone
	assert.False(t, task.IsOverdue(now))
}

func TestProgress(t *testing.T) {
	_, ok := Task{}.Progress()
	assert.False(t, ok)

	task := Task{SubTasks: []SubTask{
		{ID: "1", Title: "a", Completed: true},
		{ID: "2", Title: "b"},
		{ID: "3", Title: "c"},
		{ID: "4", Title: "d", Completed: true},
	}}
	ratio, ok := task.Progress()
	assert.True(t, ok)
	assert.InDelta(t, 0.5, ratio, 1e-9)
	assert.Equal(t, 2, task.CompletedSubTasks())
}

func TestProgress_IndependentOfStatus(t *testing.T) {
	task := Task{Status: StatusDone, SubTasks: []SubTask{{ID: "1", Title: "a"}}}
	ratio, ok := task.Progress()
	assert.True(t, ok)
	assert.Zero(t, ratio)
}
