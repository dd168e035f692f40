package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the board column a task sits in.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// Statuses lists the board columns in display order.
var Statuses = []Status{StatusTodo, StatusDoing, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	default:
		return false
	}
}

// Label returns the column heading shown for the status.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusDoing:
		return "In Progress"
	case StatusDone:
		return "Completed"
	default:
		return string(s)
	}
}

// ParseStatus converts user input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", Invalid("unknown status %q", raw)
	}
	return s, nil
}

// Priority ranks tasks; medium is the default.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParsePriority converts user input into a Priority. Empty input yields medium.
func ParsePriority(raw string) (Priority, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return PriorityMedium, nil
	}
	p := Priority(raw)
	if !p.Valid() {
		return "", Invalid("unknown priority %q", raw)
	}
	return p, nil
}

// DefaultAvatar is the glyph given to assignees created from a bare name.
const DefaultAvatar = "👤"

// StaffMember is an assignee. It has no lifecycle of its own.
type StaffMember struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// NewStaffMember synthesizes an assignee from a free-text name.
// A blank name means "unassigned" and yields nil.
func NewStaffMember(name string) *StaffMember {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return &StaffMember{ID: uuid.NewString(), Name: name, Avatar: DefaultAvatar}
}

// Task represents a card on the board.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Tags        []string
	DueDate     time.Time
	CreatedAt   time.Time
	SubTasks    []SubTask
	Assignee    *StaffMember
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusDone
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Task) Clone() Task {
	out := t
	out.Tags = append([]string(nil), t.Tags...)
	out.SubTasks = append([]SubTask(nil), t.SubTasks...)
	if t.Assignee != nil {
		a := *t.Assignee
		out.Assignee = &a
	}
	return out
}

// CloneTasks deep-copies a task list.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}

// TaskInput carries everything needed to create a task; the store assigns ID and CreatedAt.
type TaskInput struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Tags        []string
	DueDate     time.Time
	SubTasks    []SubTask
	Assignee    *StaffMember
}

// Normalize fills defaults and tidies free-text fields.
func (in *TaskInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	in.Tags = NormalizeTags(in.Tags)
	if in.SubTasks == nil {
		in.SubTasks = []SubTask{}
	}
}

// Validate rejects inputs missing required fields.
func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return Invalid("title is required")
	}
	if !in.Status.Valid() {
		return Invalid("unknown status %q", in.Status)
	}
	if !in.Priority.Valid() {
		return Invalid("unknown priority %q", in.Priority)
	}
	if in.DueDate.IsZero() {
		return Invalid("due date is required")
	}
	return ValidateSubTasks(in.SubTasks)
}

// NewTask materializes the input as a stored task.
func (in TaskInput) NewTask(id string, createdAt time.Time) Task {
	t := Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		Tags:        in.Tags,
		DueDate:     in.DueDate,
		CreatedAt:   createdAt,
		SubTasks:    in.SubTasks,
		Assignee:    in.Assignee,
	}
	return t.Clone()
}

// TaskPatch is a partial update: nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	Tags        *[]string
	DueDate     *time.Time
	SubTasks    *[]SubTask
	Assignee    *StaffMember
	// ClearAssignee sets the assignee to nil; it wins over Assignee.
	ClearAssignee bool
}

// StatusPatch builds the patch issued by a column move.
func StatusPatch(s Status) TaskPatch {
	return TaskPatch{Status: &s}
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		p.Tags == nil && p.DueDate == nil && p.SubTasks == nil && p.Assignee == nil && !p.ClearAssignee
}

// Validate checks the fields that are present.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return Invalid("title must not be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return Invalid("unknown status %q", *p.Status)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return Invalid("unknown priority %q", *p.Priority)
	}
	if p.DueDate != nil && p.DueDate.IsZero() {
		return Invalid("due date must not be empty")
	}
	if p.SubTasks != nil {
		return ValidateSubTasks(*p.SubTasks)
	}
	return nil
}

// Apply returns t with the present fields replaced. ID and CreatedAt never change.
func (p TaskPatch) Apply(t Task) Task {
	out := t.Clone()
	if p.Title != nil {
		out.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.Tags != nil {
		out.Tags = NormalizeTags(*p.Tags)
	}
	if p.DueDate != nil {
		out.DueDate = *p.DueDate
	}
	if p.SubTasks != nil {
		out.SubTasks = append([]SubTask{}, (*p.SubTasks)...)
	}
	switch {
	case p.ClearAssignee:
		out.Assignee = nil
	case p.Assignee != nil:
		a := *p.Assignee
		out.Assignee = &a
	}
	return out
}

// NormalizeTags trims labels, drops blanks and exact duplicates, and keeps first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
