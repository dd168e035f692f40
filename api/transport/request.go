package transport

import (
	"bytes"
	"encoding/json"

	"github.com/fastygo/taskboard/domain"
)

// TaskCreateRequest is the POST /api/tasks body. id and createdAt are never read from it.
type TaskCreateRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      string              `json:"status,omitempty"`
	Priority    string              `json:"priority,omitempty"`
	Tags        []string            `json:"tags"`
	DueDate     string              `json:"dueDate"`
	SubTasks    []domain.SubTask    `json:"subTasks,omitempty"`
	Assignee    *domain.StaffMember `json:"assignee,omitempty"`
}

func NewTaskCreateRequest(in domain.TaskInput) TaskCreateRequest {
	req := TaskCreateRequest{
		Title:       in.Title,
		Description: in.Description,
		Status:      string(in.Status),
		Priority:    string(in.Priority),
		Tags:        in.Tags,
		SubTasks:    in.SubTasks,
		Assignee:    in.Assignee,
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}
	if !in.DueDate.IsZero() {
		req.DueDate = domain.FormatDate(in.DueDate)
	}
	return req
}

func (r TaskCreateRequest) ToInput() (domain.TaskInput, error) {
	in := domain.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Tags:        r.Tags,
		SubTasks:    r.SubTasks,
		Assignee:    r.Assignee,
	}
	if r.Status != "" {
		status, err := domain.ParseStatus(r.Status)
		if err != nil {
			return in, err
		}
		in.Status = status
	}
	if r.Priority != "" {
		priority, err := domain.ParsePriority(r.Priority)
		if err != nil {
			return in, err
		}
		in.Priority = priority
	}
	due, err := domain.ParseDate(r.DueDate)
	if err != nil {
		return in, domain.Invalid("invalid dueDate %q", r.DueDate)
	}
	in.DueDate = due
	return in, nil
}

// TaskUpdateRequest is the PUT /api/tasks/{id} body; absent fields stay unchanged.
// Assignee distinguishes an absent field from an explicit null.
type TaskUpdateRequest struct {
	Title       *string           `json:"title,omitempty"`
	Description *string           `json:"description,omitempty"`
	Status      *string           `json:"status,omitempty"`
	Priority    *string           `json:"priority,omitempty"`
	Tags        *[]string         `json:"tags,omitempty"`
	DueDate     *string           `json:"dueDate,omitempty"`
	SubTasks    *[]domain.SubTask `json:"subTasks,omitempty"`
	Assignee    json.RawMessage   `json:"assignee,omitempty"`
}

var jsonNull = []byte("null")

func NewTaskUpdateRequest(p domain.TaskPatch) (TaskUpdateRequest, error) {
	req := TaskUpdateRequest{
		Title:       p.Title,
		Description: p.Description,
		Tags:        p.Tags,
		SubTasks:    p.SubTasks,
	}
	if p.Status != nil {
		s := string(*p.Status)
		req.Status = &s
	}
	if p.Priority != nil {
		pr := string(*p.Priority)
		req.Priority = &pr
	}
	if p.DueDate != nil {
		d := domain.FormatDate(*p.DueDate)
		req.DueDate = &d
	}
	switch {
	case p.ClearAssignee:
		req.Assignee = json.RawMessage(jsonNull)
	case p.Assignee != nil:
		raw, err := json.Marshal(p.Assignee)
		if err != nil {
			return req, err
		}
		req.Assignee = raw
	}
	return req, nil
}

func (r TaskUpdateRequest) ToPatch() (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Tags:        r.Tags,
		SubTasks:    r.SubTasks,
	}
	if r.Status != nil {
		status, err := domain.ParseStatus(*r.Status)
		if err != nil {
			return patch, err
		}
		patch.Status = &status
	}
	if r.Priority != nil {
		priority, err := domain.ParsePriority(*r.Priority)
		if err != nil {
			return patch, err
		}
		patch.Priority = &priority
	}
	if r.DueDate != nil {
		due, err := domain.ParseDate(*r.DueDate)
		if err != nil || due.IsZero() {
			return patch, domain.Invalid("invalid dueDate %q", *r.DueDate)
		}
		patch.DueDate = &due
	}
	if len(r.Assignee) > 0 {
		if bytes.Equal(bytes.TrimSpace(r.Assignee), jsonNull) {
			patch.ClearAssignee = true
		} else {
			var member domain.StaffMember
			if err := json.Unmarshal(r.Assignee, &member); err != nil {
				return patch, domain.Invalid("invalid assignee")
			}
			patch.Assignee = &member
		}
	}
	return patch, nil
}

// ChangesResponse reports how many rows a write touched.
type ChangesResponse struct {
	Changes int64 `json:"changes"`
}
