package domain

import (
	"strings"

	"github.com/google/uuid"
)

// SubTask is a checklist entry; its position is its index in the parent's list.
type SubTask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// ValidateSubTasks enforces non-empty titles and ids unique within the list.
func ValidateSubTasks(list []SubTask) error {
	seen := make(map[string]struct{}, len(list))
	for _, st := range list {
		if st.ID == "" {
			return Invalid("sub-task id is required")
		}
		if strings.TrimSpace(st.Title) == "" {
			return Invalid("sub-task title is required")
		}
		if _, dup := seen[st.ID]; dup {
			return Invalid("duplicate sub-task id %q", st.ID)
		}
		seen[st.ID] = struct{}{}
	}
	return nil
}

// The helpers below never modify their argument; they return a fresh slice.

// AddSubTask appends an incomplete sub-task.
func AddSubTask(list []SubTask, title string) ([]SubTask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, Invalid("sub-task title is required")
	}
	out := make([]SubTask, 0, len(list)+1)
	out = append(out, list...)
	return append(out, SubTask{ID: uuid.NewString(), Title: title}), nil
}

// RemoveSubTask drops the sub-task with the given id and compacts the rest.
func RemoveSubTask(list []SubTask, id string) []SubTask {
	out := make([]SubTask, 0, len(list))
	for _, st := range list {
		if st.ID != id {
			out = append(out, st)
		}
	}
	return out
}

// ToggleSubTask flips completion of the sub-task with the given id.
func ToggleSubTask(list []SubTask, id string) ([]SubTask, bool) {
	out := append([]SubTask{}, list...)
	for i := range out {
		if out[i].ID == id {
			out[i].Completed = !out[i].Completed
			return out, true
		}
	}
	return out, false
}

// IndexOfSubTask returns the position of id, or -1.
func IndexOfSubTask(list []SubTask, id string) int {
	for i, st := range list {
		if st.ID == id {
			return i
		}
	}
	return -1
}

// MoveSubTaskUp swaps the entry at index with its predecessor. The first entry stays put.
func MoveSubTaskUp(list []SubTask, index int) []SubTask {
	out := append([]SubTask{}, list...)
	if index <= 0 || index >= len(out) {
		return out
	}
	out[index-1], out[index] = out[index], out[index-1]
	return out
}

// MoveSubTaskDown swaps the entry at index with its successor. The last entry stays put.
func MoveSubTaskDown(list []SubTask, index int) []SubTask {
	out := append([]SubTask{}, list...)
	if index < 0 || index >= len(out)-1 {
		return out
	}
	out[index], out[index+1] = out[index+1], out[index]
	return out
}
