package collection

import "github.com/fastygo/taskboard/domain"

type mutationKind int

const (
	kindUpdate mutationKind = iota
	kindDelete
	kindCreate
)

// mutation is one local write. It is pending until its store call returns,
// then settled; a settled mutation is discarded by the first snapshot known to
// have been taken after it settled.
type mutation struct {
	seq   uint64
	kind  mutationKind
	id    string
	patch domain.TaskPatch
	task  domain.Task
	// settledAt is the collection's settle count when the store call returned; 0 while in flight.
	settledAt uint64
}

func (m *mutation) settled() bool {
	return m.settledAt > 0
}

// coveredBy reports whether a snapshot taken once since settles had happened includes m.
func (m *mutation) coveredBy(since uint64) bool {
	return m.settled() && m.settledAt <= since
}

// apply returns tasks with m applied. tasks is owned by the caller and may be reused.
func (m *mutation) apply(tasks []domain.Task) []domain.Task {
	switch m.kind {
	case kindUpdate:
		for i := range tasks {
			if tasks[i].ID == m.id {
				tasks[i] = m.patch.Apply(tasks[i])
				break
			}
		}
		return tasks
	case kindDelete:
		out := tasks[:0]
		for _, t := range tasks {
			if t.ID != m.id {
				out = append(out, t)
			}
		}
		return out
	case kindCreate:
		if indexOf(tasks, m.task.ID) >= 0 {
			return tasks
		}
		return insertNewest(tasks, m.task.Clone())
	default:
		return tasks
	}
}

func indexOf(tasks []domain.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// insertNewest keeps the descending createdAt order.
func insertNewest(tasks []domain.Task, t domain.Task) []domain.Task {
	at := len(tasks)
	for i := range tasks {
		if tasks[i].CreatedAt.Before(t.CreatedAt) {
			at = i
			break
		}
	}
	tasks = append(tasks, domain.Task{})
	copy(tasks[at+1:], tasks[at:])
	tasks[at] = t
	return tasks
}
