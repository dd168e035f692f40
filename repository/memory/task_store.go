package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// Store is a request/response TaskStore kept in process memory.
type Store struct {
	mu    sync.Mutex
	tasks map[string]domain.Task
	now   func() time.Time
}

var _ repository.TaskStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		tasks: make(map[string]domain.Task),
		now:   time.Now,
	}
}

// WithClock overrides the creation clock.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) List(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Unavailable("list tasks", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

func (s *Store) Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.Unavailable("create task", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	task := input.NewTask(uuid.NewString(), time.UnixMilli(s.now().UnixMilli()))
	s.tasks[task.ID] = task
	out := task.Clone()
	return &out, nil
}

func (s *Store) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.Unavailable("update task", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	s.tasks[id] = patch.Apply(task)
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return domain.Unavailable("delete task", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
	return nil
}

func (s *Store) snapshotLocked() []domain.Task {
	out := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
