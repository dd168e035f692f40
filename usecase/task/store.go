package task

import (
	"context"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// Store exposes the use case through the request/response TaskStore contract,
// so the board can run directly against a database without the REST server.
type Store struct {
	uc *UseCase
}

var _ repository.TaskStore = (*Store)(nil)

func NewStore(uc *UseCase) *Store {
	return &Store{uc: uc}
}

func (s *Store) List(ctx context.Context) ([]domain.Task, error) {
	return s.uc.ListTasks(ctx)
}

func (s *Store) Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	return s.uc.CreateTask(ctx, input)
}

func (s *Store) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	n, err := s.uc.UpdateTask(ctx, id, patch)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.uc.DeleteTask(ctx, id)
	return err
}
