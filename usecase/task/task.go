package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// UseCase owns the server-side rules for tasks: ids and creation timestamps are
// assigned here, never taken from the client.
type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
	now    func() time.Time
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := uc.tasks.List(ctx)
	if err != nil {
		return nil, uc.storeError("list tasks", err)
	}
	return tasks, nil
}

func (uc *UseCase) CreateTask(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	task := input.NewTask(uuid.NewString(), time.UnixMilli(uc.now().UnixMilli()))
	if err := uc.tasks.Create(ctx, &task); err != nil {
		return nil, uc.storeError("create task", err)
	}
	uc.logger.Debug("task created", zap.String("id", task.ID))
	return &task, nil
}

// UpdateTask applies patch and reports how many rows changed; zero means the id is unknown.
func (uc *UseCase) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (int64, error) {
	if err := patch.Validate(); err != nil {
		return 0, err
	}
	if patch.IsEmpty() {
		return 0, domain.Invalid("no fields to update")
	}
	n, err := uc.tasks.Update(ctx, id, patch)
	if err != nil {
		return 0, uc.storeError("update task", err)
	}
	return n, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, id string) (int64, error) {
	n, err := uc.tasks.Delete(ctx, id)
	if err != nil {
		return 0, uc.storeError("delete task", err)
	}
	return n, nil
}

func (uc *UseCase) storeError(op string, err error) error {
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return err
	}
	uc.logger.Error("task store failure", zap.String("op", op), zap.Error(err))
	return domain.Unavailable(op, err)
}
