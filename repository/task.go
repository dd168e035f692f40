package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskRepository is the relational row contract served by the REST backend.
// Update applies COALESCE semantics and Delete is a no-op for unknown ids;
// both report the number of affected rows.
type TaskRepository interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, id string, patch domain.TaskPatch) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	Close() error
}

// TaskStore is the adapter contract consumed by the synchronized collection.
// List is ordered by descending creation time; Create assigns ID and CreatedAt;
// Update fails with domain.ErrTaskNotFound for unknown ids; Delete is idempotent.
type TaskStore interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error)
	Update(ctx context.Context, id string, patch domain.TaskPatch) error
	Delete(ctx context.Context, id string) error
}

// SnapshotFunc receives the full, ordered task list after every committed change.
type SnapshotFunc func(tasks []domain.Task)

// Unsubscribe stops a live subscription.
type Unsubscribe func()

// Subscriber is implemented by push-based stores. Implementations deliver an
// initial snapshot right after subscribing and echo every committed write,
// local or remote. Stores without it must be polled through List.
type Subscriber interface {
	Subscribe(ctx context.Context, onChange SnapshotFunc, onError func(error)) (Unsubscribe, error)
}
