package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTaskRepository returns a SQLite-backed implementation of TaskRepository.
// Columns that fail to decode are logged and read as empty.
func NewTaskRepository(db *sql.DB, logger *zap.Logger) repository.TaskRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &taskRepository{db: db, logger: logger}
}

func (r *taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	const query = `
	SELECT id, title, description, status, priority, tags, due_date, created_at, sub_tasks, assignee
	FROM tasks
	ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (id, title, description, status, priority, tags, due_date, created_at, sub_tasks, assignee)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	tags, err := encode(nonNilTags(task.Tags))
	if err != nil {
		return err
	}
	subTasks, err := encode(nonNilSubTasks(task.SubTasks))
	if err != nil {
		return err
	}
	var assignee interface{}
	if task.Assignee != nil {
		if assignee, err = encode(task.Assignee); err != nil {
			return err
		}
	}

	_, err = r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		tags,
		domain.FormatDate(task.DueDate),
		task.CreatedAt.UnixMilli(),
		subTasks,
		assignee,
	)
	return err
}

func (r *taskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (int64, error) {
	const query = `
	UPDATE tasks
	SET title = COALESCE(?, title),
		description = COALESCE(?, description),
		status = COALESCE(?, status),
		priority = COALESCE(?, priority),
		tags = COALESCE(?, tags),
		due_date = COALESCE(?, due_date),
		sub_tasks = COALESCE(?, sub_tasks),
		assignee = CASE WHEN ? THEN NULL ELSE COALESCE(?, assignee) END
	WHERE id = ?
	`

	args := make([]interface{}, 0, 10)
	args = append(args, optString(patch.Title), optString(patch.Description))

	var status, priority, dueDate interface{}
	if patch.Status != nil {
		status = string(*patch.Status)
	}
	if patch.Priority != nil {
		priority = string(*patch.Priority)
	}
	if patch.DueDate != nil {
		dueDate = domain.FormatDate(*patch.DueDate)
	}

	var tags, subTasks, assignee interface{}
	var err error
	if patch.Tags != nil {
		if tags, err = encode(nonNilTags(*patch.Tags)); err != nil {
			return 0, err
		}
	}
	if patch.SubTasks != nil {
		if subTasks, err = encode(nonNilSubTasks(*patch.SubTasks)); err != nil {
			return 0, err
		}
	}
	if patch.Assignee != nil {
		if assignee, err = encode(patch.Assignee); err != nil {
			return 0, err
		}
	}

	args = append(args, status, priority, tags, dueDate, subTasks, patch.ClearAssignee, assignee, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *taskRepository) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *taskRepository) Close() error {
	return r.db.Close()
}

func (r *taskRepository) scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		status, priority string
		tags, subTasks   string
		due              string
		createdAt        int64
		assignee         sql.NullString
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&tags,
		&due,
		&createdAt,
		&subTasks,
		&assignee,
	); err != nil {
		return nil, err
	}

	dueDate, err := domain.ParseDate(due)
	if err != nil {
		return nil, err
	}

	task.Status = domain.Status(status)
	if !task.Status.Valid() {
		r.logger.Warn("unknown task status, reading as todo", zap.String("id", task.ID), zap.String("status", status))
		task.Status = domain.StatusTodo
	}
	task.Priority = domain.Priority(priority)
	task.DueDate = dueDate
	task.CreatedAt = time.UnixMilli(createdAt)
	task.Tags = nonNilTags(decodeColumn[[]string](r.logger, task.ID, "tags", []byte(tags)))
	task.SubTasks = nonNilSubTasks(decodeColumn[[]domain.SubTask](r.logger, task.ID, "sub_tasks", []byte(subTasks)))
	if assignee.Valid && assignee.String != "" {
		task.Assignee = decodeColumn[*domain.StaffMember](r.logger, task.ID, "assignee", []byte(assignee.String))
	}

	return &task, nil
}

// decodeColumn returns the zero value for a column that does not hold valid JSON.
func decodeColumn[T any](logger *zap.Logger, id, column string, raw []byte) T {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		logger.Warn("malformed task column, reading as empty",
			zap.String("id", id), zap.String("column", column), zap.Error(err))
		var zero T
		return zero
	}
	return v
}

func encode(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func optString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func nonNilSubTasks(list []domain.SubTask) []domain.SubTask {
	if list == nil {
		return []domain.SubTask{}
	}
	return list
}
