package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
// Columns that fail to decode are logged and read as empty.
func NewTaskRepository(pool *pgxpool.Pool, logger *zap.Logger) repository.TaskRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &taskRepository{pool: pool, logger: logger}
}

func (r *taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	const query = `
	SELECT id, title, description, status, priority, tags, due_date, created_at, sub_tasks, assignee
	FROM tasks
	ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
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
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	tags, err := marshalTags(task.Tags)
	if err != nil {
		return err
	}
	subTasks, err := marshalSubTasks(task.SubTasks)
	if err != nil {
		return err
	}
	assignee, err := marshalAssignee(task.Assignee)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		string(tags),
		domain.CalendarDay(task.DueDate),
		task.CreatedAt.UnixMilli(),
		string(subTasks),
		assignee,
	)
	return err
}

func (r *taskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (int64, error) {
	const query = `
	UPDATE tasks
	SET title = COALESCE($2, title),
		description = COALESCE($3, description),
		status = COALESCE($4, status),
		priority = COALESCE($5, priority),
		tags = COALESCE($6::jsonb, tags),
		due_date = COALESCE($7::date, due_date),
		sub_tasks = COALESCE($8::jsonb, sub_tasks),
		assignee = CASE WHEN $10 THEN NULL ELSE COALESCE($9::jsonb, assignee) END
	WHERE id = $1
	`

	var status, priority *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}
	if patch.Priority != nil {
		p := string(*patch.Priority)
		priority = &p
	}

	var tagsValue, subTasksValue interface{}
	if patch.Tags != nil {
		tagsValue = *patch.Tags
	}
	if patch.SubTasks != nil {
		subTasksValue = *patch.SubTasks
	}
	tags, err := optJSON(patch.Tags != nil, tagsValue)
	if err != nil {
		return 0, err
	}
	subTasks, err := optJSON(patch.SubTasks != nil, subTasksValue)
	if err != nil {
		return 0, err
	}
	assignee, err := optJSON(patch.Assignee != nil, patch.Assignee)
	if err != nil {
		return 0, err
	}

	tag, err := r.pool.Exec(ctx, query,
		id,
		optString(patch.Title),
		optString(patch.Description),
		optString(status),
		optString(priority),
		tags,
		optDate(patch.DueDate),
		subTasks,
		assignee,
		patch.ClearAssignee,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) (int64, error) {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *taskRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *taskRepository) scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		status, priority string
		tags, subTasks   []byte
		assignee         []byte
		due              time.Time
		createdAt        int64
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

	task.Status = domain.Status(status)
	if !task.Status.Valid() {
		r.logger.Warn("unknown task status, reading as todo", zap.String("id", task.ID), zap.String("status", status))
		task.Status = domain.StatusTodo
	}
	task.Priority = domain.Priority(priority)
	task.DueDate = domain.CalendarDay(due)
	task.CreatedAt = time.UnixMilli(createdAt)
	task.Tags = []string{}
	task.SubTasks = []domain.SubTask{}
	if len(tags) > 0 {
		task.Tags = nonNilTags(decodeColumn[[]string](r.logger, task.ID, "tags", tags))
	}
	if len(subTasks) > 0 {
		task.SubTasks = nonNilSubTasks(decodeColumn[[]domain.SubTask](r.logger, task.ID, "sub_tasks", subTasks))
	}
	if len(assignee) > 0 {
		task.Assignee = decodeColumn[*domain.StaffMember](r.logger, task.ID, "assignee", assignee)
	}

	return &task, nil
}
