package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/config"
	sqliteInfra "github.com/fastygo/taskboard/internal/infrastructure/sqlite"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/sqlite"
)

func newUseCase(t *testing.T) *UseCase {
	t.Helper()
	db, err := sqliteInfra.Open(config.SQLiteConfig{Path: ":memory:"}, nil)
	require.NoError(t, err)
	repo := sqlite.NewTaskRepository(db, nil)
	t.Cleanup(func() { _ = repo.Close() })
	return New(repo, nil)
}

func validInput(title string) domain.TaskInput {
	return domain.TaskInput{
		Title:   title,
		Tags:    []string{"Dev", " Dev ", ""},
		DueDate: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateTask_AssignsIdentityAndDefaults(t *testing.T) {
	uc := newUseCase(t)
	before := time.Now().Truncate(time.Millisecond)

	created, err := uc.CreateTask(context.Background(), validInput("  Write docs "))
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.Before(before))
	assert.Equal(t, "Write docs", created.Title)
	assert.Equal(t, domain.StatusTodo, created.Status)
	assert.Equal(t, domain.PriorityMedium, created.Priority)
	assert.Equal(t, []string{"Dev"}, created.Tags)

	tasks, err := uc.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
}

func TestCreateTask_RejectsMissingFields(t *testing.T) {
	uc := newUseCase(t)

	_, err := uc.CreateTask(context.Background(), domain.TaskInput{DueDate: time.Now()})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.CreateTask(context.Background(), domain.TaskInput{Title: "no date"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestUpdateTask_CountsAffectedRows(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()
	created, err := uc.CreateTask(ctx, validInput("A"))
	require.NoError(t, err)

	n, err := uc.UpdateTask(ctx, created.ID, domain.StatusPatch(domain.StatusDone))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = uc.UpdateTask(ctx, "missing", domain.StatusPatch(domain.StatusDone))
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = uc.UpdateTask(ctx, created.ID, domain.TaskPatch{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestStore_MapsZeroCountToNotFound(t *testing.T) {
	store := NewStore(newUseCase(t))
	ctx := context.Background()

	err := store.Update(ctx, "missing", domain.StatusPatch(domain.StatusDoing))
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound))

	assert.NoError(t, store.Delete(ctx, "missing"))
	assert.NoError(t, store.Delete(ctx, "missing"))
}

func TestStore_DisjointPatchesMerge(t *testing.T) {
	store := NewStore(newUseCase(t))
	ctx := context.Background()
	created, err := store.Create(ctx, validInput("A"))
	require.NoError(t, err)

	desc := "details"
	high := domain.PriorityHigh
	require.NoError(t, store.Update(ctx, created.ID, domain.TaskPatch{Description: &desc}))
	require.NoError(t, store.Update(ctx, created.ID, domain.TaskPatch{Priority: &high}))

	tasks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "details", tasks[0].Description)
	assert.Equal(t, domain.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, "A", tasks[0].Title)
}

type failingRepo struct{ repository.TaskRepository }

func (failingRepo) List(context.Context) ([]domain.Task, error) {
	return nil, errors.New("connection refused")
}

func TestListTasks_WrapsStoreFailure(t *testing.T) {
	uc := New(failingRepo{}, nil)
	_, err := uc.ListTasks(context.Background())
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
}
