package httpstore

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/config"
	sqliteInfra "github.com/fastygo/taskboard/internal/infrastructure/sqlite"
	"github.com/fastygo/taskboard/internal/router"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/repository/sqlite"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	db, err := sqliteInfra.Open(config.SQLiteConfig{Path: ":memory:"}, nil)
	require.NoError(t, err)
	repo := sqlite.NewTaskRepository(db, nil)
	t.Cleanup(func() { _ = repo.Close() })

	adapter := httpcontext.NewAdapter(time.Second)
	h := router.New(router.Handlers{
		Task: handler.NewTaskHandler(taskUC.New(repo, nil), adapter, nil),
	})

	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: h}
	go func() { _ = server.Serve(ln) }()
	t.Cleanup(func() { _ = server.Shutdown() })

	return New("http://taskboard.test", WithHTTPClient(&fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}))
}

func input(title string) domain.TaskInput {
	return domain.TaskInput{
		Title:   title,
		Tags:    []string{"Work"},
		DueDate: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestClient_CreateAndList(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	before := time.Now().Truncate(time.Millisecond)

	first, err := client.Create(ctx, input("first"))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.Before(before))
	assert.Equal(t, []string{"Work"}, first.Tags)
	assert.Equal(t, "2026-10-20", domain.FormatDate(first.DueDate))

	time.Sleep(2 * time.Millisecond)
	second, err := client.Create(ctx, input("second"))
	require.NoError(t, err)

	tasks, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[0].ID)
	assert.Equal(t, first.ID, tasks[1].ID)
}

func TestClient_ValidationIsLocal(t *testing.T) {
	client := newTestClient(t)
	_, err := client.Create(context.Background(), domain.TaskInput{Title: "  "})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestClient_UpdateIsPartialAndReportsMissing(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	created, err := client.Create(ctx, input("A"))
	require.NoError(t, err)

	desc := "from call one"
	require.NoError(t, client.Update(ctx, created.ID, domain.TaskPatch{Description: &desc}))
	require.NoError(t, client.Update(ctx, created.ID, domain.StatusPatch(domain.StatusDoing)))
	require.NoError(t, client.Update(ctx, created.ID, domain.TaskPatch{Assignee: domain.NewStaffMember("Jane")}))

	tasks, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "from call one", tasks[0].Description)
	assert.Equal(t, domain.StatusDoing, tasks[0].Status)
	require.NotNil(t, tasks[0].Assignee)
	assert.Equal(t, "Jane", tasks[0].Assignee.Name)

	require.NoError(t, client.Update(ctx, created.ID, domain.TaskPatch{ClearAssignee: true}))
	tasks, err = client.List(ctx)
	require.NoError(t, err)
	assert.Nil(t, tasks[0].Assignee)

	err = client.Update(ctx, "missing", domain.StatusPatch(domain.StatusDone))
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound))
}

func TestClient_DeleteIsIdempotent(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	created, err := client.Create(ctx, input("A"))
	require.NoError(t, err)

	require.NoError(t, client.Delete(ctx, created.ID))
	require.NoError(t, client.Delete(ctx, created.ID))

	tasks, err := client.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestClient_UnreachableServerIsUnavailable(t *testing.T) {
	ln := fasthttputil.NewInmemoryListener()
	require.NoError(t, ln.Close())
	client := New("http://taskboard.test", WithHTTPClient(&fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}))

	_, err := client.List(context.Background())
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
}
