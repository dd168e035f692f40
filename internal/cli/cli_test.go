package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/memory"
)

var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

// newBoard points the CLI at a fresh local settings file and an in-memory task store.
func newBoard(t *testing.T) *memory.Store {
	t.Helper()
	t.Setenv("BOLTDB_PATH", filepath.Join(t.TempDir(), "board.db"))
	t.Setenv("BOARD_BACKEND", "")
	t.Setenv("STORE_DRIVER", "")

	store := memory.NewStore()
	prevFactory := storeFactory
	storeFactory = func(context.Context, *config.Config, *zap.Logger) (repository.TaskStore, func() error, error) {
		return store, func() error { return nil }, nil
	}
	prevNow := now
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() {
		storeFactory = prevFactory
		now = prevNow
	})
	return store
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func runBoardContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	setup()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func runBoard(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runBoardContext(t, context.Background(), args...)
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runBoard(t, args...)
	require.NoError(t, err, "board %v\n%s", args, out)
	return out
}

func onlyTask(t *testing.T, store *memory.Store) domain.Task {
	t.Helper()
	tasks, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	return tasks[0]
}

func TestCLI_ViewerCannotMutate(t *testing.T) {
	store := newBoard(t)

	_, err := runBoard(t, "tasks", "add", "Write docs", "--due", "2026-10-20")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	tasks, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)

	out := mustRun(t, "tasks", "list")
	assert.Contains(t, out, "No tasks.")
}

func TestCLI_LoginLogoutWhoami(t *testing.T) {
	newBoard(t)

	_, err := runBoard(t, "login", "wrong")
	assert.True(t, errors.Is(err, domain.ErrAuthFailure))
	assert.Contains(t, mustRun(t, "whoami"), "(viewer)")

	assert.Contains(t, mustRun(t, "login", "admin123"), "Logged in as admin.")
	assert.Contains(t, mustRun(t, "whoami"), "John Doe (admin)")

	mustRun(t, "logout")
	assert.Contains(t, mustRun(t, "whoami"), "(viewer)")
}

func TestCLI_Passwd(t *testing.T) {
	newBoard(t)

	_, err := runBoard(t, "passwd", "nope", "newpw")
	assert.True(t, errors.Is(err, domain.ErrAuthFailure))

	_, err = runBoard(t, "passwd", "admin123", "abc")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	mustRun(t, "passwd", "admin123", "newpw")
	_, err = runBoard(t, "login", "admin123")
	assert.Error(t, err)
	mustRun(t, "login", "newpw")
}

func TestCLI_AddListAndShow(t *testing.T) {
	store := newBoard(t)
	mustRun(t, "login", "admin123")

	out := mustRun(t, "tasks", "add", "Write", "docs",
		"--desc", "README and guides",
		"--priority", "high",
		"--tags", "Docs, Dev,Docs",
		"--due", "2026-10-20",
		"--assignee", "Jane")
	assert.Contains(t, out, "Created ")
	assert.Contains(t, out, "Write docs")

	task := onlyTask(t, store)
	assert.Equal(t, "Write docs", task.Title)
	assert.Equal(t, domain.StatusTodo, task.Status)
	assert.Equal(t, domain.PriorityHigh, task.Priority)
	assert.Equal(t, []string{"Docs", "Dev"}, task.Tags)
	require.NotNil(t, task.Assignee)
	assert.Equal(t, "Jane", task.Assignee.Name)

	out = mustRun(t, "tasks", "list", "--search", "readme")
	assert.Contains(t, out, shortID(task.ID))
	assert.Contains(t, out, "Write docs")

	out = mustRun(t, "tasks", "list", "--status", "done")
	assert.Contains(t, out, "No tasks.")

	out = mustRun(t, "tasks", "show", shortID(task.ID))
	assert.Contains(t, out, task.ID)
	assert.Contains(t, out, "README and guides")
}

func TestCLI_AddRequiresDueDate(t *testing.T) {
	store := newBoard(t)
	mustRun(t, "login", "admin123")

	_, err := runBoard(t, "tasks", "add", "No date")
	assert.Error(t, err)

	_, err = runBoard(t, "tasks", "add", "Bad date", "--due", "tomorrow")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	tasks, _ := store.List(context.Background())
	assert.Empty(t, tasks)
}

func TestCLI_MoveEditDelete(t *testing.T) {
	store := newBoard(t)
	mustRun(t, "login", "admin123")
	mustRun(t, "tasks", "add", "Ship", "--due", "2026-10-20", "--assignee", "Jane")
	id := onlyTask(t, store).ID

	out := mustRun(t, "tasks", "move", id[:6], "doing")
	assert.Contains(t, out, "In Progress")
	assert.Equal(t, domain.StatusDoing, onlyTask(t, store).Status)

	mustRun(t, "tasks", "edit", id, "--title", "Ship it", "--tags", "Release", "--unassign")
	task := onlyTask(t, store)
	assert.Equal(t, "Ship it", task.Title)
	assert.Equal(t, []string{"Release"}, task.Tags)
	assert.Nil(t, task.Assignee)
	assert.Equal(t, domain.StatusDoing, task.Status)

	_, err := runBoard(t, "tasks", "edit", id)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = runBoard(t, "tasks", "move", "missing", "done")
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound))

	mustRun(t, "tasks", "delete", id)
	tasks, _ := store.List(context.Background())
	assert.Empty(t, tasks)
}

func TestCLI_SubTasks(t *testing.T) {
	store := newBoard(t)
	mustRun(t, "login", "admin123")
	mustRun(t, "tasks", "add", "Release", "--due", "2026-10-20")
	id := onlyTask(t, store).ID

	mustRun(t, "subtask", "add", id, "Tag", "build")
	mustRun(t, "subtask", "add", id, "Publish")
	out := mustRun(t, "subtask", "toggle", id, "2")
	assert.Contains(t, out, "2. [x] Publish")

	mustRun(t, "subtask", "up", id, "2")
	list := onlyTask(t, store).SubTasks
	require.Len(t, list, 2)
	assert.Equal(t, "Publish", list[0].Title)
	assert.True(t, list[0].Completed)
	assert.Equal(t, "Tag build", list[1].Title)

	// moving the first entry up changes nothing
	mustRun(t, "subtask", "up", id, "1")
	assert.Equal(t, list, onlyTask(t, store).SubTasks)

	mustRun(t, "subtask", "remove", id, list[0].ID)
	list = onlyTask(t, store).SubTasks
	require.Len(t, list, 1)
	assert.Equal(t, "Tag build", list[0].Title)

	_, err := runBoard(t, "subtask", "toggle", id, "5")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestCLI_DashboardAndCalendar(t *testing.T) {
	newBoard(t)
	mustRun(t, "login", "admin123")
	mustRun(t, "tasks", "add", "Late", "--due", "2026-10-17")
	mustRun(t, "tasks", "add", "Today", "--due", "2026-10-18", "--status", "done")

	out := mustRun(t, "dashboard")
	assert.Contains(t, out, "To Do (1)")
	assert.Contains(t, out, "Completed (1)")
	assert.Contains(t, out, "Late  [overdue]")
	assert.Contains(t, out, "50%")

	out = mustRun(t, "calendar", "--month", "2026-10")
	assert.Contains(t, out, "October 2026")
	assert.Contains(t, out, "2026-10-17")
	assert.Contains(t, out, "2026-10-18")

	_, err := runBoard(t, "calendar", "--month", "10/2026")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestCLI_Settings(t *testing.T) {
	newBoard(t)

	out := mustRun(t, "settings", "appearance", "--theme", "green", "--dark")
	assert.Contains(t, out, "green")

	out = mustRun(t, "settings", "show")
	assert.Contains(t, out, "green")
	assert.Regexp(t, `dark mode\s+on`, out)

	_, err := runBoard(t, "settings", "appearance", "--theme", "teal")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	mustRun(t, "settings", "profile", "--name", "Ada")
	assert.Contains(t, mustRun(t, "whoami"), "Ada (viewer)")

	out = mustRun(t, "settings", "notifications", "--push")
	assert.Regexp(t, `push\s+on`, out)

	out = mustRun(t, "settings", "reset")
	assert.Contains(t, out, "blue")
	assert.Contains(t, mustRun(t, "whoami"), "John Doe")
}

func TestCLI_WatchDrawsUntilCancelled(t *testing.T) {
	newBoard(t)
	mustRun(t, "login", "admin123")
	mustRun(t, "tasks", "add", "Watched", "--due", "2026-10-20")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	out, err := runBoardContext(t, ctx, "watch", "--interval", "1s")
	require.NoError(t, err)
	assert.Contains(t, out, "-- 09:30:00 --")
	assert.Contains(t, out, "Watched")
}

func TestCLI_UnknownBackend(t *testing.T) {
	newBoard(t)
	_, err := runBoard(t, "tasks", "list", "--backend", "mongo")
	assert.Error(t, err)
}
