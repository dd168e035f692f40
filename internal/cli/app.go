package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/access"
	"github.com/fastygo/taskboard/internal/collection"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/kv"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	sqliteInfra "github.com/fastygo/taskboard/internal/infrastructure/sqlite"
	"github.com/fastygo/taskboard/internal/preferences"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/httpstore"
	pgRepo "github.com/fastygo/taskboard/repository/postgres"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
	sqliteRepo "github.com/fastygo/taskboard/repository/sqlite"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

// storeFactory opens the task store for the configured backend. The returned
// closer releases its connections.
var storeFactory = openTaskStore

// app bundles what a single command invocation needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	kv     *kv.Store
	gate   *access.Gate
	prefs  *preferences.Service
	coll   *collection.Collection

	closers []func() error
}

// openApp loads configuration and the local gate and preferences. When
// withTasks is set it also opens the task store and loads the collection.
func openApp(cmd *cobra.Command, withTasks bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Client.Backend = strings.ToLower(backend)
	}
	if apiURL, _ := cmd.Flags().GetString("api-url"); apiURL != "" {
		cfg.Client.APIURL = apiURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := "warn"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Encoding: "console", Stderr: true})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: log}

	store, err := kv.Open(cfg.KV.Path, cfg.KV.Bucket)
	if err != nil {
		return nil, fmt.Errorf("open local settings %s: %w", cfg.KV.Path, err)
	}
	a.kv = store

	if a.gate, err = access.New(store, log); err != nil {
		a.Close()
		return nil, err
	}
	if a.prefs, err = preferences.New(store, log); err != nil {
		a.Close()
		return nil, err
	}

	if !withTasks {
		return a, nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tasks, closeStore, err := storeFactory(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	a.coll = collection.New(tasks, collection.Options{
		WriteTimeout: cfg.Client.WriteTimeout,
		Logger:       log,
	})
	if err := a.coll.Open(ctx); err != nil {
		a.Close()
		return nil, err
	}
	log.Debug("board opened",
		zap.String("backend", cfg.Client.Backend),
		zap.Bool("live", a.coll.Live()))
	return a, nil
}

// Close flushes pending writes and releases every resource in reverse order.
func (a *app) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.coll != nil {
		keep(a.coll.Close())
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		keep(a.closers[i]())
	}
	if a.kv != nil {
		keep(a.kv.Close())
	}
	_ = a.logger.Sync()
	return firstErr
}

// settle waits for background writes and reports the first store failure.
func (a *app) settle() error {
	a.coll.Wait()
	return a.coll.Err()
}

// requireAdmin guards every task mutation.
func (a *app) requireAdmin() error {
	if err := a.gate.Require(); err != nil {
		return fmt.Errorf("%w (run `board login` first)", err)
	}
	return nil
}

// resolve finds a task by full id or by a unique id prefix.
func (a *app) resolve(ref string) (domain.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Task{}, domain.Invalid("task id is required")
	}
	if t, ok := a.coll.Task(ref); ok {
		return t, nil
	}

	var matches []domain.Task
	for _, t := range a.coll.Tasks() {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Task{}, domain.ErrTaskNotFound
	case 1:
		return matches[0], nil
	default:
		return domain.Task{}, domain.Invalid("task id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func openTaskStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.TaskStore, func() error, error) {
	switch cfg.Client.Backend {
	case config.BackendHTTP:
		store := httpstore.New(cfg.Client.APIURL, httpstore.WithLogger(log))
		return store, func() error { return nil }, nil

	case config.BackendRedis:
		client, err := redisInfra.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, nil, domain.Unavailable("redis is unreachable", err)
		}
		return redisRepo.NewTaskStore(client, cfg.Redis.Prefix, log), client.Close, nil

	case config.BackendSQLite:
		db, err := sqliteInfra.Open(cfg.SQLite, log)
		if err != nil {
			return nil, nil, domain.Unavailable("sqlite is unavailable", err)
		}
		repo := sqliteRepo.NewTaskRepository(db, log)
		return taskUC.NewStore(taskUC.New(repo, log)), repo.Close, nil

	case config.BackendPostgres:
		migrateCfg := *cfg
		migrateCfg.Store.Driver = config.DriverPostgres
		if err := pgInfra.RunMigrations(&migrateCfg, log); err != nil {
			return nil, nil, domain.Unavailable("postgres migrations failed", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, domain.Unavailable("postgres is unreachable", err)
		}
		repo := pgRepo.NewTaskRepository(pool, log)
		return taskUC.NewStore(taskUC.New(repo, log)), repo.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Client.Backend)
	}
}
