package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const updateRetries = 3

// TaskStore keeps each task as a JSON document under task:<id>, indexes them
// by creation time in a sorted set and announces every write on a channel.
type TaskStore struct {
	client *redislib.Client
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

var (
	_ repository.TaskStore  = (*TaskStore)(nil)
	_ repository.Subscriber = (*TaskStore)(nil)
)

// NewTaskStore creates a Redis-backed document store. prefix namespaces every key.
func NewTaskStore(client *redislib.Client, prefix string, logger *zap.Logger) *TaskStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskStore{
		client: client,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

func (s *TaskStore) List(ctx context.Context) ([]domain.Task, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, domain.Unavailable("list tasks", err)
	}
	tasks := make([]domain.Task, 0, len(ids))
	if len(ids) == 0 {
		return tasks, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.taskKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, domain.Unavailable("list tasks", err)
	}

	for i, raw := range values {
		str, ok := raw.(string)
		if !ok {
			// deleted between the index read and the fetch
			continue
		}
		var task domain.Task
		if err := json.Unmarshal([]byte(str), &task); err != nil {
			s.logger.Warn("skipping malformed task document", zap.String("id", ids[i]), zap.Error(err))
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (s *TaskStore) Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	task := input.NewTask(uuid.NewString(), time.UnixMilli(s.now().UnixMilli()))
	payload, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Set(ctx, s.taskKey(task.ID), payload, 0)
		pipe.ZAdd(ctx, s.indexKey(), redislib.Z{
			Score:  float64(task.CreatedAt.UnixMilli()),
			Member: task.ID,
		})
		return nil
	})
	if err != nil {
		return nil, domain.Unavailable("create task", err)
	}

	s.announce(ctx, task.ID)
	return &task, nil
}

// Update performs an optimistic read-modify-write guarded by WATCH.
func (s *TaskStore) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}

	key := s.taskKey(id)
	txf := func(tx *redislib.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redislib.Nil) {
				return domain.ErrTaskNotFound
			}
			return err
		}
		var current domain.Task
		if err := json.Unmarshal(raw, &current); err != nil {
			return err
		}
		payload, err := json.Marshal(patch.Apply(current))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < updateRetries; i++ {
		err = s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redislib.TxFailedErr) {
			break
		}
	}
	switch {
	case err == nil:
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return err
	default:
		return domain.Unavailable("update task", err)
	}

	s.announce(ctx, id)
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Del(ctx, s.taskKey(id))
		pipe.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return domain.Unavailable("delete task", err)
	}
	s.announce(ctx, id)
	return nil
}

// Subscribe listens on the change channel and re-reads the whole list for
// every announcement. The first snapshot is delivered before it returns.
func (s *TaskStore) Subscribe(ctx context.Context, onChange repository.SnapshotFunc, onError func(error)) (repository.Unsubscribe, error) {
	if onChange == nil {
		return nil, domain.Invalid("snapshot callback is required")
	}
	if onError == nil {
		onError = func(error) {}
	}

	pubsub := s.client.Subscribe(ctx, s.channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, domain.Unavailable("subscribe", err)
	}

	initial, err := s.List(ctx)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	onChange(initial)

	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				tasks, err := s.List(subCtx)
				if err != nil {
					if subCtx.Err() != nil {
						return
					}
					s.logger.Warn("refresh after change notification failed", zap.Error(err))
					onError(err)
					continue
				}
				onChange(tasks)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = pubsub.Close()
			<-done
		})
	}, nil
}

func (s *TaskStore) announce(ctx context.Context, id string) {
	if err := s.client.Publish(ctx, s.channel(), id).Err(); err != nil {
		s.logger.Warn("failed to publish task change", zap.String("id", id), zap.Error(err))
	}
}

func (s *TaskStore) taskKey(id string) string {
	return fmt.Sprintf("%stask:%s", s.prefix, id)
}

func (s *TaskStore) indexKey() string {
	return s.prefix + "tasks:created"
}

func (s *TaskStore) channel() string {
	return s.prefix + "tasks:changes"
}
