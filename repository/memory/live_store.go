package memory

import (
	"context"
	"sync"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// LiveStore is a push-based TaskStore: every committed write is echoed to all
// subscribers as a full snapshot, synchronously, before the write returns.
type LiveStore struct {
	*Store

	subMu  sync.Mutex
	subs   map[int]repository.SnapshotFunc
	nextID int
}

var (
	_ repository.TaskStore  = (*LiveStore)(nil)
	_ repository.Subscriber = (*LiveStore)(nil)
)

func NewLiveStore() *LiveStore {
	return &LiveStore{
		Store: NewStore(),
		subs:  make(map[int]repository.SnapshotFunc),
	}
}

func (s *LiveStore) Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	task, err := s.Store.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.publish()
	return task, nil
}

func (s *LiveStore) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	if err := s.Store.Update(ctx, id, patch); err != nil {
		return err
	}
	s.publish()
	return nil
}

func (s *LiveStore) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.publish()
	return nil
}

// Subscribe delivers the current snapshot immediately and then one per committed write.
func (s *LiveStore) Subscribe(ctx context.Context, onChange repository.SnapshotFunc, onError func(error)) (repository.Unsubscribe, error) {
	if onChange == nil {
		return nil, domain.Invalid("snapshot callback is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.Unavailable("subscribe", err)
	}

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = onChange
	s.subMu.Unlock()

	s.Store.mu.Lock()
	snapshot := s.Store.snapshotLocked()
	s.Store.mu.Unlock()
	onChange(snapshot)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}, nil
}

func (s *LiveStore) publish() {
	s.Store.mu.Lock()
	snapshot := s.Store.snapshotLocked()
	s.Store.mu.Unlock()

	s.subMu.Lock()
	subs := make([]repository.SnapshotFunc, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(domain.CloneTasks(snapshot))
	}
}
