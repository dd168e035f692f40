package collection

import (
	"context"
	"sync"
	"time"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/repository/memory"
)

// gatedStore wraps the in-memory store with switchable failures and gates
// that hold calls open until the test releases them.
type gatedStore struct {
	*memory.Store

	mu          sync.Mutex
	gates       map[string]chan struct{}
	listGate    chan struct{}
	listStarted chan struct{}
	createErr   error
	updateErr   error
	deleteErr   error
	listErr     error
	calls       []string
}

func newGatedStore() *gatedStore {
	return &gatedStore{Store: memory.NewStore(), gates: make(map[string]chan struct{})}
}

func (s *gatedStore) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

func (s *gatedStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// hold makes matching calls block until the returned release func is called.
// key is an operation ("update", "delete") or an operation on one id ("update:x").
func (s *gatedStore) hold(key string) (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gates[key] = gate
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gates[key] == gate {
				delete(s.gates, key)
			}
			s.mu.Unlock()
			close(gate)
		})
	}
}

func (s *gatedStore) holdUpdates() (release func()) {
	return s.hold("update")
}

// pass blocks while op or op on id is held.
func (s *gatedStore) pass(ctx context.Context, op, id string) error {
	s.mu.Lock()
	gates := []chan struct{}{s.gates[op], s.gates[op+":"+id]}
	s.mu.Unlock()
	for _, gate := range gates {
		if gate == nil {
			continue
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.Unavailable(op+" task", ctx.Err())
		}
	}
	return nil
}

// holdList makes List read its result, signal started, and then block until released.
func (s *gatedStore) holdList() (started <-chan struct{}, release func()) {
	gate := make(chan struct{})
	st := make(chan struct{})
	s.mu.Lock()
	s.listGate = gate
	s.listStarted = st
	s.mu.Unlock()
	return st, func() { close(gate) }
}

func (s *gatedStore) List(ctx context.Context) ([]domain.Task, error) {
	s.record("list")
	s.mu.Lock()
	gate, started, err := s.listGate, s.listStarted, s.listErr
	s.listGate, s.listStarted = nil, nil
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	tasks, err := s.Store.List(ctx)
	if gate != nil {
		close(started)
		<-gate
	}
	return tasks, err
}

func (s *gatedStore) Create(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	s.record("create")
	s.mu.Lock()
	err := s.createErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Store.Create(ctx, input)
}

func (s *gatedStore) Update(ctx context.Context, id string, patch domain.TaskPatch) error {
	s.record("update:" + id)
	if err := s.pass(ctx, "update", id); err != nil {
		return err
	}
	s.mu.Lock()
	err := s.updateErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Store.Update(ctx, id, patch)
}

func (s *gatedStore) Delete(ctx context.Context, id string) error {
	s.record("delete:" + id)
	if err := s.pass(ctx, "delete", id); err != nil {
		return err
	}
	s.mu.Lock()
	err := s.deleteErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Store.Delete(ctx, id)
}

// pushStore lets the test decide exactly which snapshot arrives when.
type pushStore struct {
	*gatedStore

	subMu        sync.Mutex
	onChange     repository.SnapshotFunc
	onError      func(error)
	subscribeErr error
	unsubscribed bool
}

func newPushStore() *pushStore {
	return &pushStore{gatedStore: newGatedStore()}
}

func (s *pushStore) Subscribe(_ context.Context, onChange repository.SnapshotFunc, onError func(error)) (repository.Unsubscribe, error) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subscribeErr != nil {
		return nil, s.subscribeErr
	}
	s.onChange = onChange
	s.onError = onError
	return func() {
		s.subMu.Lock()
		s.unsubscribed = true
		s.subMu.Unlock()
	}, nil
}

func (s *pushStore) push(tasks ...domain.Task) {
	s.subMu.Lock()
	fn := s.onChange
	s.subMu.Unlock()
	fn(domain.CloneTasks(tasks))
}

// pushCurrent delivers whatever the backing store holds right now.
func (s *pushStore) pushCurrent() {
	tasks, _ := s.Store.List(context.Background())
	s.push(tasks...)
}

var day = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

func task(id string, status domain.Status, createdMs int64) domain.Task {
	return domain.Task{
		ID:        id,
		Title:     "task " + id,
		Status:    status,
		Priority:  domain.PriorityMedium,
		Tags:      []string{},
		DueDate:   day,
		CreatedAt: time.UnixMilli(createdMs),
		SubTasks:  []domain.SubTask{},
	}
}

func input(title string) domain.TaskInput {
	return domain.TaskInput{Title: title, DueDate: day}
}
