package collection

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// Listener receives a copy of the task list after every state change.
type Listener func(tasks []domain.Task)

type Options struct {
	// WriteTimeout bounds each background store write. Zero means no timeout.
	WriteTimeout time.Duration
	Logger       *zap.Logger
}

// Collection is the in-memory task list shown to the user. Status changes,
// edits and deletes are applied locally first and persisted in the background;
// snapshots from the store replace the confirmed part of the state while local
// writes the snapshot cannot have seen yet are re-applied on top. Each write is
// judged on its own.
type Collection struct {
	store  repository.TaskStore
	opts   Options
	logger *zap.Logger

	mu          sync.Mutex
	base        []domain.Task
	pending     []*mutation
	current     []domain.Task
	seq         uint64
	settles     uint64
	refreshing  int
	pendingErr  error
	loading     bool
	live        bool
	closed      bool
	unsubscribe repository.Unsubscribe
	tails       map[string]chan struct{}
	listeners   map[int]Listener
	nextID      int
	version     uint64

	notifyMu  sync.Mutex
	delivered uint64
	writes    sync.WaitGroup
	group     singleflight.Group
}

func New(store repository.TaskStore, opts Options) *Collection {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection{
		store:     store,
		opts:      opts,
		logger:    logger,
		base:      []domain.Task{},
		current:   []domain.Task{},
		loading:   true,
		tails:     make(map[string]chan struct{}),
		listeners: make(map[int]Listener),
	}
}

// Open loads the initial state: it subscribes when the store pushes snapshots
// and falls back to a single Refresh otherwise.
func (c *Collection) Open(ctx context.Context) error {
	sub, ok := c.store.(repository.Subscriber)
	if !ok {
		return c.Refresh(ctx)
	}

	c.mu.Lock()
	if c.live {
		c.mu.Unlock()
		return nil
	}
	c.live = true
	c.mu.Unlock()

	unsubscribe, err := sub.Subscribe(ctx, c.applySnapshot, c.fail)
	if err != nil {
		c.mu.Lock()
		c.live = false
		c.mu.Unlock()
		c.fail(err)
		return err
	}

	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
	c.logger.Debug("task subscription opened")
	return nil
}

// Live reports whether the collection receives pushed snapshots.
func (c *Collection) Live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// Refresh pulls the full list and reconciles it. Concurrent calls share one List.
func (c *Collection) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("list", func() (interface{}, error) {
		c.mu.Lock()
		since := c.settles
		c.refreshing++
		c.mu.Unlock()

		tasks, err := c.store.List(ctx)

		c.mu.Lock()
		c.refreshing--
		if err != nil {
			c.foldLocked()
			c.mu.Unlock()
			c.fail(err)
			return nil, err
		}
		c.reconcileLocked(tasks, since)
		c.unlockAndNotify()
		return nil, nil
	})
	return err
}

// AddTask creates a task in the store. Nothing is shown before the store
// assigns the id; the returned record is then inserted right away and kept
// until a later snapshot or refresh reports the store's view of it.
func (c *Collection) AddTask(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		c.fail(err)
		return nil, err
	}

	created, err := c.store.Create(ctx, input)
	if err != nil {
		c.fail(err)
		return nil, err
	}

	c.mu.Lock()
	c.seq++
	c.settles++
	c.pending = append(c.pending, &mutation{
		seq:       c.seq,
		kind:      kindCreate,
		id:        created.ID,
		task:      created.Clone(),
		settledAt: c.settles,
	})
	c.foldLocked()
	c.rebuildLocked()
	c.unlockAndNotify()
	return created, nil
}

// UpdateTaskStatus moves a task to another column. The change is visible in
// Tasks before this returns.
func (c *Collection) UpdateTaskStatus(ctx context.Context, id string, status domain.Status) error {
	return c.UpdateTask(ctx, id, domain.StatusPatch(status))
}

// UpdateTask merges patch into the task locally and persists it in the background.
func (c *Collection) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) error {
	if err := patch.Validate(); err != nil {
		c.fail(err)
		return err
	}
	if patch.IsEmpty() {
		return nil
	}
	c.enqueue(ctx, &mutation{kind: kindUpdate, id: id, patch: patch})
	return nil
}

// DeleteTask drops the task locally and deletes it in the background. Deleting
// an unknown id is not an error.
func (c *Collection) DeleteTask(ctx context.Context, id string) error {
	c.enqueue(ctx, &mutation{kind: kindDelete, id: id})
	return nil
}

func (c *Collection) enqueue(ctx context.Context, m *mutation) {
	c.mu.Lock()
	c.seq++
	m.seq = c.seq
	c.pending = append(c.pending, m)
	c.current = m.apply(c.current)

	// writes to one id reach the store in issue order
	prev := c.tails[m.id]
	done := make(chan struct{})
	c.tails[m.id] = done
	c.writes.Add(1)
	c.unlockAndNotify()

	go c.persist(context.WithoutCancel(ctx), m, prev, done)
}

func (c *Collection) persist(ctx context.Context, m *mutation, prev <-chan struct{}, done chan struct{}) {
	defer c.writes.Done()
	defer close(done)
	if prev != nil {
		<-prev
	}

	if c.opts.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.WriteTimeout)
		defer cancel()
	}

	var err error
	switch m.kind {
	case kindUpdate:
		err = c.store.Update(ctx, m.id, m.patch)
	case kindDelete:
		err = c.store.Delete(ctx, m.id)
	}
	c.settle(m, done, err)
}

func (c *Collection) settle(m *mutation, done chan struct{}, err error) {
	c.mu.Lock()
	c.settles++
	m.settledAt = c.settles
	if c.tails[m.id] == done {
		delete(c.tails, m.id)
	}

	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) && indexOf(c.current, m.id) < 0 {
			// the task is already gone locally
			c.logger.Debug("ignoring write to removed task", zap.String("id", m.id))
			err = nil
		}
	}
	if err != nil {
		c.pendingErr = err
		c.logger.Warn("task write failed",
			zap.String("id", m.id),
			zap.Uint64("seq", m.seq),
			zap.Error(err))
	}
	c.foldLocked()
	if err == nil {
		c.mu.Unlock()
		return
	}
	c.unlockAndNotify()
}

// applySnapshot is the subscription callback. A pushed snapshot is at least
// as new as every write acknowledged before it arrived.
func (c *Collection) applySnapshot(tasks []domain.Task) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.reconcileLocked(tasks, c.settles)
	c.unlockAndNotify()
}

// reconcileLocked makes snapshot the new base. Mutations that settled at or
// before since are covered by it and dropped; the rest are re-applied.
func (c *Collection) reconcileLocked(snapshot []domain.Task, since uint64) {
	c.base = domain.CloneTasks(snapshot)
	keep := c.pending[:0]
	for _, m := range c.pending {
		if !m.coveredBy(since) {
			keep = append(keep, m)
		}
	}
	for i := len(keep); i < len(c.pending); i++ {
		c.pending[i] = nil
	}
	c.pending = keep
	c.loading = false
	c.foldLocked()
	c.rebuildLocked()
}

// foldLocked moves settled mutations into base. Live collections keep them
// until a snapshot confirms them, and nothing is folded while a Refresh is in
// flight because its result may predate them.
func (c *Collection) foldLocked() {
	if c.live || c.refreshing > 0 {
		return
	}
	rest := make([]*mutation, 0, len(c.pending))
	for _, m := range c.pending {
		if m.settled() {
			c.base = m.apply(c.base)
			continue
		}
		rest = append(rest, m)
	}
	c.pending = rest
}

func (c *Collection) rebuildLocked() {
	current := domain.CloneTasks(c.base)
	for _, m := range c.pending {
		current = m.apply(current)
	}
	c.current = current
}

func (c *Collection) fail(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	c.pendingErr = err
	c.unlockAndNotify()
}

// unlockAndNotify releases mu and hands the state it guarded to listeners.
// A state older than one already delivered is dropped, so listeners never go
// backwards.
func (c *Collection) unlockAndNotify() {
	if len(c.listeners) == 0 {
		c.mu.Unlock()
		return
	}
	c.version++
	version := c.version
	snapshot := domain.CloneTasks(c.current)
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if version <= c.delivered {
		return
	}
	c.delivered = version
	for _, l := range listeners {
		l(domain.CloneTasks(snapshot))
	}
}

// Tasks returns a copy of the current list, newest first.
func (c *Collection) Tasks() []domain.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CloneTasks(c.current)
}

// Task looks up a single task by id.
func (c *Collection) Task(id string) (domain.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := indexOf(c.current, id); i >= 0 {
		return c.current[i].Clone(), true
	}
	return domain.Task{}, false
}

// Loading is true until the first snapshot or refresh has landed.
func (c *Collection) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last store failure, if any.
func (c *Collection) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingErr
}

// ErrorMessage is Err as display text; empty when there is no error.
func (c *Collection) ErrorMessage() string {
	if err := c.Err(); err != nil {
		return err.Error()
	}
	return ""
}

func (c *Collection) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingErr = nil
}

// OnChange registers a listener and returns a function removing it. Listeners
// run synchronously and must not call the collection's mutating methods.
func (c *Collection) OnChange(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Wait blocks until every background write has returned.
func (c *Collection) Wait() {
	c.writes.Wait()
}

// Close stops the subscription and waits for background writes.
func (c *Collection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	c.writes.Wait()
	return nil
}
