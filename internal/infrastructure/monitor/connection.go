package monitor

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Check tests one dependency; a nil error means healthy.
type Check func(ctx context.Context) error

type Monitor struct {
	checks  map[string]Check
	timeout time.Duration

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checks:   make(map[string]Check),
		timeout:  3 * time.Second,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Register adds a named check. Call before Start.
func (m *Monitor) Register(name string, check Check) {
	if check == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[name] = check
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	services := make(map[string]bool, len(m.status.Services))
	for k, v := range m.status.Services {
		services[k] = v
	}
	return Status{Services: services, LastCheck: m.status.LastCheck}
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every check once and records the result.
func (m *Monitor) Refresh() {
	m.mu.RLock()
	checks := make(map[string]Check, len(m.checks))
	for k, v := range m.checks {
		checks[k] = v
	}
	m.mu.RUnlock()

	status := Status{Services: make(map[string]bool, len(checks)), LastCheck: time.Now()}
	for name, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		err := check(ctx)
		cancel()
		if err != nil {
			m.logger.Warn("dependency check failed", zap.String("service", name), zap.Error(err))
		}
		status.Services[name] = err == nil
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

// PostgresCheck pings a pgx pool.
func PostgresCheck(pool *pgxpool.Pool) Check {
	return func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
}

// SQLCheck pings a database/sql handle.
func SQLCheck(db *sql.DB) Check {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
