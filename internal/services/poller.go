package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher is anything that can re-read its state from the store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// PollerConfig controls how often a pull-only collection is refreshed.
type PollerConfig struct {
	Interval time.Duration
}

// Poller periodically refreshes a collection whose store cannot push changes.
type Poller struct {
	target Refresher
	logger *zap.Logger
	cron   *cron.Cron
	cfg    PollerConfig
}

func NewPoller(target Refresher, logger *zap.Logger, cfg PollerConfig) (*Poller, error) {
	if cfg.Interval < time.Second {
		cfg.Interval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Poller{
		target: target,
		logger: logger,
		cfg:    cfg,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := p.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := p.Poll(ctx); err != nil {
			p.logger.Warn("task refresh failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// Start launches the cron scheduler.
func (p *Poller) Start() {
	if p == nil || p.cron == nil {
		return
	}
	p.cron.Start()
	p.logger.Debug("poller started", zap.Duration("interval", p.cfg.Interval))
}

// Stop waits for a running refresh to finish or ctx to expire.
func (p *Poller) Stop(ctx context.Context) {
	if p == nil || p.cron == nil {
		return
	}
	stopCtx := p.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	p.logger.Debug("poller stopped")
}

// Poll refreshes once, synchronously.
func (p *Poller) Poll(ctx context.Context) error {
	if p == nil || p.target == nil {
		return nil
	}
	return p.target.Refresh(ctx)
}
