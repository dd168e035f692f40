package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonitor_Refresh(t *testing.T) {
	m := New(0, nil)
	m.Register("store", func(ctx context.Context) error { return nil })
	m.Register("cache", func(ctx context.Context) error { return errors.New("down") })

	assert.False(t, m.IsOnline())

	m.Refresh()
	status := m.GetStatus()
	assert.True(t, status.Services["store"])
	assert.False(t, status.Services["cache"])
	assert.False(t, m.IsOnline())
	assert.False(t, status.LastCheck.IsZero())
}

func TestMonitor_AllHealthy(t *testing.T) {
	m := New(0, nil)
	m.Register("store", func(ctx context.Context) error { return nil })
	m.Refresh()
	assert.True(t, m.IsOnline())

	m.Stop()
	m.Stop()
}
