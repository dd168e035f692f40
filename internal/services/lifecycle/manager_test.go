package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RunsHooksInReverseOnce(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	for _, name := range []string{"store", "collection", "poller"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	m.Register("ignored", nil)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"poller", "collection", "store"}, order)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 3)
}

func TestManager_JoinsErrorsAndKeepsGoing(t *testing.T) {
	m := New(0, nil)
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	ran := false

	m.Register("last", func(context.Context) error {
		ran = true
		return nil
	})
	m.Register("b", func(context.Context) error { return errB })
	m.Register("a", func(context.Context) error { return errA })

	err := m.Shutdown(context.TODO())
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.True(t, ran)
}

func TestManager_HooksSeeDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	var deadline bool
	m.Register("slow", func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	})
	require.NoError(t, m.Shutdown(context.Background()))
	assert.True(t, deadline)
}
