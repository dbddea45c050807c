package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFirstSettledReturnsResult(t *testing.T) {
	v, err := FirstSettled(context.Background(), time.Second, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFirstSettledPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := FirstSettled(context.Background(), time.Second, func(context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
}

// TestFirstSettledDeadlineCancelsLoser - o prazo vence e fn vê o cancelamento
func TestFirstSettledDeadlineCancelsLoser(t *testing.T) {
	cancelled := make(chan struct{})
	v, err := FirstSettled(context.Background(), 10*time.Millisecond, func(ctx context.Context) ([]string, error) {
		<-ctx.Done()
		close(cancelled)
		return []string{"tarde"}, nil
	})

	assert.ErrorIs(t, err, ErrDeadline)
	assert.Nil(t, v)
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("fn não foi cancelada")
	}
}

func TestFirstSettledParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FirstSettled(ctx, time.Second, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollerTicksUntilStopped(t *testing.T) {
	var n atomic.Int32
	p := Start(context.Background(), 2*time.Millisecond, func(context.Context) bool {
		n.Add(1)
		return true
	})

	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)
	p.Stop()
	p.Stop()

	after := n.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, n.Load())
}

func TestPollerStopsWhenFnReturnsFalse(t *testing.T) {
	var n atomic.Int32
	p := Start(context.Background(), time.Millisecond, func(context.Context) bool {
		return n.Add(1) < 2
	})

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("poller não parou")
	}
	assert.Equal(t, int32(2), n.Load())
	p.Stop()
}

func TestNilPollerStop(t *testing.T) {
	var p *Poller
	assert.NotPanics(t, p.Stop)
}
