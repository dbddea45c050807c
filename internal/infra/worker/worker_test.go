package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type countingExpirer struct {
	calls atomic.Int32
}

func (e *countingExpirer) ExpireOverdue(context.Context) (int64, error) {
	if e.calls.Add(1) == 2 {
		return 0, errors.New("db down")
	}
	return 1, nil
}

func TestInviteExpirationWorkerRunsUntilCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	exp := &countingExpirer{}
	w := NewInviteExpirationWorker(exp, zap.NewNop()).WithInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return exp.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	<-done
}

type recordingSyncer struct {
	mu      sync.Mutex
	clinics []string
}

func (s *recordingSyncer) Execute(_ context.Context, clinicID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clinics = append(s.clinics, clinicID)
	if clinicID == "broken" {
		return 0, errors.New("clinicorp 500")
	}
	return 2, nil
}

func TestAppointmentSyncWorkerSyncsEveryClinicOnStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := &recordingSyncer{}
	w := NewAppointmentSyncWorker(s, []string{"c1", "broken", "c2"}, zap.NewNop()).WithInterval(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.clinics) == 3
	}, time.Second, time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []string{"c1", "broken", "c2"}, s.clinics)
}
