package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type sweeperStub struct {
	calls atomic.Int32
	err   error
}

func (s *sweeperStub) SweepNoShows(context.Context) (int, error) {
	s.calls.Add(1)
	return 1, s.err
}

func TestNoShowWorker_RunsUntilCancelled(t *testing.T) {
	stub := &sweeperStub{}
	w := NewNoShowWorker(stub, 5*time.Millisecond, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return stub.calls.Load() >= 3 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestNoShowWorker_ErrorsDoNotStopLoop(t *testing.T) {
	stub := &sweeperStub{err: errors.New("db down")}
	w := NewNoShowWorker(stub, 5*time.Millisecond, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	assert.Eventually(t, func() bool { return stub.calls.Load() >= 2 }, time.Second, time.Millisecond)
}

func TestNoShowWorker_CancelledBeforeStart(t *testing.T) {
	stub := &sweeperStub{}
	w := NewNoShowWorker(stub, time.Hour, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	assert.Equal(t, int32(0), stub.calls.Load())
}

func TestNewNoShowWorker_DefaultInterval(t *testing.T) {
	w := NewNoShowWorker(&sweeperStub{}, 0, logger.NewNop())
	assert.Equal(t, time.Minute, w.interval)
}
