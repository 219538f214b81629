package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) Execute(context.Context) (*usecase.RunFollowUpsOutput, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return &usecase.RunFollowUpsOutput{Reminders: []usecase.FollowUpReminder{{SubmissionID: "a", DaysSince: 1}}}, nil
}

func TestFollowUpWorker_RunsImmediatelyAndOnTick(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &countingRunner{}
	w := NewFollowUpWorker(runner, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestFollowUpWorker_KeepsRunningAfterError(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &countingRunner{err: errors.New("db down")}
	w := NewFollowUpWorker(runner, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
