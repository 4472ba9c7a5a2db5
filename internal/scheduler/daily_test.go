package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/fieldops/visits-service/internal/service"
)

type fakeRunner struct {
	calls int32
	err   error
}

func (r *fakeRunner) GenerateForAllActive(ctx context.Context, asOf time.Time) (service.SweepResult, error) {
	atomic.AddInt32(&r.calls, 1)
	return service.SweepResult{}, r.err
}

func (r *fakeRunner) callCount() int32 {
	return atomic.LoadInt32(&r.calls)
}

func newTestTrigger(runner SweepRunner, at time.Time) *DailyTrigger {
	trigger := NewDailyTrigger(Config{RunHour: 2, RunMinute: 0}, runner, zerolog.Nop())
	trigger.now = func() time.Time { return at }
	return trigger
}

func TestMaybeRunFiresAfterConfiguredTime(t *testing.T) {
	runner := &fakeRunner{}
	trigger := newTestTrigger(runner, time.Date(2025, 6, 10, 2, 1, 0, 0, time.UTC))

	trigger.maybeRun(context.Background())

	assert.Equal(t, int32(1), runner.callCount())
}

func TestMaybeRunWaitsBeforeConfiguredTime(t *testing.T) {
	runner := &fakeRunner{}
	trigger := newTestTrigger(runner, time.Date(2025, 6, 10, 1, 59, 0, 0, time.UTC))

	trigger.maybeRun(context.Background())

	assert.Equal(t, int32(0), runner.callCount())
}

func TestMaybeRunFiresOncePerDay(t *testing.T) {
	runner := &fakeRunner{}
	trigger := newTestTrigger(runner, time.Date(2025, 6, 10, 2, 30, 0, 0, time.UTC))

	trigger.maybeRun(context.Background())
	trigger.maybeRun(context.Background())
	trigger.maybeRun(context.Background())

	assert.Equal(t, int32(1), runner.callCount())
}

func TestMaybeRunFiresAgainNextDay(t *testing.T) {
	runner := &fakeRunner{}
	trigger := newTestTrigger(runner, time.Date(2025, 6, 10, 2, 30, 0, 0, time.UTC))

	trigger.maybeRun(context.Background())
	trigger.now = func() time.Time { return time.Date(2025, 6, 11, 2, 30, 0, 0, time.UTC) }
	trigger.maybeRun(context.Background())

	assert.Equal(t, int32(2), runner.callCount())
}

func TestMaybeRunFailedSweepConsumesDaySlot(t *testing.T) {
	runner := &fakeRunner{err: assert.AnError}
	trigger := newTestTrigger(runner, time.Date(2025, 6, 10, 2, 30, 0, 0, time.UTC))

	trigger.maybeRun(context.Background())
	trigger.maybeRun(context.Background())

	assert.Equal(t, int32(1), runner.callCount())
}

func TestStartStop(t *testing.T) {
	runner := &fakeRunner{}
	trigger := NewDailyTrigger(Config{RunHour: 23, RunMinute: 59, CheckInterval: 5 * time.Millisecond}, runner, zerolog.Nop())

	trigger.Start(context.Background())
	trigger.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	trigger.Stop()
	trigger.Stop()
}
