package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldops/visits-service/internal/service"
)

// SweepRunner is the daily job body, satisfied by service.Generator.
type SweepRunner interface {
	GenerateForAllActive(ctx context.Context, asOf time.Time) (service.SweepResult, error)
}

type Config struct {
	RunHour       int
	RunMinute     int
	CheckInterval time.Duration
}

// DailyTrigger fires the visit sweep once per calendar day at the
// configured time. It polls on a short interval and tracks the last date
// it ran for, so a restart after the run time does not re-trigger and a
// restart before it still catches the slot.
type DailyTrigger struct {
	config Config
	runner SweepRunner
	log    zerolog.Logger
	now    func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	running     bool
	lastRunDate string
}

func NewDailyTrigger(config Config, runner SweepRunner, log zerolog.Logger) *DailyTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	return &DailyTrigger{
		config: config,
		runner: runner,
		log:    log,
		now:    time.Now,
	}
}

func (t *DailyTrigger) Start(ctx context.Context) {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.log.Info().
		Int("hour", t.config.RunHour).
		Int("minute", t.config.RunMinute).
		Dur("check_interval", t.config.CheckInterval).
		Msg("daily visit trigger started")
}

func (t *DailyTrigger) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	t.wg.Wait()
	t.log.Info().Msg("daily visit trigger stopped")
}

func (t *DailyTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.maybeRun(ctx)
		}
	}
}

func (t *DailyTrigger) maybeRun(ctx context.Context) {
	now := t.now()
	today := now.Format("2006-01-02")

	t.mu.Lock()
	alreadyRan := t.lastRunDate == today
	t.mu.Unlock()
	if alreadyRan {
		return
	}

	runAt := time.Date(now.Year(), now.Month(), now.Day(), t.config.RunHour, t.config.RunMinute, 0, 0, now.Location())
	if now.Before(runAt) {
		return
	}

	t.mu.Lock()
	t.lastRunDate = today
	t.mu.Unlock()

	result, err := t.runner.GenerateForAllActive(ctx, now)
	if err != nil {
		t.log.Error().Err(err).Msg("daily visit sweep failed")
		return
	}
	t.log.Info().
		Int("contracts", result.ContractsSwept).
		Int("visits_created", result.VisitsCreated).
		Int64("contracts_closed", result.ContractsClosed).
		Msg("daily visit sweep completed")
}
