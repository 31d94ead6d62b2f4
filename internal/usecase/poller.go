package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/esports-pickem/internal/domain/event"
	"github.com/riskibarqy/esports-pickem/internal/platform/logging"
	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

const (
	CycleSchedule = "schedule"
	CycleLeagues  = "leagues"

	defaultScheduleInterval = 2 * time.Minute
	defaultLeaguesInterval  = 6 * time.Hour
	defaultCycleTimeout     = 90 * time.Second
)

// ErrCycleInFlight is returned when a cycle is triggered while the previous
// run of the same cycle has not finished.
var ErrCycleInFlight = crerr.New("poller cycle already running")

type CacheSynchronizer interface {
	RefreshSchedule(ctx context.Context) (int, error)
	RefreshLeagues(ctx context.Context) (int, error)
	GetCachedSchedule(ctx context.Context) ([]event.Event, error)
}

type AutoScorer interface {
	AutoScore(ctx context.Context, candidates []event.Event) (int, error)
}

type PollerConfig struct {
	ScheduleInterval time.Duration
	LeaguesInterval  time.Duration
	CycleTimeout     time.Duration
}

type CycleResult struct {
	Cycle     string
	Refreshed int
	Scored    int
}

// Poller owns the two periodic cycles. Start runs both once, in parallel, and
// then hands them to a cron scheduler. Each cycle has its own in-flight flag so
// a slow run is skipped rather than doubled.
type Poller struct {
	sync   CacheSynchronizer
	scorer AutoScorer
	logger *logging.Logger
	cfg    PollerConfig

	mu      sync.Mutex
	cron    *cron.Cron
	started bool
	stopped bool

	scheduleRunning atomic.Bool
	leaguesRunning  atomic.Bool
}

func NewPoller(synchronizer CacheSynchronizer, scorer AutoScorer, logger *logging.Logger, cfg PollerConfig) *Poller {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ScheduleInterval <= 0 {
		cfg.ScheduleInterval = defaultScheduleInterval
	}
	if cfg.LeaguesInterval <= 0 {
		cfg.LeaguesInterval = defaultLeaguesInterval
	}
	if cfg.CycleTimeout <= 0 {
		cfg.CycleTimeout = defaultCycleTimeout
	}

	logger = logger.With("component", "poller")
	cronLogger := cronLogAdapter{logger: logger}
	return &Poller{
		sync:   synchronizer,
		scorer: scorer,
		logger: logger,
		cfg:    cfg,
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger)),
		),
	}
}

// Start blocks for the cold start run of both cycles and then schedules them.
// Cycles run on a context detached from ctx cancellation so Stop never aborts
// a fetch in flight. Calling Start twice is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	base := context.WithoutCancel(ctx)

	var wg conc.WaitGroup
	wg.Go(func() { _, _ = p.TriggerSchedule(base) })
	wg.Go(func() { _, _ = p.TriggerLeagues(base) })
	wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.cron.Schedule(cron.Every(p.cfg.ScheduleInterval), cron.FuncJob(func() { _, _ = p.TriggerSchedule(base) }))
	p.cron.Schedule(cron.Every(p.cfg.LeaguesInterval), cron.FuncJob(func() { _, _ = p.TriggerLeagues(base) }))
	p.cron.Start()

	p.logger.InfoContext(ctx, "poller started",
		"schedule_interval", p.cfg.ScheduleInterval.String(),
		"leagues_interval", p.cfg.LeaguesInterval.String(),
	)
}

// Stop cancels future ticks. Runs already in progress finish on their own.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	// the returned context would wait for running jobs; it is ignored on purpose
	_ = p.cron.Stop()
	p.logger.Info("poller stopped")
}

// TriggerSchedule refreshes the schedule cache and scores every reported
// completed event of the committed cache. A failed refresh still scores the
// previously committed cache.
func (p *Poller) TriggerSchedule(ctx context.Context) (CycleResult, error) {
	result := CycleResult{Cycle: CycleSchedule}
	err := p.runGuarded(ctx, CycleSchedule, &p.scheduleRunning, func(ctx context.Context) error {
		refreshed, refreshErr := p.sync.RefreshSchedule(ctx)
		result.Refreshed = refreshed

		events, err := p.sync.GetCachedSchedule(ctx)
		if err != nil {
			return crerr.CombineErrors(refreshErr, fmt.Errorf("read back schedule cache: %w", err))
		}

		candidates := make([]event.Event, 0, len(events))
		for _, ev := range events {
			if ev.State == event.StateCompleted {
				candidates = append(candidates, ev)
			}
		}
		scored, scoreErr := p.scorer.AutoScore(ctx, candidates)
		result.Scored = scored

		return crerr.CombineErrors(refreshErr, scoreErr)
	})
	return result, err
}

func (p *Poller) TriggerLeagues(ctx context.Context) (CycleResult, error) {
	result := CycleResult{Cycle: CycleLeagues}
	err := p.runGuarded(ctx, CycleLeagues, &p.leaguesRunning, func(ctx context.Context) error {
		refreshed, err := p.sync.RefreshLeagues(ctx)
		result.Refreshed = refreshed
		return err
	})
	return result, err
}

func (p *Poller) runGuarded(ctx context.Context, name string, running *atomic.Bool, fn func(context.Context) error) error {
	if !running.CompareAndSwap(false, true) {
		p.logger.InfoContext(ctx, "poller cycle still running, skipping", "cycle", name)
		return ErrCycleInFlight
	}
	defer running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, p.cfg.CycleTimeout)
	defer cancel()

	start := time.Now()
	var (
		catcher panics.Catcher
		err     error
	)
	catcher.Try(func() { err = fn(ctx) })
	if recovered := catcher.Recovered(); recovered != nil {
		err = recovered.AsError()
	}

	duration := time.Since(start).Milliseconds()
	if err != nil {
		p.logger.WarnContext(ctx, "poller cycle failed", "cycle", name, "duration_ms", duration, "error", err)
		return err
	}
	p.logger.InfoContext(ctx, "poller cycle finished", "cycle", name, "duration_ms", duration)
	return nil
}

type cronLogAdapter struct {
	logger *logging.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Debug("cron: "+msg, keysAndValues...)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
