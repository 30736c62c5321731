// Package scheduler runs periodic maintenance such as the version retention sweep.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
)

// Sweeper prunes versions across all transcriptions
type Sweeper interface {
	SweepAll(ctx context.Context) (int, error)
}

// Status describes the sweep job
type Status struct {
	Enabled     bool       `json:"enabled"`
	Schedule    string     `json:"schedule"`
	Running     bool       `json:"running"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	LastDeleted int        `json:"last_deleted"`
	LastError   string     `json:"last_error,omitempty"`
}

// ErrSweepRunning is returned when a sweep is requested while one is in progress
var ErrSweepRunning = errors.New("retention sweep already running")

var _ interfaces.SchedulerService = (*Service)(nil)

// Service runs the retention sweep on a cron schedule
type Service struct {
	sweeper Sweeper
	config  common.VersionsConfig
	logger  arbor.ILogger

	mu          sync.Mutex // Protects the fields below
	cron        *cron.Cron
	running     bool
	sweeping    bool
	schedule    cron.Schedule
	lastRun     *time.Time
	lastDeleted int
	lastError   string
	cancel      context.CancelFunc
}

// NewService creates a new scheduler service
func NewService(sweeper Sweeper, config common.VersionsConfig, logger arbor.ILogger) *Service {
	return &Service{
		sweeper: sweeper,
		config:  config,
		logger:  logger,
	}
}

// Start registers the sweep on its schedule and starts a fresh cron runner,
// so the service can be started again after Stop. A disabled sweep makes
// Start a no-op.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if !s.config.SweepEnabled {
		s.logger.Info().Msg("Retention sweep disabled")
		return nil
	}
	if err := common.ValidateSweepSchedule(s.config.SweepSchedule); err != nil {
		return fmt.Errorf("invalid sweep schedule: %w", err)
	}

	schedule, err := cron.ParseStandard(s.config.SweepSchedule)
	if err != nil {
		return fmt.Errorf("failed to parse sweep schedule: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cron = cron.New()
	s.cron.Schedule(schedule, cron.FuncJob(func() { s.runScheduled(ctx) }))
	s.cancel = cancel
	s.schedule = schedule
	s.cron.Start()
	s.running = true

	s.logger.Info().Str("schedule", s.config.SweepSchedule).Msg("Scheduler started")
	return nil
}

// Stop halts the cron runner, cancels a sweep in progress and waits for it
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	c, cancel := s.cron, s.cancel
	s.mu.Unlock()

	cancel()
	<-c.Stop().Done()

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

func (s *Service) runScheduled(ctx context.Context) {
	defer common.Recover(s.logger, "retention_sweep")

	if _, err := s.RunSweep(ctx); err != nil && !errors.Is(err, ErrSweepRunning) {
		s.logger.Warn().Err(err).Msg("Scheduled retention sweep failed")
	}
}

// RunSweep runs the retention sweep now. Overlapping runs are refused with
// ErrSweepRunning.
func (s *Service) RunSweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.sweeping {
		s.mu.Unlock()
		s.logger.Debug().Msg("Retention sweep skipped, previous run still in progress")
		return 0, ErrSweepRunning
	}
	s.sweeping = true
	s.mu.Unlock()

	start := time.Now()
	deleted, err := s.sweeper.SweepAll(ctx)

	s.mu.Lock()
	s.sweeping = false
	s.lastRun = &start
	s.lastDeleted = deleted
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
	s.mu.Unlock()

	return deleted, err
}

// Status returns the current state of the sweep job
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Enabled:     s.config.SweepEnabled,
		Schedule:    s.config.SweepSchedule,
		Running:     s.sweeping,
		LastRun:     s.lastRun,
		LastDeleted: s.lastDeleted,
		LastError:   s.lastError,
	}
	if s.running && s.schedule != nil {
		next := s.schedule.Next(time.Now())
		status.NextRun = &next
	}
	return status
}
