package worker

import (
	"context"
	"errors"
	"time"

	"github.com/whistledesk/internal/config"
	"github.com/whistledesk/internal/logger"
)

const (
	defaultSweepInterval  = 10 * time.Minute
	defaultSweepRetention = 24 * time.Hour
)

// SessionSweeper deletes session rows once they have been expired for longer than the retention
type SessionSweeper interface {
	SweepExpiredSessions(retention time.Duration) (int64, error)
}

// SweepService periodic expired-session cleanup
type SweepService struct {
	sweeper   SessionSweeper
	interval  time.Duration
	retention time.Duration
	stop      chan struct{}
	done      chan struct{}
}

// NewSweepService creates the sweep service
func NewSweepService(cfg config.SessionConfig, sweeper SessionSweeper) (*SweepService, error) {
	if sweeper == nil {
		return nil, errors.New("session sweeper is nil")
	}
	interval := time.Duration(cfg.SweepIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	retention := time.Duration(cfg.RetentionHours) * time.Hour
	if retention <= 0 {
		retention = defaultSweepRetention
	}
	return &SweepService{
		sweeper:   sweeper,
		interval:  interval,
		retention: retention,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Name service name
func (s *SweepService) Name() string {
	return "session_sweeper"
}

// Start sweeps once, then on every tick until ctx ends or Stop is called
func (s *SweepService) Start(ctx context.Context) error {
	defer close(s.done)
	s.RunOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// Stop ends the loop and waits for it
func (s *SweepService) Stop(ctx context.Context) error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single sweep
func (s *SweepService) RunOnce() int64 {
	deleted, err := s.sweeper.SweepExpiredSessions(s.retention)
	if err != nil {
		logger.Warnw("worker_session_sweep_failed", "error", err)
		return 0
	}
	if deleted > 0 {
		logger.Infow("worker_session_sweep_done", "deleted", deleted, "retention", s.retention.String())
	}
	return deleted
}
