package worker

import (
	"context"
	"errors"

	"github.com/whistledesk/internal/config"
	"github.com/whistledesk/internal/queue"

	"github.com/hibiken/asynq"
)

// queueServer the part of *asynq.Server the service drives
type queueServer interface {
	Run(handler asynq.Handler) error
	Shutdown()
}

// Service asynq queue service
type Service struct {
	name     string
	server   queueServer
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService creates the asynq queue service
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name service name
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the server until Stop
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	return s.server.Run(s.mux)
}

// Stop shuts the server down, waiting for in-flight tasks until ctx ends
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.server.Shutdown()
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
