package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/whistledesk/internal/config"
	"github.com/whistledesk/internal/logger"
	"github.com/whistledesk/internal/models"
	"github.com/whistledesk/internal/repository"
)

// AuditEntry one activity to record
type AuditEntry struct {
	Meta     RequestMeta
	Activity string
	Actor    AuditActor
	Data     models.JSON
}

// AuditService records audit trail entries off the request path.
// Entries go through a bounded queue drained by background workers. When the
// queue is full, or the service is closed, the entry is written inline instead
// so nothing is dropped. Write failures are logged and never returned.
type AuditService struct {
	repo repository.AuditTrailRepository

	mu      sync.RWMutex
	closed  bool
	queue   chan *models.AuditTrail
	wg      sync.WaitGroup
	closeMu sync.Once
}

// NewAuditService creates the audit service. A queue size of zero writes every entry inline.
func NewAuditService(repo repository.AuditTrailRepository, cfg config.AuditConfig) *AuditService {
	s := &AuditService{repo: repo}
	if cfg.QueueSize <= 0 {
		return s
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	s.queue = make(chan *models.AuditTrail, cfg.QueueSize)
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.drain()
	}
	return s
}

// Record queues entry for writing
func (s *AuditService) Record(entry AuditEntry) {
	if s == nil || s.repo == nil {
		return
	}
	item := buildAuditTrail(entry)

	s.mu.RLock()
	if !s.closed && s.queue != nil {
		select {
		case s.queue <- item:
			s.mu.RUnlock()
			return
		default:
		}
	}
	s.mu.RUnlock()
	s.write(item)
}

// Close stops accepting queued entries and waits for the queue to drain or ctx to end.
func (s *AuditService) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.closeMu.Do(func() {
		s.mu.Lock()
		s.closed = true
		if s.queue != nil {
			close(s.queue)
		}
		s.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListForAdmin lists audit entries
func (s *AuditService) ListForAdmin(filter repository.AuditTrailListFilter) ([]models.AuditTrail, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AuditTrail{}, 0, nil
	}
	return s.repo.ListAdmin(filter)
}

func (s *AuditService) drain() {
	defer s.wg.Done()
	for item := range s.queue {
		s.write(item)
	}
}

func (s *AuditService) write(item *models.AuditTrail) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("audit_write_panic", "activity", item.Activity, "endpoint", item.Endpoint, "panic", r)
		}
	}()
	if err := s.repo.Create(item); err != nil {
		logger.Errorw("audit_write_failed",
			"activity", item.Activity,
			"endpoint", item.Endpoint,
			"request_id", item.RequestID,
			"error", err,
		)
	}
}

func buildAuditTrail(entry AuditEntry) *models.AuditTrail {
	return &models.AuditTrail{
		Browser:       strings.TrimSpace(entry.Meta.Browser),
		IPAddress:     strings.TrimSpace(entry.Meta.IPAddress),
		DeviceID:      strings.TrimSpace(entry.Meta.DeviceID),
		Activity:      strings.TrimSpace(entry.Activity),
		Endpoint:      strings.TrimSpace(entry.Meta.Endpoint),
		ActorUserID:   entry.Actor.UserID,
		ActorModel:    entry.Actor.Model,
		ActorName:     strings.TrimSpace(entry.Actor.Name),
		ActorRole:     entry.Actor.Role,
		DataInTransit: entry.Data,
		RequestID:     strings.TrimSpace(entry.Meta.RequestID),
		CreatedAt:     time.Now(),
	}
}
