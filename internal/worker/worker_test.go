package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/whistledesk/internal/config"
	"github.com/whistledesk/internal/constants"
	"github.com/whistledesk/internal/models"
	"github.com/whistledesk/internal/provider"
	"github.com/whistledesk/internal/queue"
	"github.com/whistledesk/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupWorkerTestConsumer(t *testing.T) *Consumer {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	container, err := provider.NewContainer(&config.Config{}, db)
	if err != nil {
		t.Fatalf("new container failed: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Close(context.Background())
	})
	return NewConsumer(container)
}

func TestHandleIssueStatusEmailSkipsWhenEmailDisabled(t *testing.T) {
	consumer := setupWorkerTestConsumer(t)
	issue := &models.Issue{
		Ref:         "7d3f5a40-0000-4000-8000-000000000001",
		Malpractice: models.Malpractice{Type: "bribery", Description: "cash for contracts"},
		Status:      constants.IssueStatusInvestigating,
		Source:      constants.IssueSourceWeb,
	}
	reporter := &models.Reporter{FullName: "Jane", Email: "jane@example.com"}
	if err := consumer.IssueRepo.CreateWithReporter(issue, reporter); err != nil {
		t.Fatalf("create issue failed: %v", err)
	}

	task, err := queue.NewIssueStatusEmailTask(queue.IssueStatusEmailPayload{IssueRef: issue.Ref, Status: issue.Status})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleIssueStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("disabled email should not be retried, got %v", err)
	}
}

func TestHandleIssueStatusEmailMissingIssue(t *testing.T) {
	consumer := setupWorkerTestConsumer(t)
	task, err := queue.NewIssueStatusEmailTask(queue.IssueStatusEmailPayload{IssueRef: "missing"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleIssueStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("missing issue should be skipped, got %v", err)
	}
}

func TestHandlersRejectMalformedPayload(t *testing.T) {
	consumer := setupWorkerTestConsumer(t)
	bad := []byte("{not json")
	if err := consumer.handlePasswordResetEmail(context.Background(), asynq.NewTask(queue.TaskPasswordResetEmail, bad)); err == nil {
		t.Fatalf("malformed reset payload should fail")
	}
	if err := consumer.handleIssueStatusEmail(context.Background(), asynq.NewTask(queue.TaskIssueStatusEmail, bad)); err == nil {
		t.Fatalf("malformed issue payload should fail")
	}
}

func TestHandlePasswordResetEmailSkipsInvalidPayload(t *testing.T) {
	consumer := setupWorkerTestConsumer(t)
	task, err := queue.NewPasswordResetEmailTask(queue.PasswordResetEmailPayload{})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handlePasswordResetEmail(context.Background(), task); err != nil {
		t.Fatalf("empty payload should be skipped, got %v", err)
	}
}

func TestHandleDeliveryError(t *testing.T) {
	transient := errors.New("dial tcp: connection refused")
	cases := []struct {
		err   error
		retry bool
	}{
		{err: service.ErrEmailServiceDisabled, retry: false},
		{err: service.ErrEmailServiceNotConfigured, retry: false},
		{err: fmt.Errorf("send: %w", service.ErrEmailRecipientRejected), retry: false},
		{err: service.ErrInvalidEmail, retry: false},
		{err: transient, retry: true},
	}
	for _, tc := range cases {
		got := handleDeliveryError("worker_test", tc.err)
		if tc.retry && got == nil {
			t.Fatalf("%v should be retried", tc.err)
		}
		if !tc.retry && got != nil {
			t.Fatalf("%v should be dropped, got %v", tc.err, got)
		}
	}
}

type fakeSweeper struct {
	mu         sync.Mutex
	calls      int
	retentions []time.Duration
	err        error
}

func (f *fakeSweeper) SweepExpiredSessions(retention time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.retentions = append(f.retentions, retention)
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

func TestSweepServiceDefaultsAndRunOnce(t *testing.T) {
	sweeper := &fakeSweeper{}
	svc, err := NewSweepService(config.SessionConfig{}, sweeper)
	if err != nil {
		t.Fatalf("new sweep service failed: %v", err)
	}
	if svc.interval != defaultSweepInterval || svc.retention != defaultSweepRetention {
		t.Fatalf("unexpected defaults: interval=%s retention=%s", svc.interval, svc.retention)
	}
	if got := svc.RunOnce(); got != 2 {
		t.Fatalf("expected 2 deleted, got %d", got)
	}

	sweeper.err = errors.New("db down")
	if got := svc.RunOnce(); got != 0 {
		t.Fatalf("failed sweep should report 0, got %d", got)
	}
	if _, err := NewSweepService(config.SessionConfig{}, nil); err == nil {
		t.Fatalf("nil sweeper should fail")
	}
}

func TestSweepServiceStartStop(t *testing.T) {
	sweeper := &fakeSweeper{}
	svc, err := NewSweepService(config.SessionConfig{SweepIntervalSeconds: 3600, RetentionHours: 2}, sweeper)
	if err != nil {
		t.Fatalf("new sweep service failed: %v", err)
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Start(context.Background())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := svc.Stop(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("start returned error: %v", err)
	}
	sweeper.mu.Lock()
	defer sweeper.mu.Unlock()
	if sweeper.calls != 1 || sweeper.retentions[0] != 2*time.Hour {
		t.Fatalf("expected one initial sweep with 2h retention, got calls=%d retentions=%v", sweeper.calls, sweeper.retentions)
	}
}

type blockingQueueServer struct {
	release chan struct{}
	stopped chan struct{}
}

func (s *blockingQueueServer) Run(handler asynq.Handler) error { return nil }

func (s *blockingQueueServer) Shutdown() {
	<-s.release
	close(s.stopped)
}

func TestServiceStopHonorsDeadline(t *testing.T) {
	server := &blockingQueueServer{release: make(chan struct{}), stopped: make(chan struct{})}
	svc := &Service{name: "worker", server: server, mux: asynq.NewServeMux()}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := svc.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("stop past its deadline want DeadlineExceeded got %v", err)
	}

	close(server.release)
	select {
	case <-server.stopped:
	case <-time.After(2 * time.Second):
		t.Fatalf("shutdown should still complete in the background")
	}
}

func TestServiceStopWaitsForShutdown(t *testing.T) {
	server := &blockingQueueServer{release: make(chan struct{}), stopped: make(chan struct{})}
	close(server.release)
	svc := &Service{name: "worker", server: server, mux: asynq.NewServeMux()}

	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	select {
	case <-server.stopped:
	default:
		t.Fatalf("stop returned before shutdown finished")
	}
	var empty *Service
	if err := empty.Stop(context.Background()); err != nil {
		t.Fatalf("nil service stop should be a no-op, got %v", err)
	}
}
