package service

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/whistledesk/internal/constants"
	"github.com/whistledesk/internal/logger"
	"github.com/whistledesk/internal/models"
	"github.com/whistledesk/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// issueTransitions allowed status moves; resolved is terminal
var issueTransitions = map[string][]string{
	constants.IssueStatusSubmitted:     {constants.IssueStatusInvestigating},
	constants.IssueStatusInvestigating: {constants.IssueStatusResponded, constants.IssueStatusResolved},
	constants.IssueStatusResponded:     {constants.IssueStatusInvestigating, constants.IssueStatusResolved},
}

// CanTransitionIssue reports whether an issue may move from one status to another
func CanTransitionIssue(from, to string) bool {
	for _, next := range issueTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ReporterInput optional reporter details
type ReporterInput struct {
	FullName  string
	Email     string
	Phone     string
	Anonymous bool
}

// SubmitIssueInput a new report
type SubmitIssueInput struct {
	Reporter            *ReporterInput
	ImplicatedPersonnel models.ImplicatedPersonnel
	Malpractice         models.Malpractice
	Attachment          string
	Source              string
}

// IssueFeedSnapshot full state pushed to live feed subscribers
type IssueFeedSnapshot struct {
	Issues      []models.Issue   `json:"issues"`
	Counts      map[string]int64 `json:"counts"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// IssueService issue intake and lifecycle
type IssueService struct {
	issueRepo repository.IssueRepository
	notifier  Notifier
	audit     *AuditService
}

// NewIssueService creates the issue service
func NewIssueService(issueRepo repository.IssueRepository, notifier Notifier, audit *AuditService) *IssueService {
	return &IssueService{
		issueRepo: issueRepo,
		notifier:  notifier,
		audit:     audit,
	}
}

// Submit files a new issue and returns it with its REF
func (s *IssueService) Submit(input SubmitIssueInput, meta RequestMeta) (*models.Issue, error) {
	source := strings.ToLower(strings.TrimSpace(input.Source))
	if source == "" {
		source = constants.IssueSourceWeb
	}
	if source != constants.IssueSourceWeb && source != constants.IssueSourceUSSD {
		return nil, ErrInvalidIssueSource
	}
	malpractice := trimMalpractice(input.Malpractice)
	if malpractice.Type == "" || malpractice.Description == "" {
		return nil, ErrBadRequest
	}
	reporter, err := buildReporter(input.Reporter)
	if err != nil {
		return nil, err
	}

	issue := &models.Issue{
		Ref: uuid.NewString(),
		ImplicatedPersonnel: models.ImplicatedPersonnel{
			Name:       strings.TrimSpace(input.ImplicatedPersonnel.Name),
			Position:   strings.TrimSpace(input.ImplicatedPersonnel.Position),
			Department: strings.TrimSpace(input.ImplicatedPersonnel.Department),
		},
		Malpractice: malpractice,
		Status:      constants.IssueStatusSubmitted,
		Source:      source,
		Attachment:  strings.TrimSpace(input.Attachment),
	}
	if err := s.issueRepo.CreateWithReporter(issue, reporter); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	issue.Reporter = reporter

	s.audit.Record(AuditEntry{
		Meta:     meta,
		Activity: constants.ActivityIssueSubmitted,
		Actor:    reporterActor(reporter),
		Data: models.JSON{
			"after": models.JSON{"ref": issue.Ref, "status": issue.Status, "source": issue.Source},
		},
	})
	return issue, nil
}

// GetByRef loads an issue with its reporter and responses
func (s *IssueService) GetByRef(ref string) (*models.Issue, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNotFound
	}
	issue, err := s.issueRepo.GetByRefWithDetails(ref)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, ErrNotFound
	}
	return issue, nil
}

// List lists issues for the dashboard
func (s *IssueService) List(filter repository.IssueListFilter) ([]models.Issue, int64, error) {
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	filter.Source = strings.ToLower(strings.TrimSpace(filter.Source))
	return s.issueRepo.List(filter)
}

// Transition moves an issue along its lifecycle
func (s *IssueService) Transition(ref, status string, claims *AdminClaims, meta RequestMeta) (*models.Issue, error) {
	issue, err := s.GetByRef(ref)
	if err != nil {
		return nil, err
	}
	from := issue.Status
	to := strings.ToLower(strings.TrimSpace(status))
	if !CanTransitionIssue(from, to) {
		return nil, ErrInvalidStatusTransition
	}
	ok, err := s.issueRepo.UpdateStatus(issue.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("update issue status: %w", err)
	}
	if !ok {
		return nil, ErrInvalidStatusTransition
	}
	issue.Status = to

	s.audit.Record(AuditEntry{
		Meta:     meta,
		Activity: constants.ActivityIssueStatusChanged,
		Actor:    claimsActor(claims),
		Data: models.JSON{
			"ref":    issue.Ref,
			"before": models.JSON{"status": from},
			"after":  models.JSON{"status": to},
		},
	})
	s.notify(issue, 0)
	return issue, nil
}

// Respond adds an admin response. An issue under investigation moves to responded.
func (s *IssueService) Respond(ref, message string, claims *AdminClaims, meta RequestMeta) (*models.IssueResponse, *models.Issue, error) {
	message = strings.TrimSpace(message)
	if message == "" || claims == nil {
		return nil, nil, ErrBadRequest
	}
	issue, err := s.GetByRef(ref)
	if err != nil {
		return nil, nil, err
	}
	if issue.Status == constants.IssueStatusResolved {
		return nil, nil, ErrInvalidStatusTransition
	}

	from := issue.Status
	to := from
	if from == constants.IssueStatusInvestigating {
		to = constants.IssueStatusResponded
	}
	response := &models.IssueResponse{
		IssueID: issue.ID,
		AdminID: claims.AdminID,
		Message: message,
	}
	err = s.issueRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.issueRepo.WithTx(tx)
		if err := repo.AddResponse(response); err != nil {
			return err
		}
		if to == from {
			return nil
		}
		ok, err := repo.UpdateStatus(issue.ID, from, to)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidStatusTransition
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidStatusTransition) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("add issue response: %w", err)
	}
	issue.Status = to
	issue.Responses = append(issue.Responses, *response)

	s.audit.Record(AuditEntry{
		Meta:     meta,
		Activity: constants.ActivityIssueResponded,
		Actor:    claimsActor(claims),
		Data: models.JSON{
			"ref":        issue.Ref,
			"responseId": response.ID,
			"before":     models.JSON{"status": from},
			"after":      models.JSON{"status": to},
		},
	})
	s.notify(issue, response.ID)
	return response, issue, nil
}

// Snapshot returns every issue plus per-status counts
func (s *IssueService) Snapshot() (*IssueFeedSnapshot, error) {
	issues, err := s.issueRepo.ListAll()
	if err != nil {
		return nil, err
	}
	counts, err := s.issueRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	return &IssueFeedSnapshot{Issues: issues, Counts: counts, GeneratedAt: time.Now()}, nil
}

func (s *IssueService) notify(issue *models.Issue, responseID uint) {
	if s.notifier == nil || reporterEmail(issue.Reporter) == "" {
		return
	}
	if err := s.notifier.NotifyIssueStatus(issue.Ref, issue.Status, responseID, ""); err != nil {
		logger.Warnw("issue_notify_failed", "issue_ref", issue.Ref, "status", issue.Status, "error", err)
	}
}

func trimMalpractice(m models.Malpractice) models.Malpractice {
	return models.Malpractice{
		Type:        strings.TrimSpace(m.Type),
		Description: strings.TrimSpace(m.Description),
		Location:    strings.TrimSpace(m.Location),
		OccurredOn:  strings.TrimSpace(m.OccurredOn),
	}
}

// buildReporter returns nil when no reporter details were given.
// Anonymous reporters keep nothing but the flag.
func buildReporter(input *ReporterInput) (*models.Reporter, error) {
	if input == nil {
		return nil, nil
	}
	if input.Anonymous {
		return &models.Reporter{Anonymous: true}, nil
	}
	reporter := &models.Reporter{
		FullName: strings.TrimSpace(input.FullName),
		Email:    normalizeEmail(input.Email),
		Phone:    strings.TrimSpace(input.Phone),
	}
	if reporter.FullName == "" && reporter.Email == "" && reporter.Phone == "" {
		return nil, nil
	}
	if reporter.Email != "" {
		if _, err := mail.ParseAddress(reporter.Email); err != nil {
			return nil, ErrInvalidEmail
		}
	}
	return reporter, nil
}

func reporterActor(reporter *models.Reporter) AuditActor {
	actor := AuditActor{Model: constants.ActorModelReporter, Name: "anonymous", Role: constants.RoleReporter}
	if reporter == nil {
		return actor
	}
	actor.UserID = reporter.ID
	if !reporter.Anonymous {
		actor.Name = firstNonEmpty(reporter.FullName, reporter.Email, reporter.Phone, actor.Name)
	}
	return actor
}
