package service

import (
	"errors"
	"strings"

	"github.com/whistledesk/internal/constants"
	"github.com/whistledesk/internal/i18n"
	"github.com/whistledesk/internal/logger"
	"github.com/whistledesk/internal/models"
)

const (
	ussdMenuReport = "1"
	ussdMenuStatus = "2"
	ussdSkip       = "0"
)

// USSDRequest gateway callback fields
type USSDRequest struct {
	SessionID   string `form:"sessionId" json:"sessionId"`
	ServiceCode string `form:"serviceCode" json:"serviceCode"`
	PhoneNumber string `form:"phoneNumber" json:"phoneNumber"`
	Text        string `form:"text" json:"text"`
}

// USSDReply next screen; End closes the gateway session
type USSDReply struct {
	End     bool
	Message string
}

// String renders the gateway's CON/END reply format
func (r USSDReply) String() string {
	if r.End {
		return "END " + r.Message
	}
	return "CON " + r.Message
}

// USSDService drives the USSD menu. The gateway resends every answer so far
// joined by '*', so no per-session state is kept here.
type USSDService struct {
	issues *IssueService
}

// NewUSSDService creates the USSD service
func NewUSSDService(issues *IssueService) *USSDService {
	return &USSDService{issues: issues}
}

// Handle answers one gateway callback
func (s *USSDService) Handle(req USSDRequest, meta RequestMeta) USSDReply {
	locale := meta.Locale
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return USSDReply{Message: i18n.T(locale, "ussd.main_menu")}
	}
	steps := strings.Split(text, "*")
	for i := range steps {
		steps[i] = strings.TrimSpace(steps[i])
	}

	switch steps[0] {
	case ussdMenuReport:
		return s.report(steps[1:], req, meta)
	case ussdMenuStatus:
		return s.status(steps[1:], locale)
	default:
		return USSDReply{End: true, Message: i18n.T(locale, "ussd.invalid_option")}
	}
}

func (s *USSDService) report(answers []string, req USSDRequest, meta RequestMeta) USSDReply {
	locale := meta.Locale
	switch len(answers) {
	case 0:
		return USSDReply{Message: i18n.T(locale, "ussd.ask_type")}
	case 1:
		return USSDReply{Message: i18n.T(locale, "ussd.ask_description")}
	case 2:
		return USSDReply{Message: i18n.T(locale, "ussd.ask_person")}
	case 3:
	default:
		return USSDReply{End: true, Message: i18n.T(locale, "ussd.invalid_option")}
	}

	person := answers[2]
	if person == ussdSkip {
		person = ""
	}
	input := SubmitIssueInput{
		Malpractice:         models.Malpractice{Type: answers[0], Description: answers[1]},
		ImplicatedPersonnel: models.ImplicatedPersonnel{Name: person},
		Source:              constants.IssueSourceUSSD,
	}
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
		input.Reporter = &ReporterInput{Phone: phone}
	}
	issue, err := s.issues.Submit(input, meta)
	if err != nil {
		if errors.Is(err, ErrBadRequest) {
			return USSDReply{End: true, Message: i18n.T(locale, "ussd.invalid_option")}
		}
		logger.Errorw("ussd_issue_submit_failed", "session_id", req.SessionID, "error", err)
		return USSDReply{End: true, Message: i18n.T(locale, "ussd.failed")}
	}
	return USSDReply{End: true, Message: i18n.Sprintf(locale, "ussd.submitted", issue.Ref)}
}

func (s *USSDService) status(answers []string, locale string) USSDReply {
	switch len(answers) {
	case 0:
		return USSDReply{Message: i18n.T(locale, "ussd.ask_ref")}
	case 1:
	default:
		return USSDReply{End: true, Message: i18n.T(locale, "ussd.invalid_option")}
	}
	issue, err := s.issues.GetByRef(answers[0])
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return USSDReply{End: true, Message: i18n.T(locale, "ussd.not_found")}
		}
		logger.Errorw("ussd_issue_lookup_failed", "error", err)
		return USSDReply{End: true, Message: i18n.T(locale, "ussd.failed")}
	}
	return USSDReply{End: true, Message: i18n.Sprintf(locale, "ussd.status", issue.Ref, issue.Status)}
}
