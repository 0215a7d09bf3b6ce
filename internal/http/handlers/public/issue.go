package public

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/whistledesk/internal/constants"
	handlershared "github.com/whistledesk/internal/http/handlers/shared"
	"github.com/whistledesk/internal/http/response"
	"github.com/whistledesk/internal/i18n"
	"github.com/whistledesk/internal/models"
	"github.com/whistledesk/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	issuePayloadField    = "payload"
	issueAttachmentField = "attachment"
)

// ReporterRequest optional reporter details
type ReporterRequest struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Anonymous bool   `json:"anonymous"`
}

// SubmitIssueRequest new report. Multipart submissions carry this as JSON in the
// "payload" field next to an optional "attachment" file.
type SubmitIssueRequest struct {
	Reporter            *ReporterRequest                    `json:"reporter"`
	ImplicatedPersonnel models.ImplicatedPersonnel          `json:"implicatedPersonnel"`
	Malpractice         models.Malpractice                  `json:"malpractice"`
	Browser             string                              `json:"browser"`
	DeviceID            string                              `json:"deviceId"`
	CaptchaPayload      handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// PublicIssueResponse admin response as the reporter sees it
type PublicIssueResponse struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicIssueView status page for a REF, without reporter details
type PublicIssueView struct {
	Ref       string                `json:"ref"`
	Status    string                `json:"status"`
	Source    string                `json:"source"`
	Type      string                `json:"type"`
	Responses []PublicIssueResponse `json:"responses"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// SubmitIssue files a report and returns its REF
func (h *Handler) SubmitIssue(c *gin.Context) {
	req, ok := bindSubmitIssueRequest(c)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.CaptchaService.Verify(constants.CaptchaSceneIssueSubmit, req.CaptchaPayload.ToServicePayload()); err != nil {
		respondWithMappedError(c, err, issueSubmitErrorRules)
		return
	}

	var attachment string
	if file, err := c.FormFile(issueAttachmentField); err == nil {
		attachment, err = h.UploadService.SaveAttachment(file)
		if err != nil {
			if errors.Is(err, service.ErrFileTooLarge) || errors.Is(err, service.ErrInvalidFileType) {
				respondWithMappedError(c, err, issueSubmitErrorRules)
				return
			}
			respondError(c, response.CodeInternal, "error.upload_failed", err)
			return
		}
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	input := service.SubmitIssueInput{
		ImplicatedPersonnel: req.ImplicatedPersonnel,
		Malpractice:         req.Malpractice,
		Attachment:          attachment,
		Source:              constants.IssueSourceWeb,
	}
	if req.Reporter != nil {
		input.Reporter = &service.ReporterInput{
			FullName:  req.Reporter.FullName,
			Email:     req.Reporter.Email,
			Phone:     req.Reporter.Phone,
			Anonymous: req.Reporter.Anonymous,
		}
	}
	meta := handlershared.RequestMeta(c, req.Browser, req.DeviceID)
	issue, err := h.IssueService.Submit(input, meta)
	if err != nil {
		respondWithMappedError(c, err, issueSubmitErrorRules)
		return
	}
	response.Created(c, i18n.T(meta.Locale, "issue.submitted"), gin.H{
		"ref":    issue.Ref,
		"status": issue.Status,
	})
}

// GetIssueStatus status page for a reporter holding a REF
func (h *Handler) GetIssueStatus(c *gin.Context) {
	issue, err := h.IssueService.GetByRef(c.Param("ref"))
	if err != nil {
		respondWithMappedError(c, err, issueSubmitErrorRules)
		return
	}
	response.Success(c, buildPublicIssueView(issue))
}

func bindSubmitIssueRequest(c *gin.Context) (SubmitIssueRequest, bool) {
	var req SubmitIssueRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		raw := strings.TrimSpace(c.PostForm(issuePayloadField))
		if raw == "" {
			return req, false
		}
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			requestLog(c).Debugw("public_issue_payload_invalid", "error", err)
			return req, false
		}
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, false
	}
	return req, true
}

func buildPublicIssueView(issue *models.Issue) PublicIssueView {
	view := PublicIssueView{
		Ref:       issue.Ref,
		Status:    issue.Status,
		Source:    issue.Source,
		Type:      issue.Malpractice.Type,
		Responses: make([]PublicIssueResponse, 0, len(issue.Responses)),
		CreatedAt: issue.CreatedAt,
		UpdatedAt: issue.UpdatedAt,
	}
	for _, item := range issue.Responses {
		view.Responses = append(view.Responses, PublicIssueResponse{
			Message:   item.Message,
			CreatedAt: item.CreatedAt,
		})
	}
	return view
}
