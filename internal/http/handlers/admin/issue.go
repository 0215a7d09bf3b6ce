package admin

import (
	handlershared "github.com/whistledesk/internal/http/handlers/shared"
	"github.com/whistledesk/internal/http/response"
	"github.com/whistledesk/internal/i18n"
	"github.com/whistledesk/internal/repository"

	"github.com/gin-gonic/gin"
)

// UpdateIssueStatusRequest lifecycle transition
type UpdateIssueStatusRequest struct {
	Status string `json:"status"`
}

// AddIssueResponseRequest admin response to a reporter
type AddIssueResponseRequest struct {
	Message string `json:"message"`
}

// ListIssues paged issue list for the dashboard
func (h *Handler) ListIssues(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	createdFrom, ok := handlershared.QueryTime(c, "created_from", false)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	createdTo, ok := handlershared.QueryTime(c, "created_to", true)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	issues, total, err := h.IssueService.List(repository.IssueListFilter{
		Page:            page,
		PageSize:        pageSize,
		Status:          c.Query("status"),
		Source:          c.Query("source"),
		MalpracticeType: c.Query("type"),
		CreatedFrom:     createdFrom,
		CreatedTo:       createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, issues, response.NewPagination(page, pageSize, total))
}

// GetIssue issue detail with reporter and responses
func (h *Handler) GetIssue(c *gin.Context) {
	issue, err := h.IssueService.GetByRef(c.Param("ref"))
	if err != nil {
		respondWithMappedError(c, err, handlershared.IssueErrorRules)
		return
	}
	response.Success(c, issue)
}

// UpdateIssueStatus moves an issue along its lifecycle
func (h *Handler) UpdateIssueStatus(c *gin.Context) {
	claims, ok := handlershared.AdminClaims(c)
	if !ok {
		return
	}
	var req UpdateIssueStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	meta := handlershared.RequestMeta(c, "", "")
	issue, err := h.IssueService.Transition(c.Param("ref"), req.Status, claims, meta)
	if err != nil {
		respondWithMappedError(c, err, handlershared.IssueErrorRules)
		return
	}
	response.SuccessWithMsg(c, i18n.T(meta.Locale, "issue.status_updated"), gin.H{
		"ref":    issue.Ref,
		"status": issue.Status,
	})
}

// AddIssueResponse records an admin response and notifies the reporter
func (h *Handler) AddIssueResponse(c *gin.Context) {
	claims, ok := handlershared.AdminClaims(c)
	if !ok {
		return
	}
	var req AddIssueResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	meta := handlershared.RequestMeta(c, "", "")
	reply, issue, err := h.IssueService.Respond(c.Param("ref"), req.Message, claims, meta)
	if err != nil {
		respondWithMappedError(c, err, handlershared.IssueErrorRules)
		return
	}
	response.Created(c, i18n.T(meta.Locale, "issue.response_added"), gin.H{
		"ref":      issue.Ref,
		"status":   issue.Status,
		"response": reply,
	})
}
