package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/whistledesk/internal/http/handlers/shared"
	"github.com/whistledesk/internal/http/response"
	"github.com/whistledesk/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAuditTrails paged audit trail for operators
func (h *Handler) ListAuditTrails(c *gin.Context) {
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
	var actorUserID uint
	if raw := strings.TrimSpace(c.Query("actor_user_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		actorUserID = uint(parsed)
	}

	entries, total, err := h.AuditService.ListForAdmin(repository.AuditTrailListFilter{
		Page:        page,
		PageSize:    pageSize,
		Endpoint:    c.Query("endpoint"),
		ActorModel:  c.Query("actor_model"),
		ActorUserID: actorUserID,
		IPAddress:   c.Query("ip_address"),
		Keyword:     c.Query("keyword"),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, entries, response.NewPagination(page, pageSize, total))
}
