package admin

import (
	"strings"

	"github.com/whistledesk/internal/constants"
	handlershared "github.com/whistledesk/internal/http/handlers/shared"
	"github.com/whistledesk/internal/http/response"
	"github.com/whistledesk/internal/models"
	"github.com/whistledesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondWithMappedError(c *gin.Context, err error, rules []handlershared.MappedHandlerError) {
	handlershared.RespondWithMappedError(c, err, rules, response.CodeInternal, "error.internal")
}

// bearerToken reads the credential. A malformed Authorization header is
// answered and audited under activity here.
func (h *Handler) bearerToken(c *gin.Context, meta service.RequestMeta, activity string) (string, bool) {
	token, ok := handlershared.BearerToken(c, handlershared.CookieName(h.Config.Cookie))
	if !ok {
		h.recordRejected(meta, activity, "", "auth_header_invalid")
		respondError(c, response.CodeUnauthorized, "error.auth_header_invalid", nil)
		return "", false
	}
	return token, true
}

// recordRejected audits a request turned away before it reached the service
func (h *Handler) recordRejected(meta service.RequestMeta, activity, email, reason string) {
	h.AuditService.Record(service.AuditEntry{
		Meta:     meta,
		Activity: activity,
		Actor: service.AuditActor{
			Model: constants.ActorModelAdmin,
			Name:  strings.ToLower(strings.TrimSpace(email)),
			Role:  constants.RoleAdmin,
		},
		Data: models.JSON{"reason": reason},
	})
}
