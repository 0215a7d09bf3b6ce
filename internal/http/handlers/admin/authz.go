package admin

import (
	"github.com/whistledesk/internal/constants"
	handlershared "github.com/whistledesk/internal/http/handlers/shared"
	"github.com/whistledesk/internal/http/response"
	"github.com/whistledesk/internal/models"
	"github.com/whistledesk/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAuthzRolePolicies lists the policies held by a role
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	response.Success(c, policies)
}

// ReloadAuthzPolicy picks up policy changes written by portalctl
func (h *Handler) ReloadAuthzPolicy(c *gin.Context) {
	claims, ok := handlershared.AdminClaims(c)
	if !ok {
		return
	}
	if err := h.AuthzService.ReloadPolicy(); err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(claims.Role)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	h.AuditService.Record(service.AuditEntry{
		Meta:     handlershared.RequestMeta(c, "", ""),
		Activity: constants.ActivityAuthzPolicyReloaded,
		Actor: service.AuditActor{
			UserID: claims.AdminID,
			Model:  constants.ActorModelAdmin,
			Name:   claims.Email,
			Role:   claims.Role,
		},
		Data: models.JSON{"role": claims.Role, "policies": len(policies)},
	})
	requestLog(c).Infow("admin_authz_policy_reloaded", "admin_id", claims.AdminID, "policies", len(policies))

	response.Success(c, gin.H{"role": claims.Role, "policies": policies})
}
