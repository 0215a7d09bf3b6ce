package public

import (
	"net/http"

	handlershared "github.com/whistledesk/internal/http/handlers/shared"
	"github.com/whistledesk/internal/service"

	"github.com/gin-gonic/gin"
)

// USSDCallback answers the USSD gateway with a CON or END text/plain reply
func (h *Handler) USSDCallback(c *gin.Context) {
	var req service.USSDRequest
	if err := c.ShouldBind(&req); err != nil {
		requestLog(c).Debugw("public_ussd_bind_failed", "error", err)
	}
	meta := handlershared.RequestMeta(c, "ussd:"+req.ServiceCode, req.SessionID)
	reply := h.USSDService.Handle(req, meta)
	c.String(http.StatusOK, reply.String())
}
