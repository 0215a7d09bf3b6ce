package admin

import (
	"net/http"
	"time"

	handlershared "github.com/whistledesk/internal/http/handlers/shared"
	"github.com/whistledesk/internal/i18n"

	"github.com/gin-gonic/gin"
)

const defaultFeedInterval = 5 * time.Second

// IssueStream pushes a full issue snapshot to the dashboard on every tick until
// the client leaves or its credential stops verifying (logout, rotation, expiry).
func (h *Handler) IssueStream(c *gin.Context) {
	interval := time.Duration(h.Config.Feed.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultFeedInterval
	}
	token := handlershared.AdminToken(c)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	if !h.pushIssueSnapshot(c) {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !h.streamCredentialValid(c, token) {
				return
			}
			if !h.pushIssueSnapshot(c) {
				return
			}
		}
	}
}

// streamCredentialValid re-verifies the credential before each push and closes
// the stream with an error event once it fails
func (h *Handler) streamCredentialValid(c *gin.Context, token string) bool {
	_, err := h.AuthService.Verify(c.Request.Context(), token)
	if err == nil {
		return true
	}
	key := "error.token_invalid"
	if rule, ok := handlershared.LookupMappedError(err, handlershared.AuthErrorRules); ok {
		key = rule.Key
	} else {
		requestLog(c).Errorw("admin_issue_stream_verify_failed", "error", err)
	}
	requestLog(c).Infow("admin_issue_stream_closed", "reason", key)
	c.SSEvent("error", gin.H{"message": i18n.T(i18n.ResolveLocale(c), key)})
	c.Writer.Flush()
	return false
}

func (h *Handler) pushIssueSnapshot(c *gin.Context) bool {
	snapshot, err := h.IssueService.Snapshot()
	if err != nil {
		requestLog(c).Warnw("admin_issue_stream_snapshot_failed", "error", err)
		c.SSEvent("error", gin.H{"message": "snapshot unavailable"})
		c.Writer.Flush()
		return true
	}
	c.SSEvent("issues", snapshot)
	c.Writer.Flush()
	return c.Request.Context().Err() == nil
}
