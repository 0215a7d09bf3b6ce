package public

import (
	handlershared "github.com/whistledesk/internal/http/handlers/shared"
	"github.com/whistledesk/internal/http/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var issueSubmitErrorRules = handlershared.ConcatMappedHandlerErrors(
	handlershared.CaptchaErrorRules,
	handlershared.IssueErrorRules,
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
