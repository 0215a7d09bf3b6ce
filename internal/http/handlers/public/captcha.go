package public

import (
	handlershared "github.com/whistledesk/internal/http/handlers/shared"
	"github.com/whistledesk/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetCaptchaConfig tells public forms which scenes need a captcha
func (h *Handler) GetCaptchaConfig(c *gin.Context) {
	response.Success(c, h.CaptchaService.PublicSetting())
}

// GetImageCaptcha issues an image challenge
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondWithMappedError(c, err, handlershared.CaptchaErrorRules)
		return
	}
	response.Success(c, challenge)
}
