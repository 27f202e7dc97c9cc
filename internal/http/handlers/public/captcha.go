package public

import (
	"github.com/nexacart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetCaptchaSetting 获取公开验证码配置（提供方与场景开关）
func (h *Handler) GetCaptchaSetting(c *gin.Context) {
	setting, err := h.CaptchaService.GetPublicSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.captcha_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// GenerateImageCaptcha 生成图片验证码挑战
func (h *Handler) GenerateImageCaptcha(c *gin.Context) {
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondCaptchaError(c, err)
		return
	}
	response.Success(c, challenge)
}
