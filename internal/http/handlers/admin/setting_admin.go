package admin

import (
	"errors"

	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/http/response"
	"github.com/nexacart/internal/service"

	"github.com/gin-gonic/gin"
)

// 可经通用设置接口读写的键，邮件与验证码走各自的专用接口。
var editableSettingKeys = map[string]bool{
	constants.SettingKeySiteConfig:     true,
	constants.SettingKeyCheckoutConfig: true,
	constants.SettingKeyCourierConfig:  true,
}

// GetSetting 查询设置项
func (h *Handler) GetSetting(c *gin.Context) {
	key := c.Param("key")
	if !editableSettingKeys[key] {
		respondError(c, response.CodeBadRequest, "error.setting_key_invalid", nil)
		return
	}
	value, err := h.SettingService.GetByKey(key)
	if err != nil {
		respondError(c, response.CodeInternal, "error.setting_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"key": key, "value": value})
}

// UpdateSetting 更新设置项
func (h *Handler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")
	if !editableSettingKeys[key] {
		respondError(c, response.CodeBadRequest, "error.setting_key_invalid", nil)
		return
	}
	var value map[string]interface{}
	if err := c.ShouldBindJSON(&value); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	updated, err := h.SettingService.Update(key, value)
	if err != nil {
		respondError(c, response.CodeInternal, "error.setting_update_failed", err)
		return
	}
	requestLog(c).Infow("admin_setting_updated", "key", key)
	response.Success(c, gin.H{"key": key, "value": updated})
}

// GetSMTPSetting 查询邮件设置（密码脱敏）
func (h *Handler) GetSMTPSetting(c *gin.Context) {
	setting, err := h.SettingService.GetSMTPSetting(h.Config.Email)
	if err != nil {
		respondError(c, response.CodeInternal, "error.setting_fetch_failed", err)
		return
	}
	response.Success(c, service.MaskSMTPSetting(setting))
}

// UpdateSMTPSetting 更新邮件设置
func (h *Handler) UpdateSMTPSetting(c *gin.Context) {
	var patch service.SMTPSettingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	setting, err := h.SettingService.PatchSMTPSetting(h.Config.Email, patch)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.setting_update_failed", err)
		return
	}
	requestLog(c).Infow("admin_smtp_setting_updated", "host", setting.Host, "enabled", setting.Enabled)
	response.Success(c, service.MaskSMTPSetting(setting))
}

// GetCaptchaSetting 查询验证码设置
func (h *Handler) GetCaptchaSetting(c *gin.Context) {
	setting, err := h.SettingService.GetCaptchaSetting(h.Config.Captcha)
	if err != nil {
		respondError(c, response.CodeInternal, "error.setting_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateCaptchaSetting 更新验证码设置并刷新验证码服务缓存
func (h *Handler) UpdateCaptchaSetting(c *gin.Context) {
	var patch service.CaptchaSettingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	setting, err := h.SettingService.PatchCaptchaSetting(h.Config.Captcha, patch)
	if err != nil {
		if errors.Is(err, service.ErrCaptchaConfigInvalid) {
			respondError(c, response.CodeBadRequest, "error.captcha_config_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.setting_update_failed", err)
		return
	}
	h.CaptchaService.InvalidateCache()
	requestLog(c).Infow("admin_captcha_setting_updated", "provider", setting.Provider)
	response.Success(c, setting)
}
