package public

import (
	"time"

	"github.com/nexacart/internal/cache"
	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/http/response"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
)

// GetConfig 获取全局配置
func (h *Handler) GetConfig(c *gin.Context) {
	// 默认配置
	defaults := map[string]interface{}{
		"languages":                        constants.SupportedLocales,
		constants.SettingFieldSiteCurrency: constants.SiteCurrencyDefault,
		"payment_methods": []string{
			constants.PaymentMethodRazorpay,
			constants.PaymentMethodCOD,
			constants.PaymentMethodBankTransfer,
		},
	}

	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	data, err := h.SettingService.GetConfig(defaults)
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}

	captchaSetting, err := h.CaptchaService.GetPublicSetting()
	if err == nil {
		data["captcha"] = captchaSetting
	}

	if err := cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL); err != nil {
		requestLog(c).Warnw("public_config_cache_store_failed", "error", err)
	}
	response.Success(c, data)
}
