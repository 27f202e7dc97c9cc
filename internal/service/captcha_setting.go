package service

import (
	"fmt"
	"strings"

	"github.com/nexacart/internal/config"
	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/models"
)

// CaptchaSceneSetting 验证码场景配置。
// login 同时作用于前台用户登录与后台管理员登录，
// guest_checkout 对应游客结算。
type CaptchaSceneSetting struct {
	Login         bool `json:"login"`
	GuestCheckout bool `json:"guest_checkout"`
}

// CaptchaImageSetting 图片验证码配置
type CaptchaImageSetting struct {
	Length        int `json:"length"`
	Width         int `json:"width"`
	Height        int `json:"height"`
	NoiseCount    int `json:"noise_count"`
	ShowLine      int `json:"show_line"`
	ExpireSeconds int `json:"expire_seconds"`
	MaxStore      int `json:"max_store"`
}

// CaptchaSetting 验证码配置实体
type CaptchaSetting struct {
	Provider string              `json:"provider"`
	Scenes   CaptchaSceneSetting `json:"scenes"`
	Image    CaptchaImageSetting `json:"image"`
}

// CaptchaScenePatch 场景配置补丁
type CaptchaScenePatch struct {
	Login         *bool `json:"login"`
	GuestCheckout *bool `json:"guest_checkout"`
}

// CaptchaImagePatch 图片配置补丁
type CaptchaImagePatch struct {
	Length        *int `json:"length"`
	Width         *int `json:"width"`
	Height        *int `json:"height"`
	NoiseCount    *int `json:"noise_count"`
	ShowLine      *int `json:"show_line"`
	ExpireSeconds *int `json:"expire_seconds"`
	MaxStore      *int `json:"max_store"`
}

// CaptchaSettingPatch 验证码配置补丁
type CaptchaSettingPatch struct {
	Provider *string            `json:"provider"`
	Scenes   *CaptchaScenePatch `json:"scenes"`
	Image    *CaptchaImagePatch `json:"image"`
}

// CaptchaDefaultSetting 根据静态配置生成默认验证码设置
func CaptchaDefaultSetting(cfg config.CaptchaConfig) CaptchaSetting {
	setting := CaptchaSetting{
		Provider: strings.ToLower(strings.TrimSpace(cfg.Provider)),
		Scenes: CaptchaSceneSetting{
			Login:         cfg.Scenes.Login,
			GuestCheckout: cfg.Scenes.GuestCheckout,
		},
		Image: CaptchaImageSetting{
			Length:        cfg.Image.Length,
			Width:         cfg.Image.Width,
			Height:        cfg.Image.Height,
			NoiseCount:    cfg.Image.NoiseCount,
			ShowLine:      cfg.Image.ShowLine,
			ExpireSeconds: cfg.Image.ExpireSeconds,
			MaxStore:      cfg.Image.MaxStore,
		},
	}
	return NormalizeCaptchaSetting(setting)
}

// NormalizeCaptchaSetting 归一化验证码配置
func NormalizeCaptchaSetting(setting CaptchaSetting) CaptchaSetting {
	provider := strings.ToLower(strings.TrimSpace(setting.Provider))
	switch provider {
	case constants.CaptchaProviderImage, constants.CaptchaProviderNone:
		setting.Provider = provider
	default:
		setting.Provider = constants.CaptchaProviderNone
	}

	if setting.Image.Length < 4 || setting.Image.Length > 8 {
		setting.Image.Length = 5
	}
	if setting.Image.Width < 100 {
		setting.Image.Width = 240
	}
	if setting.Image.Height < 40 {
		setting.Image.Height = 80
	}
	if setting.Image.NoiseCount < 0 {
		setting.Image.NoiseCount = 2
	}
	if setting.Image.ShowLine < 0 {
		setting.Image.ShowLine = 2
	}
	if setting.Image.ExpireSeconds < 30 || setting.Image.ExpireSeconds > 3600 {
		setting.Image.ExpireSeconds = 300
	}
	if setting.Image.MaxStore < 100 {
		setting.Image.MaxStore = 10240
	}

	return setting
}

// ValidateCaptchaSetting 校验验证码配置
func ValidateCaptchaSetting(setting CaptchaSetting) error {
	normalized := NormalizeCaptchaSetting(setting)

	if normalized.Provider == constants.CaptchaProviderNone && normalized.Scenes.anyEnabled() {
		return fmt.Errorf("%w: 已启用验证码场景时必须选择验证码提供方", ErrCaptchaConfigInvalid)
	}

	if normalized.Image.Length < 4 || normalized.Image.Length > 8 {
		return fmt.Errorf("%w: 图片验证码长度需在 4-8 之间", ErrCaptchaConfigInvalid)
	}
	if normalized.Image.Width < 100 || normalized.Image.Height < 40 {
		return fmt.Errorf("%w: 图片验证码宽高不合法", ErrCaptchaConfigInvalid)
	}
	if normalized.Image.ExpireSeconds < 30 || normalized.Image.ExpireSeconds > 3600 {
		return fmt.Errorf("%w: 图片验证码过期时间需在 30-3600 秒", ErrCaptchaConfigInvalid)
	}

	return nil
}

// CaptchaSettingToConfig 将 settings 配置转换为运行时配置
func CaptchaSettingToConfig(setting CaptchaSetting) config.CaptchaConfig {
	normalized := NormalizeCaptchaSetting(setting)
	return config.CaptchaConfig{
		Provider: normalized.Provider,
		Scenes: config.CaptchaSceneConfig{
			Login:         normalized.Scenes.Login,
			GuestCheckout: normalized.Scenes.GuestCheckout,
		},
		Image: config.CaptchaImageConfig{
			Length:        normalized.Image.Length,
			Width:         normalized.Image.Width,
			Height:        normalized.Image.Height,
			NoiseCount:    normalized.Image.NoiseCount,
			ShowLine:      normalized.Image.ShowLine,
			ExpireSeconds: normalized.Image.ExpireSeconds,
			MaxStore:      normalized.Image.MaxStore,
		},
	}
}

// CaptchaSettingToMap 将验证码设置转换为 settings 表格式
func CaptchaSettingToMap(setting CaptchaSetting) map[string]interface{} {
	normalized := NormalizeCaptchaSetting(setting)
	return map[string]interface{}{
		"provider": normalized.Provider,
		"scenes": map[string]interface{}{
			"login":          normalized.Scenes.Login,
			"guest_checkout": normalized.Scenes.GuestCheckout,
		},
		"image": map[string]interface{}{
			"length":         normalized.Image.Length,
			"width":          normalized.Image.Width,
			"height":         normalized.Image.Height,
			"noise_count":    normalized.Image.NoiseCount,
			"show_line":      normalized.Image.ShowLine,
			"expire_seconds": normalized.Image.ExpireSeconds,
			"max_store":      normalized.Image.MaxStore,
		},
	}
}

// PublicCaptchaSetting 返回可公开下发前端的验证码配置
func PublicCaptchaSetting(setting CaptchaSetting) models.JSON {
	normalized := NormalizeCaptchaSetting(setting)
	return models.JSON{
		"provider": normalized.Provider,
		"scenes": map[string]interface{}{
			"login":          normalized.Scenes.Login,
			"guest_checkout": normalized.Scenes.GuestCheckout,
		},
	}
}

func (s CaptchaSceneSetting) anyEnabled() bool {
	return s.Login || s.GuestCheckout
}

// IsSceneEnabled 判断指定场景是否开启
func (s CaptchaSetting) IsSceneEnabled(scene string) bool {
	switch strings.ToLower(strings.TrimSpace(scene)) {
	case constants.CaptchaSceneLogin:
		return s.Scenes.Login
	case constants.CaptchaSceneGuestCheckout:
		return s.Scenes.GuestCheckout
	default:
		return false
	}
}

// GetCaptchaSetting 获取验证码设置（优先 settings，空时回退 config.yml）
func (s *SettingService) GetCaptchaSetting(defaultCfg config.CaptchaConfig) (CaptchaSetting, error) {
	fallback := CaptchaDefaultSetting(defaultCfg)
	value, err := s.GetByKey(constants.SettingKeyCaptchaConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	parsed := captchaSettingFromJSON(value, fallback)
	return NormalizeCaptchaSetting(parsed), nil
}

// PatchCaptchaSetting 基于补丁更新验证码设置
func (s *SettingService) PatchCaptchaSetting(defaultCfg config.CaptchaConfig, patch CaptchaSettingPatch) (CaptchaSetting, error) {
	current, err := s.GetCaptchaSetting(defaultCfg)
	if err != nil {
		return CaptchaSetting{}, err
	}

	next := current
	if patch.Provider != nil {
		next.Provider = strings.ToLower(strings.TrimSpace(*patch.Provider))
	}
	if patch.Scenes != nil {
		if patch.Scenes.Login != nil {
			next.Scenes.Login = *patch.Scenes.Login
		}
		if patch.Scenes.GuestCheckout != nil {
			next.Scenes.GuestCheckout = *patch.Scenes.GuestCheckout
		}
	}
	if patch.Image != nil {
		if patch.Image.Length != nil {
			next.Image.Length = *patch.Image.Length
		}
		if patch.Image.Width != nil {
			next.Image.Width = *patch.Image.Width
		}
		if patch.Image.Height != nil {
			next.Image.Height = *patch.Image.Height
		}
		if patch.Image.NoiseCount != nil {
			next.Image.NoiseCount = *patch.Image.NoiseCount
		}
		if patch.Image.ShowLine != nil {
			next.Image.ShowLine = *patch.Image.ShowLine
		}
		if patch.Image.ExpireSeconds != nil {
			next.Image.ExpireSeconds = *patch.Image.ExpireSeconds
		}
		if patch.Image.MaxStore != nil {
			next.Image.MaxStore = *patch.Image.MaxStore
		}
	}

	normalized := NormalizeCaptchaSetting(next)
	if err := ValidateCaptchaSetting(normalized); err != nil {
		return CaptchaSetting{}, err
	}

	if _, err := s.Update(constants.SettingKeyCaptchaConfig, CaptchaSettingToMap(normalized)); err != nil {
		return CaptchaSetting{}, err
	}
	return normalized, nil
}

func captchaSettingFromJSON(raw models.JSON, fallback CaptchaSetting) CaptchaSetting {
	next := fallback
	if raw == nil {
		return next
	}

	next.Provider = readString(raw, "provider", next.Provider)

	if scenesRaw, ok := raw["scenes"]; ok {
		if scenesMap := toStringAnyMap(scenesRaw); scenesMap != nil {
			next.Scenes.Login = readBool(scenesMap, "login", next.Scenes.Login)
			next.Scenes.GuestCheckout = readBool(scenesMap, "guest_checkout", next.Scenes.GuestCheckout)
		}
	}

	if imageRaw, ok := raw["image"]; ok {
		if imageMap := toStringAnyMap(imageRaw); imageMap != nil {
			next.Image.Length = readInt(imageMap, "length", next.Image.Length)
			next.Image.Width = readInt(imageMap, "width", next.Image.Width)
			next.Image.Height = readInt(imageMap, "height", next.Image.Height)
			next.Image.NoiseCount = readInt(imageMap, "noise_count", next.Image.NoiseCount)
			next.Image.ShowLine = readInt(imageMap, "show_line", next.Image.ShowLine)
			next.Image.ExpireSeconds = readInt(imageMap, "expire_seconds", next.Image.ExpireSeconds)
			next.Image.MaxStore = readInt(imageMap, "max_store", next.Image.MaxStore)
		}
	}

	return next
}

func toStringAnyMap(raw interface{}) map[string]interface{} {
	if m, ok := raw.(map[string]interface{}); ok {
		return m
	}
	if m, ok := raw.(models.JSON); ok {
		return m
	}
	return nil
}

func readString(m map[string]interface{}, key, fallback string) string {
	if raw, ok := m[key]; ok {
		if v, ok := raw.(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return fallback
}

func readBool(m map[string]interface{}, key string, fallback bool) bool {
	if raw, ok := m[key]; ok {
		if v, ok := raw.(bool); ok {
			return v
		}
	}
	return fallback
}

func readInt(m map[string]interface{}, key string, fallback int) int {
	raw, ok := m[key]
	if !ok {
		return fallback
	}
	if v, err := parseSettingInt(raw); err == nil {
		return v
	}
	return fallback
}
