package service

import (
	"strings"
	"sync"
	"time"

	"github.com/nexacart/internal/config"
	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/models"

	"github.com/mojocn/base64Captcha"
)

const captchaSettingCacheTTL = 30 * time.Second

const captchaCharset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CaptchaVerifyPayload 验证码校验载荷（随登录/下单请求一起提交）
type CaptchaVerifyPayload struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaService 验证码服务。
// 游客下单、用户登录、后台登录三个场景各自开关；
// 配置存在设置表里，这里做短 TTL 的本地缓存避免每次请求查库。
type CaptchaService struct {
	settingService *SettingService
	defaultConfig  config.CaptchaConfig

	mu            sync.RWMutex
	cachedSetting CaptchaSetting
	cachedAt      time.Time

	challengeStore       base64Captcha.Store
	challengeStoreSize   int
	challengeStoreExpire int
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(settingService *SettingService, defaultConfig config.CaptchaConfig) *CaptchaService {
	return &CaptchaService{
		settingService: settingService,
		defaultConfig:  defaultConfig,
	}
}

// InvalidateCache 失效本地配置缓存（后台保存验证码设置后调用）
func (s *CaptchaService) InvalidateCache() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.cachedAt = time.Time{}
	s.mu.Unlock()
}

// GetPublicSetting 获取可下发给前端的配置（不含密钥类字段）
func (s *CaptchaService) GetPublicSetting() (models.JSON, error) {
	setting, err := s.currentSetting()
	if err != nil {
		return nil, err
	}
	return PublicCaptchaSetting(setting), nil
}

// GenerateImageChallenge 生成一张图片验证码
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	setting, err := s.currentSetting()
	if err != nil {
		return nil, err
	}
	if setting.Provider != constants.CaptchaProviderImage {
		return nil, ErrCaptchaConfigInvalid
	}

	driver := base64Captcha.NewDriverString(
		setting.Image.Height,
		setting.Image.Width,
		setting.Image.NoiseCount,
		setting.Image.ShowLine,
		setting.Image.Length,
		captchaCharset,
		nil,
		base64Captcha.DefaultEmbeddedFonts,
		nil,
	)
	id, b64s, _, err := base64Captcha.NewCaptcha(driver, s.store(setting)).Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{
		CaptchaID:   strings.TrimSpace(id),
		ImageBase64: strings.TrimSpace(b64s),
	}, nil
}

// Verify 按场景校验验证码。场景未开启时直接放行；
// 校验一次即销毁，重放同一答案会失败。
func (s *CaptchaService) Verify(scene string, payload CaptchaVerifyPayload) error {
	setting, err := s.currentSetting()
	if err != nil {
		return err
	}
	if !setting.IsSceneEnabled(scene) {
		return nil
	}

	switch setting.Provider {
	case constants.CaptchaProviderImage:
		captchaID := strings.TrimSpace(payload.CaptchaID)
		captchaCode := strings.TrimSpace(payload.CaptchaCode)
		if captchaID == "" || captchaCode == "" {
			return ErrCaptchaRequired
		}
		if !s.store(setting).Verify(captchaID, captchaCode, true) {
			return ErrCaptchaInvalid
		}
		return nil
	default:
		return ErrCaptchaConfigInvalid
	}
}

// store 返回挑战存储，容量或过期时间变化时重建
func (s *CaptchaService) store(setting CaptchaSetting) base64Captcha.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.challengeStore != nil &&
		s.challengeStoreSize == setting.Image.MaxStore &&
		s.challengeStoreExpire == setting.Image.ExpireSeconds {
		return s.challengeStore
	}
	s.challengeStore = base64Captcha.NewMemoryStore(
		setting.Image.MaxStore,
		time.Duration(setting.Image.ExpireSeconds)*time.Second,
	)
	s.challengeStoreSize = setting.Image.MaxStore
	s.challengeStoreExpire = setting.Image.ExpireSeconds
	return s.challengeStore
}

// currentSetting 返回生效配置，优先走本地缓存
func (s *CaptchaService) currentSetting() (CaptchaSetting, error) {
	if s == nil {
		return CaptchaDefaultSetting(config.CaptchaConfig{}), nil
	}

	now := time.Now()
	s.mu.RLock()
	if !s.cachedAt.IsZero() && now.Sub(s.cachedAt) <= captchaSettingCacheTTL {
		cached := s.cachedSetting
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	setting := CaptchaDefaultSetting(s.defaultConfig)
	if s.settingService != nil {
		loaded, err := s.settingService.GetCaptchaSetting(s.defaultConfig)
		if err != nil {
			return CaptchaSetting{}, err
		}
		setting = loaded
	}

	s.mu.Lock()
	s.cachedSetting = setting
	s.cachedAt = now
	s.mu.Unlock()
	return setting, nil
}
