package service

import (
	"errors"
	"testing"

	"github.com/nexacart/internal/config"
	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/repository"
)

func boolPtr(v bool) *bool    { return &v }
func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestNormalizeCaptchaSetting(t *testing.T) {
	got := NormalizeCaptchaSetting(CaptchaSetting{Provider: " Image "})
	if got.Provider != constants.CaptchaProviderImage {
		t.Fatalf("provider want image got %s", got.Provider)
	}
	// 零值图片参数全部回落到默认
	if got.Image.Length != 5 || got.Image.Width != 240 || got.Image.Height != 80 {
		t.Fatalf("unexpected image defaults: %+v", got.Image)
	}
	if got.Image.ExpireSeconds != 300 || got.Image.MaxStore != 10240 {
		t.Fatalf("unexpected expiry defaults: %+v", got.Image)
	}

	got = NormalizeCaptchaSetting(CaptchaSetting{Provider: "recaptcha"})
	if got.Provider != constants.CaptchaProviderNone {
		t.Fatalf("unknown provider should fall back to none, got %s", got.Provider)
	}

	got = NormalizeCaptchaSetting(CaptchaSetting{
		Provider: constants.CaptchaProviderImage,
		Image:    CaptchaImageSetting{Length: 9, Width: 50, Height: 10, ExpireSeconds: 10000},
	})
	if got.Image.Length != 5 || got.Image.Width != 240 || got.Image.Height != 80 || got.Image.ExpireSeconds != 300 {
		t.Fatalf("out-of-range values should be clamped to defaults: %+v", got.Image)
	}
}

func TestValidateCaptchaSettingSceneRequiresProvider(t *testing.T) {
	setting := CaptchaSetting{
		Provider: constants.CaptchaProviderNone,
		Scenes:   CaptchaSceneSetting{Login: true},
	}
	if err := ValidateCaptchaSetting(setting); !errors.Is(err, ErrCaptchaConfigInvalid) {
		t.Fatalf("enabled scene without provider should be invalid, got %v", err)
	}

	setting.Provider = constants.CaptchaProviderImage
	if err := ValidateCaptchaSetting(setting); err != nil {
		t.Fatalf("image provider with login scene should validate, got %v", err)
	}
}

func TestIsSceneEnabled(t *testing.T) {
	setting := CaptchaSetting{Scenes: CaptchaSceneSetting{Login: true}}
	if !setting.IsSceneEnabled(" LOGIN ") {
		t.Fatalf("login scene should match case-insensitively")
	}
	if setting.IsSceneEnabled(constants.CaptchaSceneGuestCheckout) {
		t.Fatalf("guest checkout scene should be off")
	}
	if setting.IsSceneEnabled("unknown") {
		t.Fatalf("unknown scene should be off")
	}
}

func TestPatchCaptchaSetting(t *testing.T) {
	db := setupTestDB(t, "captcha_patch")
	svc := NewSettingService(repository.NewSettingRepository(db))
	defaults := config.CaptchaConfig{Provider: constants.CaptchaProviderNone}

	updated, err := svc.PatchCaptchaSetting(defaults, CaptchaSettingPatch{
		Provider: strPtr(constants.CaptchaProviderImage),
		Scenes:   &CaptchaScenePatch{Login: boolPtr(true)},
		Image:    &CaptchaImagePatch{Length: intPtr(6)},
	})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if updated.Provider != constants.CaptchaProviderImage || !updated.Scenes.Login || updated.Image.Length != 6 {
		t.Fatalf("patch not applied: %+v", updated)
	}

	// 设置持久化后可读回，未补丁的字段保留
	reloaded, err := svc.GetCaptchaSetting(defaults)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Provider != constants.CaptchaProviderImage || reloaded.Image.Length != 6 {
		t.Fatalf("patched setting should survive reload: %+v", reloaded)
	}
	if reloaded.Scenes.GuestCheckout {
		t.Fatalf("untouched scene should stay off")
	}

	// 关掉提供方但场景仍开启时拒绝
	if _, err := svc.PatchCaptchaSetting(defaults, CaptchaSettingPatch{
		Provider: strPtr(constants.CaptchaProviderNone),
	}); !errors.Is(err, ErrCaptchaConfigInvalid) {
		t.Fatalf("disabling provider with active scene should be rejected, got %v", err)
	}
}
