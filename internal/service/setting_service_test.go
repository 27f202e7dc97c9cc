package service

import (
	"testing"

	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/repository"
)

func TestGetCheckoutSettingsDefaults(t *testing.T) {
	db := setupTestDB(t, "setting_checkout_defaults")
	svc := NewSettingService(repository.NewSettingRepository(db))

	got := svc.GetCheckoutSettings()
	if got.TaxRatePercent.String() != constants.DefaultTaxRatePercent {
		t.Fatalf("tax rate want %s got %s", constants.DefaultTaxRatePercent, got.TaxRatePercent)
	}
	if got.ShippingRate.String() != constants.DefaultShippingRate {
		t.Fatalf("shipping rate want %s got %s", constants.DefaultShippingRate, got.ShippingRate)
	}
	if got.FreeShippingThreshold.String() != constants.DefaultFreeShippingThreshold {
		t.Fatalf("threshold want %s got %s", constants.DefaultFreeShippingThreshold, got.FreeShippingThreshold)
	}
}

func TestGetCheckoutSettingsFromStore(t *testing.T) {
	db := setupTestDB(t, "setting_checkout_store")
	seedCheckoutConfig(t, db)
	svc := NewSettingService(repository.NewSettingRepository(db))

	got := svc.GetCheckoutSettings()
	if got.TaxRatePercent.String() != "5" || got.ShippingRate.String() != "49" || got.FreeShippingThreshold.String() != "999" {
		t.Fatalf("unexpected settings: %s/%s/%s", got.TaxRatePercent, got.ShippingRate, got.FreeShippingThreshold)
	}
}

func TestGetCheckoutSettingsInvalidValuesFallBackPerField(t *testing.T) {
	db := setupTestDB(t, "setting_checkout_invalid")
	repo := repository.NewSettingRepository(db)
	if _, err := repo.Upsert(constants.SettingKeyCheckoutConfig, models.JSON{
		constants.SettingFieldTaxRate:      "not-a-number",
		constants.SettingFieldShippingRate: "-49",
		// threshold 缺失
	}); err != nil {
		t.Fatalf("seed setting failed: %v", err)
	}
	svc := NewSettingService(repo)

	got := svc.GetCheckoutSettings()
	if got.TaxRatePercent.String() != constants.DefaultTaxRatePercent {
		t.Fatalf("unparsable tax rate should fall back, got %s", got.TaxRatePercent)
	}
	if got.ShippingRate.String() != constants.DefaultShippingRate {
		t.Fatalf("negative shipping rate should fall back, got %s", got.ShippingRate)
	}
	if got.FreeShippingThreshold.String() != constants.DefaultFreeShippingThreshold {
		t.Fatalf("missing threshold should fall back, got %s", got.FreeShippingThreshold)
	}
}

func TestGetCheckoutSettingsNumericJSONValues(t *testing.T) {
	db := setupTestDB(t, "setting_checkout_numeric")
	repo := repository.NewSettingRepository(db)
	if _, err := repo.Upsert(constants.SettingKeyCheckoutConfig, models.JSON{
		constants.SettingFieldTaxRate:               12,
		constants.SettingFieldShippingRate:          float64(79),
		constants.SettingFieldFreeShippingThreshold: "1500",
	}); err != nil {
		t.Fatalf("seed setting failed: %v", err)
	}
	svc := NewSettingService(repo)

	got := svc.GetCheckoutSettings()
	if got.TaxRatePercent.String() != "12" {
		t.Fatalf("int tax rate want 12 got %s", got.TaxRatePercent)
	}
	if got.ShippingRate.String() != "79" {
		t.Fatalf("float shipping rate want 79 got %s", got.ShippingRate)
	}
	if got.FreeShippingThreshold.String() != "1500" {
		t.Fatalf("threshold want 1500 got %s", got.FreeShippingThreshold)
	}
}

func TestGetSiteCurrency(t *testing.T) {
	db := setupTestDB(t, "setting_site_currency")
	repo := repository.NewSettingRepository(db)
	svc := NewSettingService(repo)

	if got := svc.GetSiteCurrency(); got != constants.SiteCurrencyDefault {
		t.Fatalf("missing config should default to %s, got %s", constants.SiteCurrencyDefault, got)
	}

	if _, err := repo.Upsert(constants.SettingKeySiteConfig, models.JSON{
		constants.SettingFieldSiteCurrency: " inr ",
	}); err != nil {
		t.Fatalf("seed setting failed: %v", err)
	}
	if got := svc.GetSiteCurrency(); got != "INR" {
		t.Fatalf("currency should be upper-cased and trimmed, got %s", got)
	}

	if _, err := repo.Upsert(constants.SettingKeySiteConfig, models.JSON{
		constants.SettingFieldSiteCurrency: 42,
	}); err != nil {
		t.Fatalf("seed setting failed: %v", err)
	}
	if got := svc.GetSiteCurrency(); got != constants.SiteCurrencyDefault {
		t.Fatalf("non-string currency should fall back, got %s", got)
	}
}

func TestGetConfigMergesDefaults(t *testing.T) {
	db := setupTestDB(t, "setting_get_config")
	repo := repository.NewSettingRepository(db)
	svc := NewSettingService(repo)

	if _, err := repo.Upsert(constants.SettingKeySiteConfig, models.JSON{
		"site_name": "NexaCart",
	}); err != nil {
		t.Fatalf("seed setting failed: %v", err)
	}

	got, err := svc.GetConfig(map[string]interface{}{
		"site_name": "Default Shop",
		"locale":    "en-US",
	})
	if err != nil {
		t.Fatalf("get config failed: %v", err)
	}
	if got["site_name"] != "NexaCart" {
		t.Fatalf("stored value should override default, got %v", got["site_name"])
	}
	if got["locale"] != "en-US" {
		t.Fatalf("default should survive when not overridden, got %v", got["locale"])
	}
}
