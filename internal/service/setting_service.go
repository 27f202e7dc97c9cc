package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/logger"
	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/repository"

	"github.com/shopspring/decimal"
)

// SettingService 设置业务服务
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetConfig 获取站点配置（合并默认值）
func (s *SettingService) GetConfig(defaults map[string]interface{}) (map[string]interface{}, error) {
	data := make(map[string]interface{})
	for k, v := range defaults {
		data[k] = v
	}

	setting, err := s.repo.GetByKey(constants.SettingKeySiteConfig)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return data, nil
	}

	for k, v := range setting.ValueJSON {
		data[k] = v
	}
	return data, nil
}

// GetByKey 获取设置
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// Update 设置值
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	setting, err := s.repo.Upsert(key, value)
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// GetCheckoutSettings 读取结算参数。设置缺失或无法解析时回退到内置默认值，
// 不因配置错误让结算失败。
func (s *SettingService) GetCheckoutSettings() CheckoutSettings {
	defaults := CheckoutSettings{
		TaxRatePercent:        decimal.RequireFromString(constants.DefaultTaxRatePercent),
		ShippingRate:          decimal.RequireFromString(constants.DefaultShippingRate),
		FreeShippingThreshold: decimal.RequireFromString(constants.DefaultFreeShippingThreshold),
	}
	if s == nil {
		return defaults
	}

	value, err := s.GetByKey(constants.SettingKeyCheckoutConfig)
	if err != nil {
		logger.Warnw("checkout_settings_load_failed", "error", err)
		return defaults
	}
	if value == nil {
		return defaults
	}

	result := defaults
	if raw, ok := value[constants.SettingFieldTaxRate]; ok {
		if parsed, err := parseSettingDecimal(raw); err == nil && !parsed.IsNegative() {
			result.TaxRatePercent = parsed
		} else {
			logger.Warnw("checkout_setting_invalid", "field", constants.SettingFieldTaxRate, "error", err)
		}
	}
	if raw, ok := value[constants.SettingFieldShippingRate]; ok {
		if parsed, err := parseSettingDecimal(raw); err == nil && !parsed.IsNegative() {
			result.ShippingRate = parsed
		} else {
			logger.Warnw("checkout_setting_invalid", "field", constants.SettingFieldShippingRate, "error", err)
		}
	}
	if raw, ok := value[constants.SettingFieldFreeShippingThreshold]; ok {
		if parsed, err := parseSettingDecimal(raw); err == nil && !parsed.IsNegative() {
			result.FreeShippingThreshold = parsed
		} else {
			logger.Warnw("checkout_setting_invalid", "field", constants.SettingFieldFreeShippingThreshold, "error", err)
		}
	}
	return result
}

// GetSiteCurrency 读取站点币种（缺省 INR）
func (s *SettingService) GetSiteCurrency() string {
	if s == nil {
		return constants.SiteCurrencyDefault
	}
	value, err := s.GetByKey(constants.SettingKeySiteConfig)
	if err != nil || value == nil {
		return constants.SiteCurrencyDefault
	}
	raw, ok := value[constants.SettingFieldSiteCurrency]
	if !ok {
		return constants.SiteCurrencyDefault
	}
	currency, ok := raw.(string)
	if !ok || strings.TrimSpace(currency) == "" {
		return constants.SiteCurrencyDefault
	}
	return strings.ToUpper(strings.TrimSpace(currency))
}

func parseSettingDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return decimal.Zero, fmt.Errorf("empty string")
		}
		return decimal.NewFromString(trimmed)
	default:
		return decimal.Zero, fmt.Errorf("unsupported value type")
	}
}

func parseSettingInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), nil
		}
		if f, err := v.Float64(); err == nil {
			return int(f), nil
		}
		return 0, fmt.Errorf("invalid json number")
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, fmt.Errorf("empty string")
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, err
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("unsupported value type")
	}
}
