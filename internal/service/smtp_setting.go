package service

import (
	"fmt"
	"strings"

	"github.com/nexacart/internal/config"
	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/models"
)

// SMTPSetting 邮件服务配置实体
type SMTPSetting struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
	FromName string `json:"from_name"`
	UseTLS   bool   `json:"use_tls"`
	UseSSL   bool   `json:"use_ssl"`
}

// SMTPSettingPatch 邮件配置补丁
type SMTPSettingPatch struct {
	Enabled  *bool   `json:"enabled"`
	Host     *string `json:"host"`
	Port     *int    `json:"port"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	From     *string `json:"from"`
	FromName *string `json:"from_name"`
	UseTLS   *bool   `json:"use_tls"`
	UseSSL   *bool   `json:"use_ssl"`
}

// SMTPDefaultSetting 根据静态配置生成默认邮件设置
func SMTPDefaultSetting(cfg config.EmailConfig) SMTPSetting {
	return SMTPSetting{
		Enabled:  cfg.Enabled,
		Host:     strings.TrimSpace(cfg.Host),
		Port:     cfg.Port,
		Username: strings.TrimSpace(cfg.Username),
		Password: cfg.Password,
		From:     strings.TrimSpace(cfg.From),
		FromName: strings.TrimSpace(cfg.FromName),
		UseTLS:   cfg.UseTLS,
		UseSSL:   cfg.UseSSL,
	}
}

// ValidateSMTPSetting 校验邮件配置
func ValidateSMTPSetting(setting SMTPSetting) error {
	if !setting.Enabled {
		return nil
	}
	if strings.TrimSpace(setting.Host) == "" {
		return fmt.Errorf("%w: SMTP host 不能为空", ErrInvalidInput)
	}
	if setting.Port <= 0 || setting.Port > 65535 {
		return fmt.Errorf("%w: SMTP 端口不合法", ErrInvalidInput)
	}
	if strings.TrimSpace(setting.From) == "" {
		return fmt.Errorf("%w: 发件人地址不能为空", ErrInvalidInput)
	}
	if setting.UseTLS && setting.UseSSL {
		return fmt.Errorf("%w: TLS 与 SSL 不能同时开启", ErrInvalidInput)
	}
	return nil
}

// SMTPSettingToConfig 将 settings 配置转换为运行时配置
func SMTPSettingToConfig(setting SMTPSetting) config.EmailConfig {
	return config.EmailConfig{
		Enabled:  setting.Enabled,
		Host:     setting.Host,
		Port:     setting.Port,
		Username: setting.Username,
		Password: setting.Password,
		From:     setting.From,
		FromName: setting.FromName,
		UseTLS:   setting.UseTLS,
		UseSSL:   setting.UseSSL,
	}
}

// SMTPSettingToMap 将邮件设置转换为 settings 表格式
func SMTPSettingToMap(setting SMTPSetting) map[string]interface{} {
	return map[string]interface{}{
		"enabled":   setting.Enabled,
		"host":      setting.Host,
		"port":      setting.Port,
		"username":  setting.Username,
		"password":  setting.Password,
		"from":      setting.From,
		"from_name": setting.FromName,
		"use_tls":   setting.UseTLS,
		"use_ssl":   setting.UseSSL,
	}
}

// MaskSMTPSetting 返回脱敏后的邮件设置（后台展示用）
func MaskSMTPSetting(setting SMTPSetting) models.JSON {
	masked := ""
	if strings.TrimSpace(setting.Password) != "" {
		masked = "******"
	}
	return models.JSON{
		"enabled":   setting.Enabled,
		"host":      setting.Host,
		"port":      setting.Port,
		"username":  setting.Username,
		"password":  masked,
		"from":      setting.From,
		"from_name": setting.FromName,
		"use_tls":   setting.UseTLS,
		"use_ssl":   setting.UseSSL,
	}
}

// GetSMTPSetting 获取邮件设置（优先 settings，空时回退 config.yml）
func (s *SettingService) GetSMTPSetting(defaultCfg config.EmailConfig) (SMTPSetting, error) {
	fallback := SMTPDefaultSetting(defaultCfg)
	value, err := s.GetByKey(constants.SettingKeySMTPConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}

	next := fallback
	next.Enabled = readBool(value, "enabled", next.Enabled)
	next.Host = readString(value, "host", next.Host)
	next.Port = readInt(value, "port", next.Port)
	next.Username = readString(value, "username", next.Username)
	next.Password = readString(value, "password", next.Password)
	next.From = readString(value, "from", next.From)
	next.FromName = readString(value, "from_name", next.FromName)
	next.UseTLS = readBool(value, "use_tls", next.UseTLS)
	next.UseSSL = readBool(value, "use_ssl", next.UseSSL)
	return next, nil
}

// PatchSMTPSetting 基于补丁更新邮件设置
func (s *SettingService) PatchSMTPSetting(defaultCfg config.EmailConfig, patch SMTPSettingPatch) (SMTPSetting, error) {
	current, err := s.GetSMTPSetting(defaultCfg)
	if err != nil {
		return SMTPSetting{}, err
	}

	next := current
	if patch.Enabled != nil {
		next.Enabled = *patch.Enabled
	}
	if patch.Host != nil {
		next.Host = strings.TrimSpace(*patch.Host)
	}
	if patch.Port != nil {
		next.Port = *patch.Port
	}
	if patch.Username != nil {
		next.Username = strings.TrimSpace(*patch.Username)
	}
	if patch.Password != nil && strings.TrimSpace(*patch.Password) != "" {
		next.Password = *patch.Password
	}
	if patch.From != nil {
		next.From = strings.TrimSpace(*patch.From)
	}
	if patch.FromName != nil {
		next.FromName = strings.TrimSpace(*patch.FromName)
	}
	if patch.UseTLS != nil {
		next.UseTLS = *patch.UseTLS
	}
	if patch.UseSSL != nil {
		next.UseSSL = *patch.UseSSL
	}

	if err := ValidateSMTPSetting(next); err != nil {
		return SMTPSetting{}, err
	}

	if _, err := s.Update(constants.SettingKeySMTPConfig, SMTPSettingToMap(next)); err != nil {
		return SMTPSetting{}, err
	}
	return next, nil
}
