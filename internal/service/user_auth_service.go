package service

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/nexacart/internal/config"
	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserAuthService 买家账号服务。
// 注册即登录（注册成功直接发 token）；游客不必注册，
// 游客订单走订单号 + 邮箱查询，这里只管注册用户的认证与资料。
type UserAuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewUserAuthService 创建买家账号服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository) *UserAuthService {
	return &UserAuthService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// UserJWTClaims 买家 JWT 声明
type UserJWTClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateUserJWT 签发买家 token；expireHours 传 0 时取配置默认值
func (s *UserAuthService) GenerateUserJWT(user *models.User, expireHours int) (string, time.Time, error) {
	if expireHours <= 0 {
		expireHours = s.tokenLifetimeHours(false)
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireHours) * time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, UserJWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	})
	signed, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseUserJWT 校验并解析买家 token
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if parsed, ok := token.Claims.(*UserJWTClaims); ok && token.Valid {
		return parsed, nil
	}
	return nil, errors.New("无效的 token")
}

// Register 注册买家账号并直接签发 token
func (s *UserAuthService) Register(email, password, displayName string) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, password); err != nil {
		return nil, "", time.Time{}, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exist != nil {
		return nil, "", time.Time{}, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	user := &models.User{
		Email:        normalized,
		PasswordHash: string(hash),
		DisplayName:  resolveDisplayName(displayName, normalized),
		Status:       constants.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", time.Time{}, err
	}

	return s.issueSession(user, false)
}

// Login 买家登录
func (s *UserAuthService) Login(email, password string) (*models.User, string, time.Time, error) {
	return s.LoginWithRememberMe(email, password, false)
}

// LoginWithRememberMe 买家登录，记住我时用更长的 token 有效期
func (s *UserAuthService) LoginWithRememberMe(email, password string, rememberMe bool) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	// 账号不存在与密码错误返回同一错误，避免探测注册邮箱
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	return s.issueSession(user, rememberMe)
}

// issueSession 签发 token 并记录登录时间
func (s *UserAuthService) issueSession(user *models.User, rememberMe bool) (*models.User, string, time.Time, error) {
	token, expiresAt, err := s.GenerateUserJWT(user, s.tokenLifetimeHours(rememberMe))
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// ChangePassword 登录态修改密码（需验旧密码）
func (s *UserAuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now()
	return s.userRepo.Update(user)
}

// UpdateProfile 更新买家资料，nil 字段表示不修改
func (s *UserAuthService) UpdateProfile(userID uint, displayName, phone, locale *string) (*models.User, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	updated := false
	if displayName != nil {
		if trimmed := strings.TrimSpace(*displayName); trimmed != "" {
			user.DisplayName = trimmed
			updated = true
		}
	}
	if phone != nil {
		user.Phone = strings.TrimSpace(*phone)
		updated = true
	}
	if locale != nil {
		if trimmed := strings.TrimSpace(*locale); trimmed != "" {
			user.Locale = trimmed
			updated = true
		}
	}
	if !updated {
		return nil, ErrInvalidInput
	}

	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID 获取买家信息
func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	return s.userRepo.GetByID(id)
}

// tokenLifetimeHours 解析 token 有效期配置，非法值回落默认
func (s *UserAuthService) tokenLifetimeHours(rememberMe bool) int {
	cfg := s.cfg.UserJWT
	if rememberMe && cfg.RememberMeExpireHours > 0 {
		return cfg.RememberMeExpireHours
	}
	if cfg.ExpireHours > 0 {
		return cfg.ExpireHours
	}
	return 24
}

func resolveDisplayName(displayName, email string) string {
	if trimmed := strings.TrimSpace(displayName); trimmed != "" {
		return trimmed
	}
	local, _, found := strings.Cut(email, "@")
	if found && strings.TrimSpace(local) != "" {
		return strings.TrimSpace(local)
	}
	return email
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeEmail 统一邮箱格式（小写、去空白、RFC 校验）
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}
