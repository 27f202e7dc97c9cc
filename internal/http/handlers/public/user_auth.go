package public

import (
	"errors"
	"time"

	"github.com/nexacart/internal/constants"
	handlershared "github.com/nexacart/internal/http/handlers/shared"
	"github.com/nexacart/internal/http/response"
	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 用户注册请求
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

// LoginRequest 用户登录请求
type LoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`

	Captcha handlershared.CaptchaPayloadRequest `json:"captcha"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateProfileRequest 更新资料请求
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Phone       *string `json:"phone"`
	Locale      *string `json:"locale"`
}

// UserView 用户响应视图（不含敏感字段）
type UserView struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Phone       string     `json:"phone,omitempty"`
	Locale      string     `json:"locale,omitempty"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toUserView(user *models.User) UserView {
	return UserView{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Phone:       user.Phone,
		Locale:      user.Locale,
		Status:      user.Status,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// Register 用户注册（注册成功直接返回登录态）
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(req.Email, req.Password, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "error.email_invalid", nil)
		case errors.Is(err, service.ErrUserExists):
			respondError(c, response.CodeBadRequest, "error.user_exists", nil)
		case errors.Is(err, service.ErrInvalidInput):
			respondError(c, response.CodeBadRequest, "error.password_policy_violation", nil)
		default:
			respondError(c, response.CodeInternal, "error.register_failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user":       toUserView(user),
		"token":      token,
		"expires_at": expiresAt,
	})
}

// Login 用户登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.CaptchaService.Verify(constants.CaptchaSceneLogin, req.Captcha.ToServicePayload()); err != nil {
		respondCaptchaError(c, err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.LoginWithRememberMe(req.Email, req.Password, req.RememberMe)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "error.invalid_credentials", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeForbidden, "error.user_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.login_failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"user":       toUserView(user),
		"token":      token,
		"expires_at": expiresAt,
	})
}

// GetProfile 获取当前用户信息
func (h *Handler) GetProfile(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUserByID(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return
	}
	response.Success(c, toUserView(user))
}

// UpdateProfile 更新当前用户资料
func (h *Handler) UpdateProfile(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	user, err := h.UserAuthService.UpdateProfile(uid, req.DisplayName, req.Phone, req.Locale)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		default:
			respondError(c, response.CodeInternal, "error.user_update_failed", err)
		}
		return
	}
	response.Success(c, toUserView(user))
}

// ChangePassword 登录态修改密码
func (h *Handler) ChangePassword(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.UserAuthService.ChangePassword(uid, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "error.invalid_credentials", nil)
		case errors.Is(err, service.ErrInvalidInput):
			respondError(c, response.CodeBadRequest, "error.password_policy_violation", nil)
		default:
			respondError(c, response.CodeInternal, "error.password_change_failed", err)
		}
		return
	}
	response.Success(c, gin.H{"updated": true})
}
