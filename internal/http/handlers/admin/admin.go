package admin

import (
	"errors"
	"time"

	"github.com/nexacart/internal/constants"
	handlershared "github.com/nexacart/internal/http/handlers/shared"
	"github.com/nexacart/internal/http/response"
	"github.com/nexacart/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`

	Captcha handlershared.CaptchaPayloadRequest `json:"captcha"`
}

// ChangePasswordRequest 管理员修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// Login 管理员登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.CaptchaService.Verify(constants.CaptchaSceneLogin, req.Captcha.ToServicePayload()); err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaRequired):
			respondError(c, response.CodeBadRequest, "error.captcha_required", nil)
		case errors.Is(err, service.ErrCaptchaInvalid):
			respondError(c, response.CodeBadRequest, "error.captcha_invalid", nil)
		default:
			respondError(c, response.CodeBadRequest, "error.captcha_config_invalid", err)
		}
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, "error.invalid_credentials", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.login_failed", err)
		return
	}

	requestLog(c).Infow("admin_login_success", "admin_id", admin.ID, "username", admin.Username)
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
		},
	})
}

// GetProfile 获取当前管理员信息
func (h *Handler) GetProfile(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	admin, err := h.AdminRepo.GetByID(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.admin_fetch_failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		requestLog(c).Warnw("admin_roles_fetch_failed", "admin_id", adminID, "error", err)
		roles = []string{}
	}

	var lastLoginAt *time.Time
	if admin.LastLoginAt != nil {
		lastLoginAt = admin.LastLoginAt
	}
	response.Success(c, gin.H{
		"id":            admin.ID,
		"username":      admin.Username,
		"roles":         roles,
		"last_login_at": lastLoginAt,
	})
}

// ChangePassword 修改当前管理员密码
func (h *Handler) ChangePassword(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.AuthService.ChangePassword(adminID, req.OldPassword, req.NewPassword); err != nil {
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
