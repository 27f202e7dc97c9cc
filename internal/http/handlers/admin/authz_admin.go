package admin

import (
	"github.com/nexacart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RoleRequest 角色创建请求
type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// RolePolicyRequest 角色策略授予/撤销请求
type RolePolicyRequest struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// AdminRolesRequest 管理员角色绑定请求
type AdminRolesRequest struct {
	Roles []string `json:"roles"`
}

// ListRoles 列出全部角色
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.role_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"items": roles})
}

// CreateRole 创建角色
func (h *Handler) CreateRole(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	requestLog(c).Infow("admin_role_created", "role", role)
	response.Success(c, gin.H{"role": role})
}

// DeleteRole 删除角色及其策略
func (h *Handler) DeleteRole(c *gin.Context) {
	role := c.Param("role")
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	requestLog(c).Infow("admin_role_deleted", "role", role)
	response.Success(c, gin.H{"deleted": true})
}

// GetRolePolicies 查询角色策略
func (h *Handler) GetRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	response.Success(c, gin.H{"items": policies})
}

// GrantRolePolicy 为角色授予策略
func (h *Handler) GrantRolePolicy(c *gin.Context) {
	var req RolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "error.policy_invalid", err)
		return
	}
	requestLog(c).Infow("admin_role_policy_granted", "role", req.Role, "object", req.Object, "action", req.Action)
	response.Success(c, gin.H{"granted": true})
}

// RevokeRolePolicy 撤销角色策略
func (h *Handler) RevokeRolePolicy(c *gin.Context) {
	var req RolePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "error.policy_invalid", err)
		return
	}
	requestLog(c).Infow("admin_role_policy_revoked", "role", req.Role, "object", req.Object, "action", req.Action)
	response.Success(c, gin.H{"revoked": true})
}

// GetAdminAccess 查询指定管理员的角色与生效策略
func (h *Handler) GetAdminAccess(c *gin.Context) {
	adminID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.role_fetch_failed", err)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.role_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"roles": roles, "policies": policies})
}

// SetAdminRoles 重设指定管理员的角色绑定
func (h *Handler) SetAdminRoles(c *gin.Context) {
	adminID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	var req AdminRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.SetAdminRoles(adminID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	requestLog(c).Infow("admin_roles_updated", "target_admin_id", adminID, "roles", req.Roles)
	response.Success(c, gin.H{"updated": true})
}
