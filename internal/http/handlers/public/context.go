package public

import (
	"strings"

	handlershared "github.com/nexacart/internal/http/handlers/shared"
	"github.com/nexacart/internal/http/response"
	"github.com/nexacart/internal/repository"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "user_id", "error.user_id_invalid", "error.user_id_type_invalid")
}

// optionalUserID 读取登录用户 ID，未登录时返回 0。
func optionalUserID(c *gin.Context) uint {
	value, exists := c.Get("user_id")
	if !exists {
		return 0
	}
	if uid, ok := value.(uint); ok {
		return uid
	}
	return 0
}

// getSessionID 读取会话中间件注入的购物车会话 ID。
func getSessionID(c *gin.Context) string {
	value, exists := c.Get("session_id")
	if !exists {
		return ""
	}
	if id, ok := value.(string); ok {
		return strings.TrimSpace(id)
	}
	return ""
}

// resolveCartOwner 解析购物车归属：登录用户优先，游客走会话。
// 两者都缺失时返回 false 并响应 400。
func (h *Handler) resolveCartOwner(c *gin.Context) (repository.CartOwner, bool) {
	owner := repository.CartOwner{
		UserID:    optionalUserID(c),
		SessionID: getSessionID(c),
	}
	if owner.UserID != 0 {
		owner.SessionID = ""
	}
	if owner.UserID == 0 && owner.SessionID == "" {
		respondError(c, response.CodeBadRequest, "error.session_required", nil)
		return repository.CartOwner{}, false
	}
	return owner, true
}
