package public

import (
	"github.com/nexacart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CreateSession 创建游客购物车会话。
// 前端将返回的 session_id 写入 X-Session-ID 头后续携带。
func (h *Handler) CreateSession(c *gin.Context) {
	sessionID, err := h.SessionStore.Create(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.session_create_failed", err)
		return
	}
	response.Success(c, gin.H{"session_id": sessionID})
}
