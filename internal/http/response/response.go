package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 前后台统一响应信封。
// HTTP 状态码恒为 200，业务结果由 status_code 表达（0 为成功），
// 前端据此统一处理错误提示与登录态失效。
type Response struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
}

// PageResponse 带分页信息的响应信封
type PageResponse struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

func write(c *gin.Context, statusCode int, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		StatusCode: statusCode,
		Msg:        msg,
		Data:       data,
	})
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	write(c, 0, "success", data)
}

// SuccessWithMsg 成功响应（自定义消息）
func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	write(c, 0, msg, data)
}

// SuccessWithPage 列表成功响应（商品、订单等分页接口）
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{
		StatusCode: 0,
		Msg:        "success",
		Data:       data,
		Pagination: pagination,
	})
}

// Error 错误响应，data 里附带 request_id 便于对照请求日志排障
func Error(c *gin.Context, statusCode int, msg string) {
	write(c, statusCode, msg, withRequestID(c, nil))
}

// ErrorWithData 错误响应（带数据）
func ErrorWithData(c *gin.Context, statusCode int, msg string, data interface{}) {
	write(c, statusCode, msg, withRequestID(c, data))
}

// NotFound 资源不存在
func NotFound(c *gin.Context, msg string) {
	Error(c, CodeNotFound, msg)
}

// Unauthorized 未认证
func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}

// Forbidden 无权限
func Forbidden(c *gin.Context, msg string) {
	Error(c, CodeForbidden, msg)
}

// BadRequest 请求不合法
func BadRequest(c *gin.Context, msg string) {
	Error(c, CodeBadRequest, msg)
}

// withRequestID 把请求 ID 并入错误响应数据，已有 request_id 字段时不覆盖
func withRequestID(c *gin.Context, data interface{}) interface{} {
	requestID := requestIDFrom(c)
	if requestID == "" {
		return data
	}
	if data == nil {
		return gin.H{"request_id": requestID}
	}
	switch v := data.(type) {
	case gin.H:
		if _, ok := v["request_id"]; !ok {
			v["request_id"] = requestID
		}
		return v
	case map[string]interface{}:
		if _, ok := v["request_id"]; !ok {
			v["request_id"] = requestID
		}
		return v
	default:
		return gin.H{
			"request_id": requestID,
			"data":       data,
		}
	}
}

func requestIDFrom(c *gin.Context) string {
	if c == nil {
		return ""
	}
	value, ok := c.Get("request_id")
	if !ok {
		return ""
	}
	if id, ok := value.(string); ok {
		return id
	}
	return ""
}
