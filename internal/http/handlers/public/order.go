package public

import (
	"errors"
	"strconv"

	handlershared "github.com/nexacart/internal/http/handlers/shared"
	"github.com/nexacart/internal/http/response"
	"github.com/nexacart/internal/repository"
	"github.com/nexacart/internal/service"

	"github.com/gin-gonic/gin"
)

// LookupOrderRequest 游客订单查询请求
type LookupOrderRequest struct {
	OrderNo string `json:"order_no" binding:"required"`
	Email   string `json:"email" binding:"required"`
}

// LookupOrder 游客按订单号 + 邮箱查询订单
func (h *Handler) LookupOrder(c *gin.Context) {
	var req LookupOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.OrderService.GetByOrderNoForGuest(req.OrderNo, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		case errors.Is(err, service.ErrInvalidInput):
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		default:
			respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		}
		return
	}
	response.Success(c, order)
}

// ListMyOrders 登录用户订单列表
func (h *Handler) ListMyOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, gin.H{"items": orders}, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetMyOrder 登录用户订单详情（仅限本人订单）
func (h *Handler) GetMyOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	rawID := c.Param("id")
	orderID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	order, err := h.OrderService.GetByIDAndUser(uint(orderID), uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		}
		return
	}
	response.Success(c, order)
}
