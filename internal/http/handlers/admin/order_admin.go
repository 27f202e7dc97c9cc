package admin

import (
	"errors"
	"strconv"

	handlershared "github.com/nexacart/internal/http/handlers/shared"
	"github.com/nexacart/internal/http/response"
	"github.com/nexacart/internal/repository"
	"github.com/nexacart/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest 订单状态更新请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListOrders 后台订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListAdmin(repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		PaymentMethod: c.Query("payment_method"),
		OrderNo:       c.Query("order_no"),
		Email:         c.Query("email"),
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

// GetOrder 后台订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetByID(orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus 更新订单状态（按迁移表校验）
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.OrderService.UpdateOrderStatus(orderID, req.Status)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	requestLog(c).Infow("admin_order_status_updated", "order_id", order.ID, "status", order.Status)
	response.Success(c, order)
}

// ConfirmOfflinePayment 核销线下支付（COD/银行转账到账确认）
func (h *Handler) ConfirmOfflinePayment(c *gin.Context) {
	orderID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.ConfirmOfflinePayment(orderID)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	requestLog(c).Infow("admin_offline_payment_confirmed", "order_id", order.ID, "payment_method", order.PaymentMethod)
	response.Success(c, order)
}

// DispatchOrder 发货：创建面单并分配运单号
func (h *Handler) DispatchOrder(c *gin.Context) {
	orderID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	order, err := h.ShipmentService.Dispatch(c.Request.Context(), orderID)
	if err != nil {
		respondShipmentError(c, err)
		return
	}
	requestLog(c).Infow("admin_order_dispatched",
		"order_id", order.ID,
		"tracking_id", order.TrackingID,
		"courier_name", order.CourierName,
	)
	response.Success(c, order)
}

// GetOrderTracking 查询订单物流轨迹
func (h *Handler) GetOrderTracking(c *gin.Context) {
	orderID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	tracking, err := h.ShipmentService.Track(c.Request.Context(), orderID)
	if err != nil {
		respondShipmentError(c, err)
		return
	}
	response.Success(c, tracking)
}

func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "error.order_not_found", nil)
	case errors.Is(err, service.ErrStatusTransition):
		respondError(c, response.CodeBadRequest, "error.order_status_invalid", nil)
	case errors.Is(err, service.ErrPaymentMethodInvalid):
		respondError(c, response.CodeBadRequest, "error.payment_method_invalid", nil)
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
	default:
		respondError(c, response.CodeInternal, "error.order_update_failed", err)
	}
}

func respondShipmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "error.order_not_found", nil)
	case errors.Is(err, service.ErrCourierNotConfigured):
		respondError(c, response.CodeBadRequest, "error.courier_not_configured", nil)
	case errors.Is(err, service.ErrOrderHasNoItems):
		respondError(c, response.CodeBadRequest, "error.order_has_no_items", nil)
	case errors.Is(err, service.ErrStatusTransition):
		respondError(c, response.CodeBadRequest, "error.order_status_invalid", nil)
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
	default:
		respondError(c, response.CodeInternal, "error.shipment_failed", err)
	}
}
