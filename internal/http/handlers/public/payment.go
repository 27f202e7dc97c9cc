package public

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/nexacart/internal/constants"
	"github.com/nexacart/internal/http/response"
	"github.com/nexacart/internal/service"

	"github.com/gin-gonic/gin"
)

// VerifyPaymentRequest 支付同步验签请求（前端支付完成后回传）
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// VerifyPayment 同步验签入口
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	order, err := h.PaymentService.VerifyPayment(service.VerifyPaymentInput{
		GatewayOrderID: req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Signature:      req.RazorpaySignature,
	})
	if err != nil {
		respondPaymentVerifyError(c, err)
		return
	}
	response.Success(c, gin.H{
		"order_no":       order.OrderNo,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
	})
}

// PaymentCallback 网关异步回调入口（服务端调用）。按内部交易 ID 对账，
// 处理中状态保持现状仍返回成功，避免网关无谓重发。
func (h *Handler) PaymentCallback(c *gin.Context) {
	transactionID := c.Param("transaction_id")
	order, err := h.PaymentService.HandleCallback(c.Request.Context(), transactionID)
	if err != nil {
		respondPaymentVerifyError(c, err)
		return
	}
	response.Success(c, gin.H{
		"order_no":       order.OrderNo,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
	})
}

// PaymentReturn 网关浏览器回跳入口。买家支付完成后由网关带着
// transaction_id 跳回本站，对账后重定向到支付结果页，订单号随查询串带回。
func (h *Handler) PaymentReturn(c *gin.Context) {
	transactionID := strings.TrimSpace(c.Query("transaction_id"))
	order, err := h.PaymentService.HandleCallback(c.Request.Context(), transactionID)
	if err != nil {
		c.Redirect(http.StatusFound, paymentResultURL(h.Config.Razorpay.FailureURL, ""))
		return
	}
	target := h.Config.Razorpay.FailureURL
	if order.PaymentStatus == constants.PaymentStatusCompleted {
		target = h.Config.Razorpay.SuccessURL
	}
	c.Redirect(http.StatusFound, paymentResultURL(target, order.OrderNo))
}

// paymentResultURL 在结果页地址上追加订单号查询参数
func paymentResultURL(base, orderNo string) string {
	if base == "" {
		base = "/"
	}
	if orderNo == "" {
		return base
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return base
	}
	query := parsed.Query()
	query.Set("order_no", orderNo)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
