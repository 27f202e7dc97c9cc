package public

import (
	"github.com/nexacart/internal/constants"
	handlershared "github.com/nexacart/internal/http/handlers/shared"
	"github.com/nexacart/internal/http/response"
	"github.com/nexacart/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	Email           string `json:"email" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	ShippingAddress string `json:"shipping_address" binding:"required"`
	ShippingCity    string `json:"shipping_city" binding:"required"`
	ShippingState   string `json:"shipping_state" binding:"required"`
	ShippingZip     string `json:"shipping_zip" binding:"required"`
	ShippingCountry string `json:"shipping_country"`
	PaymentMethod   string `json:"payment_method" binding:"required"`
	Notes           string `json:"notes"`

	Captcha handlershared.CaptchaPayloadRequest `json:"captcha"`
}

// Checkout 购物车结算下单
func (h *Handler) Checkout(c *gin.Context) {
	owner, ok := h.resolveCartOwner(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	// 游客结算按场景校验验证码，登录用户跳过
	if owner.UserID == 0 {
		if err := h.CaptchaService.Verify(constants.CaptchaSceneGuestCheckout, req.Captcha.ToServicePayload()); err != nil {
			respondCaptchaError(c, err)
			return
		}
	}

	result, err := h.CheckoutService.Checkout(c.Request.Context(), service.CheckoutInput{
		Owner:           owner,
		Email:           req.Email,
		Phone:           req.Phone,
		ShippingAddress: req.ShippingAddress,
		ShippingCity:    req.ShippingCity,
		ShippingState:   req.ShippingState,
		ShippingZip:     req.ShippingZip,
		ShippingCountry: req.ShippingCountry,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	response.Success(c, result)
}
