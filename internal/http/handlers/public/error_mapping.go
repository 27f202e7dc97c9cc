package public

import (
	"errors"

	"github.com/nexacart/internal/http/response"
	"github.com/nexacart/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrProductNotFound, code: response.CodeBadRequest, key: "error.product_not_found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
	{target: service.ErrPaymentMethodInvalid, code: response.CodeBadRequest, key: "error.payment_method_invalid"},
	{target: service.ErrPaymentNotConfigured, code: response.CodeBadRequest, key: "error.payment_not_configured"},
	{target: service.ErrStatusTransition, code: response.CodeBadRequest, key: "error.order_status_invalid"},
}

var paymentVerifyErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrPaymentNotConfigured, code: response.CodeBadRequest, key: "error.payment_not_configured"},
	{target: service.ErrPaymentSignatureInvalid, code: response.CodeBadRequest, key: "error.payment_signature_invalid"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
	{target: service.ErrStatusTransition, code: response.CodeBadRequest, key: "error.order_status_invalid"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
}

var captchaErrorRules = []mappedHandlerError{
	{target: service.ErrCaptchaRequired, code: response.CodeBadRequest, key: "error.captcha_required"},
	{target: service.ErrCaptchaInvalid, code: response.CodeBadRequest, key: "error.captcha_invalid"},
	{target: service.ErrCaptchaConfigInvalid, code: response.CodeBadRequest, key: "error.captcha_config_invalid"},
}

func respondCaptchaError(c *gin.Context, err error) {
	respondWithMappedError(c, err, captchaErrorRules, response.CodeInternal, "error.captcha_verify_failed")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "error.order_create_failed")
}

func respondPaymentVerifyError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentVerifyErrorRules, response.CodeInternal, "error.payment_verify_failed")
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_update_failed")
}
