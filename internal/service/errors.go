package service

import "errors"

// 业务错误定义（由 handler 映射为响应码与文案）
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrCartEmpty               = errors.New("cart is empty")
	ErrProductNotFound         = errors.New("referenced product not found")
	ErrProductNotAvailable     = errors.New("product not available")
	ErrOrderNotFound           = errors.New("order not found")
	ErrOrderHasNoItems         = errors.New("order has no items")
	ErrPaymentMethodInvalid    = errors.New("payment method invalid")
	ErrPaymentSignatureInvalid = errors.New("payment signature invalid")
	ErrPaymentNotConfigured    = errors.New("payment gateway not configured")
	ErrCourierNotConfigured    = errors.New("courier service not configured")
	ErrStatusTransition        = errors.New("illegal order status transition")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrCaptchaInvalid          = errors.New("captcha invalid")
	ErrCaptchaRequired         = errors.New("captcha required")
	ErrCaptchaConfigInvalid    = errors.New("captcha config invalid")
	ErrUserExists              = errors.New("user already exists")
	ErrUserDisabled            = errors.New("user disabled")
	ErrSlugTaken               = errors.New("slug already taken")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrCategoryInUse           = errors.New("category still has products")

	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email address")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)
