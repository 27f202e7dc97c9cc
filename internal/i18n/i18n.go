package i18n

import (
	"fmt"
	"strings"

	"github.com/nexacart/internal/constants"
)

// 支持的语言常量
const (
	LocaleEN = constants.LocaleEnUS
	LocaleZH = constants.LocaleZhCN
)

// DefaultLocale 默认语言
const DefaultLocale = LocaleEN

// ResolveLocale 归一化语言标签（如 Accept-Language 头），不支持时回退默认
func ResolveLocale(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	switch {
	case strings.HasPrefix(l, "zh"):
		return LocaleZH
	case strings.HasPrefix(l, "en"):
		return LocaleEN
	default:
		return DefaultLocale
	}
}

// T 按 key 取文案，缺失时回退默认语言，仍缺失则原样返回 key
func T(locale, key string) string {
	if messages, ok := catalog[ResolveLocale(locale)]; ok {
		if text, ok := messages[key]; ok {
			return text
		}
	}
	if text, ok := catalog[DefaultLocale][key]; ok {
		return text
	}
	return key
}

// Sprintf 取文案并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

var catalog = map[string]map[string]string{
	LocaleEN: {
		"order.status.pending":    "Pending",
		"order.status.processing": "Processing",
		"order.status.completed":  "Completed",
		"order.status.cancelled":  "Cancelled",
		"order.status.failed":     "Failed",

		"payment.method.razorpay":      "Razorpay",
		"payment.method.cod":           "Cash on Delivery",
		"payment.method.bank_transfer": "Bank Transfer",

		"email.order_confirmation.subject": "Order %s confirmed",
		"email.order_confirmation.body": "Thank you for your order!\n\n" +
			"Order number: %s\n" +
			"Payment method: %s\n" +
			"Total: %s %s\n\n" +
			"We will notify you when your order ships.",
		"email.shipment.subject": "Order %s has shipped",
		"email.shipment.body": "Good news, your order is on its way!\n\n" +
			"Order number: %s\n" +
			"Courier: %s\n" +
			"Tracking number: %s\n\n" +
			"You can use the tracking number above to follow your delivery.",

		"response.ok":           "success",
		"response.bad_request":  "invalid request",
		"response.unauthorized": "unauthorized",
		"response.forbidden":    "forbidden",
		"response.not_found":    "not found",
		"response.server_error": "internal server error",

		"error.bad_request":  "invalid request",
		"error.unauthorized": "unauthorized",
		"error.forbidden":    "permission denied",

		"error.jwt_secret_missing":   "server auth is not configured",
		"error.auth_header_missing":  "authorization header is missing",
		"error.auth_header_invalid":  "authorization header is malformed",
		"error.token_invalid":        "token is invalid or expired",
		"error.token_revoked":        "token has been revoked",
		"error.invalid_credentials":  "incorrect username or password",
		"error.login_failed":         "login failed, please try again later",
		"error.login_too_many":       "too many login attempts, please retry in %d seconds",
		"error.register_failed":      "registration failed, please try again later",
		"error.email_invalid":        "email address is invalid",
		"error.user_exists":          "this email is already registered",
		"error.user_disabled":        "account has been disabled",
		"error.user_fetch_failed":    "failed to load account",
		"error.user_update_failed":   "failed to update account",
		"error.user_id_invalid":      "user identity is missing",
		"error.user_id_type_invalid": "user identity is malformed",

		"error.password_policy_violation": "password must be at least 8 characters",
		"error.password_change_failed":    "failed to change password",

		"error.admin_fetch_failed":    "failed to load administrator",
		"error.admin_id_invalid":      "administrator identity is missing",
		"error.admin_id_type_invalid": "administrator identity is malformed",

		"error.session_required":      "session is required, create one first",
		"error.session_invalid":       "session is invalid or expired",
		"error.session_create_failed": "failed to create session",
		"error.config_fetch_failed":   "failed to load site configuration",

		"error.product_fetch_failed":   "failed to load products",
		"error.product_not_found":      "product not found",
		"error.product_not_available":  "product is not available",
		"error.product_update_failed":  "failed to save product",
		"error.slug_taken":             "slug is already in use",
		"error.category_fetch_failed":  "failed to load categories",
		"error.category_not_found":     "category not found",
		"error.category_in_use":        "category still has products",
		"error.category_update_failed": "failed to save category",

		"error.cart_empty":         "cart is empty",
		"error.cart_update_failed": "failed to update cart",

		"error.order_create_failed":        "failed to place order",
		"error.order_fetch_failed":         "failed to load orders",
		"error.order_not_found":            "order not found",
		"error.order_status_invalid":       "order status transition is not allowed",
		"error.order_update_failed":        "failed to update order",
		"error.order_has_no_items":         "order has no items",
		"error.payment_method_invalid":     "payment method is not supported",
		"error.payment_not_configured":     "online payment is not configured",
		"error.payment_signature_invalid":  "payment signature verification failed",
		"error.payment_verify_failed":      "failed to verify payment",
		"error.courier_not_configured":     "courier service is not configured",
		"error.shipment_failed":            "failed to dispatch shipment",

		"error.captcha_required":       "captcha is required",
		"error.captcha_invalid":        "captcha answer is incorrect",
		"error.captcha_config_invalid": "captcha configuration is invalid",
		"error.captcha_verify_failed":  "failed to verify captcha",
		"error.captcha_fetch_failed":   "failed to generate captcha",

		"error.setting_key_invalid":   "setting key is not editable",
		"error.setting_fetch_failed":  "failed to load settings",
		"error.setting_update_failed": "failed to save settings",

		"error.role_fetch_failed": "failed to load roles",
		"error.role_invalid":      "role is invalid",
		"error.policy_invalid":    "policy is invalid",

		"error.rate_limit_unavailable": "rate limiter is unavailable",
		"error.rate_limited":           "too many requests, please retry in %d seconds",

		"error.upload_failed": "file upload failed",
	},
	LocaleZH: {
		"order.status.pending":    "待处理",
		"order.status.processing": "处理中",
		"order.status.completed":  "已完成",
		"order.status.cancelled":  "已取消",
		"order.status.failed":     "已失败",

		"payment.method.razorpay":      "Razorpay",
		"payment.method.cod":           "货到付款",
		"payment.method.bank_transfer": "银行转账",

		"email.order_confirmation.subject": "订单 %s 已确认",
		"email.order_confirmation.body": "感谢您的订购！\n\n" +
			"订单编号：%s\n" +
			"支付方式：%s\n" +
			"订单金额：%s %s\n\n" +
			"发货后我们会再次通知您。",
		"email.shipment.subject": "订单 %s 已发货",
		"email.shipment.body": "您的订单已发出！\n\n" +
			"订单编号：%s\n" +
			"承运商：%s\n" +
			"运单号：%s\n\n" +
			"可凭以上运单号查询物流进度。",

		"response.ok":           "成功",
		"response.bad_request":  "请求参数错误",
		"response.unauthorized": "未登录或登录已过期",
		"response.forbidden":    "没有操作权限",
		"response.not_found":    "资源不存在",
		"response.server_error": "服务器内部错误",

		"error.bad_request":  "请求参数错误",
		"error.unauthorized": "未登录或登录已过期",
		"error.forbidden":    "没有操作权限",

		"error.jwt_secret_missing":   "服务端未配置鉴权密钥",
		"error.auth_header_missing":  "缺少认证头",
		"error.auth_header_invalid":  "认证头格式错误",
		"error.token_invalid":        "令牌无效或已过期",
		"error.token_revoked":        "令牌已失效",
		"error.invalid_credentials":  "用户名或密码错误",
		"error.login_failed":         "登录失败，请稍后重试",
		"error.login_too_many":       "登录尝试过于频繁，请 %d 秒后重试",
		"error.register_failed":      "注册失败，请稍后重试",
		"error.email_invalid":        "邮箱格式不正确",
		"error.user_exists":          "该邮箱已注册",
		"error.user_disabled":        "账号已被禁用",
		"error.user_fetch_failed":    "获取账号信息失败",
		"error.user_update_failed":   "更新账号信息失败",
		"error.user_id_invalid":      "缺少用户身份",
		"error.user_id_type_invalid": "用户身份格式错误",

		"error.password_policy_violation": "密码长度至少 8 位",
		"error.password_change_failed":    "修改密码失败",

		"error.admin_fetch_failed":    "获取管理员信息失败",
		"error.admin_id_invalid":      "缺少管理员身份",
		"error.admin_id_type_invalid": "管理员身份格式错误",

		"error.session_required":      "缺少会话，请先创建会话",
		"error.session_invalid":       "会话无效或已过期",
		"error.session_create_failed": "创建会话失败",
		"error.config_fetch_failed":   "获取站点配置失败",

		"error.product_fetch_failed":   "获取商品失败",
		"error.product_not_found":      "商品不存在",
		"error.product_not_available":  "商品已下架",
		"error.product_update_failed":  "保存商品失败",
		"error.slug_taken":             "标识已被占用",
		"error.category_fetch_failed":  "获取分类失败",
		"error.category_not_found":     "分类不存在",
		"error.category_in_use":        "分类下仍有商品",
		"error.category_update_failed": "保存分类失败",

		"error.cart_empty":         "购物车为空",
		"error.cart_update_failed": "更新购物车失败",

		"error.order_create_failed":       "下单失败",
		"error.order_fetch_failed":        "获取订单失败",
		"error.order_not_found":           "订单不存在",
		"error.order_status_invalid":      "订单状态不允许此操作",
		"error.order_update_failed":       "更新订单失败",
		"error.order_has_no_items":        "订单没有商品明细",
		"error.payment_method_invalid":    "不支持的支付方式",
		"error.payment_not_configured":    "在线支付未配置",
		"error.payment_signature_invalid": "支付签名校验失败",
		"error.payment_verify_failed":     "支付校验失败",
		"error.courier_not_configured":    "物流服务未配置",
		"error.shipment_failed":           "发货失败",

		"error.captcha_required":       "请输入验证码",
		"error.captcha_invalid":        "验证码错误",
		"error.captcha_config_invalid": "验证码配置无效",
		"error.captcha_verify_failed":  "验证码校验失败",
		"error.captcha_fetch_failed":   "生成验证码失败",

		"error.setting_key_invalid":   "不支持修改该设置项",
		"error.setting_fetch_failed":  "获取设置失败",
		"error.setting_update_failed": "保存设置失败",

		"error.role_fetch_failed": "获取角色失败",
		"error.role_invalid":      "角色无效",
		"error.policy_invalid":    "策略无效",

		"error.rate_limit_unavailable": "限流服务不可用",
		"error.rate_limited":           "请求过于频繁，请 %d 秒后重试",

		"error.upload_failed": "文件上传失败",
	},
}
