package constants

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusFailed     = "failed"
)

// 支付状态常量
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// 支付方式常量
const (
	PaymentMethodRazorpay     = "razorpay"
	PaymentMethodCOD          = "cod"
	PaymentMethodBankTransfer = "bank_transfer"
)

// Razorpay 支付结果常量（网关侧词汇）
const (
	RazorpayStatusCreated    = "created"
	RazorpayStatusAuthorized = "authorized"
	RazorpayStatusCaptured   = "captured"
	RazorpayStatusRefunded   = "refunded"
	RazorpayStatusFailed     = "failed"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码场景常量
const (
	CaptchaSceneLogin         = "login"
	CaptchaSceneGuestCheckout = "guest_checkout"
)

// 队列常量
const (
	QueueDefault       = "default"
	TaskOrderEmail     = "order:confirmation_email"
	TaskOrderCartClear = "order:cart_clear"
	TaskShipmentEmail  = "shipment:notification_email"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "nxc"
)

// 设置键常量
const (
	SettingKeySiteConfig     = "site_config"
	SettingKeyCheckoutConfig = "checkout_config"
	SettingKeySMTPConfig     = "smtp_config"
	SettingKeyCourierConfig  = "courier_config"
	SettingKeyCaptchaConfig  = "captcha_config"

	SettingFieldTaxRate               = "tax_rate"
	SettingFieldShippingRate          = "shipping_rate"
	SettingFieldFreeShippingThreshold = "free_shipping_threshold"
	SettingFieldSiteCurrency          = "currency"
)

// 结算默认值常量（设置缺失或无法解析时回退）
const (
	DefaultTaxRatePercent        = "5"
	DefaultShippingRate          = "50"
	DefaultFreeShippingThreshold = "1000"
)

// 币种常量
const (
	SiteCurrencyDefault = "INR"
)

// 站点语言常量
const (
	LocaleEnUS = "en-US"
	LocaleZhCN = "zh-CN"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleEnUS, LocaleZhCN}

// 运单地址回退常量（地址解析失败时使用）
const (
	ShipmentFallbackCity    = "Mumbai"
	ShipmentFallbackState   = "Maharashtra"
	ShipmentFallbackPincode = "400001"
	ShipmentCountryDefault  = "India"
)
