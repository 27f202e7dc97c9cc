package provider

import (
	"time"

	"github.com/nexacart/internal/authz"
	"github.com/nexacart/internal/cache"
	"github.com/nexacart/internal/config"
	"github.com/nexacart/internal/logger"
	"github.com/nexacart/internal/models"
	"github.com/nexacart/internal/payment/razorpay"
	"github.com/nexacart/internal/queue"
	"github.com/nexacart/internal/repository"
	"github.com/nexacart/internal/service"
	"github.com/nexacart/internal/shipping/shiprocket"
)

// Container 依赖注入容器
type Container struct {
	Config       *config.Config
	QueueClient  *queue.Client
	SessionStore cache.SessionStore

	// Repositories
	AdminRepo    repository.AdminRepository
	UserRepo     repository.UserRepository
	OrderRepo    repository.OrderRepository
	ProductRepo  repository.ProductRepository
	CartRepo     repository.CartRepository
	CategoryRepo repository.CategoryRepository
	SettingRepo  repository.SettingRepository

	// Gateways
	RazorpayClient *razorpay.Client
	CourierClient  *shiprocket.Client

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	UserAuthService *service.UserAuthService
	EmailService    *service.EmailService
	CaptchaService  *service.CaptchaService
	UploadService   *service.UploadService
	ProductService  *service.ProductService
	CategoryService *service.CategoryService
	SettingService  *service.SettingService
	CartService     *service.CartService
	CheckoutService *service.CheckoutService
	PaymentService  *service.PaymentService
	OrderService    *service.OrderService
	ShipmentService *service.ShipmentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化会话存储与外部网关
	c.initSessionStore()
	c.initGateways()

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initSessionStore() {
	ttl := time.Duration(c.Config.Session.TTLHours) * time.Hour
	if cache.Enabled() {
		c.SessionStore = cache.NewRedisSessionStore(ttl)
		return
	}
	janitorInterval := time.Duration(c.Config.Session.JanitorInterval) * time.Second
	c.SessionStore = cache.NewMemorySessionStore(ttl, janitorInterval)
	logger.Warnw("provider_session_store_fallback_memory")
}

func (c *Container) initGateways() {
	if c.Config.Razorpay.Enabled {
		client, err := razorpay.NewClient(&razorpay.Config{
			KeyID:       c.Config.Razorpay.KeyID,
			KeySecret:   c.Config.Razorpay.KeySecret,
			BaseURL:     c.Config.Razorpay.BaseURL,
			CheckoutURL: c.Config.Razorpay.CheckoutURL,
		})
		if err != nil {
			logger.Errorw("provider_init_razorpay_failed", "error", err)
		} else {
			c.RazorpayClient = client
		}
	}

	if c.Config.Courier.Enabled {
		client, err := shiprocket.NewClient(&shiprocket.Config{
			Email:          c.Config.Courier.Email,
			Password:       c.Config.Courier.Password,
			BaseURL:        c.Config.Courier.BaseURL,
			PickupLocation: c.Config.Courier.PickupLocation,
		})
		if err != nil {
			logger.Errorw("provider_init_courier_failed", "error", err)
		} else {
			c.CourierClient = client
		}
	}
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.SettingService = service.NewSettingService(c.SettingRepo)
	smtpSetting, err := c.SettingService.GetSMTPSetting(c.Config.Email)
	if err != nil {
		logger.Warnw("provider_load_smtp_setting_failed", "error", err)
	} else {
		c.Config.Email = service.SMTPSettingToConfig(smtpSetting)
	}

	captchaSetting, err := c.SettingService.GetCaptchaSetting(c.Config.Captcha)
	if err != nil {
		logger.Warnw("provider_load_captcha_setting_failed", "error", err)
	} else {
		c.Config.Captcha = service.CaptchaSettingToConfig(captchaSetting)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.SettingService, c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.UploadService = service.NewUploadService(c.Config)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo, c.CartRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)

	var gateway service.PaymentGateway
	var verifier service.PaymentVerifier
	if c.RazorpayClient != nil {
		gateway = c.RazorpayClient
		verifier = c.RazorpayClient
	}
	c.CheckoutService = service.NewCheckoutService(c.OrderRepo, c.CartRepo, c.ProductRepo, c.SettingService, c.EmailService, c.QueueClient, gateway)
	c.PaymentService = service.NewPaymentService(c.OrderRepo, c.CartRepo, verifier, c.EmailService, c.QueueClient)
	c.OrderService = service.NewOrderService(c.OrderRepo)

	var courier service.CourierGateway
	if c.CourierClient != nil {
		courier = c.CourierClient
	}
	c.ShipmentService = service.NewShipmentService(c.OrderRepo, courier, c.EmailService, c.QueueClient)
}
